package order_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/internal/flow/order"
	"github.com/aretw0/mercato/internal/testutils"
	"github.com/aretw0/mercato/pkg/adapters/memory"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clock = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

var pizza = domain.Product{
	ID:         "PROD-00000005",
	Name:       "Pepperoni Pizza",
	Price:      12000,
	Currency:   "MWK",
	InStock:    true,
	MerchantID: "SHOP-00000003",
}

type fakeBrowse struct {
	resumed    int
	categories int
}

func (b *fakeBrowse) Resume(ctx context.Context, c *chat.Conversation) bool {
	b.resumed++
	return true
}

func (b *fakeBrowse) StartCategories(ctx context.Context, c *chat.Conversation) bool {
	b.categories++
	return true
}

type harness struct {
	t      *testing.T
	cat    *memory.Catalog
	flow   *order.Flow
	conv   *chat.Conversation
	rec    *memory.Recorder
	browse *fakeBrowse
}

func newHarness(t *testing.T, cat *memory.Catalog) *harness {
	browse := &fakeBrowse{}
	sess := domain.NewSession(testutils.Customer)
	sess.Mode = domain.ModeBrowsing
	sess.Browse = domain.NewBrowseState(domain.StepShowProductDetails)
	sess.Browse.Data = domain.ProductDetail{Index: 1, Return: domain.StepShowProducts}
	conv, rec := testutils.Conversation(t, sess)
	return &harness{
		t:   t,
		cat: cat,
		flow: order.New(cat,
			order.WithBrowseResumer(browse),
			order.WithClock(func() time.Time { return clock }),
		),
		conv:   conv,
		rec:    rec,
		browse: browse,
	}
}

func (h *harness) start() {
	h.t.Helper()
	require.True(h.t, h.flow.StartOrder(context.Background(), h.conv, pizza, pizza.MerchantID))
}

func (h *harness) send(texts ...string) {
	h.t.Helper()
	for _, text := range texts {
		h.rec.Reset()
		require.True(h.t, h.flow.HandleText(context.Background(), h.conv, text), "reply %q not handled", text)
	}
}

func (h *harness) state() *domain.OrderState {
	return h.conv.Session.Order
}

func TestStartOrder(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog())
	h.start()

	assert.Equal(t, domain.ModeOrdering, h.conv.Session.Mode)
	assert.Equal(t, domain.StepCollectingQuantity, h.state().Step)
	require.NotNil(t, h.conv.Session.Browse, "browse state survives the handoff")
	assert.Equal(t, domain.StepShowProductDetails, h.conv.Session.Browse.Step)
	assert.Equal(t, "🛒 *ORDER Pepperoni Pizza*\n\nPrice: MWK 12,000 each\n\nHow many would you like to order?\n\n*Type a number:* 1, 2, 3, etc.\n*Type 0 to cancel*", h.rec.Last().Body)
}

func TestStartOrder_MissingIdentifiers(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog())
	assert.False(t, h.flow.StartOrder(context.Background(), h.conv, domain.Product{Name: "Ghost"}, ""))
	assert.Nil(t, h.state())
	assert.Equal(t, domain.ModeBrowsing, h.conv.Session.Mode)
}

func TestQuantity_ValidRecomputesTotal(t *testing.T) {
	for _, q := range []int{1, 2, 37, 100} {
		t.Run(strconv.Itoa(q), func(t *testing.T) {
			h := newHarness(t, memory.DemoCatalog())
			h.start()
			h.send(strconv.Itoa(q))

			d := h.state().Draft
			assert.Equal(t, domain.StepCollectingNotes, h.state().Step)
			assert.Equal(t, q, d.Quantity)
			assert.Equal(t, pizza.Price*float64(q), d.TotalPrice)
		})
	}
}

func TestQuantity_InvalidKeepsStep(t *testing.T) {
	for _, in := range []string{"101", "-3", "abc", "1.5", ""} {
		t.Run(in, func(t *testing.T) {
			h := newHarness(t, memory.DemoCatalog())
			h.start()
			h.send(in)

			assert.Equal(t, domain.StepCollectingQuantity, h.state().Step)
			assert.Equal(t, 1, h.state().Draft.Quantity)
			assert.Equal(t, "❌ Please type a number between 1 and 100.\n\n*Type 0 to cancel*", h.rec.Last().Body)
		})
	}
}

func TestPickupCashOrder(t *testing.T) {
	cat := memory.DemoCatalog()
	h := newHarness(t, cat)
	h.start()

	h.send("2")
	assert.Contains(t, h.rec.Last().Body, "✅ Quantity: 2\n💰 Total: MWK 24,000")
	h.send("1", "2", "1")
	require.Equal(t, domain.StepConfirmingOrder, h.state().Step)
	summary := h.rec.Last().Body
	assert.Contains(t, summary, "*Total Price:* MWK 24,000\n")
	assert.Contains(t, summary, "*Collection:* Pickup from shop\n")
	assert.Contains(t, summary, "*Payment:* CASH\n")
	assert.NotContains(t, summary, "*Notes:*")

	h.send("1")
	require.Len(t, cat.Orders(), 1)
	placed := cat.Orders()[0]
	assert.Equal(t, domain.NewOrderID(clock), placed.ID)
	assert.Equal(t, testutils.Customer, placed.CustomerPhone)
	assert.Equal(t, "SHOP-00000003", placed.MerchantID)
	assert.Equal(t, 2, placed.Quantity)
	assert.Equal(t, 24000.0, placed.TotalPrice)
	assert.Equal(t, domain.PickupAddress, placed.DeliveryAddress)
	assert.Equal(t, domain.PaymentCash, placed.PaymentMethod)
	assert.Equal(t, domain.OrderPending, placed.Status)
	assert.Equal(t, domain.NoNotes, placed.Notes)
	assert.Equal(t, "2026-10-14", placed.OrderDate)

	assert.Equal(t, domain.StepOrderComplete, h.state().Step)
	assert.Nil(t, h.state().Draft)
	assert.Equal(t, domain.OrderPlaced{OrderID: placed.ID}, h.state().Data)
	last := h.rec.Last().Body
	assert.Contains(t, last, "✅ *ORDER PLACED SUCCESSFULLY!*")
	assert.Contains(t, last, "1. View this order\n2. Browse more products\n3. Main menu")
}

func TestDeliveryOrderWithNotes(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog())
	h.start()

	h.send("1", "Extra cheese please", "1")
	require.Equal(t, domain.StepCollectingAddressDetails, h.state().Step)
	h.send("Area 47, House 12", "2")

	d := h.state().Draft
	assert.Equal(t, "Extra cheese please", d.Notes)
	assert.Equal(t, "Area 47, House 12", d.DeliveryAddress)
	assert.Equal(t, domain.PaymentMobileMoney, d.PaymentMethod)
	summary := h.rec.Last().Body
	assert.Contains(t, summary, "*Notes:* Extra cheese please\n")
	assert.Contains(t, summary, "*Delivery to:* Area 47, House 12\n")
	assert.Contains(t, summary, "*Payment:* MOBILE MONEY\n")
}

func TestInvalidChoicesReprompt(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog())
	h.start()
	h.send("1", "1")

	h.send("3")
	assert.Equal(t, domain.StepCollectingDelivery, h.state().Step)
	assert.Equal(t, "❌ Please type 1, 2, or 0.\n\n1. Delivery\n2. Pickup\n0. Cancel", h.rec.Last().Body)

	h.send("2", "4")
	assert.Equal(t, domain.StepCollectingPayment, h.state().Step)
	assert.Contains(t, h.rec.Last().Body, "❌ Please type 1, 2, 3, or 0.")

	h.send("3", "9")
	assert.Equal(t, domain.StepConfirmingOrder, h.state().Step)
	assert.Equal(t, "❌ Please type 1, 2, or 0.\n\n1. Confirm\n2. Edit\n0. Cancel", h.rec.Last().Body)
}

func TestEditKeepsEnteredFields(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog())
	h.start()
	h.send("3", "No onions", "1", "Old Town", "3")
	require.Equal(t, domain.StepConfirmingOrder, h.state().Step)

	h.send("2")
	assert.Equal(t, domain.StepCollectingQuantity, h.state().Step)
	d := h.state().Draft
	assert.Equal(t, 3, d.Quantity)
	assert.Equal(t, "No onions", d.Notes)
	assert.Equal(t, "Old Town", d.DeliveryAddress)
	assert.Equal(t, domain.PaymentBankTransfer, d.PaymentMethod)

	h.send("5")
	assert.Equal(t, 5, d.Quantity)
	assert.Equal(t, 60000.0, d.TotalPrice)
	assert.Equal(t, "No onions", d.Notes, "notes survive until answered again")
	assert.Equal(t, domain.PaymentBankTransfer, d.PaymentMethod)
}

func TestCancelAtEveryStep(t *testing.T) {
	paths := map[string][]string{
		"quantity": nil,
		"notes":    {"1"},
		"delivery": {"1", "1"},
		"address":  {"1", "1", "1"},
		"payment":  {"1", "1", "2"},
		"confirm":  {"1", "1", "2", "1"},
	}
	for name, path := range paths {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, memory.DemoCatalog())
			h.start()
			h.send(path...)
			h.send("0")

			assert.Equal(t, domain.ModeIdle, h.conv.Session.Mode)
			assert.Nil(t, h.state())
			assert.Equal(t, "❌ Order cancelled.\n\n"+chat.WelcomeMenu(), h.rec.Last().Body)
		})
	}
}

func TestSubmissionFailureAbortsToIdle(t *testing.T) {
	cat := memory.DemoCatalog()
	cat.FailOn("CreateOrder", errors.New("rejected"))
	h := newHarness(t, cat)
	h.start()
	h.send("1", "1", "2", "1")

	h.send("1")
	assert.Empty(t, cat.Orders())
	assert.Equal(t, domain.ModeIdle, h.conv.Session.Mode)
	assert.Nil(t, h.state())
	bodies := testutils.Bodies(h.rec)
	require.Len(t, bodies, 2)
	assert.Equal(t, "❌ Failed to place order. Please try again or contact support.", bodies[0])
	assert.Contains(t, bodies[1], "❌ Order cancelled.")
}

func TestCompleteMenu(t *testing.T) {
	t.Run("view this order", func(t *testing.T) {
		h := newHarness(t, memory.DemoCatalog())
		h.start()
		h.send("1", "1", "2", "1", "1")

		h.send("1")
		assert.Equal(t, domain.StepViewingOrder, h.state().Step)
		last := h.rec.Last().Body
		assert.Contains(t, last, "📦 *ORDER "+domain.NewOrderID(clock)+"*")
		assert.Contains(t, last, "*Status:* ⏳ PENDING\n")
		assert.Contains(t, last, "1. Back to my orders\n2. Main menu")
	})

	t.Run("browse more", func(t *testing.T) {
		h := newHarness(t, memory.DemoCatalog())
		h.start()
		h.send("1", "1", "2", "1", "1")

		h.send("2")
		assert.Equal(t, 1, h.browse.resumed)
		assert.Nil(t, h.state())
		assert.NotNil(t, h.conv.Session.Browse)
	})

	t.Run("out of range", func(t *testing.T) {
		h := newHarness(t, memory.DemoCatalog())
		h.start()
		h.send("1", "1", "2", "1", "1")

		h.send("4")
		assert.Equal(t, domain.StepOrderComplete, h.state().Step)
		assert.Equal(t, chat.OutOfRange(3), h.rec.Last().Body)
	})
}

func TestShowOrders_Empty(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog())
	require.True(t, h.flow.ShowOrders(context.Background(), h.conv))

	assert.Equal(t, domain.StepViewingOrders, h.state().Step)
	assert.Equal(t, "📭 You have no orders yet.\n\n*Select:*\n1. Browse products\n2. Main menu", h.rec.Last().Body)

	h.send("1")
	assert.Equal(t, 1, h.browse.categories)
	assert.Nil(t, h.state())
}

func historyCatalog() *memory.Catalog {
	return memory.NewCatalog(memory.Fixture{
		Orders: []domain.Order{
			{ID: "ORD-000001", CustomerPhone: testutils.Customer, ProductName: "Denim Jacket", Quantity: 1, TotalPrice: 22000, Currency: "MWK", Status: domain.OrderDelivered, OrderDate: "2026-09-01", DeliveryAddress: domain.PickupAddress},
			{ID: "ORD-000002", CustomerPhone: "265999000000", ProductName: "Paracetamol 500mg", Quantity: 2, TotalPrice: 3000, Currency: "MWK", Status: domain.OrderPending, OrderDate: "2026-09-15"},
			{ID: "ORD-000003", CustomerPhone: testutils.Customer, ProductName: "Pepperoni Pizza", Quantity: 2, TotalPrice: 24000, Currency: "MWK", Status: domain.OrderShipped, OrderDate: "2026-10-02", DeliveryAddress: "Area 10"},
		},
	})
}

func TestShowOrders_List(t *testing.T) {
	h := newHarness(t, historyCatalog())
	require.True(t, h.flow.ShowOrders(context.Background(), h.conv))

	assert.Equal(t, domain.OrderList{Count: 2}, h.state().Data)
	last := h.rec.Last().Body
	assert.Contains(t, last, "1. *Pepperoni Pizza*\n   📅 2026-10-02\n   🆔 ORD-000003\n   📊 🚚 SHIPPED\n   💰 MWK 24,000\n")
	assert.Contains(t, last, "2. *Denim Jacket*")
	assert.Contains(t, last, "1. View order 1\n2. View order 2\n3. Main menu")
	assert.NotContains(t, last, "Paracetamol")

	h.send("2")
	assert.Equal(t, domain.OrderDetail{Index: 1}, h.state().Data)
	assert.Contains(t, h.rec.Last().Body, "*Collection:* Pickup from shop")

	h.send("1")
	assert.Equal(t, domain.StepViewingOrders, h.state().Step)

	h.send("4")
	assert.Equal(t, chat.OutOfRange(3), h.rec.Last().Body)

	h.send("3")
	assert.Equal(t, domain.ModeIdle, h.conv.Session.Mode)
	assert.Equal(t, chat.WelcomeMenu(), h.rec.Last().Body)
}

func TestShowOrders_FailureOffersRetry(t *testing.T) {
	cat := historyCatalog()
	cat.FailOn("CustomerOrders", errors.New("timeout"))
	h := newHarness(t, cat)
	require.True(t, h.flow.ShowOrders(context.Background(), h.conv))

	assert.Nil(t, h.state().Data)
	assert.Equal(t, "❌ Error loading orders.\n\n*Select:*\n1. Try again\n2. Main menu", h.rec.Last().Body)

	cat.FailOn("CustomerOrders", nil)
	h.send("1")
	assert.Equal(t, domain.OrderList{Count: 2}, h.state().Data)
}

func TestHandleText_NoOrderState(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog())
	assert.False(t, h.flow.HandleText(context.Background(), h.conv, "1"))
}
