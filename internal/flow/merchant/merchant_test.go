package merchant_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/internal/flow/merchant"
	"github.com/aretw0/mercato/internal/testutils"
	"github.com/aretw0/mercato/pkg/adapters/memory"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clock = time.Date(2026, 10, 14, 11, 0, 0, 0, time.UTC)

type harness struct {
	t    *testing.T
	cat  *memory.Catalog
	flow *merchant.Flow
	conv *chat.Conversation
	rec  *memory.Recorder
}

func newHarness(t *testing.T, cat *memory.Catalog, phone string) *harness {
	conv, rec := testutils.Conversation(t, domain.NewSession(phone))
	return &harness{
		t:    t,
		cat:  cat,
		flow: merchant.New(cat, merchant.WithClock(func() time.Time { return clock })),
		conv: conv,
		rec:  rec,
	}
}

func (h *harness) send(texts ...string) {
	h.t.Helper()
	for _, text := range texts {
		h.rec.Reset()
		require.True(h.t, h.flow.HandleText(context.Background(), h.conv, text), "reply %q not handled", text)
	}
}

func (h *harness) image(url string) {
	h.t.Helper()
	h.rec.Reset()
	require.True(h.t, h.flow.HandleImage(context.Background(), h.conv, url))
}

func (h *harness) state() *domain.MerchantState {
	return h.conv.Session.Merchant
}

// open starts the dashboard and walks the wizard up to the image step.
func (h *harness) open() {
	h.t.Helper()
	require.True(h.t, h.flow.Start(context.Background(), h.conv))
	h.send("1", "2", "Pizza Margherita", "skip", "8,500")
	require.Equal(h.t, domain.StepAddProductImages, h.state().Step)
}

func TestStart_Unverified(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog(), "265111111111")

	assert.False(t, h.flow.Start(context.Background(), h.conv))
	assert.Nil(t, h.state())
	assert.Equal(t, domain.ModeIdle, h.conv.Session.Mode)
	assert.Empty(t, h.rec.Sent())
}

func TestWithVerified(t *testing.T) {
	f := merchant.New(memory.DemoCatalog(), merchant.WithVerified("+265111111111", " "))
	assert.True(t, f.IsVerified("265111111111"))
	assert.False(t, f.IsVerified(testutils.Customer))
}

func TestDashboard(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog(), testutils.Customer)
	require.True(t, h.flow.Start(context.Background(), h.conv))

	assert.Equal(t, domain.ModeMerchant, h.conv.Session.Mode)
	assert.Equal(t, domain.StepDashboard, h.state().Step)
	assert.Contains(t, h.rec.Last().Body, "1. 📦 Add New Product\n2. 👀 View My Products\n3. 📊 My Orders\n0. 🏠 Main Menu")

	h.send("2")
	assert.Contains(t, h.rec.Last().Body, "🔧 *Feature Coming Soon!*")
	h.send("3")
	assert.Contains(t, h.rec.Last().Body, "📊 *MY ORDERS*")
	h.send("7")
	assert.Equal(t, "❌ *Invalid Option*\n\nPlease type 1, 2, 3, or 0.", h.rec.Last().Body)
	assert.Equal(t, domain.StepDashboard, h.state().Step)

	h.send("0")
	assert.Equal(t, domain.ModeIdle, h.conv.Session.Mode)
	assert.Nil(t, h.state())
	assert.Equal(t, chat.WelcomeMenu(), h.rec.Last().Body)
}

func TestWizard_SavesProductAndRegistersMerchant(t *testing.T) {
	cat := memory.DemoCatalog()
	h := newHarness(t, cat, testutils.Customer)
	h.open()

	d := h.state().Draft
	assert.Equal(t, "food", d.CategoryID)
	assert.Equal(t, "Pizza Margherita", d.Name)
	assert.Equal(t, domain.NoDescription, d.Description)
	assert.Equal(t, 8500.0, d.Price)

	h.image("https://res.cloudinary.com/demo/a.jpg")
	assert.Contains(t, h.rec.Last().Body, "📸 *Progress:* 1/3 images added")
	assert.Contains(t, h.rec.Last().Body, "(2 remaining)")
	h.image("https://res.cloudinary.com/demo/b.jpg")
	h.image("https://res.cloudinary.com/demo/c.jpg")

	h.image("https://res.cloudinary.com/demo/d.jpg")
	assert.Contains(t, h.rec.Last().Body, "✅ *Maximum Images Reached!*")
	assert.Len(t, h.state().Images, 3, "a fourth image leaves the list untouched")

	h.send("DONE")
	require.Equal(t, domain.StepConfirmProduct, h.state().Step)
	confirm := h.rec.Last().Body
	assert.Contains(t, confirm, "📝 *Name:* Pizza Margherita\n")
	assert.Contains(t, confirm, "📂 *Category:* Food & Drinks\n")
	assert.Contains(t, confirm, "💰 *Price:* MWK 8,500\n")
	assert.Contains(t, confirm, "📸 *Images:* 3 uploaded\n")

	before := len(cat.Merchants())
	h.send("1")
	merchants := cat.Merchants()
	require.Len(t, merchants, before+1)
	owner := merchants[len(merchants)-1]
	assert.Equal(t, domain.NewMerchantID(clock), owner.ID)
	assert.Equal(t, "Shop "+testutils.Customer, owner.Name)
	assert.Equal(t, testutils.Customer, owner.Phone)
	assert.Equal(t, "food", owner.CategoryID)

	products := cat.Products()
	saved := products[len(products)-1]
	assert.Equal(t, domain.NewProductID(clock), saved.ID)
	assert.Equal(t, owner.ID, saved.MerchantID)
	assert.Equal(t, "MWK", saved.Currency)
	assert.True(t, saved.InStock)
	assert.Len(t, saved.Images, 3)
	assert.Equal(t, "2026-10-14", saved.CreatedDate)

	assert.Equal(t, domain.StepDashboard, h.state().Step)
	assert.Equal(t, domain.ProductSaved{ProductID: saved.ID}, h.state().Data)
	assert.Nil(t, h.state().Draft)
	assert.Empty(t, h.state().Images)
	assert.Contains(t, h.rec.Last().Body, "1. 📦 Add another product\n2. 🏪 Shop owner dashboard\n3. 🏠 Main menu")

	h.send("2")
	assert.Equal(t, domain.StepDashboard, h.state().Step)
	assert.Nil(t, h.state().Data)
}

func TestWizard_ExistingMerchantIsReused(t *testing.T) {
	cat := memory.DemoCatalog()
	_, err := cat.CreateMerchant(context.Background(), domain.Merchant{ID: "SHOP-00000099", Name: "Pizza Hub", Phone: testutils.Customer, CategoryID: "food"})
	require.NoError(t, err)
	h := newHarness(t, cat, testutils.Customer)
	h.open()
	h.send("done", "1", "1")

	products := cat.Products()
	assert.Equal(t, "SHOP-00000099", products[len(products)-1].MerchantID)
	assert.Len(t, cat.Merchants(), 5)
}

func TestWizard_Currency(t *testing.T) {
	cat := memory.DemoCatalog()
	conv, rec := testutils.Conversation(t, domain.NewSession(testutils.Customer))
	h := &harness{
		t:    t,
		cat:  cat,
		flow: merchant.New(cat, merchant.WithCurrency("ZMW"), merchant.WithClock(func() time.Time { return clock })),
		conv: conv,
		rec:  rec,
	}
	h.open()
	assert.Contains(t, h.rec.Last().Body, "💰 *Price:* ZMW 8,500")

	h.send("done", "1", "1")
	products := cat.Products()
	assert.Equal(t, "ZMW", products[len(products)-1].Currency)
}

func TestWizard_InvalidInputs(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog(), testutils.Customer)
	require.True(t, h.flow.Start(context.Background(), h.conv))
	h.send("1")
	require.Equal(t, domain.StepAddProductCategory, h.state().Step)
	assert.Contains(t, h.rec.Last().Body, "1. 👗 Fashion\n2. 🍕 Food & Drinks\n3. 💊 Pharmacy\n")

	h.send("9")
	assert.Equal(t, "❌ *Invalid Selection*\n\nPlease type a number between 1 and 3.\n\nType 0 to cancel", h.rec.Last().Body)
	assert.Equal(t, domain.StepAddProductCategory, h.state().Step)

	h.send("1", "A")
	assert.Contains(t, h.rec.Last().Body, "❌ *Name Too Short*")
	assert.Equal(t, domain.StepAddProductName, h.state().Step)

	h.send("Kitenge", "Bright wax print")
	assert.Equal(t, "Bright wax print", h.state().Draft.Description)

	for _, price := range []string{"abc", "-5", "0.00", "Inf"} {
		h.send(price)
		assert.Contains(t, h.rec.Last().Body, "❌ *Invalid Price*", price)
		assert.Equal(t, domain.StepAddProductPrice, h.state().Step)
	}

	h.send("15000", "hello")
	assert.Equal(t, domain.StepAddProductImages, h.state().Step)
	assert.Contains(t, h.rec.Last().Body, "• Type 'done' to finish")
}

func TestWizard_ZeroAtPriceCancels(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog(), testutils.Customer)
	require.True(t, h.flow.Start(context.Background(), h.conv))
	h.send("1", "2", "Pizza Margherita", "skip")
	require.Equal(t, domain.StepAddProductPrice, h.state().Step)

	h.send("0")
	assert.Equal(t, "❌ *Operation cancelled.*\n\n"+chat.WelcomeMenu(), h.rec.Last().Body)
	assert.Equal(t, domain.ModeIdle, h.conv.Session.Mode)
}

func TestWizard_NoImagesPrompt(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog(), testutils.Customer)
	h.open()

	h.send("done")
	assert.Equal(t, domain.ImagesEmptyPrompt{}, h.state().Data)
	assert.Contains(t, h.rec.Last().Body, "⚠️ *No Images Added*")

	h.send("3")
	assert.Equal(t, "❌ *Invalid Option*\n\nPlease type 1, 2, or 0.", h.rec.Last().Body)

	h.send("2")
	assert.Equal(t, domain.StepAddProductImages, h.state().Step)
	assert.Nil(t, h.state().Data)

	h.send("done", "1")
	assert.Equal(t, domain.StepConfirmProduct, h.state().Step)
	assert.Contains(t, h.rec.Last().Body, "📸 *Images:* No images (optional)\n")
}

func TestWizard_ImageAnswersNoImagesPrompt(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog(), testutils.Customer)
	h.open()
	h.send("done")

	h.image("https://res.cloudinary.com/demo/a.jpg")
	assert.Nil(t, h.state().Data)
	assert.Len(t, h.state().Images, 1)
}

func TestWizard_EditRestartsFromCategory(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog(), testutils.Customer)
	h.open()
	h.image("https://res.cloudinary.com/demo/a.jpg")
	h.send("done")

	h.send("2")
	assert.Equal(t, domain.StepAddProductCategory, h.state().Step)
	assert.Contains(t, h.rec.Last().Body, "✏️ *EDITING PRODUCT*")
	assert.Equal(t, &domain.ProductDraft{}, h.state().Draft)
	assert.Empty(t, h.state().Images)
	assert.Len(t, h.state().Categories, 3)
}

func TestWizard_SaveFailureKeepsDraft(t *testing.T) {
	cat := memory.DemoCatalog()
	cat.FailOn("CreateProduct", errors.New("422"))
	h := newHarness(t, cat, testutils.Customer)
	h.open()
	h.send("done", "1")

	h.send("1")
	assert.Equal(t, domain.StepConfirmProduct, h.state().Step)
	require.NotNil(t, h.state().Draft)
	assert.Equal(t, "Pizza Margherita", h.state().Draft.Name)
	assert.Contains(t, h.rec.Last().Body, "❌ *Save Failed*")

	cat.FailOn("CreateProduct", nil)
	h.send("1")
	assert.Equal(t, domain.StepDashboard, h.state().Step)
	assert.IsType(t, domain.ProductSaved{}, h.state().Data)
}

func TestWizard_Cancel(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog(), testutils.Customer)
	h.open()

	h.send("0")
	assert.Equal(t, domain.ModeIdle, h.conv.Session.Mode)
	assert.Nil(t, h.state())
	assert.Equal(t, "❌ *Operation cancelled.*\n\n"+chat.WelcomeMenu(), h.rec.Last().Body)
}

func TestWizard_CategoriesUnavailable(t *testing.T) {
	cat := memory.DemoCatalog()
	cat.FailOn("Categories", errors.New("down"))
	h := newHarness(t, cat, testutils.Customer)
	require.True(t, h.flow.Start(context.Background(), h.conv))

	h.send("1")
	assert.Equal(t, domain.StepDashboard, h.state().Step)
	assert.Nil(t, h.state().Draft)
	assert.Contains(t, h.rec.Last().Body, "Failed to load categories")
}

func TestHandleImage_OutsideImageStep(t *testing.T) {
	h := newHarness(t, memory.DemoCatalog(), testutils.Customer)
	assert.False(t, h.flow.AcceptsImage(h.conv.Session))
	assert.False(t, h.flow.HandleImage(context.Background(), h.conv, "https://x/y.jpg"))

	require.True(t, h.flow.Start(context.Background(), h.conv))
	assert.False(t, h.flow.AcceptsImage(h.conv.Session))
	assert.False(t, h.flow.HandleImage(context.Background(), h.conv, "https://x/y.jpg"))

	h.send("1", "2", "Pizza Margherita", "skip", "8500")
	assert.True(t, h.flow.AcceptsImage(h.conv.Session))
}
