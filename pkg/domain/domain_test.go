package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/paging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_ResetKeepsIdentity(t *testing.T) {
	s := domain.NewSession("265881234567")
	created := s.CreatedAt
	s.Mode = domain.ModeOrdering
	s.Browse = domain.NewBrowseState(domain.StepShowProducts)
	s.Order = &domain.OrderState{Step: domain.StepCollectingQuantity}

	s.Reset()

	assert.Equal(t, domain.ModeIdle, s.Mode)
	assert.Nil(t, s.Browse)
	assert.Nil(t, s.Order)
	assert.Nil(t, s.Merchant)
	assert.Equal(t, "265881234567", s.ID)
	assert.Equal(t, created, s.CreatedAt)
	assert.Equal(t, "idle", s.Step())
}

func TestSession_CloneKeepsStepData(t *testing.T) {
	s := domain.NewSession("265881234567")
	s.Mode = domain.ModeOrdering
	s.Browse = domain.NewBrowseState(domain.StepShowProductDetails)
	s.Browse.Products = []domain.Product{{ID: "P1", Name: "Radio", Price: 1000}}
	s.Browse.Data = domain.ProductDetail{Index: 0, Return: domain.StepShowProducts}
	s.Order = &domain.OrderState{Step: domain.StepConfirmingOrder}
	s.Merchant = &domain.MerchantState{
		Step: domain.StepAddProductImages,
		Data: domain.ImagesEmptyPrompt{},
	}
	s.Browse.Results = []domain.Product{{ID: "P2"}}

	clone, err := s.Clone()
	require.NoError(t, err)

	assert.Equal(t, domain.ProductDetail{Index: 0, Return: domain.StepShowProducts}, clone.Browse.Data)
	assert.Nil(t, clone.Order.Data)
	assert.Equal(t, domain.ImagesEmptyPrompt{}, clone.Merchant.Data)
	assert.Equal(t, string(domain.StepConfirmingOrder), clone.Step())

	// Mutating the clone must not leak into the original.
	clone.Browse.Products[0].Name = "TV"
	assert.Equal(t, "Radio", s.Browse.Products[0].Name)
}

func TestSession_ClonePagedData(t *testing.T) {
	s := domain.NewSession("1")
	s.Mode = domain.ModeBrowsing
	s.Browse = domain.NewBrowseState(domain.StepShowShops)
	page := paging.Paginate(12, 2, 10)
	s.Browse.Data = domain.ShopList{Page: page}

	clone, err := s.Clone()
	require.NoError(t, err)

	data, ok := clone.Browse.Data.(domain.ShopList)
	require.True(t, ok)
	assert.Equal(t, page, data.Page)
	assert.Equal(t, 2, data.Page.Count())
}

func TestOrderDraft_QuantityRecomputesTotal(t *testing.T) {
	d := domain.NewOrderDraft("265881234567", domain.Product{ID: "P1", Name: "Radio", Price: 2500, Currency: "MWK"}, "S1")

	for q := domain.MinQuantity; q <= domain.MaxQuantity; q++ {
		require.NoError(t, d.SetQuantity(q))
		assert.Equal(t, 2500*float64(q), d.TotalPrice)
	}

	require.NoError(t, d.SetQuantity(2))
	for _, q := range []int{0, -1, 101, 1000} {
		err := d.SetQuantity(q)
		assert.True(t, errors.Is(err, domain.ErrInvalidQuantity), "q=%d", q)
		assert.Equal(t, 2, d.Quantity)
		assert.Equal(t, 5000.0, d.TotalPrice)
	}
}

func TestOrderDraft_Complete(t *testing.T) {
	d := domain.NewOrderDraft("265881234567", domain.Product{ID: "P1", Name: "Radio", Price: 2500}, "S1")
	_, err := d.Complete("ORD-1", time.Now())
	assert.True(t, errors.Is(err, domain.ErrIncompleteDraft))

	require.NoError(t, d.SetQuantity(2))
	d.SetNotes("")
	d.SetPickup()
	d.SetPaymentMethod(domain.PaymentCash)

	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	order, err := d.Complete("ORD-123456", now)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderPending, order.Status)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.Equal(t, domain.PickupAddress, order.DeliveryAddress)
	assert.Equal(t, domain.NoNotes, order.Notes)
	assert.Equal(t, "MWK", order.Currency)
	assert.Equal(t, "2026-03-04", order.OrderDate)
	assert.Equal(t, 5000.0, order.TotalPrice)
	assert.True(t, order.IsPickup())
}

func TestIdentifiers(t *testing.T) {
	now := time.UnixMilli(1712345678901)
	assert.Equal(t, "ORD-678901", domain.NewOrderID(now))
	assert.Equal(t, "PROD-45678901", domain.NewProductID(now))
	assert.Equal(t, "SHOP-45678901", domain.NewMerchantID(now))
}

func TestOrderStatus(t *testing.T) {
	st, err := domain.ParseOrderStatus("Shipped")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, st)
	assert.Equal(t, "🚚", st.Emoji())

	_, err = domain.ParseOrderStatus("lost")
	assert.Error(t, err)

	assert.Equal(t, "MOBILE MONEY", domain.PaymentMobileMoney.Label())
}

func TestMerchantState_ImageCap(t *testing.T) {
	m := &domain.MerchantState{}
	m.StartDraft()
	for i := 0; i < domain.MaxProductImages; i++ {
		require.NoError(t, m.AddImage("https://img.example/"+string(rune('a'+i))))
	}
	before := append([]string(nil), m.Images...)

	err := m.AddImage("https://img.example/d")
	assert.ErrorIs(t, err, domain.ErrImageLimit)
	assert.Equal(t, before, m.Images)
	assert.Equal(t, 0, m.RemainingImages())
}

func TestProductDraft(t *testing.T) {
	d := &domain.ProductDraft{}
	assert.ErrorIs(t, d.SetName("a"), domain.ErrNameTooShort)
	assert.ErrorIs(t, d.SetName("  b "), domain.ErrNameTooShort)
	require.NoError(t, d.SetName("Ké"))

	assert.True(t, d.SetDescription("SKIP"))
	assert.Equal(t, domain.NoDescription, d.Description)
	assert.False(t, d.SetDescription("Warm wool scarf"))

	assert.ErrorIs(t, d.SetPrice(0), domain.ErrInvalidPrice)
	assert.ErrorIs(t, d.SetPrice(-5), domain.ErrInvalidPrice)

	_, err := d.Complete("PROD-1", "SHOP-1", time.Now())
	assert.ErrorIs(t, err, domain.ErrIncompleteDraft)

	require.NoError(t, d.SetPrice(15000))
	d.SetCategory(domain.Category{ID: "CAT-1", Name: "Fashion"})
	p, err := d.Complete("PROD-1", "SHOP-1", time.Now())
	require.NoError(t, err)
	assert.True(t, p.InStock)
	assert.Equal(t, domain.DefaultCurrency, p.Currency)
	assert.Equal(t, "SHOP-1", p.MerchantID)
}

func TestIsTransientMediaURL(t *testing.T) {
	assert.True(t, domain.IsTransientMediaURL("https://lookaside.fbsbx.com/whatsapp_business/attachments/?mid=1"))
	assert.True(t, domain.IsTransientMediaURL("https://mmg.whatsapp.net/v/t62/abc"))
	assert.True(t, domain.IsTransientMediaURL("https://scontent.xx.fbcdn.net/x.jpg"))
	assert.False(t, domain.IsTransientMediaURL("https://res.cloudinary.com/demo/image/upload/x.jpg"))
	assert.False(t, domain.IsTransientMediaURL("https://evilwhatsapp.net.example.com/x"))
	assert.False(t, domain.IsTransientMediaURL("not a url"))

	assert.True(t, domain.IsWebURL("http://example.com/a.png"))
	assert.False(t, domain.IsWebURL("ftp://example.com/a.png"))
}

func TestDistricts(t *testing.T) {
	cats := []domain.Category{
		{ID: "1", District: "Lilongwe"},
		{ID: "1", District: " Blantyre "},
		{ID: "2", District: "Lilongwe"},
		{ID: "3"},
	}
	assert.Equal(t, []string{"Lilongwe", "Blantyre"}, domain.Districts(cats))
}

func TestProductLocation(t *testing.T) {
	assert.Equal(t, "", domain.Product{}.Location())
	assert.Equal(t, "Zomba", domain.Product{District: "Zomba"}.Location())
	assert.True(t, strings.HasSuffix(domain.Product{District: "Zomba", Area: "Chinamwali"}.Location(), ", Chinamwali"))
}
