package memory_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/aretw0/mercato/pkg/adapters/memory"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Catalog = (*memory.Catalog)(nil)

func TestDemoCatalog_Categories(t *testing.T) {
	c := memory.DemoCatalog()
	ctx := context.Background()

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3, "repeated category rows collapse by id")
	assert.Equal(t, "fashion", cats[0].ID)

	districts, err := c.DistrictsByCategory(ctx, "fashion")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lilongwe", "Blantyre"}, districts)

	districts, err = c.DistrictsByCategory(ctx, "food")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lilongwe"}, districts)

	all, err := c.AllDistricts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lilongwe", "Blantyre", "Zomba"}, all)
}

func TestCatalog_MerchantLookups(t *testing.T) {
	c := memory.DemoCatalog()
	ctx := context.Background()

	shops, err := c.MerchantsByCategoryAndDistrict(ctx, "fashion", "Blantyre")
	require.NoError(t, err)
	assert.Len(t, shops, 2)

	shops, err = c.MerchantsByCategoryAndDistrict(ctx, "food", "Zomba")
	require.NoError(t, err)
	assert.Empty(t, shops, "category is not offered in that district")

	shops, err = c.MerchantsByDistrict(ctx, "lilongwe")
	require.NoError(t, err)
	assert.Len(t, shops, 3)

	shops, err = c.SearchMerchants(ctx, "fashion", "SHOE")
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "Limbe Shoe Palace", shops[0].Name)
}

func TestCatalog_ProductsAreEnriched(t *testing.T) {
	c := memory.DemoCatalog()
	ctx := context.Background()

	products, err := c.ProductsByMerchant(ctx, "SHOP-00000003")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Mama's Kitchen", products[0].MerchantName)
	assert.Equal(t, "Lilongwe, City Centre", products[0].Location())

	found, err := c.SearchProductsInMerchant(ctx, "SHOP-00000003", "pizza")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Pepperoni Pizza", found[0].Name)

	found, err = c.SearchProducts(ctx, "relief")
	require.NoError(t, err)
	require.Len(t, found, 1, "description matches too")
	assert.Equal(t, "City Pharmacy", found[0].MerchantName)
}

func TestCatalog_Orders(t *testing.T) {
	c := memory.NewCatalog(memory.Fixture{})
	ctx := context.Background()

	_, err := c.CreateOrder(ctx, domain.Order{ID: "ORD-1", CustomerPhone: "265881234567", OrderDate: "2026-01-01"})
	require.NoError(t, err)
	_, err = c.CreateOrder(ctx, domain.Order{ID: "ORD-2", CustomerPhone: "265881234567", OrderDate: "2026-02-01"})
	require.NoError(t, err)
	_, err = c.CreateOrder(ctx, domain.Order{ID: "ORD-3", CustomerPhone: "265881234567", OrderDate: "2026-02-01"})
	require.NoError(t, err)
	_, err = c.CreateOrder(ctx, domain.Order{ID: "ORD-4", CustomerPhone: "265999999999", OrderDate: "2026-03-01"})
	require.NoError(t, err)

	orders, err := c.CustomerOrders(ctx, "265881234567")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "ORD-3", orders[0].ID)
	assert.Equal(t, "ORD-2", orders[1].ID)
	assert.Equal(t, "ORD-1", orders[2].ID)

	require.NoError(t, c.UpdateOrderStatus(ctx, "ORD-1", domain.OrderShipped))
	assert.Equal(t, domain.OrderShipped, c.Orders()[0].Status)

	err = c.UpdateOrderStatus(ctx, "ORD-404", domain.OrderShipped)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalog_MerchantByPhone(t *testing.T) {
	c := memory.NewCatalog(memory.Fixture{})
	ctx := context.Background()

	_, err := c.MerchantByPhone(ctx, "265881234567")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = c.CreateMerchant(ctx, domain.Merchant{ID: "SHOP-1", Phone: "265881234567"})
	require.NoError(t, err)

	m, err := c.MerchantByPhone(ctx, "265881234567")
	require.NoError(t, err)
	assert.Equal(t, "SHOP-1", m.ID)
}

func TestCatalog_FailOn(t *testing.T) {
	c := memory.DemoCatalog()
	ctx := context.Background()
	boom := errors.New("boom")

	c.FailOn("CreateOrder", boom)
	_, err := c.CreateOrder(ctx, domain.Order{ID: "ORD-1"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, c.Orders())

	c.FailOn("CreateOrder", nil)
	_, err = c.CreateOrder(ctx, domain.Order{ID: "ORD-1"})
	assert.NoError(t, err)
}

func TestParseCatalog(t *testing.T) {
	c, err := memory.ParseCatalog([]byte(`
categories:
  - id: tech
    name: Electronics
    district: Mzuzu
merchants:
  - id: S1
    name: Gadget Hub
    phone: "265990000000"
    category_id: tech
products:
  - id: P1
    name: Phone charger
    price: 4000
    merchant_id: S1
`))
	require.NoError(t, err)

	products, err := c.ProductsByMerchant(context.Background(), "S1")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, domain.DefaultCurrency, products[0].Currency)
	assert.Equal(t, "Mzuzu", products[0].District)

	_, err = memory.ParseCatalog([]byte("categories: [oops"))
	assert.Error(t, err)
}

func TestRecorderAndConsole(t *testing.T) {
	ctx := context.Background()
	r := memory.NewRecorder()

	require.NoError(t, r.SendText(ctx, "265881234567", "hello"))
	require.NoError(t, r.SendImage(ctx, "265881234567", "https://x/y.jpg", "caption"))

	sent := r.Sent()
	require.Len(t, sent, 2)
	assert.False(t, sent[0].IsImage())
	assert.True(t, r.Last().IsImage())

	r.FailWith(errors.New("offline"))
	assert.Error(t, r.SendText(ctx, "265881234567", "lost"))
	assert.Len(t, r.Sent(), 2)

	var buf bytes.Buffer
	console := memory.NewConsole(&buf)
	require.NoError(t, console.SendText(ctx, "me", "Welcome"))
	assert.Contains(t, buf.String(), "Welcome")
}
