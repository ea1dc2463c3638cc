package memory

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/mercato/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed demo_catalog.yaml
var demoCatalog []byte

// Fixture is the YAML layout of a seeded catalog.
type Fixture struct {
	Categories []domain.Category `yaml:"categories"`
	Merchants  []domain.Merchant `yaml:"merchants"`
	Products   []domain.Product  `yaml:"products"`
	Orders     []domain.Order    `yaml:"orders"`
}

// Catalog implements ports.Catalog in memory. Safe for concurrent use.
// It backs the chat console and the flow tests.
type Catalog struct {
	mu         sync.RWMutex
	categories []domain.Category
	merchants  []domain.Merchant
	products   []domain.Product
	orders     []domain.Order
	failures   map[string]error
}

// NewCatalog creates a catalog seeded with the fixture.
func NewCatalog(f Fixture) *Catalog {
	return &Catalog{
		categories: append([]domain.Category(nil), f.Categories...),
		merchants:  append([]domain.Merchant(nil), f.Merchants...),
		products:   append([]domain.Product(nil), f.Products...),
		orders:     append([]domain.Order(nil), f.Orders...),
		failures:   make(map[string]error),
	}
}

// ParseCatalog decodes a YAML fixture.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog fixture: %w", err)
	}
	return NewCatalog(f), nil
}

// LoadCatalog reads a YAML fixture from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog fixture: %w", err)
	}
	return ParseCatalog(data)
}

// DemoCatalog returns a small built-in catalog.
func DemoCatalog() *Catalog {
	c, err := ParseCatalog(demoCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// FailOn makes the named operation (a method name, e.g. "CreateOrder") return err.
// A nil err clears the failure.
func (c *Catalog) FailOn(op string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failures, op)
		return
	}
	c.failures[op] = err
}

func (c *Catalog) fail(op string) error {
	if err, ok := c.failures[op]; ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Orders returns a copy of every stored order.
func (c *Catalog) Orders() []domain.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Order(nil), c.orders...)
}

// Products returns a copy of every stored product.
func (c *Catalog) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Product(nil), c.products...)
}

// Merchants returns a copy of every stored merchant.
func (c *Catalog) Merchants() []domain.Merchant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Merchant(nil), c.merchants...)
}

func (c *Catalog) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fail("Ping")
}

func (c *Catalog) Categories(ctx context.Context) ([]domain.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.fail("Categories"); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []domain.Category
	for _, cat := range c.categories {
		if seen[cat.ID] {
			continue
		}
		seen[cat.ID] = true
		out = append(out, cat)
	}
	return out, nil
}

func (c *Catalog) DistrictsByCategory(ctx context.Context, categoryID string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.fail("DistrictsByCategory"); err != nil {
		return nil, err
	}
	var matching []domain.Category
	for _, cat := range c.categories {
		if cat.ID == categoryID {
			matching = append(matching, cat)
		}
	}
	return domain.Districts(matching), nil
}

func (c *Catalog) AllDistricts(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.fail("AllDistricts"); err != nil {
		return nil, err
	}
	return domain.Districts(c.categories), nil
}

func (c *Catalog) MerchantsByCategoryAndDistrict(ctx context.Context, categoryID, district string) ([]domain.Merchant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.fail("MerchantsByCategoryAndDistrict"); err != nil {
		return nil, err
	}
	if !c.categoryIn(categoryID, district) {
		return nil, nil
	}
	var out []domain.Merchant
	for _, m := range c.merchants {
		if m.CategoryID == categoryID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *Catalog) MerchantsByDistrict(ctx context.Context, district string) ([]domain.Merchant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.fail("MerchantsByDistrict"); err != nil {
		return nil, err
	}
	var out []domain.Merchant
	for _, m := range c.merchants {
		if c.categoryIn(m.CategoryID, district) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *Catalog) SearchMerchants(ctx context.Context, categoryID, query string) ([]domain.Merchant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.fail("SearchMerchants"); err != nil {
		return nil, err
	}
	var out []domain.Merchant
	for _, m := range c.merchants {
		if m.CategoryID == categoryID && contains(m.Name, query) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *Catalog) ProductsByMerchant(ctx context.Context, merchantID string) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.fail("ProductsByMerchant"); err != nil {
		return nil, err
	}
	return c.productsOf(merchantID, ""), nil
}

func (c *Catalog) SearchProductsInMerchant(ctx context.Context, merchantID, query string) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.fail("SearchProductsInMerchant"); err != nil {
		return nil, err
	}
	return c.productsOf(merchantID, query), nil
}

func (c *Catalog) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.fail("SearchProducts"); err != nil {
		return nil, err
	}
	var out []domain.Product
	for _, p := range c.products {
		if contains(p.Name, query) || contains(p.Description, query) {
			out = append(out, c.enrich(p))
		}
	}
	return out, nil
}

func (c *Catalog) CustomerOrders(ctx context.Context, customerPhone string) ([]domain.Order, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.fail("CustomerOrders"); err != nil {
		return nil, err
	}
	var out []domain.Order
	// Walk backwards so that orders placed on the same day keep newest first.
	for i := len(c.orders) - 1; i >= 0; i-- {
		if c.orders[i].CustomerPhone == customerPhone {
			out = append(out, c.orders[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderDate > out[j].OrderDate })
	return out, nil
}

func (c *Catalog) CreateMerchant(ctx context.Context, m domain.Merchant) (domain.Merchant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail("CreateMerchant"); err != nil {
		return domain.Merchant{}, err
	}
	c.merchants = append(c.merchants, m)
	return m, nil
}

func (c *Catalog) MerchantByPhone(ctx context.Context, phone string) (domain.Merchant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.fail("MerchantByPhone"); err != nil {
		return domain.Merchant{}, err
	}
	for _, m := range c.merchants {
		if m.Phone == phone {
			return m, nil
		}
	}
	return domain.Merchant{}, domain.ErrNotFound
}

func (c *Catalog) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail("CreateProduct"); err != nil {
		return domain.Product{}, err
	}
	c.products = append(c.products, p)
	return p, nil
}

func (c *Catalog) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail("CreateOrder"); err != nil {
		return domain.Order{}, err
	}
	c.orders = append(c.orders, o)
	return o, nil
}

func (c *Catalog) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fail("UpdateOrderStatus"); err != nil {
		return err
	}
	for i := range c.orders {
		if c.orders[i].ID == orderID {
			c.orders[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
}

// categoryIn reports whether any record of the category is tagged with district.
func (c *Catalog) categoryIn(categoryID, district string) bool {
	for _, cat := range c.categories {
		if cat.ID == categoryID && strings.EqualFold(strings.TrimSpace(cat.District), strings.TrimSpace(district)) {
			return true
		}
	}
	return false
}

func (c *Catalog) productsOf(merchantID, query string) []domain.Product {
	var out []domain.Product
	for _, p := range c.products {
		if p.MerchantID != merchantID {
			continue
		}
		if query != "" && !contains(p.Name, query) && !contains(p.Description, query) {
			continue
		}
		out = append(out, c.enrich(p))
	}
	return out
}

// enrich fills the display fields derived from the merchant and its category.
func (c *Catalog) enrich(p domain.Product) domain.Product {
	for _, m := range c.merchants {
		if m.ID != p.MerchantID {
			continue
		}
		p.MerchantName = m.Name
		p.MerchantPhone = m.Phone
		for _, cat := range c.categories {
			if cat.ID == m.CategoryID {
				p.District = cat.District
				p.Area = cat.Area
				break
			}
		}
		break
	}
	if p.Currency == "" {
		p.Currency = domain.DefaultCurrency
	}
	return p
}

func contains(s, query string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(query)))
}
