package airtable

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/mercato/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// enrichConcurrency bounds the lookups issued while enriching search results.
const enrichConcurrency = 4

// ErrEmptyCatalog is returned by Ping when the base has no categories.
var ErrEmptyCatalog = errors.New("airtable: catalog has no categories")

func (c *Client) Ping(ctx context.Context) error {
	cats, err := c.categoryRows(ctx, "")
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		return ErrEmptyCatalog
	}
	return nil
}

func (c *Client) categoryRows(ctx context.Context, formula string) ([]domain.Category, error) {
	recs, err := c.query(ctx, TableCategories, formula, "")
	if err != nil {
		return nil, err
	}
	cats := make([]domain.Category, 0, len(recs))
	for _, rec := range recs {
		var cat domain.Category
		if err := decode(rec, &cat); err != nil {
			return nil, err
		}
		cat.RecordID = rec.ID
		cats = append(cats, cat)
	}
	return cats, nil
}

// Categories returns one entry per category id. A category offered in several
// districts has one row per district in the table.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := c.categoryRows(ctx, "")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []domain.Category
	for _, cat := range rows {
		if seen[cat.ID] {
			continue
		}
		seen[cat.ID] = true
		out = append(out, cat)
	}
	return out, nil
}

func (c *Client) DistrictsByCategory(ctx context.Context, categoryID string) ([]string, error) {
	rows, err := c.categoryRows(ctx, eq("id", categoryID))
	if err != nil {
		return nil, err
	}
	return domain.Districts(rows), nil
}

func (c *Client) AllDistricts(ctx context.Context) ([]string, error) {
	rows, err := c.categoryRows(ctx, "")
	if err != nil {
		return nil, err
	}
	return domain.Districts(rows), nil
}

func (c *Client) merchants(ctx context.Context, formula string) ([]domain.Merchant, error) {
	recs, err := c.query(ctx, TableMerchants, formula, "")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Merchant, 0, len(recs))
	for _, rec := range recs {
		var m domain.Merchant
		if err := decode(rec, &m); err != nil {
			return nil, err
		}
		m.RecordID = rec.ID
		out = append(out, m)
	}
	return out, nil
}

func (c *Client) MerchantsByCategoryAndDistrict(ctx context.Context, categoryID, district string) ([]domain.Merchant, error) {
	rows, err := c.categoryRows(ctx, and(eq("district", district), eq("id", categoryID)))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return c.merchants(ctx, eq("categoryId", categoryID))
}

func (c *Client) MerchantsByDistrict(ctx context.Context, district string) ([]domain.Merchant, error) {
	rows, err := c.categoryRows(ctx, eq("district", district))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var terms []string
	for _, cat := range rows {
		if cat.ID == "" || seen[cat.ID] {
			continue
		}
		seen[cat.ID] = true
		terms = append(terms, eq("categoryId", cat.ID))
	}
	if len(terms) == 0 {
		return nil, nil
	}
	return c.merchants(ctx, or(terms...))
}

func (c *Client) SearchMerchants(ctx context.Context, categoryID, query string) ([]domain.Merchant, error) {
	return c.merchants(ctx, and(eq("categoryId", categoryID), search("name", query)))
}

// findMerchant resolves a merchant by its own id, falling back to its phone.
func (c *Client) findMerchant(ctx context.Context, merchantID string) (domain.Merchant, bool, error) {
	found, err := c.merchants(ctx, eq("id", merchantID))
	if err != nil {
		return domain.Merchant{}, false, err
	}
	if len(found) == 0 {
		found, err = c.merchants(ctx, eq("phone", merchantID))
		if err != nil {
			return domain.Merchant{}, false, err
		}
	}
	if len(found) == 0 {
		return domain.Merchant{}, false, nil
	}
	return found[0], true, nil
}

func (c *Client) productRows(ctx context.Context, formula string) ([]domain.Product, [][]string, error) {
	recs, err := c.query(ctx, TableProducts, formula, "")
	if err != nil {
		return nil, nil, err
	}
	products := make([]domain.Product, 0, len(recs))
	links := make([][]string, 0, len(recs))
	for _, rec := range recs {
		var p domain.Product
		if err := decode(rec, &p); err != nil {
			return nil, nil, err
		}
		p.RecordID = rec.ID
		p.Images = attachmentURLs(rec.Fields, "images")
		if _, ok := rec.Fields["inStock"]; !ok {
			p.InStock = true
		}
		if p.Currency == "" {
			p.Currency = domain.DefaultCurrency
		}
		products = append(products, p)
		links = append(links, linkedIDs(rec.Fields, "shopOwnerId"))
	}
	return products, links, nil
}

// locate returns the district and area of a category.
func (c *Client) locate(ctx context.Context, categoryID string) (string, string, error) {
	if categoryID == "" {
		return "", "", nil
	}
	rows, err := c.categoryRows(ctx, eq("id", categoryID))
	if err != nil || len(rows) == 0 {
		return "", "", err
	}
	return rows[0].District, rows[0].Area, nil
}

func withMerchant(p domain.Product, m domain.Merchant, district, area string) domain.Product {
	p.MerchantID = m.ID
	p.MerchantName = m.Name
	p.MerchantPhone = m.Phone
	p.District = district
	p.Area = area
	return p
}

func (c *Client) ProductsByMerchant(ctx context.Context, merchantID string) ([]domain.Product, error) {
	m, ok, err := c.findMerchant(ctx, merchantID)
	if err != nil || !ok {
		return nil, err
	}
	products, _, err := c.productRows(ctx, linkedTo("shopOwnerId", m.RecordID))
	if err != nil {
		return nil, err
	}
	district, area, err := c.locate(ctx, m.CategoryID)
	if err != nil {
		c.logger.Warn("category lookup failed", "category", m.CategoryID, "err", err)
	}
	for i := range products {
		products[i] = withMerchant(products[i], m, district, area)
	}
	return products, nil
}

func (c *Client) SearchProductsInMerchant(ctx context.Context, merchantID, query string) ([]domain.Product, error) {
	all, err := c.ProductsByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	var out []domain.Product
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

// SearchProducts matches name, description and specifications, then resolves each
// result's merchant and location. Enrichment failures leave the display fields empty.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	products, links, err := c.productRows(ctx, or(
		search("name", query),
		search("description", query),
		search("specifications", query),
	))
	if err != nil {
		return nil, err
	}

	type shopInfo struct {
		merchant       domain.Merchant
		district, area string
	}
	var (
		mu      sync.Mutex
		shops   = make(map[string]shopInfo)
		pending = make(map[string]bool)
		recIDs  []string
	)
	for _, l := range links {
		if len(l) > 0 && !pending[l[0]] {
			pending[l[0]] = true
			recIDs = append(recIDs, l[0])
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for _, recID := range recIDs {
		g.Go(func() error {
			found, err := c.merchants(gctx, recordIs(recID))
			if err != nil || len(found) == 0 {
				c.logger.Warn("merchant lookup failed", "record", recID, "err", err)
				return nil
			}
			info := shopInfo{merchant: found[0]}
			info.district, info.area, err = c.locate(gctx, found[0].CategoryID)
			if err != nil {
				c.logger.Warn("category lookup failed", "category", found[0].CategoryID, "err", err)
			}
			mu.Lock()
			shops[recID] = info
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range products {
		if len(links[i]) == 0 {
			continue
		}
		if info := shops[links[i][0]]; info.merchant.ID != "" {
			products[i] = withMerchant(products[i], info.merchant, info.district, info.area)
		}
	}
	return products, nil
}

// productNameUnknown is shown for orders whose product name is not stored.
const productNameUnknown = "Product Name Not Available"

func (c *Client) CustomerOrders(ctx context.Context, customerPhone string) ([]domain.Order, error) {
	recs, err := c.query(ctx, TableOrders, eq("customerPhone", customerPhone), "orderDate")
	if err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(recs))
	for _, rec := range recs {
		fields := make(map[string]any, len(rec.Fields))
		for k, v := range rec.Fields {
			fields[k] = v
		}
		// Linked-record fields are read separately.
		delete(fields, "productId")
		delete(fields, "shopOwnerId")

		var o domain.Order
		if err := decode(record{ID: rec.ID, Fields: fields}, &o); err != nil {
			return nil, err
		}
		if ids := linkedIDs(rec.Fields, "productId"); len(ids) > 0 {
			o.ProductID = ids[0]
		}
		if ids := linkedIDs(rec.Fields, "shopOwnerId"); len(ids) > 0 {
			o.MerchantID = ids[0]
		}
		if o.ProductName == "" {
			o.ProductName = productNameUnknown
		}
		if o.Currency == "" {
			o.Currency = domain.DefaultCurrency
		}
		o.Status = domain.OrderStatus(strings.ToLower(string(o.Status)))
		if o.Status == "" {
			o.Status = domain.OrderPending
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (c *Client) CreateMerchant(ctx context.Context, m domain.Merchant) (domain.Merchant, error) {
	recID, err := c.create(ctx, TableMerchants, map[string]any{
		"id":          m.ID,
		"name":        m.Name,
		"phone":       m.Phone,
		"email":       m.Email,
		"address":     m.Address,
		"categoryId":  m.CategoryID,
		"description": "Auto-created shop owner via WhatsApp",
	})
	if err != nil {
		return domain.Merchant{}, fmt.Errorf("create merchant: %w", err)
	}
	m.RecordID = recID
	return m, nil
}

func (c *Client) MerchantByPhone(ctx context.Context, phone string) (domain.Merchant, error) {
	found, err := c.merchants(ctx, eq("phone", phone))
	if err != nil {
		return domain.Merchant{}, err
	}
	if len(found) == 0 {
		return domain.Merchant{}, domain.ErrNotFound
	}
	return found[0], nil
}

func (c *Client) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	m, ok, err := c.findMerchant(ctx, p.MerchantID)
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		return domain.Product{}, fmt.Errorf("merchant %s: %w", p.MerchantID, domain.ErrNotFound)
	}

	attachments := make([]map[string]string, 0, len(p.Images))
	for _, img := range p.Images {
		if domain.IsWebURL(img) {
			attachments = append(attachments, map[string]string{"url": strings.TrimSpace(img)})
		}
	}
	currency := p.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	recID, err := c.create(ctx, TableProducts, map[string]any{
		"id":             p.ID,
		"name":           p.Name,
		"shopOwnerId":    []string{m.RecordID},
		"description":    p.Description,
		"price":          p.Price,
		"currency":       currency,
		"images":         attachments,
		"inStock":        p.InStock,
		"specifications": "Added via WhatsApp",
		"createdDate":    p.CreatedDate,
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	p.RecordID = recID
	p.Currency = currency
	return p, nil
}

func (c *Client) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	products, links, err := c.productRows(ctx, eq("id", o.ProductID))
	if err != nil {
		return domain.Order{}, err
	}
	if len(products) == 0 {
		return domain.Order{}, fmt.Errorf("product %s: %w", o.ProductID, domain.ErrNotFound)
	}
	if len(links[0]) == 0 {
		return domain.Order{}, fmt.Errorf("product %s has no merchant", o.ProductID)
	}

	_, err = c.create(ctx, TableOrders, map[string]any{
		"id":              o.ID,
		"customerPhone":   o.CustomerPhone,
		"productId":       []string{products[0].RecordID},
		"shopOwnerId":     []string{links[0][0]},
		"quantity":        o.Quantity,
		"totalPrice":      o.TotalPrice,
		"status":          capitalize(string(o.Status)),
		"orderDate":       o.OrderDate,
		"notes":           o.Notes,
		"deliveryAddress": o.DeliveryAddress,
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	recs, err := c.query(ctx, TableOrders, eq("id", orderID), "")
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	return c.update(ctx, TableOrders, recs[0].ID, map[string]any{
		"status": capitalize(string(status)),
	})
}
