package ports

import (
	"context"

	"github.com/aretw0/mercato/pkg/domain"
)

// CatalogReader reads the remote catalog.
// Lookups that match nothing return an empty slice and a nil error; an error means the
// store could not be queried.
type CatalogReader interface {
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	Categories(ctx context.Context) ([]domain.Category, error)
	// DistrictsByCategory returns the distinct districts a category is available in.
	DistrictsByCategory(ctx context.Context, categoryID string) ([]string, error)
	// AllDistricts returns every distinct district of the catalog.
	AllDistricts(ctx context.Context) ([]string, error)

	MerchantsByCategoryAndDistrict(ctx context.Context, categoryID, district string) ([]domain.Merchant, error)
	// MerchantsByDistrict returns every merchant whose category is tagged with district.
	MerchantsByDistrict(ctx context.Context, district string) ([]domain.Merchant, error)
	SearchMerchants(ctx context.Context, categoryID, query string) ([]domain.Merchant, error)

	// ProductsByMerchant returns a merchant's products, each carrying the merchant's display fields.
	ProductsByMerchant(ctx context.Context, merchantID string) ([]domain.Product, error)
	SearchProductsInMerchant(ctx context.Context, merchantID, query string) ([]domain.Product, error)
	// SearchProducts searches the whole catalog, enriching results with merchant and location.
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)

	// CustomerOrders returns a customer's orders, newest first.
	CustomerOrders(ctx context.Context, customerPhone string) ([]domain.Order, error)
}

// CatalogWriter writes to the remote catalog.
type CatalogWriter interface {
	// CreateMerchant stores a merchant and returns it as stored.
	CreateMerchant(ctx context.Context, m domain.Merchant) (domain.Merchant, error)
	// MerchantByPhone returns domain.ErrNotFound when no merchant uses phone.
	MerchantByPhone(ctx context.Context, phone string) (domain.Merchant, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	// UpdateOrderStatus returns domain.ErrNotFound for an unknown order.
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

// Catalog is the full data store collaborator.
type Catalog interface {
	CatalogReader
	CatalogWriter
}
