package domain

import "strings"

const (
	// DefaultCurrency is the currency code used for new products.
	DefaultCurrency = "MWK"

	// MaxProductImages caps the images attached to one product.
	MaxProductImages = 3

	// MinNameLength is the shortest accepted product name, in characters.
	MinNameLength = 2

	// MinQueryLength is the shortest accepted search query, in characters.
	MinQueryLength = 2
)

// Category groups merchants. District and Area tag it for geo-scoped browsing.
type Category struct {
	ID          string `json:"id" yaml:"id" mapstructure:"id"`
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Icon        string `json:"icon,omitempty" yaml:"icon" mapstructure:"icon"`
	Description string `json:"description,omitempty" yaml:"description" mapstructure:"description"`
	District    string `json:"district,omitempty" yaml:"district" mapstructure:"district"`
	Area        string `json:"area,omitempty" yaml:"area" mapstructure:"location"`

	// RecordID is the store's own record key, when it differs from ID.
	RecordID string `json:"record_id,omitempty" yaml:"-" mapstructure:"-"`
}

// DisplayIcon returns the category icon, or a folder when none is set.
func (c Category) DisplayIcon() string {
	if c.Icon == "" {
		return "📁"
	}
	return c.Icon
}

// Merchant is a shop owner selling in one category.
type Merchant struct {
	ID         string  `json:"id" yaml:"id" mapstructure:"id"`
	Name       string  `json:"name" yaml:"name" mapstructure:"name"`
	Phone      string  `json:"phone" yaml:"phone" mapstructure:"phone"`
	Email      string  `json:"email,omitempty" yaml:"email" mapstructure:"email"`
	Address    string  `json:"address,omitempty" yaml:"address" mapstructure:"address"`
	CategoryID string  `json:"category_id" yaml:"category_id" mapstructure:"categoryId"`
	Rating     float64 `json:"rating,omitempty" yaml:"rating" mapstructure:"rating"`

	RecordID string `json:"record_id,omitempty" yaml:"-" mapstructure:"-"`
}

// Product is a catalog item. District, Area and the merchant fields are derived
// at read time for display and are not part of the stored record.
type Product struct {
	ID          string   `json:"id" yaml:"id" mapstructure:"id"`
	Name        string   `json:"name" yaml:"name" mapstructure:"name"`
	Description string   `json:"description,omitempty" yaml:"description" mapstructure:"description"`
	Price       float64  `json:"price" yaml:"price" mapstructure:"price"`
	Currency    string   `json:"currency" yaml:"currency" mapstructure:"currency"`
	Images      []string `json:"images,omitempty" yaml:"images" mapstructure:"-"`
	InStock     bool     `json:"in_stock" yaml:"in_stock" mapstructure:"inStock"`
	MerchantID  string   `json:"merchant_id" yaml:"merchant_id" mapstructure:"-"`
	CategoryID  string   `json:"category_id,omitempty" yaml:"category_id" mapstructure:"categoryId"`
	CreatedDate string   `json:"created_date,omitempty" yaml:"created_date" mapstructure:"createdDate"`

	District      string `json:"district,omitempty" yaml:"-" mapstructure:"-"`
	Area          string `json:"area,omitempty" yaml:"-" mapstructure:"-"`
	MerchantName  string `json:"merchant_name,omitempty" yaml:"-" mapstructure:"-"`
	MerchantPhone string `json:"merchant_phone,omitempty" yaml:"-" mapstructure:"-"`

	RecordID string `json:"record_id,omitempty" yaml:"-" mapstructure:"-"`
}

// Location renders "District, Area", or an empty string when no district is known.
func (p Product) Location() string {
	if p.District == "" {
		return ""
	}
	if p.Area == "" {
		return p.District
	}
	return p.District + ", " + p.Area
}

// Districts returns the distinct, non-empty districts of the given categories in first-seen order.
func Districts(categories []Category) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range categories {
		d := strings.TrimSpace(c.District)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
