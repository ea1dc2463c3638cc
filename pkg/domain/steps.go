package domain

// BrowseStep is a state of the Catalog Discovery Flow.
type BrowseStep string

const (
	StepSelectCategory         BrowseStep = "select_category"
	StepSelectDistrictOrSearch BrowseStep = "select_district_or_search" // Single district: select it or search by name
	StepSelectDistrict         BrowseStep = "select_district"
	StepShowShops              BrowseStep = "show_shops"
	StepSearchShops            BrowseStep = "search_shops" // Free text
	StepShowShopSearchResults  BrowseStep = "show_shop_search_results"
	StepShowProducts           BrowseStep = "show_products"
	StepSearchProductsInShop   BrowseStep = "search_products_in_shop" // Free text
	StepShowProductResults     BrowseStep = "show_product_search_results"
	StepShowProductDetails     BrowseStep = "show_product_details"
	StepSearchProducts         BrowseStep = "search_products" // Free text, global
	StepShowGlobalResults      BrowseStep = "show_global_search_results"
	StepSelectLocation         BrowseStep = "select_location"
	StepShowDistrictProducts   BrowseStep = "show_district_products"
)

// IsSearch reports whether the step reads a free-text query instead of a menu number.
func (s BrowseStep) IsSearch() bool {
	switch s {
	case StepSearchShops, StepSearchProductsInShop, StepSearchProducts:
		return true
	}
	return false
}

// OrderStep is a state of the Ordering Flow.
type OrderStep string

const (
	StepCollectingQuantity       OrderStep = "collecting_quantity"
	StepCollectingNotes          OrderStep = "collecting_notes"
	StepCollectingDelivery       OrderStep = "collecting_delivery_address"
	StepCollectingAddressDetails OrderStep = "collecting_delivery_address_details"
	StepCollectingPayment        OrderStep = "collecting_payment_method"
	StepConfirmingOrder          OrderStep = "confirming_order"
	StepOrderComplete            OrderStep = "order_complete"
	StepViewingOrders            OrderStep = "viewing_orders"
	StepViewingOrder             OrderStep = "viewing_order"
)

// MerchantStep is a state of the Merchant Onboarding Flow.
type MerchantStep string

const (
	StepDashboard          MerchantStep = "verified"
	StepAddProductCategory MerchantStep = "add_product_category"
	StepAddProductName     MerchantStep = "add_product_name"
	StepAddProductDesc     MerchantStep = "add_product_description"
	StepAddProductPrice    MerchantStep = "add_product_price"
	StepAddProductImages   MerchantStep = "add_product_images"
	StepConfirmProduct     MerchantStep = "confirm_product"
)
