package catalog

import (
	"strings"

	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/paging"
)

// Page sizes of the listings.
const (
	ShopPageSize     = 10
	ProductPageSize  = 5
	ResultPageSize   = 5 // in-shop search results
	GlobalPageSize   = 10
	DistrictPageSize = 5

	// MaxPreviewImages caps the images sent ahead of a result list.
	MaxPreviewImages = 3
)

const (
	actSearchProducts   paging.Action = "search_products"
	actBrowseLocation   paging.Action = "browse_location"
	actBrowseCategories paging.Action = "browse_categories"
	actMainMenu         paging.Action = "main_menu"
	actSelectDistrict   paging.Action = "select_district"
	actSearchShops      paging.Action = "search_shops"
	actChangeDistrict   paging.Action = "change_district"
	actBrowseDistricts  paging.Action = "browse_districts"
	actNewSearch        paging.Action = "new_search"
	actSearchInShop     paging.Action = "search_in_shop"
	actBackToShops      paging.Action = "back_to_shops"
	actAllProducts      paging.Action = "all_products"
	actBuy              paging.Action = "buy"
	actBack             paging.Action = "back"
)

var labels = map[paging.Action]string{
	actSearchProducts:   "🔍 Search Products",
	actBrowseLocation:   "📍 Browse by Location",
	actBrowseCategories: "Back to categories",
	actMainMenu:         "Main menu",
	actSearchShops:      "Search shop by name",
	actChangeDistrict:   "Change district",
	actBrowseDistricts:  "Browse by district",
	actNewSearch:        "New search",
	actSearchInShop:     "Search product by name",
	actBackToShops:      "Back to shops",
	actAllProducts:      "Browse all products",
}

// Every menu of the flow is built here, so that rendering a list and decoding the
// reply to it go through the same numbering.

func categoryMenu(count int) paging.Menu {
	return paging.NewMenu(count, false, actSearchProducts, actBrowseLocation, actMainMenu)
}

// districtMenu collapses to a fixed menu when the category has a single district.
func districtMenu(districts []string) paging.Menu {
	if len(districts) == 1 {
		return paging.NewMenu(0, false, actSelectDistrict, actSearchShops, actBrowseCategories, actMainMenu)
	}
	return paging.NewMenu(len(districts), false, actSearchShops, actBrowseCategories, actMainMenu)
}

func shopMenu(p paging.Page, search bool) paging.Menu {
	if search {
		return paging.ForPage(p, actNewSearch, actBrowseDistricts, actBrowseCategories, actMainMenu)
	}
	return paging.ForPage(p, actSearchShops, actChangeDistrict, actBrowseCategories, actMainMenu)
}

func productMenu(p paging.Page) paging.Menu {
	return paging.ForPage(p, actSearchInShop, actBackToShops, actBrowseCategories, actMainMenu)
}

func resultMenu(step domain.BrowseStep, p paging.Page) paging.Menu {
	switch step {
	case domain.StepShowProductResults:
		return paging.ForPage(p, actSearchInShop, actAllProducts, actBackToShops, actMainMenu)
	case domain.StepShowDistrictProducts:
		return paging.ForPage(p, actChangeDistrict, actBrowseCategories, actMainMenu)
	default:
		return paging.ForPage(p, actNewSearch, actBrowseCategories, actMainMenu)
	}
}

func detailMenu() paging.Menu {
	return paging.NewMenu(0, false, actBuy, actBack, actMainMenu)
}

func locationMenu(count int) paging.Menu {
	return paging.NewMenu(count, false, actBrowseCategories, actMainMenu)
}

// noResultsMenu is the fallback offered by a search step after a miss.
func noResultsMenu(step domain.BrowseStep) paging.Menu {
	switch step {
	case domain.StepSearchShops:
		return paging.NewMenu(0, false, actNewSearch, actBrowseDistricts, actBrowseCategories, actMainMenu)
	case domain.StepSearchProductsInShop:
		return paging.NewMenu(0, false, actNewSearch, actAllProducts, actBackToShops, actMainMenu)
	default:
		return paging.NewMenu(0, false, actNewSearch, actBrowseCategories, actMainMenu)
	}
}

func pageSize(step domain.BrowseStep) int {
	switch step {
	case domain.StepShowProductResults:
		return ResultPageSize
	case domain.StepShowDistrictProducts:
		return DistrictPageSize
	default:
		return GlobalPageSize
	}
}

// options renders the non-item options of m. next labels the next-page option;
// overrides replace the default label of an action.
func options(m paging.Menu, next string, overrides map[paging.Action]string) string {
	lines := m.Lines(func(a paging.Action) string {
		if a == paging.ActionNextPage {
			return next
		}
		if s, ok := overrides[a]; ok {
			return s
		}
		return labels[a]
	})
	return strings.Join(lines, "\n")
}
