package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/paging"
)

// showCategories renders the category list, loading it on first use.
func (f *Flow) showCategories(ctx context.Context, c *chat.Conversation) bool {
	b := c.Session.Browse
	if len(b.Categories) == 0 {
		categories, err := f.catalog.Categories(ctx)
		if err != nil {
			c.Failed("catalog", "Categories", err)
			c.Say(ctx, "❌ Error loading categories.")
			return false
		}
		if len(categories) == 0 {
			c.Say(ctx, "❌ No product categories available.")
			return false
		}
		b.Categories = categories
	}

	move(c, domain.StepSelectCategory, domain.CategoryMenu{Count: len(b.Categories)})

	var sb strings.Builder
	sb.WriteString("🛍️ *SELECT CATEGORY*\n\n")
	sb.WriteString("Choose a category by number:\n\n")
	for i, cat := range b.Categories {
		fmt.Fprintf(&sb, "%d. %s %s\n", i+1, cat.DisplayIcon(), cat.Name)
	}
	sb.WriteString("\n")
	sb.WriteString(options(categoryMenu(len(b.Categories)), "", map[paging.Action]string{
		actMainMenu: "🏠 Main Menu",
	}))
	sb.WriteString("\n\n" + chat.TypeNumber)
	c.Say(ctx, sb.String())
	return true
}

func (f *Flow) onCategory(ctx context.Context, c *chat.Conversation, text string) bool {
	b := c.Session.Browse
	data, ok := b.Data.(domain.CategoryMenu)
	if !ok {
		return false
	}
	choice, ok := choose(ctx, c, categoryMenu(data.Count), text)
	if !ok {
		return true
	}

	switch choice.Action {
	case paging.ActionSelect:
		idx := choice.Option - 1
		if idx >= len(b.Categories) {
			c.Say(ctx, "❌ Category not found.")
			return f.showCategories(ctx, c)
		}
		cat := b.Categories[idx]
		b.CategoryID = cat.ID
		b.CategoryName = cat.Name
		c.Sayf(ctx, "📂 *%s*\n\n🔄 Loading districts where this category is available...", strings.ToUpper(cat.Name))
		return f.showDistricts(ctx, c)
	case actSearchProducts:
		f.promptGlobalSearch(ctx, c)
		return true
	case actBrowseLocation:
		return f.showLocations(ctx, c)
	case actMainMenu:
		c.Home(ctx)
		return true
	}
	return false
}

// showDistricts renders the districts of the selected category.
// A single district collapses into a fixed four-option menu.
func (f *Flow) showDistricts(ctx context.Context, c *chat.Conversation) bool {
	b := c.Session.Browse
	districts, err := f.catalog.DistrictsByCategory(ctx, b.CategoryID)
	if err != nil {
		c.Failed("catalog", "DistrictsByCategory", err)
		c.Say(ctx, "❌ Error loading districts. Please try again.")
		return true
	}
	if len(districts) == 0 {
		c.Sayf(ctx, "❌ No districts found for %s.", b.CategoryName)
		return f.showCategories(ctx, c)
	}

	b.ShopSearch = false
	menu := districtMenu(districts)
	var sb strings.Builder
	fmt.Fprintf(&sb, "📍 *%s - SELECT DISTRICT*\n\n", strings.ToUpper(b.CategoryName))

	if len(districts) == 1 {
		move(c, domain.StepSelectDistrictOrSearch, domain.DistrictMenu{Districts: districts})
		fmt.Fprintf(&sb, "Only one district available: *%s*\n\n", districts[0])
		sb.WriteString("*Select an option:*\n\n")
		sb.WriteString(options(menu, "", map[paging.Action]string{
			actSelectDistrict: "Select " + districts[0],
		}))
	} else {
		move(c, domain.StepSelectDistrict, domain.DistrictMenu{Districts: districts})
		sb.WriteString("Choose a district by number:\n\n")
		for i, d := range districts {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, d)
		}
		sb.WriteString("\n")
		sb.WriteString(options(menu, "", nil))
	}
	sb.WriteString("\n\n" + chat.TypeNumber)
	c.Say(ctx, sb.String())
	return true
}

func (f *Flow) onDistrict(ctx context.Context, c *chat.Conversation, text string) bool {
	data, ok := c.Session.Browse.Data.(domain.DistrictMenu)
	if !ok || len(data.Districts) == 0 {
		return false
	}
	choice, ok := choose(ctx, c, districtMenu(data.Districts), text)
	if !ok {
		return true
	}

	switch choice.Action {
	case paging.ActionSelect:
		return f.loadShops(ctx, c, data.Districts[choice.Option-1])
	case actSelectDistrict:
		return f.loadShops(ctx, c, data.Districts[0])
	case actSearchShops:
		f.promptShopSearch(ctx, c)
		return true
	case actBrowseCategories:
		return f.showCategories(ctx, c)
	case actMainMenu:
		c.Home(ctx)
		return true
	}
	return false
}

// loadShops fetches the merchants of the selected category in district.
func (f *Flow) loadShops(ctx context.Context, c *chat.Conversation, district string) bool {
	b := c.Session.Browse
	c.Sayf(ctx, "🏪 *Loading shops in %s...*", district)

	shops, err := f.catalog.MerchantsByCategoryAndDistrict(ctx, b.CategoryID, district)
	if err != nil {
		c.Failed("catalog", "MerchantsByCategoryAndDistrict", err)
		c.Say(ctx, "❌ Error loading shops. Please try again.")
		return true
	}
	if len(shops) == 0 {
		c.Sayf(ctx, "❌ No shops found in %s for this category.", district)
		return f.showDistricts(ctx, c)
	}

	b.District = district
	b.Merchants = shops
	b.ShopSearch = false
	b.Query = ""
	return f.showShops(ctx, c, 1)
}

// showShops renders a page of the cached merchants, either a district listing or
// name search results.
func (f *Flow) showShops(ctx context.Context, c *chat.Conversation, page int) bool {
	b := c.Session.Browse
	p := paging.Paginate(len(b.Merchants), page, ShopPageSize)
	b.ShopPage = p.Number

	step, next := domain.StepShowShops, "Next page of shops"
	if b.ShopSearch {
		step, next = domain.StepShowShopSearchResults, "Next page of results"
	}
	move(c, step, domain.ShopList{Page: p})

	var sb strings.Builder
	if b.ShopSearch {
		fmt.Fprintf(&sb, "🔍 *SHOP SEARCH RESULTS FOR \"%s\"* (Page %d/%d)\n\n", b.Query, p.Number, p.TotalPages)
		fmt.Fprintf(&sb, "🏪 Found %d shop%s\n\n", p.Total, chat.Plural(p.Total))
	} else {
		fmt.Fprintf(&sb, "🏪 *SHOPS IN %s* (Page %d/%d)\n\n", strings.ToUpper(b.District), p.Number, p.TotalPages)
	}
	for i, m := range paging.Slice(b.Merchants, p) {
		sb.WriteString(shopCard(i+1, m))
	}
	sb.WriteString("*Select an option:*\n")
	sb.WriteString(options(shopMenu(p, b.ShopSearch), next, map[paging.Action]string{
		actNewSearch: "New shop search",
	}))
	sb.WriteString("\n\n" + chat.TypeNumber)
	c.Say(ctx, sb.String())
	return true
}

func (f *Flow) onShop(ctx context.Context, c *chat.Conversation, text string) bool {
	b := c.Session.Browse
	data, ok := b.Data.(domain.ShopList)
	if !ok {
		return false
	}
	choice, ok := choose(ctx, c, shopMenu(data.Page, b.ShopSearch), text)
	if !ok {
		return true
	}

	switch choice.Action {
	case paging.ActionSelect:
		idx := data.Page.Index(choice.Option)
		if idx >= len(b.Merchants) {
			c.Say(ctx, "❌ Shop not found.")
			return f.showShops(ctx, c, data.Page.Number)
		}
		return f.openShop(ctx, c, b.Merchants[idx])
	case paging.ActionNextPage:
		return f.showShops(ctx, c, data.Page.Number+1)
	case actSearchShops, actNewSearch:
		f.promptShopSearch(ctx, c)
		return true
	case actChangeDistrict, actBrowseDistricts:
		return f.showDistricts(ctx, c)
	case actBrowseCategories:
		return f.showCategories(ctx, c)
	case actMainMenu:
		c.Home(ctx)
		return true
	}
	return false
}

// openShop loads a merchant's products and renders the first page.
func (f *Flow) openShop(ctx context.Context, c *chat.Conversation, m domain.Merchant) bool {
	b := c.Session.Browse
	c.Sayf(ctx, "🛒 *Loading products from %s...*", m.Name)

	products, err := f.catalog.ProductsByMerchant(ctx, m.ID)
	if err != nil {
		c.Failed("catalog", "ProductsByMerchant", err)
		c.Say(ctx, "❌ Error loading products. Please try again.")
		return true
	}
	if len(products) == 0 {
		c.Sayf(ctx, "❌ No products found in %s.", m.Name)
		return f.showShops(ctx, c, b.ShopPage)
	}

	b.MerchantID = m.ID
	b.MerchantName = m.Name
	b.Products = products
	b.ProductSearch = false
	return f.showProducts(ctx, c, 1)
}

func shopCard(n int, m domain.Merchant) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d. *%s*\n", n, m.Name)
	fmt.Fprintf(&sb, "   📞 %s\n", m.Phone)
	address := m.Address
	if address == "" {
		address = "Address not specified"
	}
	fmt.Fprintf(&sb, "   📍 %s\n", address)
	if m.Rating > 0 {
		fmt.Fprintf(&sb, "   ⭐ %g/5\n", m.Rating)
	}
	sb.WriteString("\n")
	return sb.String()
}
