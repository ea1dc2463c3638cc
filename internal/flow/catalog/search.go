package catalog

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/paging"
)

func (f *Flow) promptGlobalSearch(ctx context.Context, c *chat.Conversation) {
	move(c, domain.StepSearchProducts, nil)
	c.Say(ctx, "🔍 *SEARCH PRODUCTS*\n\nType what you're looking for:\n\nExamples: dress, pizza, shoes, medicine\n\n*Type your search:*\n*Type 0 to go back*")
}

func (f *Flow) promptShopSearch(ctx context.Context, c *chat.Conversation) {
	move(c, domain.StepSearchShops, nil)
	c.Say(ctx, "🔍 *SEARCH SHOP BY NAME*\n\nType the name of the shop you're looking for:\n\n*Type 0 to go back*")
}

func (f *Flow) promptProductSearch(ctx context.Context, c *chat.Conversation) {
	move(c, domain.StepSearchProductsInShop, nil)
	c.Say(ctx, "🔍 *SEARCH PRODUCT BY NAME*\n\nType the name of the product you're looking for:\n\n*Type 0 to go back*")
}

// onQuery handles the free-text search steps. After a miss the step carries
// NoResults, and a reply that selects from the fallback menu is not a new query.
func (f *Flow) onQuery(ctx context.Context, c *chat.Conversation, text string) bool {
	b := c.Session.Browse
	if _, missed := b.Data.(domain.NoResults); missed {
		if choice, ok := noResultsMenu(b.Step).Decode(text); ok {
			return f.fallback(ctx, c, choice.Action)
		}
	}

	if text == "0" {
		return f.leaveSearch(ctx, c)
	}
	if utf8.RuneCountInString(text) < domain.MinQueryLength {
		move(c, b.Step, nil)
		c.Say(ctx, chat.QueryTooShort)
		return true
	}

	switch b.Step {
	case domain.StepSearchShops:
		return f.searchShops(ctx, c, text)
	case domain.StepSearchProductsInShop:
		return f.searchInShop(ctx, c, text)
	default:
		return f.searchGlobal(ctx, c, text)
	}
}

// leaveSearch goes back one level without performing a lookup.
func (f *Flow) leaveSearch(ctx context.Context, c *chat.Conversation) bool {
	b := c.Session.Browse
	switch b.Step {
	case domain.StepSearchShops:
		return f.showDistricts(ctx, c)
	case domain.StepSearchProductsInShop:
		return f.showProducts(ctx, c, b.ProductPage)
	default:
		return f.showCategories(ctx, c)
	}
}

func (f *Flow) fallback(ctx context.Context, c *chat.Conversation, action paging.Action) bool {
	b := c.Session.Browse
	switch action {
	case actNewSearch:
		switch b.Step {
		case domain.StepSearchShops:
			f.promptShopSearch(ctx, c)
		case domain.StepSearchProductsInShop:
			f.promptProductSearch(ctx, c)
		default:
			f.promptGlobalSearch(ctx, c)
		}
		return true
	case actBrowseDistricts:
		return f.showDistricts(ctx, c)
	case actAllProducts:
		return f.showProducts(ctx, c, b.ProductPage)
	case actBackToShops:
		return f.showShops(ctx, c, b.ShopPage)
	case actBrowseCategories:
		return f.showCategories(ctx, c)
	case actMainMenu:
		c.Home(ctx)
		return true
	}
	return false
}

// missed records a search that matched nothing and offers the fallback menu.
func (f *Flow) missed(ctx context.Context, c *chat.Conversation, headline, query string) {
	b := c.Session.Browse
	move(c, b.Step, domain.NoResults{Query: query})

	overrides := map[paging.Action]string{actBrowseCategories: "Browse categories"}
	switch b.Step {
	case domain.StepSearchShops, domain.StepSearchProductsInShop:
		overrides = map[paging.Action]string{actNewSearch: "Try different search"}
	default:
		overrides[actNewSearch] = "Search again"
	}
	c.Say(ctx, headline+"\n\n*Select:*\n"+options(noResultsMenu(b.Step), "", overrides))
}

func (f *Flow) searchShops(ctx context.Context, c *chat.Conversation, query string) bool {
	b := c.Session.Browse
	c.Sayf(ctx, "🔍 Searching for shops with name \"%s\"...", query)

	shops, err := f.catalog.SearchMerchants(ctx, b.CategoryID, query)
	if err != nil {
		c.Failed("catalog", "SearchMerchants", err)
		f.missed(ctx, c, "❌ Error searching for shops.", query)
		return true
	}
	if len(shops) == 0 {
		f.missed(ctx, c, fmt.Sprintf("❌ No shops found matching \"%s\".", query), query)
		return true
	}

	b.Merchants = shops
	b.ShopSearch = true
	b.Query = query
	return f.showShops(ctx, c, 1)
}

func (f *Flow) searchInShop(ctx context.Context, c *chat.Conversation, query string) bool {
	b := c.Session.Browse
	c.Sayf(ctx, "🔍 Searching for products with name \"%s\"...", query)

	products, err := f.catalog.SearchProductsInMerchant(ctx, b.MerchantID, query)
	if err != nil {
		c.Failed("catalog", "SearchProductsInMerchant", err)
		f.missed(ctx, c, "❌ Error searching for products.", query)
		return true
	}
	if len(products) == 0 {
		f.missed(ctx, c, fmt.Sprintf("❌ No products found matching \"%s\".", query), query)
		return true
	}

	b.Results = products
	b.ProductSearch = true
	b.Query = query
	return f.showResults(ctx, c, domain.StepShowProductResults, 1)
}

func (f *Flow) searchGlobal(ctx context.Context, c *chat.Conversation, query string) bool {
	b := c.Session.Browse
	c.Sayf(ctx, "🔍 Searching for \"%s\"...", query)

	products, err := f.catalog.SearchProducts(ctx, query)
	if err != nil {
		c.Failed("catalog", "SearchProducts", err)
		f.missed(ctx, c, "❌ Error searching.", query)
		return true
	}
	if len(products) == 0 {
		f.missed(ctx, c, fmt.Sprintf("❌ No products found for \"%s\".", query), query)
		return true
	}

	b.Results = products
	b.ProductSearch = false
	b.Query = query
	c.Sayf(ctx, "✅ Found %d product%s", len(products), chat.Plural(len(products)))
	return f.showResults(ctx, c, domain.StepShowGlobalResults, 1)
}

var resultLabels = map[domain.BrowseStep]map[paging.Action]string{
	domain.StepShowProductResults: {
		actSearchInShop: "New product search",
	},
	domain.StepShowGlobalResults: {
		actBrowseCategories: "Browse categories",
	},
	domain.StepShowDistrictProducts: {
		actBrowseCategories: "Browse categories",
	},
}

// showResults renders a page of BrowseState.Results: in-shop search results,
// global search results or the products of a district.
func (f *Flow) showResults(ctx context.Context, c *chat.Conversation, step domain.BrowseStep, page int) bool {
	b := c.Session.Browse
	p := paging.Paginate(len(b.Results), page, pageSize(step))
	b.ResultsPage = p.Number
	move(c, step, domain.ResultList{Page: p})

	items := paging.Slice(b.Results, p)
	var sb strings.Builder

	switch step {
	case domain.StepShowProductResults:
		c.Sayf(ctx, "📸 *%s - SEARCH RESULTS*\n\nFound %d product%s matching \"%s\". Showing products one by one. *Type the product number (1, 2, etc.) to view full details!*",
			strings.ToUpper(b.MerchantName), p.Total, chat.Plural(p.Total), b.Query)
		for i, product := range items {
			sendCard(ctx, c, i+1, product, false)
		}
		sb.WriteString("✅ *SEARCH COMPLETE*\n\n")
		fmt.Fprintf(&sb, "🔍 *Search:* \"%s\"\n", b.Query)
		fmt.Fprintf(&sb, "📦 *Found:* %d product%s\n", p.Total, chat.Plural(p.Total))
		fmt.Fprintf(&sb, "📄 *Page:* %d/%d\n\n", p.Number, p.TotalPages)
	default:
		preview := items
		if len(preview) > MaxPreviewImages {
			preview = preview[:MaxPreviewImages]
		}
		c.Sayf(ctx, "📸 *SEARCH RESULTS PREVIEW*\n\nShowing %d of the products on this page. *Type the product number (1, 2, etc.) to view full details!*", len(preview))
		for i, product := range preview {
			sendCard(ctx, c, i+1, product, true)
		}

		if step == domain.StepShowDistrictProducts {
			fmt.Fprintf(&sb, "📍 *PRODUCTS IN %s* (Page %d/%d)\n\n", strings.ToUpper(b.District), p.Number, p.TotalPages)
		} else {
			fmt.Fprintf(&sb, "🔍 *SEARCH RESULTS FOR \"%s\"* (Page %d/%d)\n\n", b.Query, p.Number, p.TotalPages)
		}
		fmt.Fprintf(&sb, "📦 *Total found:* %d product%s\n\n", p.Total, chat.Plural(p.Total))
		for i, product := range items {
			sb.WriteString(resultLine(i+1, product))
		}
	}

	sb.WriteString("*🎯 WHAT WOULD YOU LIKE TO DO?*\n\n")
	sb.WriteString(options(resultMenu(step, p), "📄 Next page of results", resultLabels[step]))
	sb.WriteString("\n\n*📝 TO VIEW FULL PRODUCT DETAILS:*\n")
	fmt.Fprintf(&sb, "*Type the product number (1-%d)*", len(items))
	c.Say(ctx, sb.String())
	return true
}

func (f *Flow) onResult(ctx context.Context, c *chat.Conversation, text string) bool {
	b := c.Session.Browse
	data, ok := b.Data.(domain.ResultList)
	if !ok {
		return false
	}
	step := b.Step
	choice, ok := choose(ctx, c, resultMenu(step, data.Page), text)
	if !ok {
		return true
	}

	switch choice.Action {
	case paging.ActionSelect:
		idx := data.Page.Index(choice.Option)
		if idx >= len(b.Results) {
			c.Say(ctx, "❌ Product not found.")
			return f.showResults(ctx, c, step, data.Page.Number)
		}
		return f.showDetail(ctx, c, domain.ProductDetail{Index: idx, FromResults: true, Return: step})
	case paging.ActionNextPage:
		return f.showResults(ctx, c, step, data.Page.Number+1)
	case actSearchInShop:
		f.promptProductSearch(ctx, c)
		return true
	case actNewSearch:
		f.promptGlobalSearch(ctx, c)
		return true
	case actAllProducts:
		return f.showProducts(ctx, c, b.ProductPage)
	case actBackToShops:
		return f.showShops(ctx, c, b.ShopPage)
	case actChangeDistrict:
		return f.showLocations(ctx, c)
	case actBrowseCategories:
		return f.showCategories(ctx, c)
	case actMainMenu:
		c.Home(ctx)
		return true
	}
	return false
}

func resultLine(n int, p domain.Product) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d. *%s*\n", n, p.Name)
	fmt.Fprintf(&sb, "   💰 %s\n", chat.Price(p.Currency, p.Price))
	if p.InStock {
		sb.WriteString("   ✅ In Stock\n")
	} else {
		sb.WriteString("   ❌ Out of Stock\n")
	}
	if p.MerchantName != "" {
		fmt.Fprintf(&sb, "   🏪 %s\n", p.MerchantName)
	}
	if loc := p.Location(); loc != "" {
		fmt.Fprintf(&sb, "   📍 %s\n", loc)
	}
	sb.WriteString("\n")
	return sb.String()
}
