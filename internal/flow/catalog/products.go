package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/paging"
)

const divider = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// shortDescription is the longest description shown inline in a listing.
const shortDescription = 100

var productListLabels = map[paging.Action]string{
	actSearchInShop:     "🔍 Search product by name",
	actBackToShops:      "🏪 Back to shops",
	actBrowseCategories: "📂 Back to categories",
	actMainMenu:         "🏠 Main menu",
}

// showProducts renders a page of the selected shop's products one card at a time.
func (f *Flow) showProducts(ctx context.Context, c *chat.Conversation, page int) bool {
	b := c.Session.Browse
	p := paging.Paginate(len(b.Products), page, ProductPageSize)
	b.ProductPage = p.Number
	move(c, domain.StepShowProducts, domain.ProductList{Page: p})

	items := paging.Slice(b.Products, p)
	c.Sayf(ctx, "📸 *%s - BROWSE PRODUCTS*\n\nI'll show you %d product%s one by one. *Type the product number (1, 2, etc.) to view full details and buy!*",
		strings.ToUpper(b.MerchantName), len(items), chat.Plural(len(items)))
	for i, product := range items {
		sendCard(ctx, c, i+1, product, false)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ *%d PRODUCT%s SHOWN*\n\n", len(items), strings.ToUpper(chat.Plural(len(items))))
	fmt.Fprintf(&sb, "📦 *Total products:* %d\n", p.Total)
	fmt.Fprintf(&sb, "📄 *Page:* %d/%d\n\n", p.Number, p.TotalPages)
	sb.WriteString("*🎯 WHAT WOULD YOU LIKE TO DO?*\n\n")
	sb.WriteString(options(productMenu(p), "📄 Next page of products", productListLabels))
	sb.WriteString("\n\n*📝 TO VIEW FULL PRODUCT DETAILS:*\n")
	fmt.Fprintf(&sb, "*Type the product number (1-%d)*", len(items))
	c.Say(ctx, sb.String())
	return true
}

func (f *Flow) onProduct(ctx context.Context, c *chat.Conversation, text string) bool {
	b := c.Session.Browse
	data, ok := b.Data.(domain.ProductList)
	if !ok {
		return false
	}
	choice, ok := choose(ctx, c, productMenu(data.Page), text)
	if !ok {
		return true
	}

	switch choice.Action {
	case paging.ActionSelect:
		idx := data.Page.Index(choice.Option)
		if idx >= len(b.Products) {
			c.Say(ctx, "❌ Product not found.")
			return f.showProducts(ctx, c, data.Page.Number)
		}
		return f.showDetail(ctx, c, domain.ProductDetail{Index: idx, Return: domain.StepShowProducts})
	case paging.ActionNextPage:
		return f.showProducts(ctx, c, data.Page.Number+1)
	case actSearchInShop:
		f.promptProductSearch(ctx, c)
		return true
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

// detailed returns the product a detail view refers to.
func detailed(b *domain.BrowseState, d domain.ProductDetail) (domain.Product, bool) {
	list := b.Products
	if d.FromResults {
		list = b.Results
	}
	if d.Index < 0 || d.Index >= len(list) {
		return domain.Product{}, false
	}
	return list[d.Index], true
}

// seller returns the merchant selling p, from the cached listing or the product's own fields.
func seller(b *domain.BrowseState, p domain.Product) domain.Merchant {
	if m, ok := b.FindMerchant(p.MerchantID); ok {
		return m
	}
	return domain.Merchant{ID: p.MerchantID, Name: p.MerchantName, Phone: p.MerchantPhone}
}

// showDetail sends every image of the product followed by its full description.
func (f *Flow) showDetail(ctx context.Context, c *chat.Conversation, d domain.ProductDetail) bool {
	b := c.Session.Browse
	product, ok := detailed(b, d)
	if !ok {
		return false
	}
	move(c, domain.StepShowProductDetails, d)

	images := len(product.Images)
	if images > 0 {
		c.Sayf(ctx, "📸 *LOADING %d IMAGE%s OF \"%s\"*", images, strings.ToUpper(chat.Plural(images)), product.Name)
		for i, url := range product.Images {
			caption := fmt.Sprintf("Image %d/%d", i+1, images)
			if i == 0 {
				caption = fmt.Sprintf("*%s* - %s", product.Name, caption)
			}
			c.Show(ctx, url, caption)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🛍️ *%s*\n\n", strings.ToUpper(product.Name))
	sb.WriteString(divider + "\n\n")
	fmt.Fprintf(&sb, "💰 *PRICE:* %s\n", chat.Price(product.Currency, product.Price))
	if product.InStock {
		sb.WriteString("📦 *AVAILABILITY:* ✅ IN STOCK\n\n")
	} else {
		sb.WriteString("📦 *AVAILABILITY:* ❌ OUT OF STOCK\n\n")
	}
	if product.Description != "" {
		fmt.Fprintf(&sb, "📄 *DESCRIPTION:*\n%s\n\n", product.Description)
	}
	if shop := seller(b, product); shop.Name != "" {
		sb.WriteString("🏪 *SOLD BY:*\n")
		fmt.Fprintf(&sb, "   • %s\n", shop.Name)
		if shop.Phone != "" {
			fmt.Fprintf(&sb, "   • 📞 %s\n", shop.Phone)
		}
		if shop.Address != "" {
			fmt.Fprintf(&sb, "   • 📍 %s\n", shop.Address)
		}
		sb.WriteString("\n")
	}
	if loc := product.Location(); loc != "" {
		fmt.Fprintf(&sb, "📍 *LOCATION:* %s\n\n", loc)
	}
	if images > 0 {
		fmt.Fprintf(&sb, "📸 *%d IMAGE%s SHOWN ABOVE*\n\n", images, strings.ToUpper(chat.Plural(images)))
	}
	sb.WriteString(divider + "\n\n")
	sb.WriteString("*🎯 WHAT WOULD YOU LIKE TO DO?*\n\n")
	sb.WriteString(options(detailMenu(), "", map[paging.Action]string{
		actBuy:      "🛒 *BUY THIS PRODUCT*",
		actBack:     "🔙 *Back to products list*",
		actMainMenu: "🏠 *Main menu*",
	}))
	sb.WriteString("\n\n*Type the number (1, 2, or 3) to continue:*")
	c.Say(ctx, sb.String())
	return true
}

func (f *Flow) onDetail(ctx context.Context, c *chat.Conversation, text string) bool {
	b := c.Session.Browse
	data, ok := b.Data.(domain.ProductDetail)
	if !ok {
		return false
	}
	product, ok := detailed(b, data)
	if !ok {
		return false
	}
	choice, ok := choose(ctx, c, detailMenu(), text)
	if !ok {
		return true
	}

	switch choice.Action {
	case actBuy:
		return f.buy(ctx, c, product)
	case actBack:
		return f.back(ctx, c, data)
	case actMainMenu:
		c.Home(ctx)
		return true
	}
	return false
}

// buy hands the product over to the ordering flow. BrowseState is left as it is so
// the customer can come back to the same listing.
func (f *Flow) buy(ctx context.Context, c *chat.Conversation, product domain.Product) bool {
	b := c.Session.Browse
	shop := seller(b, product)
	if shop.ID == "" {
		c.Say(ctx, "❌ Seller information not available.")
		return true
	}

	c.Sayf(ctx, "🛒 Starting order for *%s*...", product.Name)
	if f.orders != nil && f.orders.StartOrder(ctx, c, product, shop.ID) {
		return true
	}

	// Without an ordering flow the customer can still reach the seller directly.
	var sb strings.Builder
	fmt.Fprintf(&sb, "🛒 *PURCHASE %s*\n\n", product.Name)
	fmt.Fprintf(&sb, "*Price:* %s\n\n", chat.Price(product.Currency, product.Price))
	sb.WriteString("*Contact Seller:*\n")
	fmt.Fprintf(&sb, "👤 %s\n", shop.Name)
	fmt.Fprintf(&sb, "📞 %s\n", shop.Phone)
	sb.WriteString("\n💡 *How to buy:*\n")
	sb.WriteString("1. Contact the seller\n2. Confirm availability\n3. Arrange payment\n4. Pick up or delivery")
	c.Say(ctx, sb.String())
	return true
}

// back re-renders the listing a detail view was opened from.
func (f *Flow) back(ctx context.Context, c *chat.Conversation, d domain.ProductDetail) bool {
	b := c.Session.Browse
	switch d.Return {
	case domain.StepShowProducts:
		return f.showProducts(ctx, c, b.ProductPage)
	case domain.StepShowProductResults, domain.StepShowGlobalResults, domain.StepShowDistrictProducts:
		return f.showResults(ctx, c, d.Return, b.ResultsPage)
	}
	return f.showCategories(ctx, c)
}

// sendCard sends one product of a listing: its first image, then a short text card.
// withShop adds the seller and location, for listings that span several shops.
func sendCard(ctx context.Context, c *chat.Conversation, n int, p domain.Product, withShop bool) {
	if len(p.Images) > 0 {
		c.Show(ctx, p.Images[0], fmt.Sprintf("*[PRODUCT %d]* %s", n, p.Name))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "*%d. %s*\n", n, p.Name)
	fmt.Fprintf(&sb, "💰 *Price:* %s\n", chat.Price(p.Currency, p.Price))
	fmt.Fprintf(&sb, "📦 *Stock:* %s\n", stock(p))
	if len(p.Images) == 0 {
		sb.WriteString("📷 *Image:* No image available\n")
	}
	if withShop {
		if p.MerchantName != "" {
			fmt.Fprintf(&sb, "🏪 *Shop:* %s\n", p.MerchantName)
		}
		if loc := p.Location(); loc != "" {
			fmt.Fprintf(&sb, "📍 *Location:* %s\n", loc)
		}
	} else if p.Description != "" && len(p.Description) < shortDescription {
		fmt.Fprintf(&sb, "📄 *Description:* %s\n", p.Description)
	}
	fmt.Fprintf(&sb, "\n*To view full details:* Type *%d*", n)
	c.Say(ctx, sb.String())
}

func stock(p domain.Product) string {
	if p.InStock {
		return "✅ Available"
	}
	return "❌ Out of Stock"
}
