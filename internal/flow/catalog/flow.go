// Package catalog implements the Catalog Discovery Flow: category, district, shop,
// product and product detail, the shop-name, in-shop and global searches, and
// browsing by location.
//
// Every listing is rendered from a cached snapshot in the session's BrowseState and
// records the step data its reply is decoded against.
package catalog

import (
	"context"
	"strings"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/paging"
	"github.com/aretw0/mercato/pkg/ports"
)

// OrderStarter takes over when the customer buys a product.
// It reports whether the ordering flow started.
type OrderStarter interface {
	StartOrder(ctx context.Context, c *chat.Conversation, product domain.Product, merchantID string) bool
}

// Flow is the Catalog Discovery Flow.
type Flow struct {
	catalog ports.CatalogReader
	orders  OrderStarter
}

// Option configures a Flow.
type Option func(*Flow)

// WithOrderStarter sets the flow that takes over on "buy".
func WithOrderStarter(o OrderStarter) Option {
	return func(f *Flow) {
		f.orders = o
	}
}

// New creates the flow over a catalog reader.
func New(catalog ports.CatalogReader, opts ...Option) *Flow {
	f := &Flow{catalog: catalog}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// HandOffTo sets the ordering flow after construction, since the two flows refer to each other.
func (f *Flow) HandOffTo(o OrderStarter) {
	f.orders = o
}

// StartCategories enters the flow at the category list.
func (f *Flow) StartCategories(ctx context.Context, c *chat.Conversation) bool {
	c.Session.Mode = domain.ModeBrowsing
	c.Session.Browse = domain.NewBrowseState(domain.StepSelectCategory)
	c.Say(ctx, "🔄 Loading categories...")
	return f.showCategories(ctx, c)
}

// StartSearch enters the flow at the global product search prompt.
func (f *Flow) StartSearch(ctx context.Context, c *chat.Conversation) bool {
	c.Session.Mode = domain.ModeBrowsing
	c.Session.Browse = domain.NewBrowseState(domain.StepSearchProducts)
	f.promptGlobalSearch(ctx, c)
	return true
}

// StartLocations enters the flow at the district list of location browsing.
func (f *Flow) StartLocations(ctx context.Context, c *chat.Conversation) bool {
	c.Session.Mode = domain.ModeBrowsing
	c.Session.Browse = domain.NewBrowseState(domain.StepSelectLocation)
	return f.showLocations(ctx, c)
}

// Resume returns a customer coming back from the ordering flow to the listing
// the product was picked from.
func (f *Flow) Resume(ctx context.Context, c *chat.Conversation) bool {
	b := c.Session.Browse
	if b == nil {
		return f.StartCategories(ctx, c)
	}
	c.Session.Mode = domain.ModeBrowsing
	if d, ok := b.Data.(domain.ProductDetail); ok {
		return f.back(ctx, c, d)
	}
	return f.showCategories(ctx, c)
}

// HandleText interprets a reply at the current step.
// It returns false when the session is in no state the flow can interpret.
func (f *Flow) HandleText(ctx context.Context, c *chat.Conversation, text string) bool {
	b := c.Session.Browse
	if b == nil {
		return false
	}
	text = strings.TrimSpace(text)
	c.Logger().Debug("catalog: handling input", "step", b.Step)

	switch b.Step {
	case domain.StepSelectCategory:
		return f.onCategory(ctx, c, text)
	case domain.StepSelectDistrictOrSearch, domain.StepSelectDistrict:
		return f.onDistrict(ctx, c, text)
	case domain.StepShowShops, domain.StepShowShopSearchResults:
		return f.onShop(ctx, c, text)
	case domain.StepShowProducts:
		return f.onProduct(ctx, c, text)
	case domain.StepShowProductResults, domain.StepShowGlobalResults, domain.StepShowDistrictProducts:
		return f.onResult(ctx, c, text)
	case domain.StepShowProductDetails:
		return f.onDetail(ctx, c, text)
	case domain.StepSearchShops, domain.StepSearchProductsInShop, domain.StepSearchProducts:
		return f.onQuery(ctx, c, text)
	case domain.StepSelectLocation:
		return f.onLocation(ctx, c, text)
	}
	return false
}

// move records the step and the data describing what is about to be rendered.
func move(c *chat.Conversation, step domain.BrowseStep, data domain.StepData) {
	c.Session.Browse.Transition(step, data)
	c.Metrics().Transition("catalog", string(step))
}

// choose decodes a reply against m. An invalid reply is answered with the valid range.
func choose(ctx context.Context, c *chat.Conversation, m paging.Menu, reply string) (paging.Choice, bool) {
	choice, ok := m.Decode(reply)
	if !ok {
		c.Say(ctx, chat.OutOfRange(m.Max()))
	}
	return choice, ok
}
