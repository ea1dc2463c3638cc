// Package order implements the Ordering Flow: quantity, notes, delivery, payment and
// confirmation of a single-product order, and the customer's order history.
package order

import (
	"context"
	"strings"
	"time"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/ports"
)

// BrowseResumer brings the customer back to the catalog.
type BrowseResumer interface {
	// Resume re-renders the listing the ordered product was picked from.
	Resume(ctx context.Context, c *chat.Conversation) bool
	// StartCategories opens the category list.
	StartCategories(ctx context.Context, c *chat.Conversation) bool
}

// Flow is the Ordering Flow.
type Flow struct {
	catalog ports.Catalog
	browse  BrowseResumer
	now     func() time.Time
}

// Option configures a Flow.
type Option func(*Flow)

// WithBrowseResumer sets the flow used by "browse more products".
func WithBrowseResumer(b BrowseResumer) Option {
	return func(f *Flow) {
		f.browse = b
	}
}

// WithClock overrides the clock used for order ids and dates.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		f.now = now
	}
}

// New creates the flow over the catalog store.
func New(catalog ports.Catalog, opts ...Option) *Flow {
	f := &Flow{
		catalog: catalog,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ReturnTo sets the catalog flow after construction.
func (f *Flow) ReturnTo(b BrowseResumer) {
	f.browse = b
}

// StartOrder opens a draft for one unit of product and asks for the quantity.
// The session's BrowseState is left untouched.
func (f *Flow) StartOrder(ctx context.Context, c *chat.Conversation, product domain.Product, merchantID string) bool {
	if product.ID == "" || merchantID == "" {
		c.Logger().Warn("order: product without identifiers", "product", product.Name, "merchant", merchantID)
		c.Say(ctx, "❌ Error starting order.")
		return false
	}

	c.Session.Mode = domain.ModeOrdering
	c.Session.Order = &domain.OrderState{
		Draft: domain.NewOrderDraft(c.Phone(), product, merchantID),
	}
	move(c, domain.StepCollectingQuantity, nil)

	d := c.Session.Order.Draft
	c.Sayf(ctx, "🛒 *ORDER %s*\n\nPrice: %s each\n\nHow many would you like to order?\n\n*Type a number:* 1, 2, 3, etc.\n*Type 0 to cancel*",
		d.ProductName, chat.Price(d.Currency, d.UnitPrice))
	return true
}

// HandleText interprets a reply at the current step.
// It returns false when the session is in no state the flow can interpret.
func (f *Flow) HandleText(ctx context.Context, c *chat.Conversation, text string) bool {
	o := c.Session.Order
	if o == nil {
		return false
	}
	text = strings.TrimSpace(text)
	c.Logger().Debug("order: handling input", "step", o.Step)

	switch o.Step {
	case domain.StepCollectingQuantity, domain.StepCollectingNotes, domain.StepCollectingDelivery,
		domain.StepCollectingAddressDetails, domain.StepCollectingPayment, domain.StepConfirmingOrder:
		if o.Draft == nil {
			return false
		}
		if text == "0" {
			f.cancel(ctx, c)
			return true
		}
		return f.collect(ctx, c, text)
	case domain.StepOrderComplete:
		return f.onComplete(ctx, c, text)
	case domain.StepViewingOrders:
		return f.onOrders(ctx, c, text)
	case domain.StepViewingOrder:
		return f.onOrder(ctx, c, text)
	}
	return false
}

// cancel drops the draft and returns to the welcome menu.
func (f *Flow) cancel(ctx context.Context, c *chat.Conversation) {
	c.Logger().Info("order: cancelled", "step", c.Session.Order.Step)
	c.Session.Reset()
	c.Say(ctx, "❌ Order cancelled.\n\n"+chat.WelcomeMenu())
}

func move(c *chat.Conversation, step domain.OrderStep, data domain.StepData) {
	c.Session.Order.Transition(step, data)
	c.Metrics().Transition("order", string(step))
}
