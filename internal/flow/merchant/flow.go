// Package merchant implements the Merchant Onboarding Flow: a dashboard for verified
// shop owners and a wizard that adds one product at a time to the catalog.
package merchant

import (
	"context"
	"strings"
	"time"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/paging"
	"github.com/aretw0/mercato/pkg/ports"
)

// DefaultVerified is the allow-list used when none is configured.
var DefaultVerified = []string{"265881234567", "265991460309", "265999999999"}

const (
	actAddProduct paging.Action = "add_product"
	actMyProducts paging.Action = "my_products"
	actMyOrders   paging.Action = "my_orders"
	actDashboard  paging.Action = "dashboard"
	actMainMenu   paging.Action = "main_menu"
	actSave       paging.Action = "save"
	actEdit       paging.Action = "edit"
	actContinue   paging.Action = "continue"
	actAddImages  paging.Action = "add_images"
)

func dashboardMenu() paging.Menu {
	return paging.NewMenu(0, false, actAddProduct, actMyProducts, actMyOrders)
}

func savedMenu() paging.Menu {
	return paging.NewMenu(0, false, actAddProduct, actDashboard, actMainMenu)
}

func confirmMenu() paging.Menu {
	return paging.NewMenu(0, false, actSave, actEdit)
}

func noImagesMenu() paging.Menu {
	return paging.NewMenu(0, false, actContinue, actAddImages)
}

// Flow is the Merchant Onboarding Flow.
type Flow struct {
	catalog  ports.Catalog
	verified map[string]bool
	currency string
	now      func() time.Time
}

// Option configures a Flow.
type Option func(*Flow)

// WithVerified replaces the allow-list of shop owner phone numbers.
func WithVerified(phones ...string) Option {
	return func(f *Flow) {
		f.verified = allowList(phones)
	}
}

// WithCurrency sets the currency code new products are priced in.
func WithCurrency(code string) Option {
	return func(f *Flow) {
		if code != "" {
			f.currency = code
		}
	}
}

// WithClock overrides the clock used for identifiers and dates.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		f.now = now
	}
}

// New creates the flow over the catalog store.
func New(catalog ports.Catalog, opts ...Option) *Flow {
	f := &Flow{
		catalog:  catalog,
		verified: allowList(DefaultVerified),
		currency: domain.DefaultCurrency,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func allowList(phones []string) map[string]bool {
	out := make(map[string]bool, len(phones))
	for _, p := range phones {
		if p = strings.TrimSpace(strings.TrimPrefix(p, "+")); p != "" {
			out[p] = true
		}
	}
	return out
}

// IsVerified reports whether phone may open the dashboard.
func (f *Flow) IsVerified(phone string) bool {
	return f.verified[phone]
}

// Start opens the dashboard. It creates no state and sends nothing for an
// unverified phone, and reports false.
func (f *Flow) Start(ctx context.Context, c *chat.Conversation) bool {
	if !f.IsVerified(c.Phone()) {
		c.Logger().Info("merchant: access denied")
		return false
	}
	c.Say(ctx, "🔄 *Loading Shop Owner Dashboard...*")
	c.Session.Mode = domain.ModeMerchant
	c.Session.Merchant = &domain.MerchantState{}
	f.showDashboard(ctx, c)
	return true
}

// HandleText interprets a reply at the current step.
// It returns false when the session is in no state the flow can interpret.
func (f *Flow) HandleText(ctx context.Context, c *chat.Conversation, text string) bool {
	m := c.Session.Merchant
	if m == nil {
		return false
	}
	text = strings.TrimSpace(text)
	c.Logger().Debug("merchant: handling input", "step", m.Step)

	if text == "0" {
		if m.Step == domain.StepDashboard {
			c.Say(ctx, "🔄 *Returning to main menu...*")
			c.Home(ctx)
			return true
		}
		f.cancel(ctx, c)
		return true
	}

	switch m.Step {
	case domain.StepDashboard:
		return f.onDashboard(ctx, c, text)
	case domain.StepAddProductCategory:
		return f.onCategory(ctx, c, text)
	case domain.StepAddProductName:
		return f.onName(ctx, c, text)
	case domain.StepAddProductDesc:
		return f.onDescription(ctx, c, text)
	case domain.StepAddProductPrice:
		return f.onPrice(ctx, c, text)
	case domain.StepAddProductImages:
		return f.onImagesText(ctx, c, text)
	case domain.StepConfirmProduct:
		return f.onConfirm(ctx, c, text)
	}
	return false
}

func (f *Flow) showDashboard(ctx context.Context, c *chat.Conversation) {
	move(c, domain.StepDashboard, nil)
	c.Say(ctx, "🏪 *SHOP OWNER DASHBOARD*\n\n"+
		"*Select an option:*\n\n"+
		"1. 📦 Add New Product\n"+
		"2. 👀 View My Products\n"+
		"3. 📊 My Orders\n"+
		"0. 🏠 Main Menu\n\n"+
		chat.TypeNumber)
}

func (f *Flow) onDashboard(ctx context.Context, c *chat.Conversation, text string) bool {
	m := c.Session.Merchant
	menu := dashboardMenu()
	if _, saved := m.Data.(domain.ProductSaved); saved {
		menu = savedMenu()
	}
	choice, ok := menu.Decode(text)
	if !ok {
		c.Say(ctx, "❌ *Invalid Option*\n\nPlease type 1, 2, 3, or 0.")
		return true
	}

	switch choice.Action {
	case actAddProduct:
		c.Say(ctx, "🔄 *Starting product creation...*")
		m.StartDraft()
		f.showCategories(ctx, c, "🆕 *ADD NEW PRODUCT*")
	case actMyProducts:
		c.Say(ctx, "📦 *MY PRODUCTS*\n\n🔧 *Feature Coming Soon!*\n\nWe're working on this feature. Stay tuned!\n\nType 0 to go back")
	case actMyOrders:
		c.Say(ctx, "📊 *MY ORDERS*\n\n🔧 *Feature Coming Soon!*\n\nWe're working on this feature. Stay tuned!\n\nType 0 to go back")
	case actDashboard:
		f.showDashboard(ctx, c)
	case actMainMenu:
		c.Home(ctx)
	}
	return true
}

// cancel discards the draft and leaves the flow.
func (f *Flow) cancel(ctx context.Context, c *chat.Conversation) {
	c.Logger().Info("merchant: cancelled", "step", c.Session.Merchant.Step)
	c.Say(ctx, "🔄 *Cancelling operation...*")
	c.Session.Reset()
	c.Say(ctx, "❌ *Operation cancelled.*\n\n"+chat.WelcomeMenu())
}

func move(c *chat.Conversation, step domain.MerchantStep, data domain.StepData) {
	c.Session.Merchant.Transition(step, data)
	c.Metrics().Transition("merchant", string(step))
}
