// Package dispatch routes every inbound customer event to exactly one flow.
//
// The Dispatcher owns the session lifecycle: it loads or creates the session under
// its lock, answers the global keywords, switches on the session mode and resets
// to the welcome menu whenever a flow reports an input it cannot interpret.
package dispatch

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aretw0/mercato/internal/chat"
	"github.com/aretw0/mercato/internal/flow/catalog"
	"github.com/aretw0/mercato/internal/flow/merchant"
	"github.com/aretw0/mercato/internal/flow/order"
	"github.com/aretw0/mercato/internal/logging"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/observability"
	"github.com/aretw0/mercato/pkg/ports"
	"github.com/aretw0/mercato/pkg/session"
)

const (
	shopOwnerDenied = "❌ *Shop Owner Access Denied*\n\nYou are not registered as a shop owner.\n\nPlease contact admin to register your shop."
	accessDenied    = "❌ *Access Denied*\n\nYou are not registered as a shop owner.\n\nPlease contact admin to register your shop.\n\n"
	inputRejected   = "❌ *Message Not Accepted*\n\nPlease send a shorter text message."
)

// Dispatcher implements the webhook's Dispatcher over the three flows.
type Dispatcher struct {
	sessions *session.Manager
	store    ports.Catalog
	out      ports.Messenger
	resolver ports.MediaResolver
	host     ports.MediaHost

	browse    *catalog.Flow
	orders    *order.Flow
	merchants *merchant.Flow

	verified []string
	currency string
	maxInput int
	now      func() time.Time
	logger   *slog.Logger
	metrics  *observability.Metrics

	ready atomic.Bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithMetrics sets the collectors. Nil disables metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithMediaResolver sets how inbound image handles become URLs.
// Without one every image is answered with an image error.
func WithMediaResolver(r ports.MediaResolver) Option {
	return func(d *Dispatcher) {
		d.resolver = r
	}
}

// WithMediaHost sets where merchant images are persisted.
// Without one resolved URLs are used as they are.
func WithMediaHost(h ports.MediaHost) Option {
	return func(d *Dispatcher) {
		d.host = h
	}
}

// WithVerifiedMerchants replaces merchant.DefaultVerified.
func WithVerifiedMerchants(phones ...string) Option {
	return func(d *Dispatcher) {
		d.verified = phones
	}
}

// WithCurrency sets the currency code of products added by shop owners.
func WithCurrency(code string) Option {
	return func(d *Dispatcher) {
		d.currency = code
	}
}

// WithMaxInputSize caps inbound text, overriding MaxInputSize.
func WithMaxInputSize(n int) Option {
	return func(d *Dispatcher) {
		d.maxInput = n
	}
}

// WithClock overrides the clock used for order and product identifiers.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// New wires the flows over the catalog store and the outbound messenger.
func New(sessions *session.Manager, store ports.Catalog, out ports.Messenger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sessions: sessions,
		store:    store,
		out:      out,
		verified: merchant.DefaultVerified,
		now:      time.Now,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.orders = order.New(store, order.WithClock(d.now))
	d.browse = catalog.New(store, catalog.WithOrderStarter(d.orders))
	d.orders.ReturnTo(d.browse)
	d.merchants = merchant.New(store,
		merchant.WithVerified(d.verified...),
		merchant.WithCurrency(d.currency),
		merchant.WithClock(d.now),
	)
	return d
}

// Dispatch handles one inbound event. Every outcome is a reply to the sender;
// nothing is returned to the transport.
func (d *Dispatcher) Dispatch(ctx context.Context, in domain.Inbound) {
	start := time.Now()
	defer d.metrics.ObserveDispatch(start)
	d.metrics.Inbound(string(in.Kind))

	logger := d.logger.With("event", in.ID)
	if in.From == "" {
		logger.Warn("dropping event without sender", "kind", in.Kind)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while dispatching", "phone", in.From, "panic", r)
			d.send(ctx, logger, in.From, chat.SystemError)
		}
	}()

	if !d.catalogReady(ctx, logger) {
		d.send(ctx, logger, in.From, chat.SystemSetup)
		return
	}

	err := d.sessions.Update(ctx, in.From, func(ctx context.Context, sess *domain.Session, created bool) error {
		c := chat.New(sess, d.out, chat.WithLogger(logger), chat.WithMetrics(d.metrics))
		if created {
			c.Logger().Info("new session")
			c.Say(ctx, chat.WelcomeMenu())
			return nil
		}
		switch in.Kind {
		case domain.KindImage:
			d.onImage(ctx, c, in.MediaID)
		default:
			d.onText(ctx, c, in.Text)
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to update session", "phone", in.From, "err", err)
		d.metrics.CollaboratorFailure("session", "update")
		d.send(ctx, logger, in.From, chat.SystemError)
	}
}

// catalogReady pings the catalog store until it answers once.
func (d *Dispatcher) catalogReady(ctx context.Context, logger *slog.Logger) bool {
	if d.ready.Load() {
		return true
	}
	if err := d.store.Ping(ctx); err != nil {
		logger.Warn("catalog store not reachable", "err", err)
		d.metrics.CollaboratorFailure("catalog", "Ping")
		return false
	}
	logger.Info("catalog store reachable")
	d.ready.Store(true)
	return true
}

func (d *Dispatcher) send(ctx context.Context, logger *slog.Logger, to, body string) {
	if err := d.out.SendText(ctx, to, body); err != nil {
		logger.Warn("failed to send text", "phone", to, "err", err)
		d.metrics.CollaboratorFailure("messenger", "send_text")
	}
}

func (d *Dispatcher) onText(ctx context.Context, c *chat.Conversation, raw string) {
	text, err := SanitizeInput(raw, d.maxInput)
	if err != nil {
		c.Logger().Warn("rejected input", "err", err)
		c.Say(ctx, inputRejected)
		return
	}
	keyword := strings.ToLower(strings.TrimSpace(text))

	switch keyword {
	case "menu", "home", "main":
		c.Home(ctx)
		return
	case "help", "support":
		c.Say(ctx, chat.HelpMenu())
		return
	case "shop", "owner", "dashboard":
		if !d.merchants.Start(ctx, c) {
			c.Say(ctx, shopOwnerDenied)
		}
		return
	case "0":
		if !deliversZero(c.Session) {
			c.Home(ctx)
			return
		}
	}

	var handled bool
	switch c.Session.Mode {
	case domain.ModeMerchant:
		handled = d.merchants.HandleText(ctx, c, text)
	case domain.ModeOrdering:
		handled = d.orders.HandleText(ctx, c, text)
	case domain.ModeBrowsing:
		handled = d.browse.HandleText(ctx, c, text)
	default:
		handled = d.onMenu(ctx, c, keyword)
	}
	if !handled {
		c.Logger().Info("input not interpretable, resetting", "mode", c.Session.Mode, "step", c.Session.Step())
		c.Home(ctx)
	}
}

// deliversZero reports whether "0" belongs to the active flow rather than to the
// global reset: search prompts go back, ordering and merchant steps cancel.
func deliversZero(s *domain.Session) bool {
	switch s.Mode {
	case domain.ModeOrdering, domain.ModeMerchant:
		return true
	case domain.ModeBrowsing:
		return s.Browse != nil && s.Browse.Step.IsSearch()
	}
	return false
}

// onMenu interprets the welcome menu.
func (d *Dispatcher) onMenu(ctx context.Context, c *chat.Conversation, option string) bool {
	switch option {
	case "1":
		return d.browse.StartLocations(ctx, c)
	case "2":
		return d.browse.StartCategories(ctx, c)
	case "3":
		return d.browse.StartSearch(ctx, c)
	case "4":
		return d.orders.ShowOrders(ctx, c)
	case "5":
		c.Say(ctx, chat.HelpMenu())
	case "6":
		if !d.merchants.Start(ctx, c) {
			c.Say(ctx, accessDenied+chat.WelcomeMenu())
		}
	default:
		c.Say(ctx, chat.InvalidOption+chat.WelcomeMenu())
	}
	return true
}
