package mercato

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/mercato/internal/dispatch"
	"github.com/aretw0/mercato/internal/logging"
	httpadapter "github.com/aretw0/mercato/pkg/adapters/http"
	"github.com/aretw0/mercato/pkg/adapters/memory"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/observability"
	"github.com/aretw0/mercato/pkg/ports"
	"github.com/aretw0/mercato/pkg/session"
	"github.com/google/uuid"
)

// Version is the release of the bot, overridden at build time with -ldflags.
var Version = "0.1.0"

// Bot is the high-level entry point: a dispatcher over the three flows with its
// session store and collaborators assembled.
type Bot struct {
	catalog   ports.Catalog
	messenger ports.Messenger
	store     ports.SessionStore
	locker    ports.DistributedLocker
	metrics   *observability.Metrics
	host      ports.MediaHost
	resolver  ports.MediaResolver
	verified  []string
	currency  string
	maxInput  int
	logger    *slog.Logger

	sessions   *session.Manager
	dispatcher *dispatch.Dispatcher
}

// Option configures the Bot.
type Option func(*Bot)

// WithLogger sets the structured logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = l
	}
}

// WithSessionStore sets where sessions live (default: in process memory).
func WithSessionStore(s ports.SessionStore) Option {
	return func(b *Bot) {
		b.store = s
	}
}

// WithLocker serializes sessions across replicas.
func WithLocker(l ports.DistributedLocker) Option {
	return func(b *Bot) {
		b.locker = l
	}
}

// WithMetrics enables the Prometheus collectors. The webhook handler serves them on /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *Bot) {
		b.metrics = m
	}
}

// WithMediaHost sets where merchant images are persisted.
func WithMediaHost(h ports.MediaHost) Option {
	return func(b *Bot) {
		b.host = h
	}
}

// WithMediaResolver sets how inbound image handles become URLs.
func WithMediaResolver(r ports.MediaResolver) Option {
	return func(b *Bot) {
		b.resolver = r
	}
}

// WithVerifiedMerchants sets the phone numbers allowed on the shop owner dashboard.
func WithVerifiedMerchants(phones ...string) Option {
	return func(b *Bot) {
		b.verified = phones
	}
}

// WithCurrency sets the currency code of products added by shop owners (default MWK).
func WithCurrency(code string) Option {
	return func(b *Bot) {
		b.currency = code
	}
}

// WithMaxInputSize caps inbound text in bytes.
func WithMaxInputSize(n int) Option {
	return func(b *Bot) {
		b.maxInput = n
	}
}

// New assembles a Bot answering through messenger and reading and writing catalog.
func New(catalog ports.Catalog, messenger ports.Messenger, opts ...Option) (*Bot, error) {
	if catalog == nil {
		return nil, errors.New("a catalog store is required")
	}
	if messenger == nil {
		return nil, errors.New("a messenger is required")
	}

	b := &Bot{catalog: catalog, messenger: messenger}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logging.NewNop()
	}
	if b.store == nil {
		b.store = memory.NewStore()
	}

	sessionOpts := []session.Option{session.WithLogger(b.logger)}
	if b.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(b.locker))
	}
	b.sessions = session.NewManager(b.store, sessionOpts...)

	dispatchOpts := []dispatch.Option{
		dispatch.WithLogger(b.logger),
		dispatch.WithMetrics(b.metrics),
		dispatch.WithMaxInputSize(b.maxInput),
		dispatch.WithCurrency(b.currency),
	}
	if b.resolver != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithMediaResolver(b.resolver))
	}
	if b.host != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithMediaHost(b.host))
	}
	if len(b.verified) > 0 {
		dispatchOpts = append(dispatchOpts, dispatch.WithVerifiedMerchants(b.verified...))
	}
	b.dispatcher = dispatch.New(b.sessions, catalog, messenger, dispatchOpts...)
	return b, nil
}

// Dispatch handles one inbound event.
func (b *Bot) Dispatch(ctx context.Context, in domain.Inbound) {
	b.dispatcher.Dispatch(ctx, in)
}

// Handle dispatches a text message from a customer.
func (b *Bot) Handle(ctx context.Context, from, text string) {
	b.Dispatch(ctx, domain.Inbound{
		ID:         uuid.NewString(),
		From:       from,
		Kind:       domain.KindText,
		Text:       text,
		ReceivedAt: time.Now().UTC(),
	})
}

// Sessions exposes the session store for operator tooling.
func (b *Bot) Sessions() *session.Manager {
	return b.sessions
}

// Catalog returns the catalog store the bot was built with.
func (b *Bot) Catalog() ports.Catalog {
	return b.catalog
}

// Handler returns the webhook HTTP surface routing events to the bot.
func (b *Bot) Handler(opts ...httpadapter.Option) http.Handler {
	base := []httpadapter.Option{
		httpadapter.WithVersion(Version),
		httpadapter.WithLogger(b.logger),
	}
	if b.metrics != nil {
		base = append(base, httpadapter.WithMetricsHandler(b.metrics.Handler()))
	}
	return httpadapter.NewHandler(b, append(base, opts...)...)
}
