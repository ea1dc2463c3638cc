package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/mercato"
	"github.com/aretw0/mercato/internal/config"
	"github.com/aretw0/mercato/pkg/adapters/airtable"
	"github.com/aretw0/mercato/pkg/adapters/cloudinary"
	"github.com/aretw0/mercato/pkg/adapters/file"
	"github.com/aretw0/mercato/pkg/adapters/memory"
	"github.com/aretw0/mercato/pkg/adapters/redis"
	"github.com/aretw0/mercato/pkg/observability"
	"github.com/aretw0/mercato/pkg/persistence/middleware"
	"github.com/aretw0/mercato/pkg/ports"
	"github.com/spf13/cobra"
)

// stack holds the collaborators a command runs against, built from the configuration.
type stack struct {
	cfg     *config.Config
	logger  *slog.Logger
	catalog ports.Catalog
	store   ports.SessionStore
	locker  ports.DistributedLocker
	media   *cloudinary.Uploader
	pingers map[string]pinger
	closers []func() error
}

type pinger interface {
	Ping(ctx context.Context) error
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func newStack(cfg *config.Config, logger *slog.Logger) (*stack, error) {
	s := &stack{cfg: cfg, logger: logger, pingers: map[string]pinger{}}

	catalog, err := newCatalog(cfg, logger)
	if err != nil {
		return nil, err
	}
	s.catalog = catalog
	s.pingers["catalog"] = catalog

	if err := s.openSessions(); err != nil {
		return nil, err
	}

	if cfg.UseCloudinary() {
		s.media = cloudinary.New(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret,
			cloudinary.WithFolder(cfg.Cloudinary.Folder),
			cloudinary.WithLogger(logger),
		)
		s.pingers["media"] = s.media
	}
	return s, nil
}

// newCatalog returns Airtable when it is configured, else an in-memory catalog
// seeded from the fixture file or the built-in demo.
func newCatalog(cfg *config.Config, logger *slog.Logger) (ports.Catalog, error) {
	if cfg.UseAirtable() {
		opts := []airtable.Option{airtable.WithLogger(logger)}
		if cfg.Airtable.APIBase != "" {
			opts = append(opts, airtable.WithBaseURL(cfg.Airtable.APIBase))
		}
		return airtable.New(cfg.Airtable.APIKey, cfg.Airtable.BaseID, opts...), nil
	}
	if cfg.CatalogFixture != "" {
		return memory.LoadCatalog(cfg.CatalogFixture)
	}
	logger.Warn("airtable not configured, using the demo catalog")
	return memory.DemoCatalog(), nil
}

func (s *stack) openSessions() error {
	cfg := s.cfg
	var store ports.SessionStore
	switch cfg.Session.Backend {
	case config.BackendCache:
		store = memory.NewCacheStore(cfg.Session.TTL)
	case config.BackendFile:
		store = file.New(cfg.Session.Dir)
	case config.BackendRedis:
		client := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		rs := redis.NewFromClient(client, redis.WithTTL(cfg.Session.TTL))
		store = rs
		s.locker = redis.NewLocker(client, "mercato:")
		s.pingers["sessions"] = rs
		s.closers = append(s.closers, rs.Close)
	default:
		store = memory.NewStore()
	}

	if cfg.Session.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.Session.EncryptionKey)
		if err != nil {
			return err
		}
		keys := middleware.EncryptionConfig{ActiveKey: key}
		for _, encoded := range cfg.Session.RetiredKeys {
			old, err := middleware.ParseKey(encoded)
			if err != nil {
				return fmt.Errorf("retired key: %w", err)
			}
			keys.FallbackKeys = append(keys.FallbackKeys, old)
		}
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(keys))
	}
	s.store = store
	return nil
}

// bot assembles the dispatcher answering through out.
func (s *stack) bot(out ports.Messenger, resolver ports.MediaResolver, metrics *observability.Metrics) (*mercato.Bot, error) {
	opts := []mercato.Option{
		mercato.WithLogger(s.logger),
		mercato.WithSessionStore(s.store),
		mercato.WithMetrics(metrics),
		mercato.WithVerifiedMerchants(s.cfg.VerifiedMerchants...),
		mercato.WithCurrency(s.cfg.DefaultCurrency),
		mercato.WithMaxInputSize(s.cfg.MaxInputSize),
	}
	if s.locker != nil {
		opts = append(opts, mercato.WithLocker(s.locker))
	}
	if s.media != nil {
		opts = append(opts, mercato.WithMediaHost(s.media))
	}
	if resolver != nil {
		opts = append(opts, mercato.WithMediaResolver(resolver))
	}
	bot, err := mercato.New(s.catalog, out, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build bot: %w", err)
	}
	return bot, nil
}

func (s *stack) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
