package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/mercato/internal/config"
	"github.com/aretw0/mercato/internal/logging"
	"github.com/aretw0/mercato/pkg/adapters/airtable"
	"github.com/aretw0/mercato/pkg/adapters/file"
	"github.com/aretw0/mercato/pkg/adapters/memory"
	"github.com/aretw0/mercato/pkg/domain"
	"github.com/aretw0/mercato/pkg/persistence/middleware"
	"github.com/aretw0/mercato/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const phone = "265990000001"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Session.Dir = t.TempDir()
	return cfg
}

func TestNewStack_Backends(t *testing.T) {
	tests := []struct {
		backend string
		check   func(t *testing.T, st *stack)
	}{
		{config.BackendMemory, func(t *testing.T, st *stack) {
			assert.IsType(t, &memory.Store{}, st.store)
		}},
		{config.BackendCache, func(t *testing.T, st *stack) {
			assert.IsType(t, &memory.CacheStore{}, st.store)
		}},
		{config.BackendFile, func(t *testing.T, st *stack) {
			assert.IsType(t, &file.Store{}, st.store)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Session.Backend = tt.backend

			st, err := newStack(cfg, logging.NewNop())
			require.NoError(t, err)
			defer st.Close()

			tt.check(t, st)
			assert.Nil(t, st.locker)
			assert.IsType(t, &memory.Catalog{}, st.catalog)
			assert.Nil(t, st.media)
		})
	}
}

func TestNewStack_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := testConfig(t)
	cfg.Session.Backend = config.BackendRedis
	cfg.Redis.Addr = mr.Addr()

	st, err := newStack(cfg, logging.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, st.locker)
	var names []string
	failed := st.check(context.Background(), func(name string, err error) {
		names = append(names, name)
		assert.NoError(t, err, name)
	})
	assert.Zero(t, failed)
	assert.Equal(t, []string{"catalog", "sessions"}, names)

	require.NoError(t, st.store.Save(context.Background(), domain.NewSession(phone)))
	assert.True(t, mr.Exists("mercato:session:"+phone))
	assert.NoError(t, st.Close())
}

func TestNewStack_CheckReportsFailures(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.Session.Backend = config.BackendRedis
	cfg.Redis.Addr = mr.Addr()
	st, err := newStack(cfg, logging.NewNop())
	require.NoError(t, err)
	defer st.Close()

	mr.Close()
	failures := map[string]error{}
	failed := st.check(context.Background(), func(name string, err error) {
		failures[name] = err
	})
	assert.Equal(t, 1, failed)
	assert.NoError(t, failures["catalog"])
	assert.Error(t, failures["sessions"])
}

func TestNewStack_Encryption(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.Backend = config.BackendFile
	cfg.Session.EncryptionKey = base64.StdEncoding.EncodeToString(make([]byte, middleware.KeySize))

	st, err := newStack(cfg, logging.NewNop())
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.store.Save(ctx, domain.NewSession(phone)))

	loaded, err := st.store.Load(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, phone, loaded.ID)
	assert.Empty(t, loaded.Sealed)

	raw, err := file.New(cfg.Session.Dir).Load(ctx, phone)
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)

	require.NoError(t, file.New(cfg.Session.Dir).Save(ctx, domain.NewSession("265990000002")))
	_, err = st.store.Load(ctx, "265990000002")
	assert.True(t, errors.Is(err, middleware.ErrNotSealed))
}

func TestNewStack_KeyRotation(t *testing.T) {
	oldKey := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, middleware.KeySize))
	newKey := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{2}, middleware.KeySize))
	ctx := context.Background()

	cfg := testConfig(t)
	cfg.Session.Backend = config.BackendFile
	cfg.Session.EncryptionKey = oldKey
	before, err := newStack(cfg, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, before.store.Save(ctx, domain.NewSession(phone)))

	cfg.Session.EncryptionKey = newKey
	_, err = storeFor(t, cfg).Load(ctx, phone)
	assert.Error(t, err, "the new key alone cannot open the old session")

	cfg.Session.RetiredKeys = []string{oldKey}
	loaded, err := storeFor(t, cfg).Load(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, phone, loaded.ID)
}

func storeFor(t *testing.T, cfg *config.Config) ports.SessionStore {
	t.Helper()
	st, err := newStack(cfg, logging.NewNop())
	require.NoError(t, err)
	return st.store
}

func TestNewStack_InvalidEncryptionKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("short"))

	_, err := newStack(cfg, logging.NewNop())
	assert.ErrorContains(t, err, "invalid encryption key")
}

func TestNewCatalog(t *testing.T) {
	t.Run("airtable", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Airtable.APIKey = "key"
		cfg.Airtable.BaseID = "appBase"
		cat, err := newCatalog(cfg, logging.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &airtable.Client{}, cat)
	})

	t.Run("missing fixture", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.CatalogFixture = "does-not-exist.yaml"
		_, err := newCatalog(cfg, logging.NewNop())
		assert.ErrorContains(t, err, "failed to read catalog fixture")
	})
}

func TestStack_Bot(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.Backend = config.BackendFile

	st, err := newStack(cfg, logging.NewNop())
	require.NoError(t, err)
	defer st.Close()

	rec := memory.NewRecorder()
	bot, err := st.bot(rec, nil, nil)
	require.NoError(t, err)

	bot.Handle(context.Background(), phone, "hi")
	require.NotEmpty(t, rec.Sent())
	assert.Equal(t, phone, rec.Last().To)

	ids, err := st.store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{phone}, ids)
}
