package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "LOG_LEVEL", "LOG_FORMAT", "VERIFY_TOKEN", "WHATSAPP_TOKEN", "PHONE_NUMBER_ID",
	"WHATSAPP_API_BASE", "AIRTABLE_API_KEY", "AIRTABLE_PRODUCTS_BASE_ID", "AIRTABLE_API_BASE",
	"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET", "CLOUDINARY_FOLDER",
	"SESSION_BACKEND", "SESSION_TTL", "SESSION_DIR", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"SESSION_ENCRYPTION_KEY", "SESSION_RETIRED_KEYS", "VERIFIED_MERCHANTS", "DEFAULT_CURRENCY", "CATALOG_FIXTURE",
	"MERCATO_MAX_INPUT_SIZE",
}

// isolate runs the test in an empty directory with every key unset.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "https://graph.facebook.com/v18.0", cfg.WhatsApp.APIBase)
	assert.Equal(t, "whatsapp-products", cfg.Cloudinary.Folder)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, ".mercato/sessions", cfg.Session.Dir)
	assert.Equal(t, "MWK", cfg.DefaultCurrency)
	assert.Equal(t, 4096, cfg.MaxInputSize)
	assert.False(t, cfg.UseAirtable())
	assert.False(t, cfg.UseWhatsApp())
	assert.False(t, cfg.UseCloudinary())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "mercato.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9000
log:
  level: debug
  format: json
session:
  backend: cache
  ttl: 30m
verified_merchants: ["265881000001"]
airtable:
  api_key: key-from-file
  base_id: appFile
`), 0o644))

	t.Setenv("PORT", "9100")
	t.Setenv("SESSION_BACKEND", "file")
	t.Setenv("SESSION_DIR", "/var/lib/mercato")
	t.Setenv("VERIFIED_MERCHANTS", "+265881000002, 265881000003,")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port, "environment wins over the file")
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, BackendFile, cfg.Session.Backend)
	assert.Equal(t, "/var/lib/mercato", cfg.Session.Dir)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"265881000002", "265881000003"}, cfg.VerifiedMerchants)
	assert.True(t, cfg.UseAirtable())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WHATSAPP_TOKEN=secret\nPHONE_NUMBER_ID=12345\n"), 0o600))
	// godotenv never overrides a variable that is already set, even to "".
	require.NoError(t, os.Unsetenv("WHATSAPP_TOKEN"))
	require.NoError(t, os.Unsetenv("PHONE_NUMBER_ID"))
	t.Cleanup(func() {
		os.Unsetenv("WHATSAPP_TOKEN")
		os.Unsetenv("PHONE_NUMBER_ID")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.WhatsApp.Token)
	assert.True(t, cfg.UseWhatsApp())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{"bad port", map[string]string{"PORT": "eighty"}, ""},
		{"port out of range", map[string]string{"PORT": "70000"}, ""},
		{"log format", map[string]string{"LOG_FORMAT": "xml"}, ""},
		{"backend", map[string]string{"SESSION_BACKEND": "postgres"}, ""},
		{"ttl", map[string]string{"SESSION_TTL": "forever"}, ""},
		{"redis without address", map[string]string{"SESSION_BACKEND": "redis"}, "redis:\n  addr: \"\"\n"},
		{"encryption key", map[string]string{"SESSION_ENCRYPTION_KEY": "not base64!"}, ""},
		{"retired key", map[string]string{"SESSION_RETIRED_KEYS": "not base64!"}, ""},
		{"airtable half configured", map[string]string{"AIRTABLE_API_KEY": "key"}, ""},
		{"merchant phone", map[string]string{"VERIFIED_MERCHANTS": "abc"}, ""},
		{"currency", map[string]string{"DEFAULT_CURRENCY": "kwacha"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = filepath.Join(dir, "mercato.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.file), 0o644))
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	isolate(t)
	_, err := Load("does-not-exist.yaml")
	assert.ErrorContains(t, err, "failed to read config file")
}
