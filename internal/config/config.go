// Package config loads the service configuration: built-in defaults, then an
// optional YAML file, then the environment (including a .env file when present).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/mercato/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendCache  = "cache"
	BackendRedis  = "redis"
	BackendFile   = "file"
)

type Config struct {
	Port              int              `yaml:"port" validate:"min=1,max=65535"`
	Log               LogConfig        `yaml:"log"`
	WhatsApp          WhatsAppConfig   `yaml:"whatsapp"`
	Airtable          AirtableConfig   `yaml:"airtable"`
	Cloudinary        CloudinaryConfig `yaml:"cloudinary"`
	Session           SessionConfig    `yaml:"session"`
	Redis             RedisConfig      `yaml:"redis"`
	VerifiedMerchants []string         `yaml:"verified_merchants" validate:"dive,numeric"`
	DefaultCurrency   string           `yaml:"default_currency" validate:"len=3,uppercase"`
	// CatalogFixture seeds the in-memory catalog used when Airtable is not configured.
	CatalogFixture string `yaml:"catalog_fixture"`
	MaxInputSize   int    `yaml:"max_input_size" validate:"min=1"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

type WhatsAppConfig struct {
	VerifyToken   string `yaml:"verify_token"`
	Token         string `yaml:"token"`
	PhoneNumberID string `yaml:"phone_number_id"`
	APIBase       string `yaml:"api_base" validate:"url"`
}

type AirtableConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseID  string `yaml:"base_id"`
	APIBase string `yaml:"api_base" validate:"omitempty,url"`
}

type CloudinaryConfig struct {
	CloudName string `yaml:"cloud_name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Folder    string `yaml:"folder"`
}

type SessionConfig struct {
	Backend string        `yaml:"backend" validate:"oneof=memory cache redis file"`
	TTL     time.Duration `yaml:"ttl" validate:"min=0"`
	// Dir holds the session documents of the file backend.
	Dir string `yaml:"dir"`
	// EncryptionKey is a base64 AES-256 key; when set sessions are sealed at rest.
	EncryptionKey string `yaml:"encryption_key" validate:"omitempty,base64"`
	// RetiredKeys still open sessions sealed before a key rotation.
	RetiredKeys []string `yaml:"retired_keys" validate:"dive,base64"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"min=0"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:            8080,
		Log:             LogConfig{Level: "info", Format: "text"},
		WhatsApp:        WhatsAppConfig{APIBase: "https://graph.facebook.com/v18.0"},
		Cloudinary:      CloudinaryConfig{Folder: "whatsapp-products"},
		Session:         SessionConfig{Backend: BackendMemory, TTL: 24 * time.Hour, Dir: ".mercato/sessions"},
		Redis:           RedisConfig{Addr: "localhost:6379"},
		DefaultCurrency: "MWK",
		MaxInputSize:    4096,
	}
}

// Load builds the configuration. An empty path skips the YAML file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	num("PORT", &c.Port)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("VERIFY_TOKEN", &c.WhatsApp.VerifyToken)
	str("WHATSAPP_TOKEN", &c.WhatsApp.Token)
	str("PHONE_NUMBER_ID", &c.WhatsApp.PhoneNumberID)
	str("WHATSAPP_API_BASE", &c.WhatsApp.APIBase)
	str("AIRTABLE_API_KEY", &c.Airtable.APIKey)
	str("AIRTABLE_PRODUCTS_BASE_ID", &c.Airtable.BaseID)
	str("AIRTABLE_API_BASE", &c.Airtable.APIBase)
	str("CLOUDINARY_CLOUD_NAME", &c.Cloudinary.CloudName)
	str("CLOUDINARY_API_KEY", &c.Cloudinary.APIKey)
	str("CLOUDINARY_API_SECRET", &c.Cloudinary.APISecret)
	str("CLOUDINARY_FOLDER", &c.Cloudinary.Folder)
	str("SESSION_BACKEND", &c.Session.Backend)
	str("SESSION_DIR", &c.Session.Dir)
	str("SESSION_ENCRYPTION_KEY", &c.Session.EncryptionKey)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	num("REDIS_DB", &c.Redis.DB)
	str("DEFAULT_CURRENCY", &c.DefaultCurrency)
	str("CATALOG_FIXTURE", &c.CatalogFixture)
	num("MERCATO_MAX_INPUT_SIZE", &c.MaxInputSize)

	if v, ok := lookup("SESSION_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SESSION_TTL: %w", err))
		} else {
			c.Session.TTL = ttl
		}
	}
	if v, ok := lookup("SESSION_RETIRED_KEYS"); ok {
		c.Session.RetiredKeys = splitList(v)
	}
	if v, ok := lookup("VERIFIED_MERCHANTS"); ok {
		c.VerifiedMerchants = nil
		for _, phone := range splitList(v) {
			c.VerifiedMerchants = append(c.VerifiedMerchants, strings.TrimPrefix(phone, "+"))
		}
	}
	return errors.Join(errs...)
}

// lookup treats an empty variable as unset.
func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		c := sl.Current().Interface().(Config)
		if c.Session.Backend == BackendRedis && c.Redis.Addr == "" {
			sl.ReportError(c.Redis.Addr, "Redis.Addr", "Addr", "required_with_redis", "")
		}
		if (c.Airtable.APIKey == "") != (c.Airtable.BaseID == "") {
			sl.ReportError(c.Airtable.BaseID, "Airtable.BaseID", "BaseID", "airtable_pair", "")
		}
	}, Config{})
	return v
}

// Validate checks field ranges and the settings that only make sense together.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() slog.Level {
	lvl, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Logger builds the logger the configuration asks for.
func (c *Config) Logger() *slog.Logger {
	if c.Log.Format == "json" {
		return logging.NewJSON(c.LogLevel())
	}
	return logging.New(c.LogLevel())
}

// UseAirtable reports whether the Airtable catalog is configured.
func (c *Config) UseAirtable() bool {
	return c.Airtable.APIKey != "" && c.Airtable.BaseID != ""
}

// UseWhatsApp reports whether outbound messages can go to the Graph API.
func (c *Config) UseWhatsApp() bool {
	return c.WhatsApp.Token != "" && c.WhatsApp.PhoneNumberID != ""
}

// UseCloudinary reports whether images can be persisted.
func (c *Config) UseCloudinary() bool {
	return c.Cloudinary.CloudName != "" && c.Cloudinary.APIKey != "" && c.Cloudinary.APISecret != ""
}
