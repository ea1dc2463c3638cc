// Package cloudinary persists product images to Cloudinary with signed uploads.
package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/mercato/internal/logging"
)

const (
	// DefaultBaseURL is the Cloudinary API endpoint.
	DefaultBaseURL = "https://api.cloudinary.com/v1_1"
	// DefaultFolder is where product images are stored.
	DefaultFolder = "whatsapp-products"
)

// APIError is a failed upload as reported by Cloudinary.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cloudinary: status %d: %s", e.Status, e.Message)
}

// Uploader implements ports.MediaHost.
type Uploader struct {
	baseURL   string
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	http      *http.Client
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Uploader)

func WithBaseURL(u string) Option {
	return func(up *Uploader) {
		up.baseURL = strings.TrimRight(u, "/")
	}
}

func WithFolder(folder string) Option {
	return func(up *Uploader) {
		if folder != "" {
			up.folder = folder
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(up *Uploader) {
		up.http = h
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(up *Uploader) {
		up.logger = l
	}
}

// New creates an uploader for the given cloud account.
func New(cloudName, apiKey, apiSecret string, opts ...Option) *Uploader {
	up := &Uploader{
		baseURL:   DefaultBaseURL,
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    DefaultFolder,
		http:      &http.Client{Timeout: 10 * time.Second},
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(up)
	}
	return up
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Persist asks Cloudinary to fetch sourceURL into the folder and returns the hosted URL.
// URLs already hosted on Cloudinary are returned unchanged.
func (up *Uploader) Persist(ctx context.Context, sourceURL string) (string, error) {
	if IsHosted(sourceURL) {
		return sourceURL, nil
	}

	params := map[string]string{
		"folder":    up.folder,
		"timestamp": strconv.FormatInt(up.now().Unix(), 10),
	}
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("file", sourceURL)
	form.Set("api_key", up.apiKey)
	form.Set("signature", Sign(params, up.apiSecret))

	endpoint := fmt.Sprintf("%s/%s/image/upload", up.baseURL, url.PathEscape(up.cloudName))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := up.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out uploadResponse
	_ = json.Unmarshal(data, &out)
	if resp.StatusCode != http.StatusOK {
		msg := string(data)
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("cloudinary: upload response has no secure_url")
	}
	up.logger.Debug("image persisted", "folder", up.folder)
	return out.SecureURL, nil
}

// Ping checks the credentials against the admin API.
func (up *Uploader) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/%s/ping", up.baseURL, url.PathEscape(up.cloudName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(up.apiKey, up.apiSecret)

	resp, err := up.http.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary ping failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Message: string(body)}
	}
	return nil
}

// Sign computes the upload signature: the sorted, '&'-joined params, followed by the secret, SHA-1 hashed.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + params[k]
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "&") + secret))
	return hex.EncodeToString(sum[:])
}

// IsHosted reports whether u already lives on Cloudinary.
func IsHosted(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	return host == "cloudinary.com" || strings.HasSuffix(host, ".cloudinary.com")
}
