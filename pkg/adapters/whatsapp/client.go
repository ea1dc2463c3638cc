package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/mercato/internal/logging"
)

const (
	// DefaultBaseURL is the Graph API endpoint.
	DefaultBaseURL = "https://graph.facebook.com/v18.0"

	// MaxCaptionLength is the longest caption the channel accepts, in characters.
	MaxCaptionLength = 1024

	// DefaultMediaRetries is how many times a failed media lookup is retried.
	DefaultMediaRetries = 3
	// DefaultRetryDelay separates media lookup attempts.
	DefaultRetryDelay = time.Second
)

// ErrNoMediaURL is returned when the channel answers a media lookup without a URL.
var ErrNoMediaURL = errors.New("whatsapp: media response has no url")

// APIError is a non-2xx answer from the Graph API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp: status %d: %s", e.Status, e.Body)
}

// Client sends messages through the Cloud API and resolves inbound media.
// It implements ports.Messenger and ports.MediaResolver.
type Client struct {
	baseURL       string
	token         string
	phoneNumberID string
	http          *http.Client
	logger        *slog.Logger
	retries       int
	retryDelay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMediaRetry sets the retry count and spacing of media lookups.
func WithMediaRetry(retries int, delay time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.retryDelay = delay
	}
}

// New creates a client sending from phoneNumberID.
func New(token, phoneNumberID string, opts ...Option) *Client {
	c := &Client{
		baseURL:       DefaultBaseURL,
		token:         token,
		phoneNumberID: phoneNumberID,
		http:          &http.Client{Timeout: 15 * time.Second},
		logger:        logging.NewNop(),
		retries:       DefaultMediaRetries,
		retryDelay:    DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type textBody struct {
	Body string `json:"body"`
}

type imageBody struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

type outbound struct {
	MessagingProduct string     `json:"messaging_product"`
	To               string     `json:"to"`
	Type             string     `json:"type,omitempty"`
	Text             *textBody  `json:"text,omitempty"`
	Image            *imageBody `json:"image,omitempty"`
}

func (c *Client) SendText(ctx context.Context, recipient, body string) error {
	return c.send(ctx, outbound{
		MessagingProduct: "whatsapp",
		To:               recipient,
		Type:             "text",
		Text:             &textBody{Body: body},
	})
}

func (c *Client) SendImage(ctx context.Context, recipient, imageURL, caption string) error {
	return c.send(ctx, outbound{
		MessagingProduct: "whatsapp",
		To:               recipient,
		Type:             "image",
		Image:            &imageBody{Link: imageURL, Caption: truncate(caption, MaxCaptionLength)},
	})
}

func (c *Client) send(ctx context.Context, msg outbound) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	endpoint := fmt.Sprintf("%s/%s/messages", c.baseURL, url.PathEscape(c.phoneNumberID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req)
	return err
}

type mediaResponse struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type,omitempty"`
}

// ResolveMedia looks up the download URL of an inbound media id.
// Transport failures and non-2xx answers are retried; a response without a URL is not.
func (c *Client) ResolveMedia(ctx context.Context, mediaID string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying media lookup", "media", mediaID, "attempt", attempt, "err", lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		u, err := c.lookupMedia(ctx, mediaID)
		if err == nil {
			return u, nil
		}
		if errors.Is(err, ErrNoMediaURL) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("resolve media %s: %w", mediaID, lastErr)
}

func (c *Client) lookupMedia(ctx context.Context, mediaID string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(mediaID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	data, err := c.do(req)
	if err != nil {
		return "", err
	}
	var resp mediaResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("unmarshal media response: %w", err)
	}
	if resp.URL == "" {
		return "", ErrNoMediaURL
	}
	return resp.URL, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
