package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/mercato/internal/logging"
	"github.com/mitchellh/mapstructure"
)

// DefaultBaseURL is the Airtable REST endpoint.
const DefaultBaseURL = "https://api.airtable.com/v0"

// Table names of the catalog base.
const (
	TableCategories = "Categories"
	TableMerchants  = "ShopOwners"
	TableProducts   = "Products"
	TableOrders     = "Orders"
)

// APIError is a non-2xx answer from Airtable.
type APIError struct {
	Status int
	Table  string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable %s: status %d: %s", e.Table, e.Status, e.Body)
}

// Client implements ports.Catalog over the Airtable REST API.
type Client struct {
	baseURL string
	baseID  string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (tests point it at httptest).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for the given base.
func New(apiKey, baseID string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		baseID:  baseID,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type record struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type writeRequest struct {
	Records []record `json:"records"`
}

// query lists every record of table matching formula, following pagination.
// sortField, when set, sorts descending.
func (c *Client) query(ctx context.Context, table, formula, sortField string) ([]record, error) {
	var out []record
	offset := ""
	for {
		params := url.Values{}
		if formula != "" {
			params.Set("filterByFormula", formula)
		}
		if sortField != "" {
			params.Set("sort[0][field]", sortField)
			params.Set("sort[0][direction]", "desc")
		}
		if offset != "" {
			params.Set("offset", offset)
		}

		var page listResponse
		if err := c.do(ctx, http.MethodGet, table, "", params, nil, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Records...)
		if page.Offset == "" {
			return out, nil
		}
		offset = page.Offset
	}
}

// create posts a single record and returns its record id.
func (c *Client) create(ctx context.Context, table string, fields map[string]any) (string, error) {
	var resp listResponse
	body := writeRequest{Records: []record{{Fields: fields}}}
	if err := c.do(ctx, http.MethodPost, table, "", nil, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Records) == 0 {
		return "", fmt.Errorf("airtable %s: empty create response", table)
	}
	return resp.Records[0].ID, nil
}

func (c *Client) update(ctx context.Context, table, recordID string, fields map[string]any) error {
	return c.do(ctx, http.MethodPatch, table, recordID, nil, record{Fields: fields}, nil)
}

func (c *Client) do(ctx context.Context, method, table, recordID string, params url.Values, body, out any) error {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))
	if recordID != "" {
		endpoint += "/" + url.PathEscape(recordID)
	}
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("airtable %s request failed: %w", table, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("airtable call", "method", method, "table", table, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Table: table, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal %s response: %w", table, err)
	}
	return nil
}

// decode maps a record's fields onto out by mapstructure tags.
// Airtable omits empty fields and sends numbers as float64, hence the weak typing.
func decode(rec record, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(rec.Fields); err != nil {
		return fmt.Errorf("decode record %s: %w", rec.ID, err)
	}
	return nil
}

// quote renders s as a formula string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func eq(field, value string) string {
	return fmt.Sprintf("{%s} = %s", field, quote(value))
}

func and(terms ...string) string {
	return "AND(" + strings.Join(terms, ", ") + ")"
}

func or(terms ...string) string {
	return "OR(" + strings.Join(terms, ", ") + ")"
}

// search is a case-insensitive substring test of query in field.
func search(field, query string) string {
	return fmt.Sprintf("SEARCH(%s, LOWER({%s}))", quote(strings.ToLower(strings.TrimSpace(query))), field)
}

// linkedTo matches records whose linked-record field contains recordID.
func linkedTo(field, recordID string) string {
	return fmt.Sprintf("FIND(%s, ARRAYJOIN({%s})) > 0", quote(recordID), field)
}

func recordIs(recordID string) string {
	return "RECORD_ID() = " + quote(recordID)
}

// capitalize renders a status the way the Orders table stores it ("Pending").
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// linkedIDs reads a linked-record field (an array of record ids).
func linkedIDs(fields map[string]any, key string) []string {
	raw, ok := fields[key].([]any)
	if !ok {
		return nil
	}
	var ids []string
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			ids = append(ids, s)
		}
	}
	return ids
}

// attachmentURLs reads an attachment field. Plain string arrays are accepted too.
func attachmentURLs(fields map[string]any, key string) []string {
	raw, ok := fields[key].([]any)
	if !ok {
		return nil
	}
	var urls []string
	for _, v := range raw {
		switch item := v.(type) {
		case string:
			urls = append(urls, item)
		case map[string]any:
			if u, ok := item["url"].(string); ok && u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls
}
