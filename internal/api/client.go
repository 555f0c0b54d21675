// ABOUTME: HTTP client for the BloodLink REST API
// ABOUTME: Handles bearer auth, the {success,message,data} envelope and error mapping

package api

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
)

// TokenSource returns the bearer token to forward for the request in ctx.
// An empty string sends the request without an Authorization header.
type TokenSource func(ctx context.Context) string

// Client talks to the BloodLink backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *slog.Logger

	Campaigns *CampaignService
	Donations *DonationService
	Staff     *StaffService
	Inventory *InventoryService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets how the bearer token is found for each call.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "api")

	c.Campaigns = &CampaignService{c: c}
	c.Donations = &DonationService{c: c}
	c.Staff = &StaffService{c: c}
	c.Inventory = &InventoryService{c: c}
	return c
}

// envelope is the wrapper most endpoints respond with. Success is a pointer so
// that bare (unwrapped) bodies can be told apart from {success:false}.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do performs a request and decodes the payload into out (which may be nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return handleErrorResponse(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	return decodePayload(resp.StatusCode, raw, out)
}

// decodePayload unwraps the envelope when present and decodes data into out.
func decodePayload(status int, raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	payload := raw
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil {
		if !*env.Success {
			msg := env.Message
			if msg == "" {
				msg = "request was not successful"
			}
			return &Error{Status: status, Message: msg}
		}
		payload = env.Data
	}

	if out == nil || len(payload) == 0 || string(payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// escape is used for every id placed in a path segment.
func escape(id string) string {
	return url.PathEscape(id)
}
