// Package api is the HTTP client for the reservations backend. Every call
// takes a context, sends the staff bearer token when one is set and unwraps
// the backend's {data: ...} envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client is an HTTP client for the reservations backend.
type Client struct {
	BaseURL   string
	Token     string
	UserAgent string
	HTTP      *http.Client
}

// New creates a client. No timeout is set; use WithTimeout to opt in.
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Token:     token,
		UserAgent: "rsv",
		HTTP:      &http.Client{},
	}
}

// WithTimeout sets a per-request timeout. Zero disables it.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.HTTP.Timeout = d
	return c
}

// envelope is the wrapper most endpoints use. Flags only appear on create.
type envelope struct {
	Success      *bool           `json:"success"`
	Data         json.RawMessage `json:"data"`
	Message      string          `json:"message"`
	Error        string          `json:"error"`
	Waitlist     bool            `json:"waitlist"`
	ModoManual   bool            `json:"modoManual"`
	MesaSugerida json.RawMessage `json:"mesaSugerida"`
	Procesadas   *int            `json:"procesadas"`
}

// response is a successful body kept raw until the caller picks a shape
type response struct {
	raw []byte
	env envelope
	obj bool
}

func newResponse(body []byte) *response {
	r := &response{raw: bytes.TrimSpace(body)}
	if len(r.raw) > 0 && r.raw[0] == '{' {
		r.obj = json.Unmarshal(r.raw, &r.env) == nil
	}
	return r
}

// empty reports a body with no content (some DELETE endpoints)
func (r *response) empty() bool {
	return len(r.raw) == 0
}

// payload returns data when the object carries it, else the raw body
func (r *response) payload() []byte {
	if r.obj && len(r.env.Data) > 0 && string(r.env.Data) != "null" {
		return r.env.Data
	}
	return r.raw
}

// decode unmarshals the unwrapped payload into v
func (r *response) decode(v any) error {
	if r.empty() {
		return nil
	}
	if err := json.Unmarshal(r.payload(), v); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// decodeList accepts a bare array or {data: [...]}; anything else is an
// empty list.
func decodeList[T any](r *response) ([]T, error) {
	var body []byte
	switch {
	case len(r.raw) > 0 && r.raw[0] == '[':
		body = r.raw
	case r.obj && len(r.env.Data) > 0 && bytes.TrimSpace(r.env.Data)[0] == '[':
		body = r.env.Data
	default:
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal list: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// do executes an authenticated request.
func (c *Client) do(ctx context.Context, method, path string, body any) (*response, error) {
	return c.doRequest(ctx, method, path, body, true)
}

// doNoAuth executes a request without the bearer token (login, public links).
func (c *Client) doNoAuth(ctx context.Context, method, path string, body any) (*response, error) {
	return c.doRequest(ctx, method, path, body, false)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, auth bool) (*response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := parseError(resp.StatusCode, respBody)
		slog.Debug("api error", "method", method, "path", path, "status", resp.StatusCode, "msg", apiErr.Message)
		return nil, apiErr
	}

	return newResponse(respBody), nil
}
