package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Config holds gateway client configuration.
type Config struct {
	// BaseURL is the inventory backend origin, e.g. "https://api.rtb.gov.rw/api".
	BaseURL string
	// Timeout bounds each request. Defaults to 15s.
	Timeout time.Duration
}

// Client talks to the external inventory REST API. A zero token means
// unauthenticated; WithToken derives a client that sends a bearer credential.
// Every call makes exactly one attempt; there is no retry or caching layer.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// New creates a gateway client for the given backend.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of the client that authenticates with the given
// bearer token. The receiver is not modified.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// errEnvelope is the backend's error body: {"message": "..."}.
type errEnvelope struct {
	Message string `json:"message"`
}

// do performs a single JSON request. A non-nil body is JSON-encoded; a non-nil
// out receives the decoded 2xx response. All failures come back as *Error —
// the method never panics and never returns partial data alongside a nil
// error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// upload streams a file as multipart/form-data. The multipart writer sets the
// content type; a JSON override here would corrupt the form boundary.
func (c *Client) upload(ctx context.Context, path, field, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	op := req.Method + " " + req.URL.Path
	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(req.Method, "network_error").Inc()
		return netError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		requestsTotal.WithLabelValues(req.Method, "error").Inc()
		var envelope errEnvelope
		// Best effort: an unparseable body falls back to the generic message.
		json.NewDecoder(resp.Body).Decode(&envelope)
		return statusError(resp.StatusCode, envelope.Message)
	}

	requestsTotal.WithLabelValues(req.Method, "ok").Inc()
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}
