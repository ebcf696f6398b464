// pkg/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Error is a non-2xx answer from the API.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to a PriceScrapexter server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the server at baseURL. Batches can take
// minutes, so the default HTTP client has a generous timeout.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scrape prices a batch of products. The server rejects empty or oversized batches.
func (c *Client) Scrape(ctx context.Context, products []Product) (*ScrapeResponse, error) {
	var resp ScrapeResponse
	if err := c.postJSON(ctx, "/api/scrape", map[string]interface{}{"products": products}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Debug reports what the price heuristics see on pageURL.
func (c *Client) Debug(ctx context.Context, pageURL string) (*DebugResponse, error) {
	var resp DebugResponse
	if err := c.postJSON(ctx, "/api/debug-scrape", map[string]string{"url": pageURL}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Import uploads a catalog CSV and returns the products it expands to.
func (c *Client) Import(ctx context.Context, filename string, csv io.Reader) ([]Product, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, csv); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var resp ScrapeResponse
	if err := c.do(ctx, "/api/import", mw.FormDataContentType(), &body, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// Export renders products in format (csv, json, yaml or xlsx).
func (c *Client) Export(ctx context.Context, format string, products []Product) (*Export, error) {
	data, err := json.Marshal(map[string]interface{}{"products": products})
	if err != nil {
		return nil, err
	}

	path := "/api/export?format=" + url.QueryEscape(format)
	resp, err := c.send(ctx, http.MethodPost, path, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	export := &Export{ContentType: resp.Header.Get("Content-Type"), Data: body}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		export.FileName = params["filename"]
	}
	return export, nil
}

// Stats summarizes the prices of products. It returns nil when none has a price.
func (c *Client) Stats(ctx context.Context, products []Product) (*Stats, error) {
	var resp struct {
		Stats *Stats `json:"stats"`
	}
	if err := c.postJSON(ctx, "/api/stats", map[string]interface{}{"products": products}, &resp); err != nil {
		return nil, err
	}
	return resp.Stats, nil
}

// Health fetches the health report. An unhealthy server still returns a report.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var health HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("decode health: %w", err)
	}
	return &health, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, path, "application/json", bytes.NewReader(data), out)
}

func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader, out interface{}) error {
	resp, err := c.send(ctx, http.MethodPost, path, contentType, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// send performs the request and turns non-2xx answers into *Error.
func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	}
	return nil, apiErr
}

// UnmarshalJSON accepts both shapes of the debug body: "status" is the string
// "success" for a parsed page and the upstream HTTP code otherwise.
func (d *DebugResponse) UnmarshalJSON(data []byte) error {
	type plain DebugResponse
	aux := struct {
		*plain
		Status json.RawMessage `json:"status"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if len(aux.Status) == 0 {
		return nil
	}
	if aux.Status[0] == '"' {
		return json.Unmarshal(aux.Status, &d.Status)
	}
	return json.Unmarshal(aux.Status, &d.StatusCode)
}
