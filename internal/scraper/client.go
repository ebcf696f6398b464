// internal/scraper/client.go
package scraper

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/valpere/PriceScrapexter/internal/errors"
	"github.com/valpere/PriceScrapexter/internal/utils"
)

// Fetch defaults.
const (
	DefaultFetchTimeout = 15 * time.Second
	DefaultMaxBodyBytes = 5 << 20
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var metaCharsetRe = regexp.MustCompile(`(?i)<meta[^>]+charset\s*=\s*["']?([\w-]+)`)

// Fetcher retrieves the HTML of a product page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Page is a fetched document, decoded to UTF-8.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	Duration    time.Duration
}

// ClientConfig defines configuration options for the HTTP client
type ClientConfig struct {
	Timeout      time.Duration
	UserAgent    string
	Headers      map[string]string
	MaxBodyBytes int64
	Transport    http.RoundTripper
}

// HTTPClient fetches pages with browser-like headers. It makes exactly one
// request per Fetch.
type HTTPClient struct {
	httpClient   *http.Client
	timeout      time.Duration
	userAgent    string
	headers      map[string]string
	maxBodyBytes int64
}

// NewHTTPClient creates a new HTTP client with the specified configuration
func NewHTTPClient(config ClientConfig) *HTTPClient {
	if config.Timeout <= 0 {
		config.Timeout = DefaultFetchTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}
	transport := config.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	return &HTTPClient{
		httpClient:   &http.Client{Transport: transport},
		timeout:      config.Timeout,
		userAgent:    config.UserAgent,
		headers:      config.Headers,
		maxBodyBytes: config.MaxBodyBytes,
	}
}

// Timeout returns the per-fetch timeout.
func (c *HTTPClient) Timeout() time.Duration {
	return c.timeout
}

// Fetch performs a single GET. Non-2xx answers become *errors.HTTPError,
// deadline overruns *errors.TimeoutError, other transport failures
// *errors.NetworkError.
func (c *HTTPClient) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	if !utils.IsValidURL(targetURL) {
		return nil, errors.NewInputError("url", "invalid URL: %q", targetURL)
	}

	start := time.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, errors.NewInputError("url", "failed to create request: %v", err)
	}
	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(ctx, targetURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &errors.HTTPError{
			URL:        targetURL,
			StatusCode: resp.StatusCode,
			Status:     strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return nil, c.classify(ctx, targetURL, err)
	}

	contentType := resp.Header.Get("Content-Type")
	return &Page{
		URL:         targetURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        decodeBody(raw, contentType),
		Duration:    time.Since(start),
	}, nil
}

// classify maps a transport error onto the error taxonomy.
func (c *HTTPClient) classify(parent context.Context, targetURL string, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("fetch %s: %w", targetURL, parent.Err())
	}
	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		return &errors.TimeoutError{URL: targetURL, Timeout: c.timeout}
	}
	return &errors.NetworkError{URL: targetURL, Err: err}
}

// setRequestHeaders applies browser-like defaults, then configured overrides.
// Accept-Encoding is left to the transport so compressed bodies are decoded.
func (c *HTTPClient) setRequestHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en-US;q=0.9,en;q=0.8")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("DNT", "1")
	req.Header.Set("Referer", "https://www.google.com/")

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
}

// decodeBody converts raw to UTF-8 using the header charset or a <meta> declaration.
func decodeBody(raw []byte, contentType string) []byte {
	charset := utils.DetectCharset(contentType)
	if charset == "" {
		head := raw
		if len(head) > 1024 {
			head = head[:1024]
		}
		if m := metaCharsetRe.FindSubmatch(head); m != nil {
			charset = string(m[1])
		}
	}
	if charset == "" || strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "utf8") {
		return raw
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return raw
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// FallbackFetcher retries blocked requests through a secondary fetcher,
// typically a headless browser.
type FallbackFetcher struct {
	Primary   Fetcher
	Secondary Fetcher
	// Statuses that trigger the secondary fetcher.
	Statuses []int
	Logger   utils.Logger
}

// NewFallbackFetcher falls back on 403, 429 and 503.
func NewFallbackFetcher(primary, secondary Fetcher, logger utils.Logger) *FallbackFetcher {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &FallbackFetcher{
		Primary:   primary,
		Secondary: secondary,
		Statuses:  []int{http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable},
		Logger:    logger,
	}
}

func (f *FallbackFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	page, err := f.Primary.Fetch(ctx, url)
	if err == nil || f.Secondary == nil {
		return page, err
	}

	code := errors.StatusCode(err)
	for _, s := range f.Statuses {
		if code == s {
			f.Logger.WithField("url", url).Infof("primary fetch blocked (%d), retrying with fallback fetcher", code)
			return f.Secondary.Fetch(ctx, url)
		}
	}
	return nil, err
}
