// internal/browser/chromedp.go
package browser

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/valpere/PriceScrapexter/internal/errors"
	"github.com/valpere/PriceScrapexter/internal/scraper"
	"github.com/valpere/PriceScrapexter/internal/utils"
)

// ChromeFetcher renders pages in headless Chrome. It satisfies
// scraper.Fetcher, so it can stand in for the HTTP client on pages that
// build their price with JavaScript or reject plain HTTP clients.
type ChromeFetcher struct {
	config *BrowserConfig
	logger utils.Logger

	// mu guards the browser lifecycle fields below.
	mu            sync.Mutex
	closed        bool
	startErr      error
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	tabs    chan struct{}
	statsMu sync.Mutex
	stats   BrowserStats
}

var _ scraper.Fetcher = (*ChromeFetcher)(nil)

// NewChromeFetcher creates a fetcher. Chrome is launched on the first Fetch.
func NewChromeFetcher(config *BrowserConfig, logger utils.Logger) *ChromeFetcher {
	if config == nil {
		config = DefaultBrowserConfig()
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultBrowserConfig().Timeout
	}
	if config.MaxTabs <= 0 {
		config.MaxTabs = 1
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &ChromeFetcher{
		config: config,
		logger: logger.WithField("component", "browser"),
		tabs:   make(chan struct{}, config.MaxTabs),
	}
}

func (c *ChromeFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox, // Required for Docker environments
	}

	if c.config.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if c.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.config.ExecPath))
	}
	if c.config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.config.UserAgent))
	}
	if c.config.ViewportWidth > 0 && c.config.ViewportHeight > 0 {
		opts = append(opts, chromedp.WindowSize(c.config.ViewportWidth, c.config.ViewportHeight))
	}
	if c.config.DisableImages {
		opts = append(opts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}
	return opts
}

var errBrowserClosed = stderrors.New("browser closed")

// start launches the browser process once and returns its context.
func (c *ChromeFetcher) start() (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed:
		return nil, errBrowserClosed
	case c.startErr != nil:
		return nil, c.startErr
	case c.browserCtx != nil:
		return c.browserCtx, nil
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), c.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// an empty Run starts the browser
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		c.startErr = fmt.Errorf("failed to start browser: %w", err)
		return nil, c.startErr
	}

	c.allocCancel = allocCancel
	c.browserCtx = browserCtx
	c.browserCancel = browserCancel
	c.logger.Info("headless browser started")
	return browserCtx, nil
}

// Fetch opens url in a new tab and returns the rendered document.
func (c *ChromeFetcher) Fetch(ctx context.Context, url string) (*scraper.Page, error) {
	if !utils.IsValidURL(url) {
		return nil, errors.NewInputError("url", "invalid URL: %q", url)
	}
	browserCtx, err := c.start()
	if err != nil {
		return nil, &errors.NetworkError{URL: url, Err: err}
	}

	select {
	case c.tabs <- struct{}{}:
		defer func() { <-c.tabs }()
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch %s: %w", url, ctx.Err())
	}

	start := time.Now()
	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	defer tabCancel()
	tabCtx, cancel := context.WithTimeout(tabCtx, c.config.Timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(url))
	if err != nil {
		return nil, c.classify(ctx, url, err)
	}
	if resp != nil && (resp.Status < 200 || resp.Status > 299) {
		c.recordError(false)
		return nil, &errors.HTTPError{URL: url, StatusCode: int(resp.Status), Status: resp.StatusText}
	}

	var html string
	if err := chromedp.Run(tabCtx, c.renderActions(&html)...); err != nil {
		return nil, c.classify(ctx, url, err)
	}

	elapsed := time.Since(start)
	c.recordLoad(elapsed)
	c.logger.Debugf("rendered %s in %s", url, utils.FormatDuration(elapsed))

	return &scraper.Page{
		URL:         url,
		StatusCode:  statusOf(resp),
		ContentType: contentTypeOf(resp),
		Body:        []byte(html),
		Duration:    elapsed,
	}, nil
}

func (c *ChromeFetcher) renderActions(html *string) []chromedp.Action {
	actions := []chromedp.Action{chromedp.WaitReady("body")}
	if c.config.WaitForElement != "" {
		actions = append(actions, chromedp.WaitVisible(c.config.WaitForElement))
	}
	if c.config.WaitDelay > 0 {
		actions = append(actions, chromedp.Sleep(c.config.WaitDelay))
	}
	return append(actions, chromedp.OuterHTML("html", html))
}

func (c *ChromeFetcher) classify(parent context.Context, url string, err error) error {
	if parent.Err() != nil {
		c.recordError(false)
		return fmt.Errorf("fetch %s: %w", url, parent.Err())
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		c.recordError(true)
		return &errors.TimeoutError{URL: url, Timeout: c.config.Timeout}
	}
	c.recordError(false)
	return &errors.NetworkError{URL: url, Err: err}
}

func (c *ChromeFetcher) recordLoad(d time.Duration) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	c.stats.PagesLoaded++
	if c.stats.PagesLoaded == 1 {
		c.stats.AverageLoadTime = d
	} else {
		c.stats.AverageLoadTime += (d - c.stats.AverageLoadTime) / time.Duration(c.stats.PagesLoaded)
	}
}

func (c *ChromeFetcher) recordError(timeout bool) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	c.stats.Errors++
	if timeout {
		c.stats.TimeoutsOccurred++
	}
}

// Stats returns a snapshot of the fetcher's statistics.
func (c *ChromeFetcher) Stats() BrowserStats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// Close shuts the browser down. It is safe to call more than once, from any
// goroutine, and on a fetcher that never started. Fetches in flight fail.
func (c *ChromeFetcher) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.browserCancel != nil {
		c.browserCancel()
		c.allocCancel()
		c.browserCtx, c.browserCancel, c.allocCancel = nil, nil, nil
	}
	return nil
}

func statusOf(resp *network.Response) int {
	if resp == nil {
		return 200
	}
	return int(resp.Status)
}

func contentTypeOf(resp *network.Response) string {
	if resp == nil {
		return "text/html"
	}
	return resp.MimeType
}
