// internal/errors/service.go - Retry policy and user-facing error reporting
package errors

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RetryPolicy defines retry behavior for retryable fetch errors.
type RetryPolicy struct {
	MaxRetries    int           `yaml:"max_retries" json:"max_retries"`
	BaseDelay     time.Duration `yaml:"base_delay" json:"base_delay"`
	BackoffFactor float64       `yaml:"backoff_factor" json:"backoff_factor"`
	MaxDelay      time.Duration `yaml:"max_delay" json:"max_delay"`
}

// DefaultRetryPolicy performs no retries, matching one fetch per product.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    0,
		BaseDelay:     2 * time.Second,
		BackoffFactor: 2.0,
		MaxDelay:      30 * time.Second,
	}
}

// ShouldRetry reports whether another attempt is allowed after attempt failed with err.
func (p RetryPolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil || attempt >= p.MaxRetries {
		return false
	}
	return IsRetryable(err)
}

// Delay computes the exponential backoff before attempt+1.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	factor := p.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	delay := float64(p.BaseDelay)
	for i := 0; i < attempt; i++ {
		delay *= factor
	}
	if p.MaxDelay > 0 && time.Duration(delay) > p.MaxDelay {
		return p.MaxDelay
	}
	return time.Duration(delay)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real-clock SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Execute runs op until it succeeds, the policy gives up, or ctx is done.
func (p RetryPolicy) Execute(ctx context.Context, sleep SleepFunc, op func() error) (attempts int, err error) {
	if sleep == nil {
		sleep = Sleep
	}
	for attempt := 0; ; attempt++ {
		err = op()
		attempts = attempt + 1
		if !p.ShouldRetry(err, attempt) {
			return attempts, err
		}
		if serr := sleep(ctx, p.Delay(attempt)); serr != nil {
			return attempts, err
		}
	}
}

// UserMessage converts err into a title, message and suggestions for humans.
func UserMessage(err error) (title, message string, suggestions []string) {
	if err == nil {
		return "", "", nil
	}

	errStr := strings.ToLower(err.Error())

	switch KindOf(err) {
	case KindTimeout:
		return "Connection Timeout",
			"The request timed out while waiting for the product page.",
			[]string{
				"Increase scraper.timeout in the configuration",
				"The website might be slow or experiencing issues",
			}
	case KindHTTPStatus:
		code := StatusCode(err)
		switch {
		case code == 429:
			return "Rate Limit Exceeded",
				"The website is rejecting requests because they arrive too quickly.",
				[]string{
					"Increase pacing.delay or lower pacing.requests_per_second",
					"Scrape fewer products per batch",
				}
		case code == 401 || code == 403:
			return "Access Denied",
				"The website refused to serve the product page.",
				[]string{
					"Enable the browser fallback (browser.enabled: true)",
					"Check whether the page requires a login",
				}
		case code == 404:
			return "Page Not Found",
				"The product page does not exist.",
				[]string{"Check the competitor URL in the catalog"}
		}
		return "Unexpected Response",
			fmt.Sprintf("The website answered with %s.", err.Error()),
			[]string{"Try again later"}
	case KindExtractionMiss:
		return "Price Not Found",
			"None of the detection strategies found a plausible price on the page.",
			[]string{
				"Run 'pricescrapexter extract --debug <url>' to inspect candidates",
				"Add a site-specific selector under extraction.extra_selectors",
				"The price might be rendered by JavaScript; enable the browser fallback",
			}
	case KindInput:
		return "Invalid Input", err.Error(), []string{"Check the request body or CSV file"}
	case KindCanceled:
		return "Canceled", "The operation was canceled.", nil
	case KindConfig:
		return "Configuration Error", err.Error(), []string{
			"Check YAML indentation (use spaces, not tabs)",
			"Run 'pricescrapexter config validate <file>'",
		}
	case KindOutput:
		return "Output Error", err.Error(), []string{
			"Check that the output directory is writable",
			"Check for free disk space",
		}
	}

	if strings.Contains(errStr, "no such host") {
		return "Domain Not Found",
			"Could not find the website domain.",
			[]string{
				"Check if the URL is spelled correctly",
				"Check your DNS settings",
			}
	}
	if strings.Contains(errStr, "connection refused") {
		return "Connection Refused",
			"The website server refused the connection.",
			[]string{"The server might be temporarily down"}
	}
	if strings.Contains(errStr, "csv") {
		return "Catalog Error", err.Error(), []string{
			`The CSV needs a "product_name" column and competitor_url_1..3 columns`,
		}
	}

	return "Unexpected Error",
		"An unexpected error occurred during the operation.",
		[]string{"Try running the command again"}
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch KindOf(err) {
	case KindNetwork, KindTimeout:
		return 3
	case KindExtractionMiss:
		return 4
	case KindInput:
		return 6
	case KindHTTPStatus:
		if StatusCode(err) == 429 {
			return 7
		}
		return 3
	case KindCanceled:
		return 130
	case KindConfig:
		return 2
	case KindOutput:
		return 5
	}
	return 1
}

// FormatForCLI renders err for terminal output. verbose appends the raw error.
func FormatForCLI(err error, verbose bool) string {
	title, message, suggestions := UserMessage(err)

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n%s\n", title, message)
	if verbose {
		fmt.Fprintf(&b, "\nTechnical details: %v\n", err)
	}
	if len(suggestions) > 0 {
		b.WriteString("\nSuggestions:\n")
		for _, s := range suggestions {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}
	return b.String()
}
