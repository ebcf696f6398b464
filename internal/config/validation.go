// internal/config/validation.go - Validation with detailed error messages
package config

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/valpere/PriceScrapexter/internal/output"
	"github.com/valpere/PriceScrapexter/internal/scraper"
)

// ValidationError represents a detailed validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors aggregates every problem found in a configuration.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	var b strings.Builder
	b.WriteString("configuration validation failed:\n")
	for i, err := range ve {
		fmt.Fprintf(&b, "  %d. %s (field: %s", i+1, err.Message, err.Field)
		if err.Value != "" {
			fmt.Fprintf(&b, ", value: %s", err.Value)
		}
		b.WriteString(")\n")
	}
	return b.String()
}

var (
	validPacingModes   = []string{scraper.PacingFixed, scraper.PacingPeriodic, scraper.PacingRate, scraper.PacingNone}
	validOutputFormats = outputFormatNames()
	validLogLevels     = []string{"debug", "info", "warn", "error"}
	validLogFormats    = []string{"json", "console"}
)

// Validate checks the configuration and returns ValidationErrors listing
// every problem, or nil.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, value, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
	}

	if c.Server.RequestsPerSecond < 0 {
		add("server.requests_per_second", fmt.Sprint(c.Server.RequestsPerSecond), "must not be negative")
	}
	if c.Server.MaxBodyBytes < 0 {
		add("server.max_body_bytes", fmt.Sprint(c.Server.MaxBodyBytes), "must not be negative")
	}

	if c.Scraper.Timeout < 0 {
		add("scraper.timeout", c.Scraper.Timeout.String(), "must be positive")
	}
	if c.Scraper.MaxBatchSize < 1 {
		add("scraper.max_batch_size", fmt.Sprint(c.Scraper.MaxBatchSize), "must be at least 1")
	}
	if c.Scraper.MaxRetries < 0 || c.Scraper.MaxRetries > 10 {
		add("scraper.max_retries", fmt.Sprint(c.Scraper.MaxRetries), "must be between 0 and 10")
	}

	if !contains(validPacingModes, c.Pacing.Mode) {
		add("pacing.mode", c.Pacing.Mode, "must be one of %s", strings.Join(validPacingModes, ", "))
	}
	switch c.Pacing.Mode {
	case scraper.PacingFixed:
		if c.Pacing.Delay < 0 {
			add("pacing.delay", c.Pacing.Delay.String(), "must not be negative")
		}
	case scraper.PacingPeriodic:
		if c.Pacing.Every < 1 {
			add("pacing.every", fmt.Sprint(c.Pacing.Every), "must be at least 1 for periodic pacing")
		}
	case scraper.PacingRate:
		if c.Pacing.RequestsPerSecond <= 0 {
			add("pacing.requests_per_second", fmt.Sprint(c.Pacing.RequestsPerSecond), "must be positive for rate pacing")
		}
	}

	if c.Extraction.MinPrice < 0 {
		add("extraction.min_price", fmt.Sprint(c.Extraction.MinPrice), "must not be negative")
	}
	if c.Extraction.MaxPrice <= c.Extraction.MinPrice {
		add("extraction.max_price", fmt.Sprint(c.Extraction.MaxPrice), "must be greater than min_price")
	}
	if c.Extraction.MaxLength < 1 {
		add("extraction.max_length", fmt.Sprint(c.Extraction.MaxLength), "must be at least 1")
	}
	for i, sel := range c.Extraction.ExtraSelectors {
		if _, err := cascadia.Compile(sel); err != nil {
			add(fmt.Sprintf("extraction.extra_selectors[%d]", i), sel, "invalid CSS selector: %v", err)
		}
	}

	if c.Browser.Enabled && c.Browser.WaitForElement != "" {
		if _, err := cascadia.Compile(c.Browser.WaitForElement); err != nil {
			add("browser.wait_for_element", c.Browser.WaitForElement, "invalid CSS selector: %v", err)
		}
	}

	if !contains(validOutputFormats, strings.ToLower(c.Output.Format)) {
		add("output.format", c.Output.Format, "must be one of %s", strings.Join(validOutputFormats, ", "))
	}
	if !contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		add("log.level", c.Log.Level, "must be one of %s", strings.Join(validLogLevels, ", "))
	}
	if !contains(validLogFormats, strings.ToLower(c.Log.Format)) {
		add("log.format", c.Log.Format, "must be one of %s", strings.Join(validLogFormats, ", "))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		add("metrics.path", c.Metrics.Path, "must start with /")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func outputFormatNames() []string {
	formats := output.ValidOutputFormats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
