// internal/config/convert.go
package config

import (
	"github.com/valpere/PriceScrapexter/internal/errors"
	"github.com/valpere/PriceScrapexter/internal/scraper"
)

// ClientConfig returns the HTTP fetcher settings.
func (c *Config) ClientConfig() scraper.ClientConfig {
	return scraper.ClientConfig{
		Timeout:      c.Scraper.Timeout,
		UserAgent:    c.Scraper.UserAgent,
		Headers:      c.Scraper.Headers,
		MaxBodyBytes: c.Scraper.MaxBodyBytes,
	}
}

// EngineConfig returns the batch engine settings.
func (c *Config) EngineConfig() scraper.EngineConfig {
	retry := errors.DefaultRetryPolicy()
	retry.MaxRetries = c.Scraper.MaxRetries
	if c.Scraper.RetryDelay > 0 {
		retry.BaseDelay = c.Scraper.RetryDelay
	}

	return scraper.EngineConfig{
		MaxBatchSize:  c.Scraper.MaxBatchSize,
		FallbackPrice: c.Scraper.FallbackPrice,
		Retry:         retry,
	}
}

// PacerConfig returns the pacing settings.
func (c *Config) PacerConfig() scraper.PacingConfig {
	return scraper.PacingConfig{
		Mode:              c.Pacing.Mode,
		Delay:             c.Pacing.Delay,
		Every:             c.Pacing.Every,
		Pause:             c.Pacing.Pause,
		RequestsPerSecond: c.Pacing.RequestsPerSecond,
		Burst:             c.Pacing.Burst,
	}
}

// PriceValidator returns a validator with the configured bounds.
func (c *Config) PriceValidator() *scraper.PriceValidator {
	return &scraper.PriceValidator{
		MinValue:  c.Extraction.MinPrice,
		MaxValue:  c.Extraction.MaxPrice,
		MaxLength: c.Extraction.MaxLength,
	}
}

// Strategies returns the extraction strategies with configured selectors and bounds.
func (c *Config) Strategies() []scraper.Strategy {
	return scraper.DefaultStrategies(c.PriceValidator(), c.Extraction.ExtraSelectors)
}
