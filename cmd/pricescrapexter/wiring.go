// cmd/pricescrapexter/wiring.go
package main

import (
	"github.com/valpere/PriceScrapexter/internal/browser"
	"github.com/valpere/PriceScrapexter/internal/config"
	"github.com/valpere/PriceScrapexter/internal/scraper"
	"github.com/valpere/PriceScrapexter/internal/utils"
)

// pipeline bundles the engine with the pieces commands need alongside it.
type pipeline struct {
	engine *scraper.Engine
	pacer  scraper.Pacer
	chrome *browser.ChromeFetcher
}

func (p *pipeline) Close() {
	if p.chrome != nil {
		_ = p.chrome.Close()
	}
}

// buildPipeline wires the fetcher, pacer and extractor described by c.
// rec may be nil.
func buildPipeline(c *config.Config, log utils.Logger, rec scraper.Recorder) (*pipeline, error) {
	pacer, err := scraper.NewPacer(c.PacerConfig(), nil)
	if err != nil {
		return nil, err
	}

	p := &pipeline{pacer: pacer}

	var fetcher scraper.Fetcher = scraper.NewHTTPClient(c.ClientConfig())
	if c.Browser.Enabled {
		p.chrome = browser.NewChromeFetcher(browserConfig(c), log)
		fetcher = scraper.NewFallbackFetcher(fetcher, p.chrome, log)
		log.Info("headless browser fallback enabled")
	}

	opts := []scraper.EngineOption{
		scraper.WithPacer(pacer),
		scraper.WithLogger(log),
	}
	if rec != nil {
		opts = append(opts, scraper.WithRecorder(rec))
	}

	p.engine = scraper.NewEngine(
		c.EngineConfig(),
		fetcher,
		scraper.NewPriceExtractor(log, c.Strategies()...),
		opts...,
	)
	return p, nil
}

func browserConfig(c *config.Config) *browser.BrowserConfig {
	bc := browser.DefaultBrowserConfig()
	bc.Headless = c.Browser.Headless
	bc.Timeout = c.Browser.Timeout
	bc.WaitDelay = c.Browser.WaitDelay
	bc.WaitForElement = c.Browser.WaitForElement
	bc.ExecPath = c.Browser.ExecPath
	bc.UserAgent = c.Browser.UserAgent
	if bc.UserAgent == "" {
		bc.UserAgent = c.Scraper.UserAgent
	}
	return bc
}
