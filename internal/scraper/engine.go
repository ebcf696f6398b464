// internal/scraper/engine.go
package scraper

import (
	"bytes"
	"context"
	"time"

	"github.com/valpere/PriceScrapexter/internal/errors"
	"github.com/valpere/PriceScrapexter/internal/utils"
)

// DefaultMaxBatchSize bounds the number of products accepted by Run.
const DefaultMaxBatchSize = 10

// Item and batch statuses reported to a Recorder.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPartial = "partial"
)

// EngineConfig defines the configuration for the batch engine
type EngineConfig struct {
	MaxBatchSize  int                `yaml:"max_batch_size" json:"max_batch_size"`
	FallbackPrice string             `yaml:"fallback_price" json:"fallback_price"`
	Retry         errors.RetryPolicy `yaml:"retry" json:"retry"`
}

// Recorder receives per-fetch, per-item and per-batch observations.
type Recorder interface {
	RecordFetch(outcome string, duration time.Duration)
	RecordExtraction(strategy string)
	RecordItem(status string)
	RecordBatch(status string, size int, duration time.Duration)
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func (NopRecorder) RecordFetch(string, time.Duration) {}
func (NopRecorder) RecordExtraction(string) {}
func (NopRecorder) RecordItem(string) {}
func (NopRecorder) RecordBatch(string, int, time.Duration) {}

// Engine scrapes a list of products one at a time.
type Engine struct {
	config    EngineConfig
	fetcher   Fetcher
	extractor *PriceExtractor
	pacer     Pacer
	recorder  Recorder
	logger    utils.Logger
	sleep     errors.SleepFunc
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithPacer sets the pacing between items.
func WithPacer(p Pacer) EngineOption {
	return func(e *Engine) { e.pacer = p }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l utils.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithSleep replaces the clock used for retry backoff.
func WithSleep(s errors.SleepFunc) EngineOption {
	return func(e *Engine) { e.sleep = s }
}

// NewEngine creates an engine. A nil extractor uses the default strategies.
func NewEngine(config EngineConfig, fetcher Fetcher, extractor *PriceExtractor, opts ...EngineOption) *Engine {
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = DefaultMaxBatchSize
	}
	if config.FallbackPrice == "" {
		config.FallbackPrice = DefaultFallbackPrice
	}

	e := &Engine{
		config:   config,
		fetcher:  fetcher,
		pacer:    NoPacing{},
		recorder: NopRecorder{},
		logger:   utils.NewNopLogger(),
		sleep:    errors.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	if extractor == nil {
		extractor = NewPriceExtractor(e.logger)
	}
	e.extractor = extractor
	return e
}

// MaxBatchSize returns the largest batch Run accepts.
func (e *Engine) MaxBatchSize() int {
	return e.config.MaxBatchSize
}

type task struct {
	index   int
	product Product
}

// Run scrapes products sequentially and returns them in input order. Per-item
// failures are recorded on the item; only input errors abort the batch, and
// they do so before any fetch.
func (e *Engine) Run(ctx context.Context, products []Product) (*BatchResult, error) {
	if len(products) == 0 {
		return nil, errors.ErrEmptyBatch
	}
	if len(products) > e.config.MaxBatchSize {
		return nil, &errors.BatchSizeError{Size: len(products), Max: e.config.MaxBatchSize}
	}

	start := time.Now()
	e.logger.Infof("starting batch of %d products", len(products))

	tasks := make(chan task, len(products))
	for i, p := range products {
		tasks <- task{index: i, product: p}
	}
	close(tasks)

	result := &BatchResult{Products: make([]Product, len(products))}
	processed := 0
	for t := range tasks {
		if processed > 0 {
			if err := e.pacer.Wait(ctx, processed); err != nil {
				result.Products[t.index] = e.fail(t.product, err)
				processed++
				continue
			}
		}
		result.Products[t.index] = e.scrapeProduct(ctx, t.product)
		processed++
	}

	for _, p := range result.Products {
		if p.Error == "" {
			result.Summary.Successful++
		} else {
			result.Summary.Failed++
		}
	}
	result.Summary.Total = len(products)
	result.Summary.Duration = time.Since(start)

	status := StatusSuccess
	switch {
	case result.Summary.Successful == 0:
		status = StatusFailed
	case result.Summary.Failed > 0:
		status = StatusPartial
	}
	e.recorder.RecordBatch(status, len(products), result.Summary.Duration)
	e.logger.WithFields(map[string]interface{}{
		"total":      result.Summary.Total,
		"successful": result.Summary.Successful,
		"failed":     result.Summary.Failed,
		"duration":   utils.FormatDuration(result.Summary.Duration),
	}).Info("batch complete")

	return result, nil
}

func (e *Engine) scrapeProduct(ctx context.Context, p Product) Product {
	res := e.ScrapePrice(ctx, p.URL)
	if !res.Success() {
		err := res.Err()
		if err == nil {
			err = errors.ErrPriceNotFound
		}
		return e.fail(p, err)
	}
	p.Price = res.Price
	p.Error = ""
	e.recorder.RecordItem(StatusSuccess)
	return p
}

func (e *Engine) fail(p Product, err error) Product {
	p.Price = e.config.FallbackPrice
	p.Error = err.Error()
	e.recorder.RecordItem(StatusFailed)
	return p
}

// ScrapePrice fetches url and extracts its price. Retryable transport
// errors are retried according to the configured policy.
func (e *Engine) ScrapePrice(ctx context.Context, url string) ExtractionResult {
	start := time.Now()
	log := e.logger.WithField("url", url)
	res := ExtractionResult{URL: url}

	var page *Page
	attempts, err := e.config.Retry.Execute(ctx, e.sleep, func() error {
		var ferr error
		page, ferr = e.fetcher.Fetch(ctx, url)
		if ferr != nil && errors.IsRetryable(ferr) {
			log.Debugf("retryable fetch error: %v", ferr)
		}
		return ferr
	})
	res.Attempts = attempts
	if err != nil {
		e.recorder.RecordFetch(errors.KindOf(err).String(), time.Since(start))
		log.Warnf("fetch failed: %v", err)
		res.err = err
		res.Error = err.Error()
		res.StatusCode = errors.StatusCode(err)
		res.Duration = time.Since(start)
		return res
	}
	e.recorder.RecordFetch(StatusSuccess, page.Duration)
	res.StatusCode = page.StatusCode

	c, err := e.extractor.ExtractFromReader(bytes.NewReader(page.Body))
	res.Duration = time.Since(start)
	if err != nil {
		e.recorder.RecordExtraction("none")
		log.Infof("no price found (%d bytes)", len(page.Body))
		res.err = err
		res.Error = err.Error()
		return res
	}

	e.recorder.RecordExtraction(c.Strategy)
	log.WithField("strategy", c.Strategy).Infof("found price %q", c.Value)
	res.Price = c.Value
	res.Strategy = c.Strategy
	res.Source = c.Source
	return res
}

// Inspect fetches url once and reports every candidate the heuristics see.
func (e *Engine) Inspect(ctx context.Context, url string) (*Inspection, error) {
	page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return e.extractor.Inspect(url, page.Body)
}
