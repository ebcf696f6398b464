// internal/scraper/pacer.go
package scraper

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/valpere/PriceScrapexter/internal/errors"
)

// Pacing modes accepted by NewPacer.
const (
	PacingFixed    = "fixed"
	PacingPeriodic = "periodic"
	PacingRate     = "rate"
	PacingNone     = "none"
)

// Pacer throttles a batch. Wait is called before every item except the
// first; processed is the number of items already handled.
type Pacer interface {
	Wait(ctx context.Context, processed int) error
}

// PacingConfig selects and parameterizes a Pacer.
type PacingConfig struct {
	Mode              string
	Delay             time.Duration
	Every             int
	Pause             time.Duration
	RequestsPerSecond float64
	Burst             int
}

// NewPacer builds the Pacer described by cfg. sleep may be nil.
func NewPacer(cfg PacingConfig, sleep errors.SleepFunc) (Pacer, error) {
	switch cfg.Mode {
	case PacingFixed, "":
		return &FixedDelay{Delay: cfg.Delay, Sleep: sleep}, nil
	case PacingPeriodic:
		if cfg.Every <= 0 {
			return nil, fmt.Errorf("periodic pacing requires every > 0, got %d", cfg.Every)
		}
		return &PeriodicPause{Every: cfg.Every, Pause: cfg.Pause, Sleep: sleep}, nil
	case PacingRate:
		if cfg.RequestsPerSecond <= 0 {
			return nil, fmt.Errorf("rate pacing requires requests_per_second > 0, got %v", cfg.RequestsPerSecond)
		}
		return NewRateLimitedPacer(cfg.RequestsPerSecond, cfg.Burst), nil
	case PacingNone:
		return NoPacing{}, nil
	}
	return nil, fmt.Errorf("unknown pacing mode %q", cfg.Mode)
}

// FixedDelay waits the same delay between consecutive items.
type FixedDelay struct {
	Delay time.Duration
	Sleep errors.SleepFunc
}

func (p *FixedDelay) Wait(ctx context.Context, processed int) error {
	if processed <= 0 || p.Delay <= 0 {
		return ctx.Err()
	}
	return sleepWith(p.Sleep)(ctx, p.Delay)
}

// PeriodicPause pauses after every Every items.
type PeriodicPause struct {
	Every int
	Pause time.Duration
	Sleep errors.SleepFunc
}

func (p *PeriodicPause) Wait(ctx context.Context, processed int) error {
	if processed <= 0 || p.Every <= 0 || processed%p.Every != 0 {
		return ctx.Err()
	}
	return sleepWith(p.Sleep)(ctx, p.Pause)
}

// RateLimitedPacer spaces items with a token bucket.
type RateLimitedPacer struct {
	limiter *rate.Limiter
}

// NewRateLimitedPacer allows requestsPerSecond items per second with the given burst.
func NewRateLimitedPacer(requestsPerSecond float64, burst int) *RateLimitedPacer {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedPacer{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

func (p *RateLimitedPacer) Wait(ctx context.Context, _ int) error {
	return p.limiter.Wait(ctx)
}

// NoPacing never waits.
type NoPacing struct{}

func (NoPacing) Wait(ctx context.Context, _ int) error { return ctx.Err() }

func sleepWith(sleep errors.SleepFunc) errors.SleepFunc {
	if sleep == nil {
		return errors.Sleep
	}
	return sleep
}
