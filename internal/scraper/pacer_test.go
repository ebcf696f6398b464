package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleep struct {
	durations []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.durations = append(r.durations, d)
	return ctx.Err()
}

func TestFixedDelay(t *testing.T) {
	rec := &recordingSleep{}
	p := &FixedDelay{Delay: 500 * time.Millisecond, Sleep: rec.sleep}

	for i := 0; i < 4; i++ {
		require.NoError(t, p.Wait(context.Background(), i))
	}
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond}, rec.durations)
}

func TestPeriodicPause(t *testing.T) {
	rec := &recordingSleep{}
	p := &PeriodicPause{Every: 2, Pause: time.Second, Sleep: rec.sleep}

	for i := 0; i <= 6; i++ {
		require.NoError(t, p.Wait(context.Background(), i))
	}
	assert.Len(t, rec.durations, 3)
}

func TestNewPacer(t *testing.T) {
	p, err := NewPacer(PacingConfig{Mode: PacingFixed, Delay: time.Second}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FixedDelay{}, p)

	p, err = NewPacer(PacingConfig{Mode: PacingRate, RequestsPerSecond: 1000}, nil)
	require.NoError(t, err)
	assert.NoError(t, p.Wait(context.Background(), 1))

	p, err = NewPacer(PacingConfig{Mode: PacingNone}, nil)
	require.NoError(t, err)
	assert.NoError(t, p.Wait(context.Background(), 1))

	_, err = NewPacer(PacingConfig{Mode: PacingPeriodic}, nil)
	assert.Error(t, err)

	_, err = NewPacer(PacingConfig{Mode: PacingRate}, nil)
	assert.Error(t, err)

	_, err = NewPacer(PacingConfig{Mode: "burst"}, nil)
	assert.Error(t, err)
}

func TestPacerHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &FixedDelay{Delay: time.Hour}
	assert.ErrorIs(t, p.Wait(ctx, 1), context.Canceled)
	assert.ErrorIs(t, NoPacing{}.Wait(ctx, 1), context.Canceled)
}
