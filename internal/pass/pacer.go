package pass

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pacer waits between renders.
type Pacer interface {
	Pause(ctx context.Context) (time.Duration, error)
}

// RandomPause sleeps a uniformly random duration in [Min, Max].
type RandomPause struct {
	Min, Max time.Duration

	// Int64N returns a value in [0, n). Defaults to math/rand/v2.
	Int64N func(n int64) int64
}

// Duration draws the next pause length.
func (p RandomPause) Duration() time.Duration {
	span := int64(p.Max - p.Min)
	if span <= 0 {
		return p.Min
	}

	draw := p.Int64N
	if draw == nil {
		draw = rand.Int64N //nolint:gosec // pacing, not security
	}

	return p.Min + time.Duration(draw(span+1))
}

// Pause sleeps for Duration or until ctx is done.
func (p RandomPause) Pause(ctx context.Context) (time.Duration, error) {
	d := p.Duration()
	if d <= 0 {
		return 0, ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return d, ctx.Err()
	case <-t.C:
		return d, nil
	}
}
