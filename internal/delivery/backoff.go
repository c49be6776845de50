package delivery

import (
	"context"
	"math/rand"
	"time"
)

const (
	DefaultInterval    = 2 * time.Second
	DefaultMaxInterval = 30 * time.Second
	BackoffMultiplier  = 1.5
	JitterFactor       = 0.3
)

// Backoff is an adaptive poll interval. It grows by Multiplier while polls
// find nothing new and is reset when they do.
type Backoff struct {
	// Initial is the interval after a reset.
	Initial time.Duration
	// Max caps the interval.
	Max time.Duration
	// Multiplier is the factor applied on each Grow.
	Multiplier float64
	// Jitter is the randomization factor (0.0 to 1.0) added on top of the
	// interval by Delay.
	Jitter float64

	current time.Duration
}

// DefaultBackoff returns the default polling backoff.
func DefaultBackoff() Backoff {
	return Backoff{
		Initial:    DefaultInterval,
		Max:        DefaultMaxInterval,
		Multiplier: BackoffMultiplier,
		Jitter:     JitterFactor,
	}
}

func (b *Backoff) normalize() {
	if b.Initial <= 0 {
		b.Initial = DefaultInterval
	}
	if b.Max < b.Initial {
		b.Max = b.Initial
	}
	if b.Multiplier < 1 {
		b.Multiplier = 1
	}
	if b.current == 0 {
		b.current = b.Initial
	}
}

// Current returns the interval without jitter.
func (b *Backoff) Current() time.Duration {
	b.normalize()
	return b.current
}

// Reset returns the interval to Initial.
func (b *Backoff) Reset() {
	b.normalize()
	b.current = b.Initial
}

// Grow increases the interval, capped at Max.
func (b *Backoff) Grow() {
	b.normalize()
	next := time.Duration(float64(b.current) * b.Multiplier)
	if next > b.Max {
		next = b.Max
	}
	b.current = next
}

// Delay returns the current interval plus jitter.
func (b *Backoff) Delay() time.Duration {
	d := b.Current()
	if b.Jitter > 0 {
		d += time.Duration(rand.Float64() * b.Jitter * float64(d))
	}
	return d
}

// Wait sleeps for Delay or until ctx is done.
func (b *Backoff) Wait(ctx context.Context) error {
	timer := time.NewTimer(b.Delay())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
