// Package backoff implements the retry delay policy for transient failures.
package backoff

import (
	"errors"
	"math/rand/v2"
	"time"
)

// ErrInvalidBase indicates the configured base delay is not positive.
var ErrInvalidBase = errors.New("base delay must be positive")

// Policy computes exponential backoff with jitter, capped at a maximum delay.
type Policy struct {
	base   time.Duration
	max    time.Duration
	jitter float64
}

// Options configure a Policy.
type Options struct {
	// Base is the delay before the first retry.
	Base time.Duration
	// Max caps the computed delay; defaults to 15 minutes.
	Max time.Duration
	// Jitter is the fraction of the delay randomized in [1-j, 1+j]; defaults to 0.2.
	Jitter float64
}

// New constructs a Policy from the given options.
func New(opts Options) (*Policy, error) {
	if opts.Base <= 0 {
		return nil, ErrInvalidBase
	}
	maxDelay := opts.Max
	if maxDelay <= 0 {
		maxDelay = 15 * time.Minute
	}
	jitter := opts.Jitter
	if jitter <= 0 || jitter >= 1 {
		jitter = 0.2
	}
	return &Policy{base: opts.Base, max: maxDelay, jitter: jitter}, nil
}

// Delay returns the backoff delay for the given attempt (1-based).
// Attempt n waits base * 2^(n-1), jittered, never exceeding the cap.
func (p *Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := p.base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.max {
			d = p.max
			break
		}
	}

	// Randomize within [d*(1-jitter), d*(1+jitter)].
	span := float64(d) * p.jitter
	jittered := float64(d) - span + rand.Float64()*2*span
	out := time.Duration(jittered)
	if out > p.max {
		out = p.max
	}
	if out < time.Second {
		out = time.Second
	}
	return out
}

// NextDue returns the absolute due time for the given attempt.
func (p *Policy) NextDue(now time.Time, attempt int) time.Time {
	return now.Add(p.Delay(attempt))
}
