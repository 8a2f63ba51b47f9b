package poller

import (
	"context"
	"errors"
	"time"

	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
)

const (
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = time.Second
	DefaultMaxBackoff     = 8 * time.Second
	defaultMultiplier     = 2.0
)

// RetryPolicy bounds how often a single status fetch is repeated after a
// transient transport failure. MaxRetries counts attempts after the first one.
type RetryPolicy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     DefaultMaxRetries,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
		Multiplier:     defaultMultiplier,
	}
}

// NoRetry fails a poll on the first transport error.
func NoRetry() RetryPolicy {
	return RetryPolicy{}
}

func (r RetryPolicy) normalized() RetryPolicy {
	if r.MaxRetries < 0 {
		r.MaxRetries = 0
	}
	if r.InitialBackoff < 0 {
		r.InitialBackoff = 0
	}
	if r.Multiplier < 1 {
		r.Multiplier = defaultMultiplier
	}
	if r.MaxBackoff > 0 && r.InitialBackoff > r.MaxBackoff {
		r.InitialBackoff = r.MaxBackoff
	}
	return r
}

// Backoff returns the wait before retry number attempt (1-based).
func (r RetryPolicy) Backoff(attempt int) time.Duration {
	r = r.normalized()
	if attempt <= 1 {
		return r.InitialBackoff
	}
	wait := float64(r.InitialBackoff)
	for i := 1; i < attempt; i++ {
		wait *= r.Multiplier
		if r.MaxBackoff > 0 && wait >= float64(r.MaxBackoff) {
			return r.MaxBackoff
		}
	}
	return time.Duration(wait)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var terr *contractx.TransportError
	if errors.As(err, &terr) {
		return terr.Retryable()
	}
	return false
}
