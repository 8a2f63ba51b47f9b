package poller

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
)

const (
	DefaultInterval = 5 * time.Second
	DefaultTimeout  = 120 * time.Second
)

// Config is loaded with the POLL prefix.
type Config struct {
	Interval       time.Duration `split_words:"true" default:"5s"`
	MaxRetries     int           `split_words:"true" default:"3"`
	InitialBackoff time.Duration `split_words:"true" default:"1s"`
	MaxBackoff     time.Duration `split_words:"true" default:"8s"`
}

// Options turns the loaded settings into poller options for one wait.
func (c Config) Options(timeout time.Duration) Options {
	return Options{
		Interval: c.Interval,
		Timeout:  timeout,
		Retry: &RetryPolicy{
			MaxRetries:     c.MaxRetries,
			InitialBackoff: c.InitialBackoff,
			MaxBackoff:     c.MaxBackoff,
		},
	}
}

type Options struct {
	Interval time.Duration
	// Timeout is used as given. Zero means one fetch and no waiting;
	// callers wanting the usual wait pass DefaultTimeout.
	Timeout time.Duration
	// Retry defaults to DefaultRetryPolicy when nil.
	Retry *RetryPolicy

	Now    func() time.Time
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *zerolog.Logger
}

type Result struct {
	Snapshot *contractx.CallSnapshot
	Outcome  contractx.Outcome
	// Polls counts successful status fetches, the deadline fetch included.
	Polls   int
	Elapsed time.Duration
}

// TimedOut reports whether the deadline passed without a terminal status.
func (r Result) TimedOut() bool {
	return r.Outcome == contractx.OutcomeTimeout
}

type Poller struct {
	transport contractx.Transport
	interval  time.Duration
	timeout   time.Duration
	retry     RetryPolicy
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
	logger    *zerolog.Logger
}

func New(transport contractx.Transport, opts Options) (*Poller, error) {
	if transport == nil {
		return nil, errors.New("transport is required")
	}

	p := &Poller{
		transport: transport,
		interval:  opts.Interval,
		timeout:   opts.Timeout,
		retry:     DefaultRetryPolicy(),
		now:       opts.Now,
		sleep:     opts.Sleep,
		logger:    opts.Logger,
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	if p.timeout < 0 {
		p.timeout = 0
	}
	if opts.Retry != nil {
		p.retry = opts.Retry.normalized()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.sleep == nil {
		p.sleep = sleepContext
	}
	return p, nil
}

// Wait polls the call until it reaches a terminal status or the timeout elapses.
// On timeout one more fetch is made and its snapshot is returned with OutcomeTimeout
// unless that snapshot happens to be terminal. Transport errors that survive the
// retry policy abort the wait.
func (p *Poller) Wait(ctx context.Context, handle contractx.CallHandle) (Result, error) {
	logger := p.log().With().Str("call_id", string(handle)).Logger()
	start := p.now()
	polls := 0

	logger.Info().Dur("timeout", p.timeout).Msg("waiting for call to complete")

	for p.now().Sub(start) < p.timeout {
		snap, err := p.fetch(ctx, handle, &logger)
		if err != nil {
			return Result{Polls: polls, Elapsed: p.now().Sub(start)}, err
		}
		polls++

		status := snap.Status.Normalize()
		if status.IsTerminal() {
			return Result{
				Snapshot: snap,
				Outcome:  contractx.OutcomeTerminal,
				Polls:    polls,
				Elapsed:  p.now().Sub(start),
			}, nil
		}

		logger.Info().
			Str("status", string(status)).
			Int64("elapsed_s", int64(p.now().Sub(start)/time.Second)).
			Msg("call still active")

		if err := p.sleep(ctx, p.interval); err != nil {
			return Result{Snapshot: snap, Polls: polls, Elapsed: p.now().Sub(start)}, err
		}
	}

	logger.Warn().Msg("call polling timed out, returning current state")

	snap, err := p.fetch(ctx, handle, &logger)
	if err != nil {
		return Result{Polls: polls, Elapsed: p.now().Sub(start)}, err
	}
	polls++

	outcome := contractx.OutcomeTimeout
	if snap.Status.IsTerminal() {
		outcome = contractx.OutcomeTerminal
	}
	return Result{
		Snapshot: snap,
		Outcome:  outcome,
		Polls:    polls,
		Elapsed:  p.now().Sub(start),
	}, nil
}

func (p *Poller) fetch(ctx context.Context, handle contractx.CallHandle, logger *zerolog.Logger) (*contractx.CallSnapshot, error) {
	for attempt := 0; ; attempt++ {
		snap, err := p.transport.GetCall(ctx, handle)
		if err == nil {
			if snap == nil {
				return nil, &contractx.TransportError{Op: "get call", Err: errors.New("empty snapshot")}
			}
			return snap, nil
		}
		if attempt >= p.retry.MaxRetries || !isRetryable(err) {
			return nil, err
		}

		wait := p.retry.Backoff(attempt + 1)
		logger.Warn().Err(err).
			Int("attempt", attempt+1).
			Int("max_retries", p.retry.MaxRetries).
			Dur("backoff", wait).
			Msg("status fetch failed, retrying")

		if err := p.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (p *Poller) log() *zerolog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return &log.Logger
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
