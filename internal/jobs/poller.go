package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/donaldgifford/mws-sync/internal/metrics"
)

// DefaultInterval is the pause before each status poll.
const DefaultInterval = 60 * time.Second

// StatusFunc fetches the current record for id.
type StatusFunc func(ctx context.Context, id string) (*Record, error)

// ObserveFunc is called with every record a poll returns, before the
// poller decides whether to continue.
type ObserveFunc func(ctx context.Context, rec *Record, attempt int)

// Poller waits for jobs to finish by polling their status at a fixed
// interval.
type Poller struct {
	interval    time.Duration
	maxAttempts int
	timeout     time.Duration
	log         *slog.Logger
	after       func(time.Duration) <-chan time.Time
	observe     ObserveFunc
}

// PollerOption configures the Poller.
type PollerOption func(*Poller)

// WithInterval overrides the 60s poll interval.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.interval = d
	}
}

// WithMaxAttempts bounds the number of polls. Zero means unbounded.
func WithMaxAttempts(n int) PollerOption {
	return func(p *Poller) {
		p.maxAttempts = n
	}
}

// WithTimeout bounds the total wait. Zero means no deadline.
func WithTimeout(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) PollerOption {
	return func(p *Poller) {
		p.log = l
	}
}

// WithObserver registers f to see every polled record.
func WithObserver(f ObserveFunc) PollerOption {
	return func(p *Poller) {
		p.observe = f
	}
}

// WithAfterFunc replaces time.After, letting tests drive the clock.
func WithAfterFunc(f func(time.Duration) <-chan time.Time) PollerOption {
	return func(p *Poller) {
		p.after = f
	}
}

// NewPoller creates a Poller.
func NewPoller(opts ...PollerOption) *Poller {
	p := &Poller{
		interval: DefaultInterval,
		log:      slog.Default(),
		after:    time.After,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the configured poll interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Wait sleeps, polls, and repeats until the job is terminal. A StatusDone
// record is returned as is; any other terminal status returns the record
// together with a *FailedError. Running out of attempts or time returns
// ErrPollTimeout; cancellation of ctx returns ctx's error.
func (p *Poller) Wait(ctx context.Context, kind Kind, id string, fetch StatusFunc) (*Record, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, p.timeout, ErrPollTimeout)
		defer cancel()
	}

	for attempt := 1; ; attempt++ {
		if p.maxAttempts > 0 && attempt > p.maxAttempts {
			metrics.JobsCompletedTotal.WithLabelValues(string(kind), "timeout").Inc()
			return nil, fmt.Errorf("%s %s after %d polls: %w", kind, id, p.maxAttempts, ErrPollTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, p.canceled(ctx, kind, id)
		case <-p.after(p.interval):
		}

		metrics.JobPollsTotal.WithLabelValues(string(kind)).Inc()
		rec, err := fetch(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, p.canceled(ctx, kind, id)
			}
			return nil, fmt.Errorf("polling %s %s: %w", kind, id, err)
		}

		p.log.DebugContext(ctx, "job polled",
			"kind", kind,
			"id", id,
			"attempt", attempt,
			"status", rec.Status,
		)

		if p.observe != nil {
			p.observe(ctx, rec, attempt)
		}

		if !rec.Terminal() {
			continue
		}
		if rec.Status != StatusDone {
			metrics.JobsCompletedTotal.WithLabelValues(string(kind), "failed").Inc()
			return rec, &FailedError{Kind: kind, ID: id, Status: rec.Status}
		}
		metrics.JobsCompletedTotal.WithLabelValues(string(kind), "succeeded").Inc()
		return rec, nil
	}
}

func (p *Poller) canceled(ctx context.Context, kind Kind, id string) error {
	if errors.Is(context.Cause(ctx), ErrPollTimeout) {
		metrics.JobsCompletedTotal.WithLabelValues(string(kind), "timeout").Inc()
		return fmt.Errorf("%s %s after %s: %w", kind, id, p.timeout, ErrPollTimeout)
	}
	return ctx.Err()
}
