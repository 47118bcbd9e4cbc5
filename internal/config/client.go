package config

import (
	"log/slog"
	"net/http"

	"github.com/donaldgifford/mws-sync/internal/jobs"
	"github.com/donaldgifford/mws-sync/internal/mws"
)

// NewClient builds a service client with the configured timeout, rate
// limiter, user agent and dump directory.
func (m *MWSConfig) NewClient(log *slog.Logger) (*mws.Client, error) {
	opts := []mws.Option{
		mws.WithHTTPClient(&http.Client{Timeout: m.Timeout}),
		mws.WithRateLimiter(mws.NewRateLimiter(
			m.RateLimit.PerSecond,
			m.RateLimit.Burst,
			m.RateLimit.HourlyLimit,
		)),
	}
	if log != nil {
		opts = append(opts, mws.WithLogger(log))
	}
	if m.UserAgent != "" {
		opts = append(opts, mws.WithUserAgent(m.UserAgent))
	}
	if m.DumpDir != "" {
		opts = append(opts, mws.WithDumpDir(m.DumpDir))
	}
	return mws.NewClient(m.Credentials(), opts...)
}

// PollerOptions converts the polling settings into poller options.
func (p *PollingConfig) PollerOptions() []jobs.PollerOption {
	opts := []jobs.PollerOption{
		jobs.WithInterval(p.Interval),
		jobs.WithTimeout(p.Timeout),
	}
	if p.MaxAttempts > 0 {
		opts = append(opts, jobs.WithMaxAttempts(p.MaxAttempts))
	}
	return opts
}
