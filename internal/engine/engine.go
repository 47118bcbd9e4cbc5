// Package engine runs configured report definitions: it requests each
// report, polls it to completion while persisting progress, archives the
// payload and publishes a completion event.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/donaldgifford/mws-sync/internal/archive"
	"github.com/donaldgifford/mws-sync/internal/config"
	"github.com/donaldgifford/mws-sync/internal/jobs"
	"github.com/donaldgifford/mws-sync/internal/metrics"
	"github.com/donaldgifford/mws-sync/internal/mws"
	"github.com/donaldgifford/mws-sync/internal/notify"
	"github.com/donaldgifford/mws-sync/internal/store"
	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

var (
	// ErrUnknownReport is returned for a name with no report definition.
	ErrUnknownReport = errors.New("unknown report")

	// ErrReportRunning is returned when a definition already has a job in
	// flight.
	ErrReportRunning = errors.New("report already running")

	errInterrupted = errors.New("interrupted before the report request was accepted")
)

// ReportRunner is the subset of *mws.Reports the engine drives.
type ReportRunner interface {
	RequestReport(ctx context.Context, in mws.RequestReportInput) (*mws.ReportRequestInfo, error)
	WaitAndDownload(ctx context.Context, requestID string, p *jobs.Poller) (*mws.ReportResult, error)
}

// Engine orchestrates report jobs.
type Engine struct {
	store    store.Store
	reports  ReportRunner
	archive  *archive.Archive
	notifier notify.Notifier
	log      *slog.Logger
	tracer   trace.Tracer

	defs        []config.ReportConfig
	pollOpts    []jobs.PollerOption
	concurrency int
	nowFunc     func() time.Time

	mu      sync.Mutex
	running map[string]bool

	// bg outlives request contexts; Shutdown cancels it.
	bg     context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithArchive stores downloaded payloads. Without it only the size is
// recorded.
func WithArchive(a *archive.Archive) EngineOption {
	return func(e *Engine) {
		e.archive = a
	}
}

// WithNotifier sets the completion notifier.
func WithNotifier(n notify.Notifier) EngineOption {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithPollerOptions sets the options every job poller is built with.
func WithPollerOptions(opts ...jobs.PollerOption) EngineOption {
	return func(e *Engine) {
		e.pollOpts = append(e.pollOpts, opts...)
	}
}

// WithTracerProvider records job spans on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) EngineOption {
	return func(eng *Engine) {
		eng.tracer = tp.Tracer("github.com/donaldgifford/mws-sync/internal/engine")
	}
}

// WithConcurrency bounds how many jobs RunAll and Resume drive at once.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithNowFunc overrides the clock used for report windows and timestamps.
func WithNowFunc(f func() time.Time) EngineOption {
	return func(e *Engine) {
		e.nowFunc = f
	}
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	s store.Store,
	r ReportRunner,
	defs []config.ReportConfig,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		store:       s,
		reports:     r,
		defs:        defs,
		log:         slog.Default(),
		tracer:      otel.Tracer("github.com/donaldgifford/mws-sync/internal/engine"),
		concurrency: 2,
		nowFunc:     time.Now,
		running:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.notifier == nil {
		eng.notifier = notify.NewNoOpNotifier(eng.log)
	}
	if eng.concurrency < 1 {
		eng.concurrency = 1
	}
	eng.bg, eng.cancel = context.WithCancel(context.Background())
	return eng
}

// Definitions returns the configured report definitions.
func (eng *Engine) Definitions() []config.ReportConfig {
	return slices.Clone(eng.defs)
}

func (eng *Engine) definition(name string) (config.ReportConfig, error) {
	for _, d := range eng.defs {
		if d.Name == name {
			return d, nil
		}
	}
	return config.ReportConfig{}, fmt.Errorf("%w: %s", ErrUnknownReport, name)
}

// claim marks name as running. Only one job per definition is in flight.
func (eng *Engine) claim(name string) bool {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	if eng.running[name] {
		return false
	}
	eng.running[name] = true
	return true
}

func (eng *Engine) release(name string) {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	delete(eng.running, name)
}

// Running reports whether a job for name is in flight.
func (eng *Engine) Running(name string) bool {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.running[name]
}

// RunReport requests the named report and blocks until the job is final.
func (eng *Engine) RunReport(ctx context.Context, name string) (*domain.Job, error) {
	def, err := eng.definition(name)
	if err != nil {
		return nil, err
	}
	if !eng.claim(name) {
		return nil, fmt.Errorf("%w: %s", ErrReportRunning, name)
	}
	defer eng.release(name)

	job, err := eng.submit(ctx, &def)
	if err != nil {
		return job, err
	}
	return eng.complete(ctx, job)
}

// RunAll runs every definition, at most concurrency at a time. Definitions
// that are already running are skipped.
func (eng *Engine) RunAll(ctx context.Context) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(eng.concurrency)

	for _, def := range eng.defs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if _, err := eng.RunReport(ctx, def.Name); err != nil {
				if errors.Is(err, ErrReportRunning) {
					eng.log.Info("report already running, skipping", "report", def.Name)
					return nil
				}
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Trigger submits the named report and finishes it in the background. The
// returned job is in the polling state, or failed when the request was
// rejected.
func (eng *Engine) Trigger(ctx context.Context, name string) (*domain.Job, error) {
	def, err := eng.definition(name)
	if err != nil {
		return nil, err
	}
	if !eng.claim(name) {
		return nil, fmt.Errorf("%w: %s", ErrReportRunning, name)
	}

	job, err := eng.submit(ctx, &def)
	if err != nil {
		eng.release(name)
		return job, err
	}

	snapshot := *job
	eng.goBackground(name, func(bg context.Context) {
		_, _ = eng.complete(bg, job)
	})
	return &snapshot, nil
}

// Resume picks up jobs a previous process left active. Polling jobs are
// driven to completion; jobs that never got a request id are failed.
func (eng *Engine) Resume(ctx context.Context) error {
	active, err := eng.store.ListActiveJobs(ctx)
	if err != nil {
		return fmt.Errorf("listing active jobs: %w", err)
	}
	if len(active) == 0 {
		return nil
	}
	eng.log.Info("resuming active jobs", "count", len(active))

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}
	g.SetLimit(eng.concurrency)

	for i := range active {
		job := &active[i]
		if job.State == domain.JobStateRequested || job.RequestID == "" {
			if err := eng.finish(ctx, job, domain.JobStateFailed, errInterrupted); err != nil {
				record(err)
			}
			continue
		}
		if !eng.claim(job.Name) {
			eng.log.Warn("another job for this report is in flight, failing duplicate",
				"job", job.ID, "report", job.Name)
			if err := eng.finish(ctx, job, domain.JobStateFailed, ErrReportRunning); err != nil {
				record(err)
			}
			continue
		}
		g.Go(func() error {
			defer eng.release(job.Name)
			if _, err := eng.complete(ctx, job); err != nil {
				record(err)
			}
			return nil
		})
	}

	_ = g.Wait()
	return errors.Join(errs...)
}

// ResumeBackground runs Resume on the engine's background context.
func (eng *Engine) ResumeBackground() {
	eng.wg.Add(1)
	go func() {
		defer eng.wg.Done()
		if err := eng.Resume(eng.bg); err != nil {
			eng.log.Error("resuming jobs", "error", err)
		}
	}()
}

// runScheduled is the cron entry point. Overlapping runs are skipped.
func (eng *Engine) runScheduled(name string) {
	def, err := eng.definition(name)
	if err != nil {
		eng.log.Error("scheduled report", "error", err)
		return
	}
	if !eng.claim(name) {
		eng.log.Info("previous run still in flight, skipping", "report", name)
		return
	}
	eng.goBackground(name, func(bg context.Context) {
		job, err := eng.submit(bg, &def)
		if err != nil {
			return
		}
		_, _ = eng.complete(bg, job)
	})
}

func (eng *Engine) goBackground(name string, fn func(context.Context)) {
	eng.wg.Add(1)
	go func() {
		defer eng.wg.Done()
		defer eng.release(name)
		fn(eng.bg)
	}()
}

// Wait blocks until all background jobs have returned.
func (eng *Engine) Wait() {
	eng.wg.Wait()
}

// Shutdown cancels background jobs, leaving them in the polling state for
// the next Resume, and waits for them to return or ctx to expire.
func (eng *Engine) Shutdown(ctx context.Context) error {
	eng.cancel()
	done := make(chan struct{})
	go func() {
		eng.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// submit records a new job and sends the report request.
func (eng *Engine) submit(ctx context.Context, def *config.ReportConfig) (*domain.Job, error) {
	ctx, span := eng.tracer.Start(ctx, "engine.submit", trace.WithAttributes(
		attribute.String("report.name", def.Name),
		attribute.String("report.type", def.ReportType),
	))
	job, err := eng.request(ctx, def)
	if job != nil {
		span.SetAttributes(attribute.String("job.id", job.ID))
	}
	endSpan(span, err)
	return job, err
}

func (eng *Engine) request(ctx context.Context, def *config.ReportConfig) (*domain.Job, error) {
	job := &domain.Job{
		ID:         uuid.NewString(),
		Name:       def.Name,
		ReportType: def.ReportType,
		State:      domain.JobStateRequested,
	}
	if err := eng.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job for %s: %w", def.Name, err)
	}

	in := mws.RequestReportInput{
		ReportType:     def.ReportType,
		MarketplaceIDs: def.MarketplaceIDs,
		ReportOptions:  def.ReportOptions,
	}
	if def.Lookback > 0 {
		now := eng.nowFunc()
		in.StartDate = now.Add(-def.Lookback)
		in.EndDate = now
	}

	log := eng.log.With("job", job.ID, "report", def.Name)
	log.InfoContext(ctx, "requesting report", "report_type", def.ReportType)

	info, err := eng.reports.RequestReport(ctx, in)
	if err != nil {
		log.ErrorContext(ctx, "report request failed", "error", err)
		if ferr := eng.finish(context.WithoutCancel(ctx), job, domain.JobStateFailed, err); ferr != nil {
			log.ErrorContext(ctx, "recording failed job", "error", ferr)
		}
		return job, fmt.Errorf("requesting %s: %w", def.Name, err)
	}

	job.RequestID = info.ReportRequestID
	job.Status = info.ReportProcessingStatus
	job.State = domain.JobStatePolling
	if err := eng.store.UpdateJob(ctx, job); err != nil {
		return job, fmt.Errorf("updating job %s: %w", job.ID, err)
	}
	log.InfoContext(ctx, "report requested", "request_id", job.RequestID)
	return job, nil
}

// complete polls a submitted job to its final state. Cancellation of ctx
// leaves the job in the polling state.
func (eng *Engine) complete(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	ctx, span := eng.tracer.Start(ctx, "engine.complete", trace.WithAttributes(
		attribute.String("report.name", job.Name),
		attribute.String("job.id", job.ID),
		attribute.String("mws.request_id", job.RequestID),
	))
	job, err := eng.poll(ctx, job)
	span.SetAttributes(
		attribute.String("job.state", string(job.State)),
		attribute.Int("job.polls", job.Polls),
	)
	endSpan(span, err)
	return job, err
}

func (eng *Engine) poll(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	metrics.JobsActive.Inc()
	defer metrics.JobsActive.Dec()

	log := eng.log.With("job", job.ID, "report", job.Name, "request_id", job.RequestID)

	observe := func(ctx context.Context, rec *jobs.Record, _ int) {
		job.Status = rec.Status
		job.Polls++
		if err := eng.store.UpdateJob(ctx, job); err != nil {
			log.WarnContext(ctx, "persisting poll", "error", err)
		}
	}
	opts := append(slices.Clone(eng.pollOpts), jobs.WithLogger(eng.log), jobs.WithObserver(observe))

	res, err := eng.reports.WaitAndDownload(ctx, job.RequestID, jobs.NewPoller(opts...))
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, jobs.ErrPollTimeout) {
			log.InfoContext(ctx, "job interrupted, will resume", "polls", job.Polls)
			return job, err
		}
		var failed *jobs.FailedError
		if errors.As(err, &failed) {
			job.Status = failed.Status
		}
		log.ErrorContext(ctx, "report job failed", "error", err)
		if ferr := eng.finish(ctx, job, domain.JobStateFailed, err); ferr != nil {
			log.ErrorContext(ctx, "recording failed job", "error", ferr)
		}
		return job, fmt.Errorf("report %s: %w", job.Name, err)
	}

	job.ReportID = res.ReportID
	job.Status = res.Request.Status
	job.Bytes = int64(len(res.Content))
	if res.AckErr != nil {
		job.AckError = res.AckErr.Error()
	}

	if eng.archive != nil {
		entry, err := eng.archive.Store(ctx, job.Name, job.ReportID, eng.nowFunc(), res.Content)
		if err != nil {
			log.ErrorContext(ctx, "archiving report", "error", err)
			job.ErrorText = appendError(job.ErrorText, err)
		} else {
			job.ArchiveLocation = entry.Location
			job.Bytes = entry.Bytes
		}
	}

	if err := eng.finish(ctx, job, domain.JobStateDone, nil); err != nil {
		return job, err
	}
	log.InfoContext(ctx, "report job done",
		"report_id", job.ReportID,
		"bytes", job.Bytes,
		"location", job.ArchiveLocation,
	)
	return job, nil
}

// finish marks the job final, notifies and persists it. Notification
// failures are recorded on the job, not returned.
func (eng *Engine) finish(ctx context.Context, job *domain.Job, state domain.JobState, cause error) error {
	now := eng.nowFunc()
	job.State = state
	job.CompletedAt = &now
	if cause != nil {
		job.ErrorText = appendError(job.ErrorText, cause)
	}

	outcome := "succeeded"
	switch {
	case errors.Is(cause, jobs.ErrPollTimeout):
		outcome = "timeout"
	case state == domain.JobStateFailed:
		outcome = "failed"
	}
	metrics.SyncRunsTotal.WithLabelValues(job.Name, outcome).Inc()
	metrics.SyncRunDuration.Observe(job.Duration().Seconds())

	eng.notify(ctx, job)

	if err := eng.store.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("updating job %s: %w", job.ID, err)
	}
	return nil
}

func (eng *Engine) notify(ctx context.Context, job *domain.Job) {
	start := time.Now()
	err := eng.notifier.NotifyJob(ctx, notify.EventFromJob(job))
	metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NotificationFailuresTotal.Inc()
		eng.log.WarnContext(ctx, "sending job notification", "job", job.ID, "error", err)
		job.ErrorText = appendError(job.ErrorText, fmt.Errorf("notify: %w", err))
		return
	}
	metrics.NotificationsSentTotal.Inc()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func appendError(text string, err error) string {
	if text == "" {
		return err.Error()
	}
	return text + "; " + err.Error()
}
