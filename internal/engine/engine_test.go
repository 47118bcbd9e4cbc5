package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/donaldgifford/mws-sync/internal/archive"
	archiveMocks "github.com/donaldgifford/mws-sync/internal/archive/mocks"
	"github.com/donaldgifford/mws-sync/internal/config"
	"github.com/donaldgifford/mws-sync/internal/jobs"
	"github.com/donaldgifford/mws-sync/internal/mws/mwstest"
	"github.com/donaldgifford/mws-sync/internal/notify"
	notifyMocks "github.com/donaldgifford/mws-sync/internal/notify/mocks"
	"github.com/donaldgifford/mws-sync/internal/store"
	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

var fixedNow = time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)

// quietLogger returns a logger that discards output for tests.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func immediate(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func never(time.Duration) <-chan time.Time {
	return make(chan time.Time)
}

var inventoryDef = config.ReportConfig{
	Name:           "inventory",
	ReportType:     "_GET_FLAT_FILE_OPEN_LISTINGS_DATA_",
	MarketplaceIDs: []string{"ATVPDKIKX0DER"},
	Lookback:       24 * time.Hour,
}

var ordersDef = config.ReportConfig{
	Name:       "orders",
	ReportType: "_GET_FLAT_FILE_ALL_ORDERS_DATA_BY_LAST_UPDATE_",
}

func newTestEngine(
	t *testing.T,
	srv *mwstest.Server,
	defs []config.ReportConfig,
	opts ...EngineOption,
) (*Engine, *store.MemoryStore) {
	t.Helper()

	ms := store.NewMemoryStore()
	base := []EngineOption{
		WithLogger(quietLogger()),
		WithNowFunc(func() time.Time { return fixedNow }),
		WithPollerOptions(jobs.WithAfterFunc(immediate)),
	}
	eng := NewEngine(ms, srv.Client(t).Reports(), defs, append(base, opts...)...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = eng.Shutdown(ctx)
	})
	return eng, ms
}

func expectState(n *notifyMocks.MockNotifier, state domain.JobState) {
	n.EXPECT().
		NotifyJob(mock.Anything, mock.MatchedBy(func(ev *notify.JobEvent) bool {
			return ev.State == string(state)
		})).
		Return(nil).
		Once()
}

func TestNewEngine_Defaults(t *testing.T) {
	t.Parallel()

	eng := NewEngine(store.NewMemoryStore(), nil, []config.ReportConfig{inventoryDef}, WithConcurrency(0))
	assert.Equal(t, 1, eng.concurrency)
	assert.NotNil(t, eng.notifier)
	assert.Nil(t, eng.archive)
	assert.Equal(t, []config.ReportConfig{inventoryDef}, eng.Definitions())
}

func TestRunReport_Success(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	srv.PollsUntilDone = 2
	dir := t.TempDir()
	n := notifyMocks.NewMockNotifier(t)
	expectState(n, domain.JobStateDone)

	eng, ms := newTestEngine(t, srv, []config.ReportConfig{inventoryDef},
		WithArchive(archive.New(archive.NewFileSink(dir))),
		WithNotifier(n),
	)

	job, err := eng.RunReport(context.Background(), "inventory")
	require.NoError(t, err)

	assert.Equal(t, domain.JobStateDone, job.State)
	assert.Equal(t, "RR0001", job.RequestID)
	assert.Equal(t, "GR0001", job.ReportID)
	assert.Equal(t, jobs.StatusDone, job.Status)
	assert.Equal(t, 3, job.Polls)
	assert.Empty(t, job.ErrorText)
	assert.Empty(t, job.AckError)
	require.NotNil(t, job.CompletedAt)

	wantPath := filepath.Join(dir, "inventory", "2026", "03", "08", "GR0001.txt")
	assert.Equal(t, wantPath, job.ArchiveLocation)
	assert.Equal(t, int64(len(mwstest.DefaultReport)), job.Bytes)
	content, err := os.ReadFile(wantPath)
	require.NoError(t, err)
	assert.Equal(t, mwstest.DefaultReport, string(content))

	stored, err := ms.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateDone, stored.State)
	assert.Equal(t, 3, stored.Polls)

	params := srv.Calls("RequestReport")[0].Params
	assert.Equal(t, inventoryDef.ReportType, params.Get("ReportType"))
	assert.Equal(t, "2026-03-07T12:00:00Z", params.Get("StartDate"))
	assert.Equal(t, "2026-03-08T12:00:00Z", params.Get("EndDate"))
	assert.Equal(t, "ATVPDKIKX0DER", params.Get("MarketplaceIdList.Id.1"))

	assert.False(t, eng.Running("inventory"))
}

func TestRunReport_NoLookbackOmitsDates(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	eng, _ := newTestEngine(t, srv, []config.ReportConfig{ordersDef})

	job, err := eng.RunReport(context.Background(), "orders")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateDone, job.State)
	// Without an archive only the size is kept.
	assert.Empty(t, job.ArchiveLocation)
	assert.Equal(t, int64(len(mwstest.DefaultReport)), job.Bytes)

	params := srv.Calls("RequestReport")[0].Params
	assert.False(t, params.Has("StartDate"))
	assert.False(t, params.Has("EndDate"))
}

func TestRunReport_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		setup       func(*mwstest.Server)
		pollOpts    []jobs.PollerOption
		wantErr     error
		wantStatus  string
		wantRequest bool
	}{
		{
			name:        "job cancelled by service",
			setup:       func(s *mwstest.Server) { s.FinalStatus = jobs.StatusCancelled },
			wantStatus:  jobs.StatusCancelled,
			wantRequest: true,
		},
		{
			name:        "poll attempts exhausted",
			setup:       func(s *mwstest.Server) { s.PollsUntilDone = 10 },
			pollOpts:    []jobs.PollerOption{jobs.WithMaxAttempts(2)},
			wantErr:     jobs.ErrPollTimeout,
			wantStatus:  jobs.StatusInProgress,
			wantRequest: true,
		},
		{
			name: "request rejected",
			setup: func(s *mwstest.Server) {
				s.Handle("RequestReport", func(w http.ResponseWriter, _ *http.Request) {
					mwstest.WriteError(w, http.StatusBadRequest, "Sender", "InvalidParameterValue", "bad report type")
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := mwstest.NewServer(t)
			tt.setup(srv)
			n := notifyMocks.NewMockNotifier(t)
			expectState(n, domain.JobStateFailed)

			eng, ms := newTestEngine(t, srv, []config.ReportConfig{ordersDef},
				WithNotifier(n),
				WithPollerOptions(tt.pollOpts...),
			)

			job, err := eng.RunReport(context.Background(), "orders")
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			require.NotNil(t, job)
			assert.Equal(t, domain.JobStateFailed, job.State)
			assert.Equal(t, tt.wantStatus, job.Status)
			assert.NotEmpty(t, job.ErrorText)
			assert.Equal(t, tt.wantRequest, job.RequestID != "")

			stored, err := ms.GetJob(context.Background(), job.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.JobStateFailed, stored.State)
			assert.NotNil(t, stored.CompletedAt)
		})
	}
}

func TestRunReport_FailedStatusIsTyped(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	srv.FinalStatus = jobs.StatusDoneNoData
	eng, _ := newTestEngine(t, srv, []config.ReportConfig{ordersDef})

	_, err := eng.RunReport(context.Background(), "orders")
	var failed *jobs.FailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, jobs.StatusDoneNoData, failed.Status)
}

func TestRunReport_SideEffectFailuresAreRecorded(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	srv.FailAck = true

	sink := archiveMocks.NewMockSink(t)
	sink.EXPECT().Put(mock.Anything, "orders/2026/03/08/GR0001.txt.gz", mock.Anything).
		Return("", errors.New("bucket gone"))
	n := notifyMocks.NewMockNotifier(t)
	n.EXPECT().NotifyJob(mock.Anything, mock.Anything).Return(errors.New("webhook down"))

	eng, ms := newTestEngine(t, srv, []config.ReportConfig{ordersDef},
		WithArchive(archive.New(sink, archive.WithGzip(true))),
		WithNotifier(n),
	)

	job, err := eng.RunReport(context.Background(), "orders")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateDone, job.State)
	assert.Contains(t, job.AckError, "acknowledgment rejected")
	assert.Contains(t, job.ErrorText, "bucket gone")
	assert.Contains(t, job.ErrorText, "webhook down")
	assert.Empty(t, job.ArchiveLocation)

	stored, err := ms.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ErrorText, stored.ErrorText)
}

func TestRunReport_UnknownReport(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	eng, _ := newTestEngine(t, srv, nil)

	_, err := eng.RunReport(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUnknownReport)
	assert.Empty(t, srv.Calls(""))
}

func TestRunAll(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	srv.PollsUntilDone = 1
	eng, ms := newTestEngine(t, srv, []config.ReportConfig{inventoryDef, ordersDef}, WithConcurrency(2))

	require.NoError(t, eng.RunAll(context.Background()))

	all, total, err := ms.ListJobs(context.Background(), &store.JobQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, j := range all {
		assert.Equal(t, domain.JobStateDone, j.State, j.Name)
	}
	assert.Len(t, srv.Calls("RequestReport"), 2)
}

func TestRunAll_JoinsErrors(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	srv.FinalStatus = jobs.StatusCancelled
	eng, _ := newTestEngine(t, srv, []config.ReportConfig{inventoryDef, ordersDef})

	err := eng.RunAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report inventory")
	assert.Contains(t, err.Error(), "report orders")
}

func TestResume(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	n := notifyMocks.NewMockNotifier(t)
	expectState(n, domain.JobStateFailed)
	expectState(n, domain.JobStateDone)

	eng, ms := newTestEngine(t, srv, []config.ReportConfig{inventoryDef, ordersDef}, WithNotifier(n))
	ctx := context.Background()

	orphan := &domain.Job{ID: "job-orphan", Name: "inventory", State: domain.JobStateRequested}
	require.NoError(t, ms.CreateJob(ctx, orphan))

	polling := &domain.Job{
		ID:         "job-polling",
		Name:       "orders",
		ReportType: ordersDef.ReportType,
		RequestID:  srv.AddReportRequest(ordersDef.ReportType),
		State:      domain.JobStatePolling,
		Status:     jobs.StatusInProgress,
		Polls:      4,
	}
	require.NoError(t, ms.CreateJob(ctx, polling))

	done := &domain.Job{ID: "job-done", Name: "orders", State: domain.JobStateDone}
	require.NoError(t, ms.CreateJob(ctx, done))

	require.NoError(t, eng.Resume(ctx))

	got, err := ms.GetJob(ctx, "job-orphan")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateFailed, got.State)
	assert.Contains(t, got.ErrorText, "interrupted")

	got, err = ms.GetJob(ctx, "job-polling")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateDone, got.State)
	assert.Equal(t, 5, got.Polls)
	assert.Equal(t, "GR0001", got.ReportID)

	active, err := ms.ListActiveJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Empty(t, srv.Calls("RequestReport"))
}

func TestResume_NothingActive(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	eng, _ := newTestEngine(t, srv, nil)
	require.NoError(t, eng.Resume(context.Background()))
	assert.Empty(t, srv.Calls(""))
}

func TestTrigger_CompletesInBackground(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	eng, ms := newTestEngine(t, srv, []config.ReportConfig{ordersDef})

	job, err := eng.Trigger(context.Background(), "orders")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatePolling, job.State)
	assert.Equal(t, "RR0001", job.RequestID)

	eng.Wait()

	got, err := ms.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateDone, got.State)
	assert.False(t, eng.Running("orders"))
}

func TestTrigger_ShutdownLeavesJobPolling(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	eng, ms := newTestEngine(t, srv, []config.ReportConfig{ordersDef},
		WithPollerOptions(jobs.WithAfterFunc(never)),
	)

	job, err := eng.Trigger(context.Background(), "orders")
	require.NoError(t, err)
	assert.True(t, eng.Running("orders"))

	_, err = eng.Trigger(context.Background(), "orders")
	require.ErrorIs(t, err, ErrReportRunning)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, eng.Shutdown(ctx))

	got, err := ms.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatePolling, got.State)
	assert.Nil(t, got.CompletedAt)

	active, err := ms.ListActiveJobs(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestTrigger_UnknownReport(t *testing.T) {
	t.Parallel()

	srv := mwstest.NewServer(t)
	eng, _ := newTestEngine(t, srv, []config.ReportConfig{ordersDef})

	_, err := eng.Trigger(context.Background(), "nope")
	require.ErrorIs(t, err, ErrUnknownReport)
}

func TestRunReport_RecordsSpans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		finalStatus string
		wantState   domain.JobState
		wantCode    codes.Code
	}{
		{name: "done", wantState: domain.JobStateDone, wantCode: codes.Unset},
		{name: "cancelled", finalStatus: jobs.StatusCancelled, wantState: domain.JobStateFailed, wantCode: codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := mwstest.NewServer(t)
			srv.FinalStatus = tt.finalStatus
			rec := tracetest.NewSpanRecorder()
			eng, _ := newTestEngine(t, srv, []config.ReportConfig{ordersDef},
				WithTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))),
			)

			job, _ := eng.RunReport(context.Background(), "orders")
			require.NotNil(t, job)

			spans := rec.Ended()
			require.Len(t, spans, 2)
			assert.Equal(t, "engine.submit", spans[0].Name())
			assert.Contains(t, spans[0].Attributes(), attribute.String("report.name", "orders"))
			assert.Contains(t, spans[0].Attributes(), attribute.String("job.id", job.ID))

			assert.Equal(t, "engine.complete", spans[1].Name())
			assert.Contains(t, spans[1].Attributes(), attribute.String("job.state", string(tt.wantState)))
			assert.Equal(t, tt.wantCode, spans[1].Status().Code)
		})
	}
}
