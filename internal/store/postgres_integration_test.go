//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/mws-sync/internal/store"
	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("mws_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr, store.WithPoolSize(4))
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func testJob(name string) *domain.Job {
	return &domain.Job{
		ID:         uuid.NewString(),
		Name:       name,
		ReportType: "_GET_FLAT_FILE_OPEN_LISTINGS_DATA_",
		State:      domain.JobStateRequested,
	}
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_MigrateIsIdempotent(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	applied, err := store.RunMigrations(ctx, s.Pool())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestPostgresStore_JobLifecycle(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	j := testJob("inventory")
	require.NoError(t, s.CreateJob(ctx, j))
	assert.False(t, j.CreatedAt.IsZero())

	j.State = domain.JobStatePolling
	j.RequestID = "2291326454"
	j.Status = "_IN_PROGRESS_"
	j.Polls = 2
	require.NoError(t, s.UpdateJob(ctx, j))

	active, err := s.ListActiveJobs(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, j.ID, active[0].ID)
	assert.Equal(t, "2291326454", active[0].RequestID)

	done := time.Now().UTC().Truncate(time.Microsecond)
	j.State = domain.JobStateDone
	j.ReportID = "GR1"
	j.Bytes = 1024
	j.ArchiveLocation = "file:///var/lib/mws/inventory/GR1.txt"
	j.CompletedAt = &done
	require.NoError(t, s.UpdateJob(ctx, j))

	got, err := s.GetJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateDone, got.State)
	assert.Equal(t, int64(1024), got.Bytes)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, done.Equal(*got.CompletedAt))

	active, err = s.ListActiveJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestPostgresStore_GetJobNotFound(t *testing.T) {
	s := setupPostgres(t)

	_, err := s.GetJob(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, store.ErrJobNotFound)

	err = s.UpdateJob(context.Background(), testJob("missing"))
	require.ErrorIs(t, err, store.ErrJobNotFound)
}

func TestPostgresStore_ListJobs(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	for _, name := range []string{"orders", "inventory", "orders"} {
		require.NoError(t, s.CreateJob(ctx, testJob(name)))
	}

	jobs, total, err := s.ListJobs(ctx, &store.JobQuery{Name: "orders"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, jobs, 2)

	jobs, total, err = s.ListJobs(ctx, &store.JobQuery{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, jobs, 1)
}
