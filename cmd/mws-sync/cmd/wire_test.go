package cmd

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/mws-sync/internal/config"
	"github.com/donaldgifford/mws-sync/internal/notify"
	"github.com/donaldgifford/mws-sync/internal/store"
)

func TestOpenArchive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.ArchiveConfig
		wantNil bool
		wantErr bool
	}{
		{name: "disabled", cfg: config.ArchiveConfig{}, wantNil: true},
		{name: "file", cfg: config.ArchiveConfig{Backend: config.ArchiveFile, Dir: t.TempDir(), Gzip: true}},
		{name: "unknown backend", cfg: config.ArchiveConfig{Backend: "ftp"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			arc, err := openArchive(context.Background(), &tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNil, arc == nil)
		})
	}
}

func TestOpenArchive_FileStores(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	arc, err := openArchive(context.Background(), &config.ArchiveConfig{Backend: config.ArchiveFile, Dir: dir})
	require.NoError(t, err)

	entry, err := arc.Store(context.Background(), "inventory", "5001", time.Now(), []byte("sku\tqty\n"))
	require.NoError(t, err)
	assert.Contains(t, entry.Location, dir)
}

func TestOpenNotifier(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)

	n, closeFn, err := openNotifier(&config.NotificationsConfig{}, log)
	require.NoError(t, err)
	closeFn()
	assert.IsType(t, &notify.NoOpNotifier{}, n)

	n, closeFn, err = openNotifier(&config.NotificationsConfig{
		Webhook: config.WebhookConfig{Enabled: true, URL: "http://127.0.0.1:1/hook"},
	}, log)
	require.NoError(t, err)
	closeFn()
	assert.IsType(t, &notify.WebhookNotifier{}, n)
}

func TestOpenStore_MemoryWithoutDatabase(t *testing.T) {
	t.Parallel()

	st, closeFn, err := openStore(context.Background(), &config.DatabaseConfig{}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &store.MemoryStore{}, st)
}
