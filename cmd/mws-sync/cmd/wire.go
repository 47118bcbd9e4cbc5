package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/donaldgifford/mws-sync/internal/archive"
	"github.com/donaldgifford/mws-sync/internal/config"
	"github.com/donaldgifford/mws-sync/internal/engine"
	"github.com/donaldgifford/mws-sync/internal/mws"
	"github.com/donaldgifford/mws-sync/internal/notify"
	"github.com/donaldgifford/mws-sync/internal/store"
	"github.com/donaldgifford/mws-sync/internal/telemetry"
	"github.com/donaldgifford/mws-sync/pkg/logger"
)

// daemon holds the wired components shared by serve and run.
type daemon struct {
	log      *slog.Logger
	store    store.Store
	client   *mws.Client
	notifier notify.Notifier
	engine   *engine.Engine
	closers  []func()
}

func newDaemon(ctx context.Context, cfg *config.Config) (*daemon, error) {
	d := &daemon{log: logger.New(cfg.Logging.Level, cfg.Logging.Format)}

	shutdownTracing, err := telemetry.Setup(ctx, &cfg.Tracing, Version)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			d.log.Warn("flushing traces", "error", err)
		}
	})

	st, closeStore, err := openStore(ctx, &cfg.Database, d.log)
	if err != nil {
		return nil, err
	}
	d.store = st
	d.closers = append(d.closers, closeStore)

	d.client, err = cfg.MWS.NewClient(d.log.With("component", "mws"))
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("creating mws client: %w", err)
	}

	arc, err := openArchive(ctx, &cfg.Archive)
	if err != nil {
		d.Close()
		return nil, err
	}

	notifier, closeNotifier, err := openNotifier(&cfg.Notifications, d.log)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.closers = append(d.closers, closeNotifier)
	d.notifier = notifier

	opts := []engine.EngineOption{
		engine.WithLogger(d.log.With("component", "engine")),
		engine.WithNotifier(notifier),
		engine.WithConcurrency(cfg.Sync.Concurrency),
		engine.WithPollerOptions(cfg.Polling.PollerOptions()...),
	}
	if arc != nil {
		opts = append(opts, engine.WithArchive(arc))
	}
	d.engine = engine.NewEngine(d.store, d.client.Reports(), cfg.Reports, opts...)

	return d, nil
}

// Close releases the store and notifier connections in reverse order.
func (d *daemon) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func openStore(ctx context.Context, cfg *config.DatabaseConfig, log *slog.Logger) (store.Store, func(), error) {
	if !cfg.Enabled() {
		log.Warn("no database configured, job state will not survive a restart")
		return store.NewMemoryStore(), func() {}, nil
	}

	pg, err := store.NewPostgresStore(ctx, cfg.DSN(), store.WithPoolSize(cfg.PoolSize))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}
	return pg, pg.Close, nil
}

// openArchive returns nil when archiving is disabled.
func openArchive(ctx context.Context, cfg *config.ArchiveConfig) (*archive.Archive, error) {
	var sink archive.Sink
	switch cfg.Backend {
	case config.ArchiveNone:
		return nil, nil
	case config.ArchiveFile:
		sink = archive.NewFileSink(cfg.Dir)
	case config.ArchiveS3:
		s3sink, err := archive.NewS3SinkFromConfig(ctx, &cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("creating s3 archive: %w", err)
		}
		sink = s3sink
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
	return archive.New(sink, archive.WithGzip(cfg.Gzip)), nil
}

func openNotifier(cfg *config.NotificationsConfig, log *slog.Logger) (notify.Notifier, func(), error) {
	var targets notify.Multi
	closeFn := func() {}

	if cfg.Webhook.Enabled {
		targets = append(targets, notify.NewWebhookNotifier(
			cfg.Webhook.URL,
			notify.WithHeaders(cfg.Webhook.Headers),
		))
	}
	if cfg.NATS.Enabled {
		n, err := notify.NewNATSNotifier(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			return nil, nil, err
		}
		targets = append(targets, n)
		closeFn = n.Close
	}

	switch len(targets) {
	case 0:
		return notify.NewNoOpNotifier(log), closeFn, nil
	case 1:
		return targets[0], closeFn, nil
	default:
		return targets, closeFn, nil
	}
}
