package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/mws-sync/internal/metrics"
)

// Scheduler runs each report definition on its cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	engine  *Engine
	log     *slog.Logger
	entries map[string]cron.EntryID
}

// NewScheduler registers one cron entry per definition that has a
// schedule. Definitions without one only run when triggered.
func NewScheduler(eng *Engine, log *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		engine:  eng,
		log:     log,
		entries: make(map[string]cron.EntryID),
	}

	for _, def := range eng.Definitions() {
		if def.Schedule == "" {
			continue
		}
		id, err := s.cron.AddFunc(def.Schedule, func() { s.run(def.Name) })
		if err != nil {
			return nil, fmt.Errorf("scheduling %s: %w", def.Name, err)
		}
		s.entries[def.Name] = id
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "reports", len(s.entries))
	s.cron.Start()
	s.SyncNextRunTimestamps()
}

// Stop stops the cron loop. Jobs already handed to the engine keep running
// until Engine.Shutdown.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// SyncNextRunTimestamps publishes each definition's next run time.
func (s *Scheduler) SyncNextRunTimestamps() {
	for name, id := range s.entries {
		next := s.cron.Entry(id).Next
		if next.IsZero() {
			continue
		}
		metrics.SchedulerNextRunTimestamp.WithLabelValues(name).Set(float64(next.Unix()))
	}
}

func (s *Scheduler) run(name string) {
	s.log.Info("scheduled report starting", "report", name)
	s.engine.runScheduled(name)
	s.SyncNextRunTimestamps()
}
