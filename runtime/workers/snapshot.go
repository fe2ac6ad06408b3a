package workers

import (
	"chat-core/repositories"
	"chat-core/store"
	"context"
	"log/slog"
	"time"
)

// Snapshotter produces a detached copy of the store tables.
type Snapshotter interface {
	Snapshot() store.Snapshot
}

// SnapshotWorker persists the store periodically and once more on shutdown,
// so a clean stop never loses more than what happened after the last tick.
type SnapshotWorker struct {
	log        *slog.Logger
	source     Snapshotter
	repository repositories.ISnapshotRepository
	interval   time.Duration
}

func NewSnapshotWorker(log *slog.Logger, source Snapshotter, repository repositories.ISnapshotRepository, interval time.Duration) *SnapshotWorker {
	return &SnapshotWorker{log: log, source: source, repository: repository, interval: interval}
}

func (w *SnapshotWorker) Run(ctx context.Context) error {
	w.log.Info("Starting snapshot worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := w.save(); err != nil {
				w.log.Error("Final snapshot failed", "error", err)
			}
			return ctx.Err()
		case <-ticker.C:
			if err := w.save(); err != nil {
				w.log.Error("Snapshot failed", "error", err)
			}
		}
	}
}

func (w *SnapshotWorker) save() error {
	start := time.Now()
	snap := w.source.Snapshot()
	if err := w.repository.Save(snap); err != nil {
		return err
	}
	w.log.Debug("Snapshot saved",
		"users", len(snap.Users),
		"messages", len(snap.Messages),
		"duration", time.Since(start))
	return nil
}
