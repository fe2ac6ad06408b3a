// Package runtime boots the long-running side of the system: snapshot
// restore, event sinks and supervised workers. It holds no business rules.
package runtime

import (
	"chat-core/contract"
	"chat-core/repositories"
	"chat-core/runtime/workers"
	"chat-core/store"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Orchestrator struct {
	mu                sync.Mutex
	log               *slog.Logger
	store             *store.Store
	sinks             []store.EventSink
	supervisor        contract.ISupervisor
	scheduler         *workers.Scheduler
	repository        repositories.ISnapshotRepository
	snapshotInterval  time.Duration
	heartbeatInterval time.Duration
	traffic           workers.TrafficSource
	started           bool
}

func NewOrchestrator(log *slog.Logger, st *store.Store, supervisor contract.ISupervisor,
	scheduler *workers.Scheduler, repository repositories.ISnapshotRepository,
	snapshotInterval, heartbeatInterval time.Duration) *Orchestrator {
	return &Orchestrator{
		log:               log,
		store:             st,
		supervisor:        supervisor,
		scheduler:         scheduler,
		repository:        repository,
		snapshotInterval:  snapshotInterval,
		heartbeatInterval: heartbeatInterval,
	}
}

// Add registers sinks subscribed to the store when the orchestrator starts.
func (o *Orchestrator) Add(sinks ...store.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sinks = append(o.sinks, sinks...)
}

// Observe makes the heartbeat report request counters from traffic.
func (o *Orchestrator) Observe(traffic workers.TrafficSource) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.traffic = traffic
}

// Restore loads the last persisted snapshot into the store, if any.
func (o *Orchestrator) Restore() error {
	snap, found, err := o.repository.Load()
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	if !found {
		o.log.Info("No snapshot found, starting with an empty workspace")
		return nil
	}
	o.store.Restore(snap)
	return nil
}

// Prepare restores state and subscribes sinks. It must run before any request
// reaches the store, and only once.
func (o *Orchestrator) Prepare() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return nil
	}
	if err := o.Restore(); err != nil {
		return err
	}
	o.store.Subscribe(o.sinks...)

	o.supervisor.Add(
		o.scheduler,
		workers.NewSnapshotWorker(o.log, o.store, o.repository, o.snapshotInterval),
		workers.NewHeartbeatWorker(o.log, o.store, o.scheduler, o.heartbeatInterval).WithTraffic(o.traffic),
	)
	o.started = true
	return nil
}

// Start prepares the orchestrator if needed and blocks while the supervised
// workers run.
func (o *Orchestrator) Start(ctx context.Context) error {
	if err := o.Prepare(); err != nil {
		return err
	}
	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// Stop cancels every supervised worker. The snapshot worker saves one last
// time on its way out.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
