package workers

import (
	"chat-core/contract"
	"chat-core/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Supervisor keeps the background workers of the chat server alive. A worker
// that fails or panics is restarted after restartInterval. One that returns
// nil is considered done.
type Supervisor struct {
	log             *slog.Logger
	workers         []contract.Worker
	restartInterval time.Duration

	wg     sync.WaitGroup
	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	return &Supervisor{log: log, restartInterval: restartInterval}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Run starts the registered workers and blocks until each has returned,
// either on its own or after ctx or Stop cancelled them.
func (s *Supervisor) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	for _, worker := range s.workers {
		s.Start(ctx, worker)
	}
	s.wg.Wait()
}

// Start runs worker in its own goroutine until it succeeds or ctx ends.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	name := contract.GetWorkerName(worker)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for attempt := 1; ctx.Err() == nil; attempt++ {
			err := runGuarded(ctx, worker)
			switch {
			case err == nil:
				s.log.Info("Worker finished", "name", name)
				return
			case ctx.Err() != nil:
				s.log.Info("Worker stopped", "name", name)
				return
			}

			s.log.Warn("Worker failed, restarting", "name", name, "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(s.restartInterval):
			}
		}
	}()
}

// runGuarded turns a panic in worker into an ErrWorkerPanic error.
func runGuarded(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}

// Stop cancels the workers started by Run. Run returns once they are done.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
