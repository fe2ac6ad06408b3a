package workers

import (
	"chat-core/contract"
	"container/heap"
	"context"
	"log/slog"
	"sync"
	"time"
)

type scheduledTask struct {
	name string
	at   time.Time
	seq  uint64
	run  contract.Task
}

// taskQueue is a min-heap on (at, seq). seq keeps tasks due at the same
// instant in submission order.
type taskQueue []*scheduledTask

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(*scheduledTask)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

// Scheduler drains a single delay queue from one goroutine. Send-later and
// standup finalisation are queued here instead of each owning a timer.
type Scheduler struct {
	mu    sync.Mutex
	log   *slog.Logger
	queue taskQueue
	seq   uint64
	wake  chan struct{}
	now   func() time.Time
}

func NewScheduler(log *slog.Logger, now func() time.Time) *Scheduler {
	return &Scheduler{
		log:  log,
		wake: make(chan struct{}, 1),
		now:  now,
	}
}

// Schedule queues task to run at or after at.
func (s *Scheduler) Schedule(name string, at time.Time, task contract.Task) {
	s.mu.Lock()
	s.seq++
	heap.Push(&s.queue, &scheduledTask{name: name, at: at, seq: s.seq, run: task})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	s.log.Debug("Task scheduled", "task", name, "at", at.UTC())
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// next returns the due time of the earliest task.
func (s *Scheduler) next() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Len() == 0 {
		return time.Time{}, false
	}
	return s.queue[0].at, true
}

func (s *Scheduler) popDue(now time.Time) *scheduledTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Len() == 0 || s.queue[0].at.After(now) {
		return nil
	}
	return heap.Pop(&s.queue).(*scheduledTask)
}

// RunDue runs every task due at now, earliest first, and returns how many ran.
// A task that panics is logged and dropped.
func (s *Scheduler) RunDue(now time.Time) int {
	ran := 0
	for t := s.popDue(now); t != nil; t = s.popDue(now) {
		s.runTask(t, now)
		ran++
	}
	return ran
}

func (s *Scheduler) runTask(t *scheduledTask, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Scheduled task panicked", "task", t.name, "panic", r)
		}
	}()
	t.run(now)
	s.log.Debug("Task done", "task", t.name, "late", now.Sub(t.at))
}

func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("Starting scheduler", "pending", s.Pending())
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		s.RunDue(s.now())

		wait := time.Hour
		if at, ok := s.next(); ok {
			wait = max(at.Sub(s.now()), 0)
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			s.log.Info("Scheduler stopped", "dropped", s.Pending())
			return nil
		case <-s.wake:
		case <-timer.C:
		}
	}
}
