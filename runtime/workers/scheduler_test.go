package workers

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunDue_OrdersByTimeThenSubmission(t *testing.T) {
	req := require.New(t)
	base := time.Unix(1_700_000_000, 0)
	sched := NewScheduler(logs.GetLoggerFromLevel(slog.LevelDebug), func() time.Time { return base })

	var order []string
	record := func(name string) func(time.Time) {
		return func(time.Time) { order = append(order, name) }
	}
	sched.Schedule("late", base.Add(2*time.Second), record("late"))
	sched.Schedule("first", base.Add(time.Second), record("first"))
	sched.Schedule("second", base.Add(time.Second), record("second"))
	sched.Schedule("future", base.Add(time.Minute), record("future"))

	req.Equal(0, sched.RunDue(base))
	req.Equal(3, sched.RunDue(base.Add(2*time.Second)))
	req.Equal([]string{"first", "second", "late"}, order)
	req.Equal(1, sched.Pending())
}

func TestScheduler_PanickingTaskIsDropped(t *testing.T) {
	req := require.New(t)
	base := time.Unix(1_700_000_000, 0)
	sched := NewScheduler(logs.GetLoggerFromLevel(slog.LevelDebug), func() time.Time { return base })

	ran := false
	sched.Schedule("boom", base, func(time.Time) { panic("boom") })
	sched.Schedule("after", base, func(time.Time) { ran = true })

	req.Equal(2, sched.RunDue(base))
	req.True(ran)
	req.Zero(sched.Pending())
}

func TestScheduler_RunFiresOnTime(t *testing.T) {
	req := require.New(t)
	sched := NewScheduler(logs.GetLoggerFromLevel(slog.LevelDebug), time.Now)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	var mu sync.Mutex
	var fired []string
	for _, name := range []string{"b", "a"} {
		delay := map[string]time.Duration{"a": 20 * time.Millisecond, "b": 60 * time.Millisecond}[name]
		sched.Schedule(name, time.Now().Add(delay), func(time.Time) {
			mu.Lock()
			defer mu.Unlock()
			fired = append(fired, name)
		})
	}

	req.Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(fired) == 2
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	req.Equal([]string{"a", "b"}, fired)
	mu.Unlock()

	cancel()
	req.NoError(<-done)
}
