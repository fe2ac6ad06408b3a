package workers

import (
	"chat-core/observability"
	"chat-core/store"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// CountSource exposes the table sizes reported by the heartbeat.
type CountSource interface {
	Counts() store.Counts
}

// PendingSource exposes how many deferred tasks are queued.
type PendingSource interface {
	Pending() int
}

// TrafficSource exposes request counters.
type TrafficSource interface {
	Traffic() observability.Traffic
}

// HeartbeatWorker logs the health of the process and the size of the
// workspace at a fixed interval.
type HeartbeatWorker struct {
	log       *slog.Logger
	counts    CountSource
	scheduler PendingSource
	traffic   TrafficSource
	interval  time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, counts CountSource, scheduler PendingSource, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, counts: counts, scheduler: scheduler, interval: interval}
}

// WithTraffic adds request counters to every beat. A nil source is ignored.
func (w *HeartbeatWorker) WithTraffic(traffic TrafficSource) *HeartbeatWorker {
	w.traffic = traffic
	return w
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.beat(p)
		}
	}
}

func (w *HeartbeatWorker) beat(p *process.Process) {
	c := w.counts.Counts()
	attrs := []any{
		"users", c.Users,
		"channels", c.Channels,
		"dms", c.Dms,
		"messages", c.Messages,
		"sessions", c.Sessions,
		"pending_tasks", w.scheduler.Pending(),
	}
	if w.traffic != nil {
		t := w.traffic.Traffic()
		attrs = append(attrs,
			"requests", t.Requests,
			"rejected", t.Rejected,
			"failed", t.Failed,
			"alloc_mb", t.AllocMemMb,
			"num_gc", t.NumGC)
	}

	rss, cpu, status, err := selfStats(p)
	if err != nil {
		w.log.Warn("Failed to collect self stats", "error", err)
	} else {
		attrs = append(attrs, "rss_bytes", rss, "cpu_percent", cpu, "status", status)
	}
	w.log.Info("Heartbeat", attrs...)
}

// selfStats retrieves memory, cpu and OS status for the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
