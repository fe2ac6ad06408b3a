// Package observability keeps process-wide traffic counters.
package observability

import (
	"runtime"
	"sync/atomic"
)

// Traffic is a point-in-time view of request outcomes and Go memory usage.
type Traffic struct {
	Requests   uint64
	Rejected   uint64
	Failed     uint64
	AllocMemMb uint64
	NumGC      uint32
}

// Monitor counts request outcomes. Safe for concurrent use.
type Monitor struct {
	requests atomic.Uint64
	rejected atomic.Uint64
	failed   atomic.Uint64
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

// Record classifies a finished request by its status: 4xx is rejected,
// 5xx is failed.
func (m *Monitor) Record(status int) {
	m.requests.Add(1)
	switch {
	case status >= 500:
		m.failed.Add(1)
	case status >= 400:
		m.rejected.Add(1)
	}
}

func (m *Monitor) Traffic() Traffic {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return Traffic{
		Requests:   m.requests.Load(),
		Rejected:   m.rejected.Load(),
		Failed:     m.failed.Load(),
		AllocMemMb: mem.Alloc / 1024 / 1024,
		NumGC:      mem.NumGC,
	}
}
