package board

import (
	"sort"
	"sync"
	"time"
)

// OpMetrics is the observed profile of one operation kind.
type OpMetrics struct {
	Count      int64
	AvgLatency time.Duration
}

// MetricsSnapshot maps operation names to their profile. Observability
// only; nothing reads it back into behavior.
type MetricsSnapshot map[string]OpMetrics

// Names returns the operation names in stable order, for display.
func (s MetricsSnapshot) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type opStat struct {
	count int64
	total time.Duration
}

type metrics struct {
	mu  sync.Mutex
	ops map[string]*opStat
}

func newMetrics() *metrics {
	return &metrics{ops: make(map[string]*opStat)}
}

func (m *metrics) record(op string, start time.Time) {
	elapsed := time.Since(start)
	m.mu.Lock()
	defer m.mu.Unlock()
	stat, ok := m.ops[op]
	if !ok {
		stat = &opStat{}
		m.ops[op] = stat
	}
	stat.count++
	stat.total += elapsed
}

func (m *metrics) snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(MetricsSnapshot, len(m.ops))
	for op, stat := range m.ops {
		avg := time.Duration(0)
		if stat.count > 0 {
			avg = stat.total / time.Duration(stat.count)
		}
		out[op] = OpMetrics{Count: stat.count, AvgLatency: avg}
	}
	return out
}
