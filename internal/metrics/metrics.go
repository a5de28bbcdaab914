package metrics

import "sync/atomic"

// MetricID identifies a single counter slot.
type MetricID uint8

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricRegisterSuccess
	MetricRegisterFailure
	MetricValidateSuccess
	MetricValidateFailure
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricLogout
	MetricSessionCleared
	MetricSessionRestored
	MetricGatewayRetry
	MetricGatewayRefreshSuccess
	MetricGatewayRefreshFailure
	MetricGatewayRefreshThrottled
	MetricGatewayRestart
	MetricGuardRedirect
	MetricGuardForcedLogout

	MetricIDCount
)

// Metrics is a fixed array of atomic counters. The zero value is unusable;
// construct through New.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]atomic.Uint64
}

// New creates a Metrics instance. When enabled is false, Inc is a no-op and
// Snapshot returns empty maps.
func New(enabled bool) *Metrics {
	return &Metrics{enabled: enabled}
}

// Enabled reports whether counting is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if !m.Enabled() || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Get returns the current value of a single counter.
func (m *Metrics) Get(id MetricID) uint64 {
	if !m.Enabled() || id >= MetricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot returns a deep copy of the current counter values. Zero-valued
// counters are omitted.
func (m *Metrics) Snapshot() Snapshot {
	out := Snapshot{Counters: map[MetricID]uint64{}}
	if !m.Enabled() {
		return out
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		if v := m.counters[id].Load(); v > 0 {
			out.Counters[id] = v
		}
	}
	return out
}
