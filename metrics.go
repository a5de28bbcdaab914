package authcore

import internalmetrics "github.com/ratepanel/authcore/internal/metrics"

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricLoginSuccess            = internalmetrics.MetricLoginSuccess
	MetricLoginFailure            = internalmetrics.MetricLoginFailure
	MetricRegisterSuccess         = internalmetrics.MetricRegisterSuccess
	MetricRegisterFailure         = internalmetrics.MetricRegisterFailure
	MetricValidateSuccess         = internalmetrics.MetricValidateSuccess
	MetricValidateFailure         = internalmetrics.MetricValidateFailure
	MetricRefreshSuccess          = internalmetrics.MetricRefreshSuccess
	MetricRefreshFailure          = internalmetrics.MetricRefreshFailure
	MetricLogout                  = internalmetrics.MetricLogout
	MetricSessionCleared          = internalmetrics.MetricSessionCleared
	MetricSessionRestored         = internalmetrics.MetricSessionRestored
	MetricGatewayRetry            = internalmetrics.MetricGatewayRetry
	MetricGatewayRefreshSuccess   = internalmetrics.MetricGatewayRefreshSuccess
	MetricGatewayRefreshFailure   = internalmetrics.MetricGatewayRefreshFailure
	MetricGatewayRefreshThrottled = internalmetrics.MetricGatewayRefreshThrottled
	MetricGatewayRestart          = internalmetrics.MetricGatewayRestart
	MetricGuardRedirect           = internalmetrics.MetricGuardRedirect
	MetricGuardForcedLogout       = internalmetrics.MetricGuardForcedLogout

	metricIDCount = internalmetrics.MetricIDCount
)

// Metrics holds the atomic counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot

// MetricsSnapshot returns the session's current counters.
func (s *Session) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return s.metrics.Snapshot()
}

// Metrics exposes the shared counter set so collaborators (the guard, the
// exporters) record into the same instance the gateway uses.
func (s *Session) Metrics() *Metrics {
	return s.metrics
}
