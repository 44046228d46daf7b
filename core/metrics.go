package core

import "context"

// Every service operation emits one counter and one duration histogram under
// the triggers metric namespace. Both carry at least the operation and status
// tags, plus trigger, credential_id, owner_id, or subscription_id when the
// call touched one. Hosts plug a backend in through WithMetricsRecorder.
const metricNamespace = "triggers"

// operationCounterName is the total-calls counter for one service operation,
// e.g. triggers.poll.total.
func operationCounterName(operation string) string {
	return metricNamespace + "." + operation + ".total"
}

// operationDurationName is the latency histogram for one service operation,
// measured in milliseconds, e.g. triggers.poll.duration_ms.
func operationDurationName(operation string) string {
	return metricNamespace + "." + operation + ".duration_ms"
}

// NopMetricsRecorder drops every observation. It backs services built without
// WithMetricsRecorder.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

// cloneTags shields the recorder from later mutation of the caller's tag map.
func cloneTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return map[string]string{}
	}
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

var _ MetricsRecorder = NopMetricsRecorder{}
