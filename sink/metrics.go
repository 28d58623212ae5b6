package sink

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/defs"
)

type sinkMetrics struct {
	postedEntries   prometheus.Counter
	droppedEntries  *prometheus.CounterVec
	bufferedEntries prometheus.Gauge
	flushes         *prometheus.CounterVec
	sentEntries     prometheus.Counter
	sentBatches     prometheus.Counter
	sentBytes       prometheus.Counter
	errors          *prometheus.CounterVec
}

func newSinkMetrics(factory *base.MetricFactory) sinkMetrics {
	return sinkMetrics{
		postedEntries: factory.AddOrGetCounter("posted_entries_total",
			"Numbers of entries accepted by sinks", nil, nil),
		droppedEntries: factory.AddOrGetCounterVec("dropped_entries_total",
			"Numbers of entries dropped by sinks", []string{"reason"}, nil),
		bufferedEntries: factory.AddOrGetGauge("buffered_entries",
			"Numbers of entries pending in sink buffers", nil, nil),
		flushes: factory.AddOrGetCounterVec("flushes_total",
			"Numbers of flush cycles by trigger", []string{"trigger"}, nil),
		sentEntries: factory.AddOrGetCounter("sent_entries_total",
			"Numbers of entries delivered to transports", nil, nil),
		sentBatches: factory.AddOrGetCounter("sent_batches_total",
			"Numbers of batches delivered to transports", nil, nil),
		sentBytes: factory.AddOrGetCounter("sent_bytes_total",
			"Total length in bytes of serialized entries delivered to transports", nil, nil),
		errors: factory.AddOrGetCounterVec("errors_total",
			"Numbers of failed flush cycles by error kind", []string{"kind"}, nil),
	}
}

func (m sinkMetrics) dropped(reason string, count int) {
	if count <= 0 {
		return
	}
	m.droppedEntries.WithLabelValues(reason).Add(float64(count))
}

func (m sinkMetrics) sent(batch base.Batch) {
	m.sentEntries.Add(float64(batch.Len()))
	m.sentBatches.Inc()
	m.sentBytes.Add(float64(batch.NumBytes))
}

// for label completeness in dumps, so that all drop reasons show up from start
func (m sinkMetrics) init() {
	for _, reason := range []string{defs.DropReasonOverflow, defs.DropReasonOversize, defs.DropReasonAbandon,
		defs.DropReasonFailed, defs.DropReasonStopped} {
		m.droppedEntries.WithLabelValues(reason)
	}
}
