package shared

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/util"
)

// ClientMetrics defines metrics shared by network-based output clients
type ClientMetrics struct {
	networkErrorsTotal      prometheus.Counter
	nonNetworkErrorsTotal   prometheus.Counter
	openedSessionsTotal     prometheus.Counter
	forwardAttemptsTotal    prometheus.Counter
	forwardedCountTotal     prometheus.Counter
	forwardedLengthTotal    prometheus.Counter
	acknowledgedCountTotal  prometheus.Counter
	acknowledgedLengthTotal prometheus.Counter
}

// NewClientMetrics creates ClientMetrics labeled by output type
func NewClientMetrics(metricFactory *base.MetricFactory, outputType string) ClientMetrics {
	outputMetricFactory := metricFactory.NewSubFactory("output_", []string{"output"}, []string{outputType})
	return ClientMetrics{
		networkErrorsTotal:      outputMetricFactory.AddOrGetCounter("network_errors_total", "Numbers of network errors", nil, nil),
		nonNetworkErrorsTotal:   outputMetricFactory.AddOrGetCounter("nonnetwork_errors_total", "Numbers of non-network errors (auth, unexpected response, etc) from upstream", nil, nil),
		openedSessionsTotal:     outputMetricFactory.AddOrGetCounter("opened_sessions_total", "Numbers of opened sessions", nil, nil),
		forwardAttemptsTotal:    outputMetricFactory.AddOrGetCounter("forward_attempts_total", "Numbers of batch forwarding attempts", nil, nil),
		forwardedCountTotal:     outputMetricFactory.AddOrGetCounter("forwarded_batches_total", "Numbers of forwarded batches", nil, nil),
		forwardedLengthTotal:    outputMetricFactory.AddOrGetCounter("forwarded_batch_bytes_total", "Total length in bytes of forwarded batches on wire", nil, nil),
		acknowledgedCountTotal:  outputMetricFactory.AddOrGetCounter("acknowledged_batches_total", "Numbers of acknowledged batches", nil, nil),
		acknowledgedLengthTotal: outputMetricFactory.AddOrGetCounter("acknowledged_batch_bytes_total", "Total length in bytes of acknowledged batches on wire", nil, nil),
	}
}

// OnError counts an error by whether it comes from network
func (metrics *ClientMetrics) OnError(err error) {
	if err != nil && util.IsNetworkError(err) {
		metrics.networkErrorsTotal.Inc()
	} else {
		metrics.nonNetworkErrorsTotal.Inc()
	}
}

// OnOpening counts a new connection or session
func (metrics *ClientMetrics) OnOpening() {
	metrics.openedSessionsTotal.Inc()
}

// OnForwarding counts an attempt to send
func (metrics *ClientMetrics) OnForwarding() {
	metrics.forwardAttemptsTotal.Inc()
}

// OnForwarded counts a message written to upstream
func (metrics *ClientMetrics) OnForwarded(wireLength int) {
	metrics.forwardedCountTotal.Inc()
	metrics.forwardedLengthTotal.Add(float64(wireLength))
}

// OnAcknowledged counts a message confirmed by upstream
func (metrics *ClientMetrics) OnAcknowledged(wireLength int) {
	metrics.acknowledgedCountTotal.Inc()
	metrics.acknowledgedLengthTotal.Add(float64(wireLength))
}
