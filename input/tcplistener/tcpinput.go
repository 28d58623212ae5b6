package tcplistener

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/base/bconfig"
	"github.com/relex/eventsink/base/bmatch"
	"github.com/relex/eventsink/defs"
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"golang.org/x/exp/slices"
)

// Config defines the configuration of TCP input
//
// Each record, a line or a group of continuation lines, is parsed into one entry and posted to the sink
type Config struct {
	bconfig.Header `yaml:",inline"`
	Address         string                          `yaml:"address"`
	Format          string                          `yaml:"format"`          // "json" or "text"
	Level           string                          `yaml:"level"`           // default level of entries
	ProviderName    string                          `yaml:"providerName"`    // default provider name of entries
	Exclusions      []bmatch.EntryMatcherConfig     `yaml:"exclusions"`      // entries matching any are dropped
	Transformations []bconfig.TransformConfigHolder `yaml:"transformations"` // applied in order to entries not excluded
}

type inputMetrics struct {
	records        prometheus.Counter
	invalidRecords prometheus.Counter
	droppedEntries *prometheus.CounterVec
}

// NewInput creates a TCP listener posting entries to the receiver
func (cfg *Config) NewInput(parentLogger logger.Logger, receiver base.EntryReceiver, metricFactory *base.MetricFactory,
	stopRequest channels.Awaitable) (base.EntryInput, error) {

	parser, err := newEntryParser(cfg.Format, base.LogEntry{Level: cfg.Level, ProviderName: cfg.ProviderName})
	if err != nil {
		return nil, err
	}

	exclusions := make([]bmatch.EntryMatcher, 0, len(cfg.Exclusions))
	for _, mc := range cfg.Exclusions {
		exclusions = append(exclusions, mc.NewMatcher())
	}

	factory := metricFactory.NewSubFactory("input_", []string{"input"}, []string{"tcp"})
	transforms := bconfig.NewTransforms(cfg.Transformations, parentLogger, factory)
	metrics := inputMetrics{
		records: factory.AddOrGetCounter("records_total",
			"Numbers of records received by inputs", nil, nil),
		invalidRecords: factory.AddOrGetCounter("invalid_records_total",
			"Numbers of records failed to parse", nil, nil),
		droppedEntries: factory.AddOrGetCounterVec("dropped_entries_total",
			"Numbers of entries dropped by inputs", []string{"reason"}, nil),
	}

	newConsumer := func(connLogger logger.Logger) recordConsumer {
		return func(record []byte) {
			metrics.records.Inc()
			entry, err := parser.parse(record)
			if err != nil {
				metrics.invalidRecords.Inc()
				connLogger.Warnf("%s: %.100q", err.Error(), record)
				return
			}
			for _, m := range exclusions {
				if m.Match(&entry) {
					metrics.droppedEntries.WithLabelValues(defs.DropReasonFiltered).Inc()
					return
				}
			}
			transforms.Apply(&entry)
			if !receiver.Post(entry) {
				metrics.droppedEntries.WithLabelValues(defs.DropReasonOverflow).Inc()
			}
		}
	}

	lsnr, err := newTCPLineListener(parentLogger, cfg.Address, parser.testRecordStart, newConsumer, stopRequest)
	if err != nil {
		return nil, err
	}
	return lsnr, nil
}

// VerifyConfig checks configuration
func (cfg *Config) VerifyConfig() error {
	if cfg.Address == "" {
		return fmt.Errorf(".address is unspecified")
	}
	if !slices.Contains(knownFormats, cfg.Format) {
		return fmt.Errorf(".format: '%s' is not one of %v", cfg.Format, knownFormats)
	}
	for i, mc := range cfg.Exclusions {
		if err := mc.VerifyConfig(); err != nil {
			return fmt.Errorf(".exclusions[%d]: %w", i, err)
		}
	}
	if err := bconfig.VerifyTransformConfigs(cfg.Transformations, ".transformations"); err != nil {
		return err
	}
	return nil
}
