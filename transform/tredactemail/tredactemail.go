// Package tredactemail provides 'redactEmail' transform to mask email addresses in entry fields
package tredactemail

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/base/bconfig"
	"github.com/relex/gotils/logger"
)

// Config for redactEmailTransform
type Config struct {
	bconfig.Header `yaml:",inline"`
	Keys           []string `yaml:"keys"` // e.g. [message, payload.replyTo]
}

type redactEmailTransform struct {
	fields   []base.EntryField
	redacted *prometheus.CounterVec
}

// NewTransform creates redactEmailTransform
func (cfg *Config) NewTransform(parentLogger logger.Logger, metricFactory *base.MetricFactory) base.EntryTransform {
	fields := make([]base.EntryField, 0, len(cfg.Keys))
	for _, key := range cfg.Keys {
		field, err := base.LookupEntryField(key)
		if err != nil {
			logger.Panicf("invalid key '%s': %s", key, err.Error())
		}
		fields = append(fields, field)
	}
	return &redactEmailTransform{
		fields: fields,
		redacted: metricFactory.AddOrGetCounterVec("transform_redacted_emails_total",
			"Numbers of email addresses redacted from entry fields", []string{"key"}, nil),
	}
}

// VerifyConfig verifies redactEmailTransform config
func (cfg *Config) VerifyConfig() error {
	if len(cfg.Keys) == 0 {
		return fmt.Errorf(".keys is unspecified")
	}
	for _, key := range cfg.Keys {
		field, err := base.LookupEntryField(key)
		if err != nil {
			return fmt.Errorf(".keys: '%s' is invalid: %w", key, err)
		}
		if !field.Writable() {
			return fmt.Errorf(".keys: '%s' is read-only", key)
		}
	}
	return nil
}

func (tf *redactEmailTransform) Transform(entry *base.LogEntry) {
	for _, field := range tf.fields {
		value := field.Get(entry)
		if len(value) == 0 {
			continue
		}
		newValue, numRedacted := redactEmails(value)
		if numRedacted > 0 {
			field.Set(entry, newValue)
			tf.redacted.WithLabelValues(field.Name).Add(float64(numRedacted))
		}
	}
}
