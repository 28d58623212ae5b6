// Package tfixutf8 provides 'fixUTF8' transform to replace invalid UTF-8 sequences in entry fields
package tfixutf8

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/base/bconfig"
	"github.com/relex/gotils/logger"
)

// Config for fixUTF8Transform
type Config struct {
	bconfig.Header `yaml:",inline"`
	Keys           []string `yaml:"keys"`
	Replacement    string   `yaml:"replacement"` // default to U+FFFD
}

type fixUTF8Transform struct {
	fields      []base.EntryField
	replacement string
}

// NewTransform creates fixUTF8Transform
func (c *Config) NewTransform(_ logger.Logger, _ *base.MetricFactory) base.EntryTransform {
	fields := make([]base.EntryField, 0, len(c.Keys))
	for _, key := range c.Keys {
		field, err := base.LookupEntryField(key)
		if err != nil {
			logger.Panicf("invalid key '%s': %s", key, err.Error())
		}
		fields = append(fields, field)
	}
	replacement := c.Replacement
	if len(replacement) == 0 {
		replacement = string(utf8.RuneError)
	}
	return &fixUTF8Transform{
		fields:      fields,
		replacement: replacement,
	}
}

// VerifyConfig verifies fixUTF8Transform config
func (c *Config) VerifyConfig() error {
	if len(c.Keys) == 0 {
		return fmt.Errorf(".keys is unspecified")
	}
	for _, key := range c.Keys {
		field, err := base.LookupEntryField(key)
		if err != nil {
			return fmt.Errorf(".keys: '%s' is invalid: %w", key, err)
		}
		if !field.Writable() {
			return fmt.Errorf(".keys: '%s' is read-only", key)
		}
	}
	if !utf8.ValidString(c.Replacement) {
		return fmt.Errorf(".replacement is not valid UTF-8")
	}
	return nil
}

func (tf *fixUTF8Transform) Transform(entry *base.LogEntry) {
	for _, field := range tf.fields {
		value := field.Get(entry)
		if utf8.ValidString(value) {
			continue
		}
		field.Set(entry, strings.ToValidUTF8(value, tf.replacement))
	}
}
