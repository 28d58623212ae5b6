// Package ttruncate provides 'truncate' transform to truncate field values exceeding certain limit
package ttruncate

import (
	"fmt"
	"unicode/utf8"

	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/base/bconfig"
	"github.com/relex/gotils/logger"
)

// Config for truncateTransform
type Config struct {
	bconfig.Header `yaml:",inline"`
	Key            string `yaml:"key"`
	MaxLength      int    `yaml:"maxLen"`
	Suffix         string `yaml:"suffix"`
}

type truncateTransform struct {
	field     base.EntryField
	maxLength int
	suffix    string
}

// NewTransform creates truncateTransform
func (c *Config) NewTransform(_ logger.Logger, _ *base.MetricFactory) base.EntryTransform {
	field, err := base.LookupEntryField(c.Key)
	if err != nil {
		logger.Panicf("invalid key '%s': %s", c.Key, err.Error())
	}
	return &truncateTransform{
		field:     field,
		maxLength: c.MaxLength,
		suffix:    c.Suffix,
	}
}

// VerifyConfig verifies truncateTransform config
func (c *Config) VerifyConfig() error {
	if len(c.Key) == 0 {
		return fmt.Errorf(".key is unspecified")
	}
	field, err := base.LookupEntryField(c.Key)
	if err != nil {
		return fmt.Errorf(".key is invalid: %w", err)
	}
	if !field.Writable() {
		return fmt.Errorf(".key '%s' is read-only", c.Key)
	}
	if c.MaxLength <= 0 {
		return fmt.Errorf(".maxLen must be larger than zero: %d", c.MaxLength)
	}
	if len(c.Suffix) == 0 {
		return fmt.Errorf(".suffix is unspecified")
	}
	return nil
}

func (tf *truncateTransform) Transform(entry *base.LogEntry) {
	value := tf.field.Get(entry)
	if len(value) <= tf.maxLength+len(tf.suffix) {
		return
	}
	// step back to the start of a rune so that no UTF-8 sequence is cut in the middle
	end := tf.maxLength
	for end > 0 && !utf8.RuneStart(value[end]) {
		end--
	}
	tf.field.Set(entry, value[:end]+tf.suffix)
}
