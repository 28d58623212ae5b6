package sink

import (
	"fmt"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/batch"
	"github.com/relex/eventsink/defs"
	"golang.org/x/exp/slices"
)

// Config defines the buffering of a sink
//
// Pointer fields distinguish omitted options, which take framework defaults, from explicit zero values.
type Config struct {
	BufferingInterval        time.Duration        `yaml:"bufferingInterval"`        // 0 to disable timer trigger
	BufferingCount           *int                 `yaml:"bufferingCount"`           // 0 for automatic sizing mode
	BufferingFlushAllTimeout *time.Duration       `yaml:"bufferingFlushAllTimeout"` // zero or negative for infinite
	MaxBufferSize            int                  `yaml:"maxBufferSize"`
	PartitionKey             string               `yaml:"partitionKey"`
	MaxMessageSize           datasize.ByteSize    `yaml:"maxMessageSize"`
	OversizePolicy           batch.OversizePolicy `yaml:"oversizePolicy"`
}

var knownOversizePolicies = []batch.OversizePolicy{batch.OversizeDrop, batch.OversizeSplit}

// NewDefaultConfig creates a Config with all defaults filled
func NewDefaultConfig() Config {
	count := defs.DefaultBufferingCount
	timeout := defs.DefaultFlushAllTimeout
	return Config{
		BufferingInterval:        0,
		BufferingCount:           &count,
		BufferingFlushAllTimeout: &timeout,
		MaxBufferSize:            defs.DefaultMaxBufferSize,
		PartitionKey:             "",
		MaxMessageSize:           datasize.ByteSize(defs.DefaultMaxMessageBytes),
		OversizePolicy:           batch.OversizeDrop,
	}
}

// WithDefaults returns a copy with omitted options filled by defaults
func (cfg Config) WithDefaults() Config {
	defaults := NewDefaultConfig()
	if cfg.BufferingCount == nil {
		cfg.BufferingCount = defaults.BufferingCount
	}
	if cfg.BufferingFlushAllTimeout == nil {
		cfg.BufferingFlushAllTimeout = defaults.BufferingFlushAllTimeout
	}
	if cfg.MaxBufferSize == 0 {
		cfg.MaxBufferSize = defaults.MaxBufferSize
	}
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}
	if cfg.OversizePolicy == "" {
		cfg.OversizePolicy = defaults.OversizePolicy
	}
	return cfg
}

// VerifyConfig checks the config after defaults are applied
func (cfg Config) VerifyConfig() error {
	cfg = cfg.WithDefaults()
	if cfg.BufferingInterval < 0 {
		return fmt.Errorf(".bufferingInterval cannot be negative: %s", cfg.BufferingInterval)
	}
	if *cfg.BufferingCount < 0 {
		return fmt.Errorf(".bufferingCount cannot be negative: %d", *cfg.BufferingCount)
	}
	if cfg.MaxBufferSize < 0 {
		return fmt.Errorf(".maxBufferSize cannot be negative: %d", cfg.MaxBufferSize)
	}
	if *cfg.BufferingCount > cfg.MaxBufferSize {
		return fmt.Errorf(".bufferingCount (%d) cannot be larger than .maxBufferSize (%d)", *cfg.BufferingCount, cfg.MaxBufferSize)
	}
	if !slices.Contains(knownOversizePolicies, cfg.OversizePolicy) {
		return fmt.Errorf(".oversizePolicy is unknown: '%s'", cfg.OversizePolicy)
	}
	return nil
}

// Automatic tells whether batches are sized by bytes instead of count
func (cfg Config) Automatic() bool {
	return cfg.BufferingCount != nil && *cfg.BufferingCount == 0
}

// OnCompletedTimeout returns the timeout of the final flush at shutdown, zero for infinite
func (cfg Config) OnCompletedTimeout() time.Duration {
	if cfg.BufferingFlushAllTimeout == nil {
		return defs.DefaultFlushAllTimeout
	}
	if *cfg.BufferingFlushAllTimeout < 0 {
		return 0
	}
	return *cfg.BufferingFlushAllTimeout
}

func (cfg Config) assemblerConfig(context base.EntryContext, idSuffix string) batch.Config {
	return batch.Config{
		Context:        context,
		PartitionKey:   cfg.PartitionKey,
		Automatic:      cfg.Automatic(),
		MaxBatchBytes:  int(cfg.MaxMessageSize.Bytes()),
		OversizePolicy: cfg.OversizePolicy,
		IDSuffix:       idSuffix,
	}
}
