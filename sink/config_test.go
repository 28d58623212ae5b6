package sink

import (
	"testing"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/batch"
	"github.com/relex/eventsink/defs"
	"github.com/relex/eventsink/util"
	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	assert.NoError(t, cfg.VerifyConfig())

	cfg = cfg.WithDefaults()
	assert.Equal(t, defs.DefaultBufferingCount, *cfg.BufferingCount)
	assert.Equal(t, defs.DefaultMaxBufferSize, cfg.MaxBufferSize)
	assert.Equal(t, datasize.ByteSize(defs.DefaultMaxMessageBytes), cfg.MaxMessageSize)
	assert.Equal(t, batch.OversizeDrop, cfg.OversizePolicy)
	assert.Equal(t, defs.DefaultFlushAllTimeout, cfg.OnCompletedTimeout())
	assert.False(t, cfg.Automatic())
}

func TestConfigYaml(t *testing.T) {
	cfg := Config{}
	assert.NoError(t, util.UnmarshalYamlString(`
bufferingInterval: 5s
bufferingCount: 0
bufferingFlushAllTimeout: -1s
maxBufferSize: 500
partitionKey: my-key
maxMessageSize: 100KB
oversizePolicy: split
`, &cfg))
	assert.NoError(t, cfg.VerifyConfig())
	assert.Equal(t, 5*time.Second, cfg.BufferingInterval)
	assert.True(t, cfg.Automatic())
	assert.Equal(t, time.Duration(0), cfg.OnCompletedTimeout())
	assert.Equal(t, 500, cfg.MaxBufferSize)
	assert.Equal(t, "my-key", cfg.PartitionKey)
	assert.Equal(t, 100*datasize.KB, cfg.MaxMessageSize)
	assert.Equal(t, batch.OversizeSplit, cfg.OversizePolicy)

	assemblerConfig := cfg.assemblerConfig(base.EntryContext{}, ".json")
	assert.True(t, assemblerConfig.Automatic)
	assert.Equal(t, 102400, assemblerConfig.MaxBatchBytes)
}

func TestConfigInvalid(t *testing.T) {
	count := func(n int) *int { return &n }

	assert.EqualError(t, Config{BufferingInterval: -time.Second}.VerifyConfig(),
		".bufferingInterval cannot be negative: -1s")
	assert.EqualError(t, Config{BufferingCount: count(-1)}.VerifyConfig(),
		".bufferingCount cannot be negative: -1")
	assert.EqualError(t, Config{MaxBufferSize: -5}.VerifyConfig(),
		".maxBufferSize cannot be negative: -5")
	assert.EqualError(t, Config{BufferingCount: count(20), MaxBufferSize: 10}.VerifyConfig(),
		".bufferingCount (20) cannot be larger than .maxBufferSize (10)")
	assert.EqualError(t, Config{OversizePolicy: "defer"}.VerifyConfig(),
		".oversizePolicy is unknown: 'defer'")
}
