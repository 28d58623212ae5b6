// Package null provides an output discarding all batches, for benchmarks and dry runs
package null

import (
	"context"

	"github.com/puzpuzpuz/xsync/v2"
	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/base/bconfig"
	"github.com/relex/gotils/logger"
)

// Config defines configuration for null output
type Config struct {
	bconfig.Header `yaml:",inline"`
}

// NewSerializer creates a serializer which only returns the message
func (cfg *Config) NewSerializer(parentLogger logger.Logger) (base.EntrySerializer, error) {
	return messageSerializer{}, nil
}

// NewTransport creates a Transport discarding everything
func (cfg *Config) NewTransport(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.BatchTransport, error) {
	return NewTransport(), nil
}

// VerifyConfig verifies the configuration
func (cfg *Config) VerifyConfig() error {
	return nil
}

type messageSerializer struct{}

func (messageSerializer) SerializeEntry(entry base.ExtendedEntry) ([]byte, error) {
	return []byte(entry.Message), nil
}

// Transport discards batches and counts them
type Transport struct {
	numBatches *xsync.Counter
	numEntries *xsync.Counter
	numBytes   *xsync.Counter
}

// NewTransport creates a Transport
func NewTransport() *Transport {
	return &Transport{
		numBatches: xsync.NewCounter(),
		numEntries: xsync.NewCounter(),
		numBytes:   xsync.NewCounter(),
	}
}

// SendBatch counts and discards the batch
func (tp *Transport) SendBatch(ctx context.Context, batch base.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tp.numBatches.Inc()
	tp.numEntries.Add(int64(batch.Len()))
	tp.numBytes.Add(int64(batch.NumBytes))
	return nil
}

// Close does nothing
func (tp *Transport) Close() error {
	return nil
}

// Stats returns the numbers of batches, entries and bytes received so far
func (tp *Transport) Stats() (int64, int64, int64) {
	return tp.numBatches.Value(), tp.numEntries.Value(), tp.numBytes.Value()
}
