package bconfig

import (
	"github.com/relex/eventsink/base"
	"github.com/relex/gotils/logger"
)

// OutputConfig provides an interface for the configuration of an output, which is made of
//  1. EntrySerializer: serialize enriched entries one by one at flush time
//  2. BatchTransport: deliver batches of serialized entries to upstream
//
// All the implementations should support YAML unmarshalling
type OutputConfig interface {
	BaseConfig

	NewSerializer(parentLogger logger.Logger) (base.EntrySerializer, error)

	NewTransport(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.BatchTransport, error)

	VerifyConfig() error
}

// OutputConfigHolder holds OutputConfig
type OutputConfigHolder = ConfigHolder[OutputConfig]

// OutputConfigCreatorTable defines the table of constructors for OutputConfig implementations
type OutputConfigCreatorTable = ConfigCreatorTable[OutputConfig]
