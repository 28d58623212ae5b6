package bconfig

import (
	"fmt"

	"github.com/relex/eventsink/base"
	"github.com/relex/gotils/logger"
)

// TransformConfig provides an interface for the configuration of EntryTransform(s)
//
// All the implementations should support YAML unmarshalling
type TransformConfig interface {
	BaseConfig

	NewTransform(parentLogger logger.Logger, metricFactory *base.MetricFactory) base.EntryTransform

	VerifyConfig() error
}

// TransformConfigHolder holds TransformConfig
type TransformConfigHolder = ConfigHolder[TransformConfig]

// TransformConfigCreatorTable defines the table of constructors for TransformConfig implementations
type TransformConfigCreatorTable = ConfigCreatorTable[TransformConfig]

// NewTransforms creates transforms from a list of verified configurations
func NewTransforms(configs []TransformConfigHolder, parentLogger logger.Logger, metricFactory *base.MetricFactory) base.EntryTransforms {
	list := make(base.EntryTransforms, 0, len(configs))
	for _, holder := range configs {
		list = append(list, holder.Value.NewTransform(parentLogger, metricFactory))
	}
	return list
}

// VerifyTransformConfigs verifies a list of transform configurations
func VerifyTransformConfigs(configs []TransformConfigHolder, path string) error {
	for i, holder := range configs {
		if err := holder.Value.VerifyConfig(); err != nil {
			return fmt.Errorf("%s[%d]: %w", path, i, err)
		}
	}
	return nil
}
