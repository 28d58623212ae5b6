package bconfig

import (
	"fmt"

	"github.com/relex/eventsink/base"
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
)

// InputConfig provides an interface for the configuration of EntryInput(s)
//
// All the implementations should support YAML unmarshalling
type InputConfig interface {
	BaseConfig

	NewInput(parentLogger logger.Logger, receiver base.EntryReceiver, metricFactory *base.MetricFactory,
		stopRequest channels.Awaitable) (base.EntryInput, error)

	VerifyConfig() error
}

// InputConfigHolder holds InputConfig
type InputConfigHolder = ConfigHolder[InputConfig]

// InputConfigCreatorTable defines the table of constructors for InputConfig implementations
type InputConfigCreatorTable = ConfigCreatorTable[InputConfig]

// VerifyInputConfigs verifies a list of input configurations
func VerifyInputConfigs(configs []InputConfigHolder, path string) error {
	for i, holder := range configs {
		if err := holder.Value.VerifyConfig(); err != nil {
			return fmt.Errorf("%s[%d]: %w", path, i, err)
		}
	}
	return nil
}
