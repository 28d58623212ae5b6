// Package output registers the list of all output implementations
package output

import (
	"github.com/relex/eventsink/base/bconfig"
	"github.com/relex/eventsink/output/eventhub"
	"github.com/relex/eventsink/output/filedump"
	"github.com/relex/eventsink/output/fluentdforward"
	"github.com/relex/eventsink/output/null"
)

func init() {
	bconfig.RegisterConfigConstructors(bconfig.OutputConfigCreatorTable{
		"eventHub":       func() bconfig.OutputConfig { return &eventhub.Config{} },
		"fileDump":       func() bconfig.OutputConfig { return &filedump.Config{} },
		"fluentdForward": func() bconfig.OutputConfig { return &fluentdforward.Config{} },
		"null":           func() bconfig.OutputConfig { return &null.Config{} },
	})
}

// Register registers all output config types
func Register() {
	// trigger init()
}
