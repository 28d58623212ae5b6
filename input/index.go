// Package input registers the list of all EntryInput implementations
package input

import (
	"github.com/relex/eventsink/base/bconfig"
	"github.com/relex/eventsink/input/tcplistener"
)

func init() {
	bconfig.RegisterConfigConstructors(bconfig.InputConfigCreatorTable{
		"tcp": func() bconfig.InputConfig { return &tcplistener.Config{} },
	})
}

// Register registers all input config types
func Register() {
	// trigger init()
}
