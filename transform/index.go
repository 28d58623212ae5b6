// Package transform registers the list of all EntryTransform implementations
package transform

import (
	"github.com/relex/eventsink/base/bconfig"
	"github.com/relex/eventsink/transform/tfixutf8"
	"github.com/relex/eventsink/transform/tredactemail"
	"github.com/relex/eventsink/transform/ttruncate"
)

func init() {
	bconfig.RegisterConfigConstructors(bconfig.TransformConfigCreatorTable{
		"fixUTF8":     func() bconfig.TransformConfig { return &tfixutf8.Config{} },
		"redactEmail": func() bconfig.TransformConfig { return &tredactemail.Config{} },
		"truncate":    func() bconfig.TransformConfig { return &ttruncate.Config{} },
	})
}

// Register registers all transform config types
func Register() {
	// trigger init()
}
