package run

import (
	"fmt"

	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/base/bconfig"
	"github.com/relex/eventsink/input"
	"github.com/relex/eventsink/output"
	"github.com/relex/eventsink/sink"
	"github.com/relex/eventsink/transform"
	"github.com/relex/eventsink/util"
	"gopkg.in/yaml.v3"
)

// Config defines the root of eventsink config file
type Config struct {
	Anchors AnchorsConfig               `yaml:"anchors"`
	Name    string                      `yaml:"name"`    // sink name used in logs and metric labels
	Context base.EntryContext           `yaml:"context"` // static context attached to every entry
	Sink    sink.Config                 `yaml:"sink"`
	Inputs  []bconfig.InputConfigHolder `yaml:"inputs"`
	Output  bconfig.OutputConfigHolder  `yaml:"output"`
}

// AnchorsConfig defines the anchors section in config file
//
// The section is meant to provide anchors for other sections and doesn't need to be unmarshalled itself
type AnchorsConfig struct {
}

func init() {
	input.Register()
	output.Register()
	transform.Register()
}

// LoadConfigFile loads config from the path and verifies all sections
func LoadConfigFile(filepath string) (*Config, error) {
	cref := &Config{}
	if err := util.UnmarshalYamlFile(filepath, cref); err != nil {
		return nil, err
	}
	if err := cref.VerifyConfig(); err != nil {
		return nil, err
	}
	return cref, nil
}

// VerifyConfig verifies all sections
func (cfg *Config) VerifyConfig() error {
	if cfg.Name == "" {
		return fmt.Errorf("name is unspecified")
	}
	if err := cfg.Sink.VerifyConfig(); err != nil {
		return fmt.Errorf("sink%w", err)
	}
	if err := bconfig.VerifyInputConfigs(cfg.Inputs, "inputs"); err != nil {
		return err
	}
	if cfg.Output.Value == nil {
		return fmt.Errorf("output is unspecified")
	}
	if err := cfg.Output.Value.VerifyConfig(); err != nil {
		return fmt.Errorf("output%w", err)
	}
	return nil
}

// MarshalYAML provides custom marshalling to export readable document. The result is not reversible.
func (holder AnchorsConfig) MarshalYAML() (interface{}, error) {
	return []string(nil), nil
}

// UnmarshalYAML skips the anchors section
func (holder *AnchorsConfig) UnmarshalYAML(value *yaml.Node) error {
	return nil
}
