package cmd

import (
	"fmt"

	"github.com/relex/eventsink/run"
	"github.com/relex/eventsink/util"
	"github.com/relex/gotils/logger"
)

type checkCommandState struct {
	Config string `help:"Configuration file path"`
	Print  bool   `help:"Print the loaded configuration with anchors and defaults resolved"`
}

var checkCmd = checkCommandState{
	Config: "config.yml",
	Print:  false,
}

func (cmd *checkCommandState) check(args []string) {
	cfg, err := run.LoadConfigFile(cmd.Config)
	if err != nil {
		logger.Fatalf("%s: %s", cmd.Config, err.Error())
	}
	if !cmd.Print {
		logger.Infof("%s: OK", cmd.Config)
		return
	}
	doc, err := util.MarshalYaml(cfg)
	if err != nil {
		logger.Fatalf("failed to marshal config: %s", err.Error())
	}
	fmt.Print(doc)
}
