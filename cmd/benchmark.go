package cmd

import (
	"github.com/relex/eventsink/defs"
	"github.com/relex/eventsink/test"
)

type benchmarkCommandState struct {
	Input  string `help:"Input file path or wildcard pattern (JSON lines)"`
	Output string `help:"Output:\n'': (empty) deliver as configured\n'null': discard all batches\notherwise a directory to write batch files, e.g. /tmp/batches"`
	Repeat int    `help:"Repeat times"`
	Config string `help:"Configuration file path"`
}

var benchCmd = benchmarkCommandState{
	Input:  "testdata/development/*-input.log",
	Output: "null",
	Config: "testdata/config_sample.yml",
	Repeat: 10000,
}

func (cmd *benchmarkCommandState) runBenchmarkSinkCommand(_ []string) {
	defs.EnableTestMode()
	test.RunBenchmarkSink(cmd.Input, cmd.Output, cmd.Repeat, cmd.Config)
}

func (cmd *benchmarkCommandState) runBenchmarkAgentCommand(_ []string) {
	defs.EnableTestMode()
	test.RunBenchmarkAgent(cmd.Input, cmd.Output, cmd.Repeat, cmd.Config)
}
