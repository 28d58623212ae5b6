// Package cmd provides list of commands including self-benchmarks
package cmd

import (
	"github.com/relex/gotils/config"
)

func init() {
	config.AddParentCmdWithArgs("", "eventsink buffers log events and delivers them upstream in batches", &rootCmd, rootCmd.preRun, rootCmd.postRun)
	config.AddCmdWithArgs("benchmark <type> ...", "Run benchmark of specified type", &benchCmd, nil)
	config.AddCmdWithArgs("benchmark sink ...", "Benchmark sink by posting entries directly", nil, benchCmd.runBenchmarkSinkCommand)
	config.AddCmdWithArgs("benchmark agent ...", "Benchmark sink with TCP input", nil, benchCmd.runBenchmarkAgentCommand)
	config.AddCmdWithArgs("check ...", "Load and verify configuration file", &checkCmd, checkCmd.check)
	config.AddCmdWithArgs("run ...", "Run sink with configured inputs and output", &runCmd, runCmd.run)
}

// Execute parses the command line and runs the specified command
func Execute() {
	// trigger init

	config.Execute()
}
