package test

import (
	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/base/bconfig"
	"github.com/relex/eventsink/output/eventhub"
	"github.com/relex/eventsink/output/filedump"
	"github.com/relex/eventsink/output/null"
	"github.com/relex/eventsink/output/shared"
	"github.com/relex/eventsink/run"
	"github.com/relex/eventsink/sink"
	"github.com/relex/gotils/logger"
)

type agent struct {
	loader         *run.Loader
	sink           *sink.Sink
	inputAddresses []string
	shutdownInputs func()
}

// startAgent starts the sink and inputs as configured, except for the output which may be overridden
func startAgent(loader *run.Loader, outputOverride bconfig.OutputConfig) *agent {
	if len(loader.Inputs) != 1 {
		logger.Warnf("only the first input is used for testing - there are %d", len(loader.Inputs))
	}
	if outputOverride != nil {
		loader.Output.Value = outputOverride
	}

	snk, sinkErr := loader.LaunchSink(logger.Root())
	if sinkErr != nil {
		logger.Panic(sinkErr)
	}
	inputAddresses, shutdownInputs, inputErr := loader.LaunchInputs(logger.Root(), snk)
	if inputErr != nil {
		snk.Shutdown()
		logger.Panic(inputErr)
	}
	return &agent{
		loader:         loader,
		sink:           snk,
		inputAddresses: inputAddresses,
		shutdownInputs: shutdownInputs,
	}
}

func (a *agent) Address() string {
	return a.inputAddresses[0]
}

func (a *agent) Sink() *sink.Sink {
	return a.sink
}

func (a *agent) MetricFactory() *base.MetricFactory {
	return a.loader.MetricFactory
}

func (a *agent) StopAndWait() {
	a.shutdownInputs()
	a.sink.Shutdown()
}

// newOutputOverride creates an output config for the given path:
//
// - "": nil, to use the output as configured
//
// - "null": discard everything
//
// - otherwise a directory to write batch files, with serialization taken from the configured output if possible
func newOutputOverride(outputPath string, configured bconfig.OutputConfig) bconfig.OutputConfig {
	switch outputPath {
	case "":
		logger.Info("use configured output")
		return nil
	case "null":
		logger.Info("use null output")
		return &null.Config{Header: bconfig.Header{Type: "null"}}
	default:
		logger.Infof("use file dump output: %s", outputPath)
		serialization := shared.JSONSerializationConfig{}
		switch cfg := configured.(type) {
		case *eventhub.Config:
			serialization = cfg.Serialization
		case *filedump.Config:
			serialization = cfg.Serialization
		}
		return &filedump.Config{
			Header:        bconfig.Header{Type: "fileDump"},
			Serialization: serialization,
			Directory:     outputPath,
		}
	}
}
