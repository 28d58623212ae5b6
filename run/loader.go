package run

import (
	"fmt"
	"time"

	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/defs"
	"github.com/relex/eventsink/sink"
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
)

// Loader loads configuration from file and prepares the environments to be launched
//
// Loader should take care of everything derived from the config file, but not trigger anything automatically
//
// Sink and inputs are exposed in place of a simple main loop to allow customization, see Run()
type Loader struct {
	filepath string // config file path

	*Config
	MetricFactory *base.MetricFactory
	FaultLogger   base.FaultLogger // optional, faults are logged as errors if nil
}

// NewLoaderFromConfigFile loads and verifies the config file
func NewLoaderFromConfigFile(filepath string, metricPrefix string) (*Loader, error) {
	config, configErr := LoadConfigFile(filepath)
	if configErr != nil {
		return nil, fmt.Errorf("%s: %w", filepath, configErr)
	}
	return &Loader{
		filepath:      filepath,
		Config:        config,
		MetricFactory: base.NewMetricFactory(metricPrefix, nil, nil),
		FaultLogger:   nil,
	}, nil
}

// LaunchSink creates the output and the sink, and starts the sink's publisher loop
func (loader *Loader) LaunchSink(parentLogger logger.Logger) (*sink.Sink, error) {
	outputConfig := loader.Output.Value
	serializer, err := outputConfig.NewSerializer(parentLogger)
	if err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	transport, err := outputConfig.NewTransport(parentLogger, loader.MetricFactory)
	if err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	snk, err := sink.New(parentLogger, loader.Sink, sink.Args{
		Name:          loader.Name,
		Context:       loader.Context,
		Serializer:    serializer,
		Transport:     transport,
		FaultLogger:   loader.FaultLogger,
		MetricFactory: loader.MetricFactory,
	})
	if err != nil {
		transport.Close()
		return nil, err
	}
	snk.Start()
	return snk, nil
}

// LaunchInputs starts all inputs in background and returns (list of addresses, shutdown function)
//
// The returned input addresses are final, e.g. assigned random port if it's 0 in config file
//
// The returned shutdown function only shuts down the inputs, not the sink
func (loader *Loader) LaunchInputs(parentLogger logger.Logger, receiver base.EntryReceiver) ([]string, func(), error) {
	stopRequest := channels.NewSignalAwaitable()
	inputStoppedSignals := make([]channels.Awaitable, 0, len(loader.Inputs))
	inputAddresses := make([]string, 0, len(loader.Inputs))
	shutdown := func() {
		stopRequest.Signal()
		deadline := time.Now().Add(defs.InputStopTimeout)
		for i, stopped := range inputStoppedSignals {
			if !stopped.Wait(time.Until(deadline)) {
				parentLogger.Warnf("inputs[%d] did not stop within %s", i, defs.InputStopTimeout)
			}
		}
	}

	for index, inputConfig := range loader.Inputs {
		input, ierr := inputConfig.Value.NewInput(parentLogger, receiver, loader.MetricFactory, stopRequest)
		if ierr != nil {
			shutdown()
			return nil, nil, fmt.Errorf("inputs[%d]: %w", index, ierr)
		}
		input.Start()

		inputAddresses = append(inputAddresses, input.Address())
		inputStoppedSignals = append(inputStoppedSignals, input.Stopped())
	}
	return inputAddresses, shutdown, nil
}
