// Package run runs the sink with configured inputs and output as a standalone process
package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/relex/eventsink/defs"
	"github.com/relex/eventsink/sink"
	"github.com/relex/gotils/logger"
)

// Run runs the sink until stopped by signals
//
// SIGUSR1 requests an explicit flush. SIGINT and SIGTERM shut down inputs first and then the sink.
func Run(configFile string) {
	loader, loaderErr := NewLoaderFromConfigFile(configFile, "eventsink_")
	if loaderErr != nil {
		logger.Fatal(loaderErr)
	}

	snk, sinkErr := loader.LaunchSink(logger.Root())
	if sinkErr != nil {
		logger.Fatal(sinkErr)
	}
	addresses, shutdownInputs, inputErr := loader.LaunchInputs(logger.Root(), snk)
	if inputErr != nil {
		snk.Shutdown()
		logger.Fatal(inputErr)
	}

	runLogger := logger.WithField(defs.LabelComponent, "Launcher")
	runLogger.Infof("listening on %v", addresses)

	waitForShutdownSignal(runLogger, snk)

	shutdownInputs()
	snk.Shutdown()
	runLogger.Info("clean exit")
}

func waitForShutdownSignal(runLogger logger.Logger, snk *sink.Sink) {
	sigChan := make(chan os.Signal, 10)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	defer signal.Stop(sigChan)

	for s := range sigChan {
		if s != syscall.SIGUSR1 {
			runLogger.Infof("received %s, shutting down", s)
			return
		}
		runLogger.Infof("received %s, flushing", s)
		req := snk.Flush()
		go func() {
			if sent, err := req.Wait(context.Background()); err != nil {
				runLogger.Warnf("requested flush failed: %s", err.Error())
			} else {
				runLogger.Infof("requested flush completed: sent=%d", sent)
			}
		}()
	}
}
