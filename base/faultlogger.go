package base

import (
	"github.com/relex/gotils/logger"
)

// FaultLogger receives unexpected faults from sinks, e.g. transport and serialization failures
//
// ReportUnhandledFault must not block or fail
type FaultLogger interface {
	ReportUnhandledFault(details string)
}

// FaultLoggerFunc adapts a function to FaultLogger
type FaultLoggerFunc func(details string)

// ReportUnhandledFault calls the function itself
func (f FaultLoggerFunc) ReportUnhandledFault(details string) {
	f(details)
}

type loggingFaultLogger struct {
	logger logger.Logger
}

// NewLoggingFaultLogger creates a FaultLogger writing faults as errors to the given logger
func NewLoggingFaultLogger(parentLogger logger.Logger) FaultLogger {
	return &loggingFaultLogger{
		logger: parentLogger.WithField("fault", true),
	}
}

func (fl *loggingFaultLogger) ReportUnhandledFault(details string) {
	fl.logger.Errorf("unhandled fault: %s", details)
}
