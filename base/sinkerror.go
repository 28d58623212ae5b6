package base

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies failures of a flush cycle
type ErrorKind int

// List of error kinds
const (
	ErrorKindUnknown ErrorKind = iota
	// ErrorKindCancelled means the send was cancelled by shutdown; treated as zero entries sent
	ErrorKindCancelled
	// ErrorKindSerializationFailure means an entry could not be serialized; the whole flush cycle is aborted
	ErrorKindSerializationFailure
	// ErrorKindTransportFailure means the transport failed to deliver a batch; not retried
	ErrorKindTransportFailure
	// ErrorKindTimedOut means the final flush did not complete before the shutdown timeout
	ErrorKindTimedOut
)

// ErrFlushTimedOut is reported when the final flush exceeds the shutdown timeout
var ErrFlushTimedOut = NewSinkError(ErrorKindTimedOut, errors.New("final flush timed out"))

func (kind ErrorKind) String() string {
	switch kind {
	case ErrorKindCancelled:
		return "cancelled"
	case ErrorKindSerializationFailure:
		return "serialization"
	case ErrorKindTransportFailure:
		return "transport"
	case ErrorKindTimedOut:
		return "timeout"
	default:
		return "unknown"
	}
}

// ReportsFault tells whether errors of this kind go to FaultLogger
func (kind ErrorKind) ReportsFault() bool {
	switch kind {
	case ErrorKindSerializationFailure, ErrorKindTransportFailure, ErrorKindUnknown:
		return true
	default:
		return false
	}
}

// Propagates tells whether errors of this kind are returned to the caller waiting for a flush
//
// Cancellation and shutdown timeout are expected outcomes and only logged
func (kind ErrorKind) Propagates() bool {
	return kind.ReportsFault()
}

// SinkError is an error with ErrorKind
type SinkError struct {
	Kind ErrorKind
	Err  error
}

// NewSinkError wraps the given error with ErrorKind
func NewSinkError(kind ErrorKind, err error) *SinkError {
	return &SinkError{Kind: kind, Err: err}
}

// NewSerializationError creates a SinkError of ErrorKindSerializationFailure
func NewSerializationError(format string, args ...interface{}) *SinkError {
	return NewSinkError(ErrorKindSerializationFailure, fmt.Errorf(format, args...))
}

// NewTransportError creates a SinkError of ErrorKindTransportFailure
func NewTransportError(format string, args ...interface{}) *SinkError {
	return NewSinkError(ErrorKindTransportFailure, fmt.Errorf(format, args...))
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s failure: %s", e.Kind, e.Err.Error())
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// ClassifyError finds the ErrorKind of the given error
//
// Cancellation is checked first so that transports may wrap context errors freely.
// Errors without kind from transports are classified as transport failures.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ErrorKindUnknown
	}
	if errors.Is(err, context.Canceled) {
		return ErrorKindCancelled
	}
	var serr *SinkError
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return ErrorKindTransportFailure
}
