package util

import (
	"fmt"
	"runtime/debug"
)

// Stack returns current stack trace as string
func Stack() string {
	return string(debug.Stack())
}

// PanicToError converts a recovered value to error, with the stack trace of the current goroutine
func PanicToError(recovered interface{}) error {
	if err, ok := recovered.(error); ok {
		return fmt.Errorf("panic: %w\n%s", err, Stack())
	}
	return fmt.Errorf("panic: %v\n%s", recovered, Stack())
}
