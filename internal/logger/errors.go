package logger

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrMissingAppName is returned by Init when Log.AppName is empty.
	ErrMissingAppName = errors.New("log: AppName is required")

	// ErrMissingServiceName is returned by Init when Log.ServiceName is empty.
	ErrMissingServiceName = errors.New("log: ServiceName is required")
)

// ErrorHandler reports events zerolog failed to write. It can not log, so it prints.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "acctmgr: dropped log event: %v\n", err)
}
