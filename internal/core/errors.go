package core

import (
	"errors"
	"fmt"
)

// ErrSchedulerRunning is returned by Scheduler.Start when the background
// loop is already running.
var ErrSchedulerRunning = errors.New("model sync scheduler is already running")

// ErrNotInstalled signals that a tool's config directory and executable
// are both absent.
var ErrNotInstalled = errors.New("tool is not installed")

// ConnectionError is the typed failure returned by Adapter.Connect when
// the underlying tool cannot be found. Read-only queries never return it;
// they yield empty results instead.
type ConnectionError struct {
	Tool   ToolType
	Reason string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting %s adapter: %s", e.Tool, e.Reason)
}

func (e *ConnectionError) Unwrap() error { return ErrNotInstalled }
