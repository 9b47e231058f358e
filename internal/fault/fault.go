// Package fault marks storage failures that must never happen during normal
// operation. A fault means the storage layer is broken and the process
// should stop serving rather than continue with inconsistent state.
package fault

import (
	"errors"
	"fmt"
)

// Error wraps a failed write that the data layer treats as unrecoverable.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fatal storage fault in %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns nil when err is nil, otherwise a fault for op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// IsFatal reports whether err carries a fault anywhere in its chain.
func IsFatal(err error) bool {
	var f *Error
	return errors.As(err, &f)
}

// Reporter receives fatal faults observed at the transport boundary.
type Reporter interface {
	Report(err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(err error)

func (f ReporterFunc) Report(err error) { f(err) }

// Channel forwards the first fault to a buffered channel and drops the rest,
// so a supervisor can select on it alongside signal handling.
type Channel struct {
	ch chan error
}

// NewChannel creates a Channel with room for one fault.
func NewChannel() *Channel {
	return &Channel{ch: make(chan error, 1)}
}

func (c *Channel) Report(err error) {
	select {
	case c.ch <- err:
	default:
	}
}

// C returns the channel the supervisor waits on.
func (c *Channel) C() <-chan error { return c.ch }
