package coverage

import "github.com/pkg/errors"

// Error represents a failure in the coverage bridge: a malformed persisted trace file, or an
// unreadable instrumented source file during report generation.
type Error struct {
	msg string
	err error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.err
}

func newError(msg string, err error) error {
	return errors.WithStack(&Error{msg: msg, err: err})
}

// ErrCoverageOverflow is the sentinel logged when an observed beacon id exceeds the compiled
// ladder's bound. This is non-fatal: coverage for that id is lost but the iteration continues,
// so the bridge never returns it as an error, only logs it once per session.
var ErrCoverageOverflow = errors.New("beacon id exceeds compiled ladder bound")
