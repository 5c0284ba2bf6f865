package fuzzing

import "github.com/pkg/errors"

// Error represents a failure to start or run a Campaign: unparseable configured origin addresses,
// a failed contract deployment, or a call sequence the harness refused to run.
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
