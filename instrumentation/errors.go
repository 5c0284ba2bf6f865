package instrumentation

import "github.com/pkg/errors"

// Error is returned when a contract source tree cannot be instrumented: the top-level source file
// is missing, or the formatter invoked after rewriting fails. This is fatal for the affected
// contract, but a fuzzing session driving multiple contracts may continue with others.
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
