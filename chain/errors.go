package chain

import (
	"strconv"

	"github.com/pkg/errors"
)

// Error represents a failure in the runtime harness: a deployment failure, a dispatch against a
// state machine in the wrong state, an empty call sequence, or the cause recorded for a message
// whose response reported a trap.
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

// MessageTrap distinguishes a trap encountered during ordinary message execution from other
// failure kinds; the bugs package records it with this distinguished kind.
type MessageTrap struct {
	Selector [4]byte
	Index    int
	err      error
}

func (m *MessageTrap) Error() string {
	return "message trap at index " + strconv.Itoa(m.Index) + ": " + m.err.Error()
}

func (m *MessageTrap) Unwrap() error {
	return m.err
}

// MessageRevert describes a message that returned a deliberate error flag rather than trapping.
// This is recorded in the response and logged, but is not fatal: the sequence continues.
type MessageRevert struct {
	Selector [4]byte
	Index    int
}

func (m MessageRevert) String() string {
	return "message reverted at index " + strconv.Itoa(m.Index)
}
