package abi

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError is returned when contract metadata cannot be parsed into a usable ABI: a missing
// "spec" root, a malformed selector, or a selector that is not exactly 4 bytes wide. Callers should
// treat this as fatal for the affected contract.
type ConfigError struct {
	msg string
	err error
}

func (e *ConfigError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *ConfigError) Unwrap() error {
	return e.err
}

func newConfigError(msg string, err error) error {
	return errors.WithStack(&ConfigError{msg: msg, err: err})
}

// errSelectorWidth reports a selector that did not decode to exactly 4 bytes.
func errSelectorWidth(got int) error {
	return fmt.Errorf("selector must decode to exactly %d bytes, got %d", selectorWidth, got)
}
