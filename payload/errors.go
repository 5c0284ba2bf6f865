package payload

import "github.com/pkg/errors"

// ErrInputReject is returned when a raw fuzzer-supplied blob cannot be decoded into a non-empty,
// ABI-valid CallSequence. This is not fatal: the iteration simply ends without feedback.
var ErrInputReject = errors.New("input rejected: no valid frames could be decoded from the blob")

func rejectf(reason string) error {
	return errors.Wrap(ErrInputReject, reason)
}
