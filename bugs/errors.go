package bugs

import "github.com/pkg/errors"

// ErrInvariantViolation is the sentinel a caller wraps around one or more Manager.Check Findings
// once it decides to surface them as a failure (for example cmd execute's non-zero exit on replay).
// Manager.Check itself never returns an error for a violated invariant: a confirmed bug is reported
// via its Finding slice, not as a failure of the check itself.
var ErrInvariantViolation = errors.New("invariant violation")
