package fuzzing

import (
	chainTypes "github.com/kevin-valerio/phink/chain/types"
	"github.com/kevin-valerio/phink/bugs"
)

// SequenceExecutedEvent is published by every RunOne call whose sequence was decoded and run; a
// rejected blob or a failed deployment publishes nothing.
type SequenceExecutedEvent struct {
	// Responses holds one Response per message actually dispatched (may be shorter than the
	// decoded sequence if a message trapped and the sequence terminated early).
	Responses []chainTypes.Response
}

// CoverageUpdatedEvent is published whenever a RunOne call causes the Campaign's coverage.Map to
// learn at least one beacon id it had not already observed.
type CoverageUpdatedEvent struct {
	// NewEdges is the number of beacon ids this iteration contributed that were not already
	// covered by any prior iteration in this Campaign.
	NewEdges int
	// TotalCovered is the Campaign's coverage.Map size after this iteration.
	TotalCovered int
	// RawInput is the raw blob that produced this iteration's new coverage, for a subscriber that
	// wants to keep it (for example a corpus directory a later session reseeds from).
	RawInput []byte
}

// InvariantViolatedEvent is published whenever a RunOne call produces at least one Finding: an
// invariant Manager.Check reports violated against the terminal state, or a mid-sequence message
// trap.
type InvariantViolatedEvent struct {
	Findings []bugs.Finding
	Digest   string
}
