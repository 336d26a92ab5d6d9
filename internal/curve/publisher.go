package curve

import (
	"fmt"
	"sync/atomic"
)

// Publisher hands completed curve snapshots from the editing session
// to the polling path. The swap is a single atomic pointer update, so
// an evaluation concurrent with a publish sees either the old or the
// new snapshot in full, never a mix.
type Publisher struct {
	snapshot atomic.Pointer[Parameters]
}

// NewPublisher starts with the default identity curve published.
func NewPublisher() *Publisher {
	pub := &Publisher{}
	def := Default()
	pub.snapshot.Store(&def)
	return pub
}

// Publish makes snap the curve observed by all subsequent Evaluate
// calls. A snapshot violating the structural invariants is rejected
// and the previous snapshot stays live; the editing session enforces
// the invariants during every mutation, so a rejection here indicates
// a bug in the caller rather than bad user input.
func (pub *Publisher) Publish(snap Parameters) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("rejecting curve snapshot: %w", err)
	}
	snap = snap.Clone() // the session keeps mutating its copy
	pub.snapshot.Store(&snap)
	return nil
}

// Snapshot returns the currently published parameters. Callers must
// treat the value as read-only; Points is shared with the snapshot.
func (pub *Publisher) Snapshot() Parameters {
	return *pub.snapshot.Load()
}

// Evaluate shapes one raw sample against the current snapshot. Safe
// to call from the polling loop concurrently with Publish.
func (pub *Publisher) Evaluate(raw float64) float64 {
	return pub.snapshot.Load().Evaluate(raw)
}
