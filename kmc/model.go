package kmc

// Model is the physical-model collaborator. It owns the lattice state and
// all physics: which transformations exist, their rates, and their effects.
// The engine never touches lattice state directly.
//
// Contract for AffectedRegion: the returned candidate set MUST be a superset
// of every event whose rate or enabled-status actually changed as a
// consequence of the applied event. The engine cannot verify this
// structurally; a model that under-reports makes the catalog silently drift
// from truth, which is exactly the bug class the consistency validator
// exists to catch.
type Model interface {
	// EnumerateAll returns every currently enabled event with its rate, by a
	// full scan of the lattice. Used once at initialization and by the
	// consistency validator; never called on the incremental path.
	EnumerateAll() []Event

	// AffectedRegion returns the candidate identities whose rate may have
	// changed as a local consequence of the applied event. Called after
	// Apply. May include candidates that did not actually change, or that
	// are disabled in both the old and new state; it must not omit any that
	// changed.
	AffectedRegion(applied ID) []ID

	// RateOf returns the current rate of the identified transformation, or 0
	// if it is disabled in the current lattice state.
	RateOf(id ID) float64

	// Apply performs the transformation, mutating lattice state in place.
	// An error indicates a contract violation (the event was not actually
	// enabled) and is fatal to the run.
	Apply(id ID) error

	// KindName returns a stable human-readable name for a kind, used in
	// trace records and diagnostics.
	KindName(k Kind) string

	// StateKey returns a hash of the current lattice configuration. It is
	// recorded with each trace entry so downstream tools can detect
	// revisited states. Equal configurations must yield equal keys.
	StateKey() uint64
}
