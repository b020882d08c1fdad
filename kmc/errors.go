package kmc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoEnabledEvents signals that the catalog's total rate is zero. It is an
// expected terminal condition, not a failure: the driver maps it to
// FinishExhausted.
var ErrNoEnabledEvents = errors.New("no enabled events")

// DuplicateEventError reports an insert of an identity already present in
// the catalog. It is a programming-contract violation in the incremental
// updater or the physical model, and is fatal to the run.
type DuplicateEventError struct {
	ID ID
}

func (e *DuplicateEventError) Error() string {
	return fmt.Sprintf("duplicate event %s", e.ID)
}

// MissingEventError reports a removal or rate update for an identity absent
// from the catalog. Fatal, like DuplicateEventError.
type MissingEventError struct {
	ID ID
}

func (e *MissingEventError) Error() string {
	return fmt.Sprintf("missing event %s", e.ID)
}

// RateDiff is one rate disagreement between the live catalog and a
// from-scratch reference rebuild.
type RateDiff struct {
	ID   ID
	Live float64
	Ref  float64
}

// ConsistencyError reports divergence between the incrementally maintained
// catalog and a full re-enumeration. It carries the symmetric difference of
// the identity sets and all differing rates, so the operator can localize
// which event class miscomputes its affected region. The driver fills in
// Step and Time before surfacing it.
type ConsistencyError struct {
	Step       int
	Time       float64
	Missing    []ID       // in the reference, absent from the live catalog
	Unexpected []ID       // in the live catalog, absent from the reference
	Mismatched []RateDiff // present in both with rates beyond tolerance
	// Total-rate drift between the Fenwick index and a recount of the
	// reference map, when it alone exceeds tolerance.
	LiveTotal float64
	RefTotal  float64
}

func (e *ConsistencyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "catalog inconsistent at step %d (t=%g):", e.Step, e.Time)
	// Report one witness per category; the full diff stays on the fields.
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, " %d missing (e.g. %s);", len(e.Missing), e.Missing[0])
	}
	if len(e.Unexpected) > 0 {
		fmt.Fprintf(&b, " %d unexpected (e.g. %s);", len(e.Unexpected), e.Unexpected[0])
	}
	if len(e.Mismatched) > 0 {
		d := e.Mismatched[0]
		fmt.Fprintf(&b, " %d rate mismatches (e.g. %s live=%g ref=%g);",
			len(e.Mismatched), d.ID, d.Live, d.Ref)
	}
	if len(e.Missing) == 0 && len(e.Unexpected) == 0 && len(e.Mismatched) == 0 {
		fmt.Fprintf(&b, " total rate drift live=%g ref=%g;", e.LiveTotal, e.RefTotal)
	}
	return strings.TrimSuffix(b.String(), ";")
}
