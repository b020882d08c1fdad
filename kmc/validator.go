package kmc

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// RateTolerance is the relative tolerance for rate comparisons between the
// incrementally maintained catalog and a from-scratch rebuild. Incremental
// Fenwick updates accumulate rounding, so exact equality is not required;
// anything beyond this is treated as drift.
const RateTolerance = 1e-9

// Validate rebuilds the enabled-event set from scratch via the model and
// compares it against the live catalog: same identity set, rates equal
// within RateTolerance, and the catalog's indexed total consistent with a
// recount of its own reference map. A nil return means the catalog agrees
// with truth.
//
// On divergence it returns a *ConsistencyError carrying the full symmetric
// difference. This is a developer safety net: the caller is expected to
// abort the run, not recover.
func Validate(c *Catalog, m Model) error {
	ref := make(map[ID]float64)
	for _, ev := range m.EnumerateAll() {
		if ev.Rate > 0 {
			ref[ev.ID] = ev.Rate
		}
	}
	live := c.Snapshot()

	var diff ConsistencyError
	for id, want := range ref {
		got, ok := live[id]
		if !ok {
			diff.Missing = append(diff.Missing, id)
			continue
		}
		if !withinTolerance(got, want) {
			diff.Mismatched = append(diff.Mismatched, RateDiff{ID: id, Live: got, Ref: want})
		}
	}
	for id := range live {
		if _, ok := ref[id]; !ok {
			diff.Unexpected = append(diff.Unexpected, id)
		}
	}

	// Cross-check the acceleration layer against the plain map: the Fenwick
	// total must match an exact recount of the reference mapping.
	rates := make([]float64, 0, len(live))
	for _, r := range live {
		rates = append(rates, r)
	}
	sort.Float64s(rates) // summation order independent of map iteration
	diff.LiveTotal = c.TotalRate()
	diff.RefTotal = floats.Sum(rates)

	if len(diff.Missing) == 0 && len(diff.Unexpected) == 0 && len(diff.Mismatched) == 0 &&
		withinTolerance(diff.LiveTotal, diff.RefTotal) {
		return nil
	}
	sortIDs(diff.Missing)
	sortIDs(diff.Unexpected)
	sort.Slice(diff.Mismatched, func(i, j int) bool {
		return idLess(diff.Mismatched[i].ID, diff.Mismatched[j].ID)
	})
	return &diff
}

func withinTolerance(a, b float64) bool {
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= RateTolerance*math.Max(scale, 1)
}

func sortIDs(ids []ID) {
	sort.Slice(ids, func(i, j int) bool { return idLess(ids[i], ids[j]) })
}

func idLess(a, b ID) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Arity != b.Arity {
		return a.Arity < b.Arity
	}
	for i := range a.Nodes {
		if a.Nodes[i] != b.Nodes[i] {
			if a.Nodes[i].A != b.Nodes[i].A {
				return a.Nodes[i].A < b.Nodes[i].A
			}
			return a.Nodes[i].B < b.Nodes[i].B
		}
	}
	return false
}
