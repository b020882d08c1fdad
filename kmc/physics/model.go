package physics

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/ExpHP/kmc-dichalcogen/kmc"
	"github.com/ExpHP/kmc-dichalcogen/kmc/lattice"
)

// Model implements kmc.Model for the dichalcogenide defect system. It owns
// the lattice state; the engine mutates it only through Apply.
type Model struct {
	grid  lattice.Grid
	state *lattice.State
	rates map[kmc.Kind]float64
}

// New creates a model on a pristine lattice with the given per-kind rates.
func New(grid lattice.Grid, rates map[kmc.Kind]float64) *Model {
	return &Model{
		grid:  grid,
		state: lattice.NewState(grid),
		rates: rates,
	}
}

// State exposes the lattice state for inspection.
func (m *Model) State() *lattice.State {
	return m.state
}

// SeedRandom seeds the starting configuration, giving each site an
// independent chance of holding a divacancy. Runs before the simulation
// loop; it must not share the sampler's RNG stream.
func (m *Model) SeedRandom(divacancyFraction float64, rng *rand.Rand) error {
	if divacancyFraction <= 0 {
		return nil
	}
	for _, n := range m.grid.Nodes() {
		if rng.Float64() < divacancyFraction {
			if err := m.state.CreateDivacancy(n); err != nil {
				return fmt.Errorf("seeding initial state: %w", err)
			}
		}
	}
	return nil
}

// KindName implements kmc.Model.
func (m *Model) KindName(k kmc.Kind) string {
	return KindName(k)
}

// StateKey implements kmc.Model with the lattice state's configuration hash.
func (m *Model) StateKey() uint64 {
	return m.state.Key()
}

// RateOf returns the kind's configured rate if the transformation is
// enabled in the current state, else 0. Enabled-status depends only on the
// occupancy of the identity's own footprint; AffectedRegion's superset
// guarantee is built on that.
func (m *Model) RateOf(id kmc.ID) float64 {
	if !m.enabled(id) {
		return 0
	}
	return m.rates[id.Kind]
}

func (m *Model) enabled(id kmc.ID) bool {
	switch id.Kind {
	case KindCreateDivacancy:
		return id.Arity == 1 && m.state.IsPristine(id.Nodes[0])
	case KindFillDivacancy:
		return id.Arity == 1 && m.state.IsDivacancy(id.Nodes[0])
	case KindMigrateDivacancy:
		if id.Arity != 2 {
			return false
		}
		from, to := id.Nodes[0], id.Nodes[1]
		return m.state.IsDivacancy(from) && m.state.IsPristine(to) && m.isNeighbor(from, to)
	case KindFormTrefoil:
		if id.Arity != 3 {
			return false
		}
		trio := [3]lattice.Node{id.Nodes[0], id.Nodes[1], id.Nodes[2]}
		if trio[0] == trio[1] || trio[1] == trio[2] || trio[0] == trio[2] {
			// Degenerate trios arise from wraparound on very small grids.
			return false
		}
		for _, n := range trio {
			if !m.state.IsDivacancy(n) {
				return false
			}
		}
		return m.grid.CanFormTrefoil(trio[0], trio[1], trio[2])
	case KindDissolveTrefoil:
		if id.Arity != 3 {
			return false
		}
		trio, ok := m.state.TrefoilAt(id.Nodes[0])
		return ok && trio == [3]lattice.Node{id.Nodes[0], id.Nodes[1], id.Nodes[2]}
	}
	return false
}

func (m *Model) isNeighbor(u, v lattice.Node) bool {
	for _, w := range m.grid.Neighbors(u) {
		if w == v {
			return true
		}
	}
	return false
}

// Apply performs the transformation, mutating lattice state. An error means
// the event was not enabled, a contract violation upstream.
func (m *Model) Apply(id kmc.ID) error {
	switch id.Kind {
	case KindCreateDivacancy:
		return m.state.CreateDivacancy(id.Nodes[0])
	case KindFillDivacancy:
		return m.state.RemoveDivacancy(id.Nodes[0])
	case KindMigrateDivacancy:
		if err := m.state.RemoveDivacancy(id.Nodes[0]); err != nil {
			return err
		}
		return m.state.CreateDivacancy(id.Nodes[1])
	case KindFormTrefoil:
		return m.state.FormTrefoil([3]lattice.Node{id.Nodes[0], id.Nodes[1], id.Nodes[2]})
	case KindDissolveTrefoil:
		return m.state.DissolveTrefoil([3]lattice.Node{id.Nodes[0], id.Nodes[1], id.Nodes[2]})
	}
	return fmt.Errorf("apply %s: unknown kind", id)
}

// EnumerateAll returns every enabled event by a full lattice scan, in a
// deterministic order (row-major site order, fixed candidate order per
// site, trios deduplicated on first encounter).
func (m *Model) EnumerateAll() []kmc.Event {
	var events []kmc.Event
	seen := make(map[kmc.ID]bool)
	for _, n := range m.grid.Nodes() {
		for _, id := range m.candidatesAt(n) {
			if seen[id] {
				continue
			}
			seen[id] = true
			if rate := m.RateOf(id); rate > 0 {
				events = append(events, kmc.Event{ID: id, Rate: rate})
			}
		}
	}
	return events
}

// AffectedRegion returns every candidate identity whose footprint intersects
// the applied event's footprint. Rates depend only on a transformation's own
// footprint occupancy, and Apply changes occupancy only inside the applied
// footprint, so this geometric set is a superset of everything that could
// have changed, which is the contract kmc.Model requires.
func (m *Model) AffectedRegion(applied kmc.ID) []kmc.ID {
	var region []kmc.ID
	seen := make(map[kmc.ID]bool)
	for _, n := range applied.Footprint() {
		for _, id := range m.candidatesAt(n) {
			if !seen[id] {
				seen[id] = true
				region = append(region, id)
			}
		}
	}
	return region
}

// candidatesAt enumerates every transformation identity whose footprint
// includes the site, purely geometrically: enablement is RateOf's concern.
func (m *Model) candidatesAt(n lattice.Node) []kmc.ID {
	ids := []kmc.ID{
		kmc.SiteID(KindCreateDivacancy, n),
		kmc.SiteID(KindFillDivacancy, n),
	}
	for _, nbr := range m.grid.Neighbors(n) {
		ids = append(ids,
			kmc.PairID(KindMigrateDivacancy, n, nbr),
			kmc.PairID(KindMigrateDivacancy, nbr, n),
		)
	}
	// Trefoil-ready trios through this site: pairs of its trefoil neighbors
	// that are also trefoil-adjacent to each other.
	tnbrs := m.grid.TrefoilNeighbors(n)
	for i := 0; i < len(tnbrs); i++ {
		for j := i + 1; j < len(tnbrs); j++ {
			if !m.grid.IsTrefoilNeighbor(tnbrs[i], tnbrs[j]) {
				continue
			}
			ids = append(ids,
				kmc.TrioID(KindFormTrefoil, n, tnbrs[i], tnbrs[j]),
				kmc.TrioID(KindDissolveTrefoil, n, tnbrs[i], tnbrs[j]),
			)
		}
	}
	return ids
}
