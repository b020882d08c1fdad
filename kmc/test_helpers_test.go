package kmc

import (
	"fmt"
	"sort"

	"github.com/ExpHP/kmc-dichalcogen/kmc/lattice"
)

// fakeModel is a scripted Model for engine tests. Truth is a plain
// identity -> rate map; Apply rewrites it from a per-event effect table, and
// AffectedRegion reports whatever the script says (defaulting to the applied
// event plus everything its effects touch).
type fakeModel struct {
	rates   map[ID]float64
	effects map[ID]map[ID]float64 // applied id -> rate overrides on truth
	regions map[ID][]ID           // applied id -> reported affected region
	applied []ID
}

func newFakeModel() *fakeModel {
	return &fakeModel{
		rates:   make(map[ID]float64),
		effects: make(map[ID]map[ID]float64),
		regions: make(map[ID][]ID),
	}
}

func (m *fakeModel) EnumerateAll() []Event {
	ids := make([]ID, 0, len(m.rates))
	for id, r := range m.rates {
		if r > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return idLess(ids[i], ids[j]) })
	events := make([]Event, len(ids))
	for i, id := range ids {
		events[i] = Event{ID: id, Rate: m.rates[id]}
	}
	return events
}

func (m *fakeModel) AffectedRegion(applied ID) []ID {
	if region, ok := m.regions[applied]; ok {
		return region
	}
	region := []ID{applied}
	for id := range m.effects[applied] {
		if id != applied {
			region = append(region, id)
		}
	}
	sort.Slice(region, func(i, j int) bool { return idLess(region[i], region[j]) })
	return region
}

func (m *fakeModel) RateOf(id ID) float64 {
	return m.rates[id]
}

func (m *fakeModel) Apply(id ID) error {
	if m.rates[id] <= 0 {
		return fmt.Errorf("apply %s: not enabled", id)
	}
	m.applied = append(m.applied, id)
	for target, rate := range m.effects[id] {
		if rate <= 0 {
			delete(m.rates, target)
		} else {
			m.rates[target] = rate
		}
	}
	return nil
}

func (m *fakeModel) KindName(k Kind) string {
	return fmt.Sprintf("kind%d", k)
}

// StateKey folds the applied-event history, which fully determines a
// fakeModel's truth, so it behaves like a real configuration hash.
func (m *fakeModel) StateKey() uint64 {
	var key uint64
	for _, id := range m.applied {
		key = key*1099511628211 + uint64(id.Nodes[0].A)<<32 + uint64(id.Nodes[0].B)
	}
	return key
}

// siteID builds a kind-0 single-site identity at column b of row a. Tests use
// these as cheap distinct identities.
func siteID(a, b int) ID {
	return SiteID(0, lattice.Node{A: a, B: b})
}

// narrowRegionModel wraps a fakeModel but under-reports affected regions,
// claiming only the applied event itself ever changes. Used to prove the
// consistency validator catches locality bugs.
type narrowRegionModel struct {
	*fakeModel
}

func (m *narrowRegionModel) AffectedRegion(applied ID) []ID {
	return []ID{applied}
}
