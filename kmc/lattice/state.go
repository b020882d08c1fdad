package lattice

import "fmt"

// Status is the occupancy of a single site.
type Status uint8

const (
	// StatusPristine marks a site with no vacancy.
	StatusPristine Status = iota
	// StatusDivacancy marks a site holding a divacancy.
	StatusDivacancy
	// StatusTrefoil marks a site participating in a trefoil defect.
	StatusTrefoil
)

func (s Status) String() string {
	switch s {
	case StatusPristine:
		return "pristine"
	case StatusDivacancy:
		return "divacancy"
	case StatusTrefoil:
		return "trefoil"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// State is the point-defect configuration of a grid. Mutators enforce
// occupancy preconditions and return an error on misuse; which mutations are
// physically allowed is the physical model's concern, not State's.
//
// Not safe for concurrent use. The simulation loop is strictly sequential.
type State struct {
	grid     Grid
	status   map[Node]Status
	trefoils map[Node][3]Node // member site -> canonical trio
	key      uint64           // XOR of per-site hash terms, maintained incrementally
}

// NewState creates an all-pristine configuration on the given grid.
func NewState(grid Grid) *State {
	return &State{
		grid:     grid,
		status:   make(map[Node]Status, grid.Len()),
		trefoils: make(map[Node][3]Node),
	}
}

// Grid returns the underlying grid.
func (s *State) Grid() Grid {
	return s.grid
}

// Status returns the occupancy of a site. Sites never touched by a mutator
// are pristine.
func (s *State) Status(n Node) Status {
	return s.status[n]
}

// IsPristine reports whether the site holds no defect.
func (s *State) IsPristine(n Node) bool { return s.Status(n) == StatusPristine }

// IsDivacancy reports whether the site holds a divacancy.
func (s *State) IsDivacancy(n Node) bool { return s.Status(n) == StatusDivacancy }

// IsTrefoil reports whether the site participates in a trefoil.
func (s *State) IsTrefoil(n Node) bool { return s.Status(n) == StatusTrefoil }

// Key returns a hash of the defect configuration, maintained incrementally
// as an XOR of per-site terms. Equal configurations have equal keys, so
// downstream tools can detect revisited states from the trace; collisions
// are possible but need ~2^32 distinct states to become likely.
func (s *State) Key() uint64 {
	return s.key
}

// TrefoilAt returns the canonical trio of the trefoil occupying n, if any.
func (s *State) TrefoilAt(n Node) ([3]Node, bool) {
	trio, ok := s.trefoils[n]
	return trio, ok
}

// CreateDivacancy places a divacancy on a pristine site.
func (s *State) CreateDivacancy(n Node) error {
	if got := s.Status(n); got != StatusPristine {
		return fmt.Errorf("create divacancy at %s: site is %s", n, got)
	}
	s.status[n] = StatusDivacancy
	s.key ^= hashTerm(n, StatusDivacancy)
	return nil
}

// RemoveDivacancy clears a divacancy from a site.
func (s *State) RemoveDivacancy(n Node) error {
	if got := s.Status(n); got != StatusDivacancy {
		return fmt.Errorf("remove divacancy at %s: site is %s", n, got)
	}
	delete(s.status, n)
	s.key ^= hashTerm(n, StatusDivacancy)
	return nil
}

// FormTrefoil converts three divacancies into a trefoil defect. The trio is
// stored in canonical order under each member site.
func (s *State) FormTrefoil(trio [3]Node) error {
	trio = CanonicalTrio(trio[0], trio[1], trio[2])
	if trio[0] == trio[1] || trio[1] == trio[2] {
		return fmt.Errorf("form trefoil %v: sites must be distinct", trio)
	}
	for _, n := range trio {
		if got := s.Status(n); got != StatusDivacancy {
			return fmt.Errorf("form trefoil %v: site %s is %s", trio, n, got)
		}
	}
	for _, n := range trio {
		s.status[n] = StatusTrefoil
		s.trefoils[n] = trio
		s.key ^= hashTerm(n, StatusDivacancy) ^ hashTerm(n, StatusTrefoil)
	}
	return nil
}

// DissolveTrefoil converts a trefoil back into three divacancies. The given
// trio must match the trefoil actually occupying those sites.
func (s *State) DissolveTrefoil(trio [3]Node) error {
	trio = CanonicalTrio(trio[0], trio[1], trio[2])
	stored, ok := s.trefoils[trio[0]]
	if !ok || stored != trio {
		return fmt.Errorf("dissolve trefoil %v: no such trefoil", trio)
	}
	for _, n := range trio {
		s.status[n] = StatusDivacancy
		delete(s.trefoils, n)
		s.key ^= hashTerm(n, StatusTrefoil) ^ hashTerm(n, StatusDivacancy)
	}
	return nil
}

// Counts returns the number of divacancies and trefoil defects.
func (s *State) Counts() (divacancies, trefoils int) {
	seen := make(map[[3]Node]bool)
	for _, st := range s.status {
		if st == StatusDivacancy {
			divacancies++
		}
	}
	for _, trio := range s.trefoils {
		seen[trio] = true
	}
	return divacancies, len(seen)
}

// Validate performs an expensive self-integrity check over the status and
// trefoil maps. Used by tests and the consistency machinery.
func (s *State) Validate() error {
	for n, st := range s.status {
		if s.grid.Wrap(n) != n {
			return fmt.Errorf("site %s outside unit cell", n)
		}
		if st == StatusPristine {
			return fmt.Errorf("site %s stored with pristine status", n)
		}
		if st == StatusTrefoil {
			if _, ok := s.trefoils[n]; !ok {
				return fmt.Errorf("site %s marked trefoil but has no trio", n)
			}
		}
	}
	var key uint64
	for n, st := range s.status {
		key ^= hashTerm(n, st)
	}
	if key != s.key {
		return fmt.Errorf("state key %#x does not match recount %#x", s.key, key)
	}
	for n, trio := range s.trefoils {
		if s.Status(n) != StatusTrefoil {
			return fmt.Errorf("trio member %s is not marked trefoil", n)
		}
		if trio != CanonicalTrio(trio[0], trio[1], trio[2]) {
			return fmt.Errorf("trio %v stored out of canonical order", trio)
		}
		found := false
		for _, m := range trio {
			if m == n {
				found = true
			}
			if s.trefoils[m] != trio {
				return fmt.Errorf("trio %v not stored under member %s", trio, m)
			}
		}
		if !found {
			return fmt.Errorf("site %s stored under trio %v it does not belong to", n, trio)
		}
	}
	return nil
}

// hashTerm is the per-site contribution to the configuration key. Pristine
// sites contribute nothing, so an all-pristine lattice has key 0 regardless
// of grid size.
func hashTerm(n Node, st Status) uint64 {
	if st == StatusPristine {
		return 0
	}
	return splitmix64(uint64(n.A)<<34 ^ uint64(n.B)<<4 ^ uint64(st))
}

// splitmix64 scrambles a 64-bit value into a well-mixed hash term.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}
