package kmc

import "fmt"

// Catalog is the set of currently enabled events and their rates. It keeps
// two representations of the same logical set:
//
//   - rates: a plain identity -> rate map. This is the reference mapping the
//     consistency validator recounts from.
//   - slots + tree: a compact slot array indexed by a Fenwick
//     (cumulative-weight) tree, giving O(log n) insert, remove, rate update,
//     total-rate query, and weighted sampling.
//
// Invariants: no duplicate identities, no members with rate <= 0, and the
// tree's total equals the sum of the map's rates up to floating-point
// accumulation (cross-checked by the validator, not assumed).
//
// Removal compacts the slot array by moving the last slot into the hole, so
// slot order is stable in insertion order only between removals. Sampling
// ties between equal cumulative weights resolve to the lower slot, which
// makes selection deterministic given the slot layout and the input u.
type Catalog struct {
	rates map[ID]float64
	slot  map[ID]int
	slots []ID
	tree  []float64 // 1-based Fenwick tree over slot weights
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		rates: make(map[ID]float64),
		slot:  make(map[ID]int),
	}
}

// Len returns the number of enabled events.
func (c *Catalog) Len() int {
	return len(c.slots)
}

// Has reports whether an event with the given identity is enabled.
func (c *Catalog) Has(id ID) bool {
	_, ok := c.rates[id]
	return ok
}

// Rate returns the rate of an event, if present.
func (c *Catalog) Rate(id ID) (float64, bool) {
	r, ok := c.rates[id]
	return r, ok
}

// Insert adds a new event. The rate must be strictly positive; disabled
// events do not belong in the catalog. Fails with *DuplicateEventError if
// the identity is already present.
func (c *Catalog) Insert(ev Event) error {
	if _, ok := c.rates[ev.ID]; ok {
		return &DuplicateEventError{ID: ev.ID}
	}
	if ev.Rate <= 0 {
		return fmt.Errorf("insert %s: rate must be positive, got %g", ev.ID, ev.Rate)
	}
	i := len(c.slots)
	c.slots = append(c.slots, ev.ID)
	c.grow(len(c.slots))
	c.rates[ev.ID] = ev.Rate
	c.slot[ev.ID] = i
	c.add(i, ev.Rate)
	return nil
}

// Remove deletes an event by identity. Fails with *MissingEventError if
// absent.
func (c *Catalog) Remove(id ID) error {
	i, ok := c.slot[id]
	if !ok {
		return &MissingEventError{ID: id}
	}
	last := len(c.slots) - 1
	if i != last {
		// Move the last slot into the hole and fix its indexed weight.
		moved := c.slots[last]
		c.slots[i] = moved
		c.slot[moved] = i
		c.add(i, c.rates[moved]-c.rates[id])
		c.add(last, -c.rates[moved])
	} else {
		c.add(i, -c.rates[id])
	}
	c.slots = c.slots[:last]
	delete(c.rates, id)
	delete(c.slot, id)
	return nil
}

// UpdateRate replaces an event's rate in place. A rate <= 0 is equivalent to
// Remove. Fails with *MissingEventError if the identity is absent.
func (c *Catalog) UpdateRate(id ID, rate float64) error {
	old, ok := c.rates[id]
	if !ok {
		return &MissingEventError{ID: id}
	}
	if rate <= 0 {
		return c.Remove(id)
	}
	c.rates[id] = rate
	c.add(c.slot[id], rate-old)
	return nil
}

// TotalRate returns the sum of all member rates, maintained incrementally by
// the Fenwick tree (never recomputed by full re-summation here; the
// validator does that cross-check separately).
func (c *Catalog) TotalRate() float64 {
	return c.prefix(len(c.slots))
}

// SampleAt selects an event with probability rate/TotalRate, driven by a
// uniform variate u in [0, 1) supplied by the caller. Keeping the catalog
// free of randomness leaves the single seedable source in the sampler's
// hands. Returns ErrNoEnabledEvents when the catalog is empty.
func (c *Catalog) SampleAt(u float64) (ID, error) {
	n := len(c.slots)
	total := c.prefix(n)
	if n == 0 || total <= 0 {
		return ID{}, ErrNoEnabledEvents
	}
	i := c.find(u * total)
	if i >= n {
		// u*total landed on the far edge of the cumulative range through
		// rounding; clamp to the last slot.
		i = n - 1
	}
	return c.slots[i], nil
}

// Snapshot copies the reference identity -> rate map.
func (c *Catalog) Snapshot() map[ID]float64 {
	out := make(map[ID]float64, len(c.rates))
	for id, r := range c.rates {
		out[id] = r
	}
	return out
}

// Events returns all members in slot order.
func (c *Catalog) Events() []Event {
	out := make([]Event, len(c.slots))
	for i, id := range c.slots {
		out[i] = Event{ID: id, Rate: c.rates[id]}
	}
	return out
}

// --- Fenwick tree over slot weights ---

// grow ensures capacity for n slots, rebuilding the tree when it doubles.
func (c *Catalog) grow(n int) {
	if n < len(c.tree) {
		return
	}
	capacity := 16
	for capacity <= n {
		capacity *= 2
	}
	tree := make([]float64, capacity+1)
	for i, id := range c.slots[:n-1] {
		addInto(tree, i, c.rates[id])
	}
	c.tree = tree
}

// add applies a delta to the weight of slot i (0-based).
func (c *Catalog) add(i int, delta float64) {
	addInto(c.tree, i, delta)
}

func addInto(tree []float64, i int, delta float64) {
	for j := i + 1; j < len(tree); j += j & (-j) {
		tree[j] += delta
	}
}

// prefix returns the sum of the first n slot weights.
func (c *Catalog) prefix(n int) float64 {
	var sum float64
	for j := n; j > 0; j -= j & (-j) {
		sum += c.tree[j]
	}
	return sum
}

// find returns the smallest 0-based slot index whose cumulative weight
// exceeds x, by binary descent over the tree.
func (c *Catalog) find(x float64) int {
	idx := 0
	bit := 1
	for bit*2 < len(c.tree) {
		bit *= 2
	}
	for ; bit > 0; bit /= 2 {
		next := idx + bit
		if next < len(c.tree) && c.tree[next] <= x {
			idx = next
			x -= c.tree[next]
		}
	}
	return idx
}
