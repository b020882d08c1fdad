package kmc

import "fmt"

// UpdateStats counts the catalog mutations of one reconcile pass.
type UpdateStats struct {
	Inserted  int
	Updated   int
	Removed   int
	Unchanged int
}

// Reconcile brings the catalog back in agreement with the lattice state
// after an event has been applied. It re-queries the model's rate for every
// candidate in the reported affected region and applies the matching insert,
// update, or removal; nothing outside the region is touched, so the cost is
// proportional to the region, never to the lattice.
//
// Correctness rests on the model's AffectedRegion superset contract (see
// Model); a violated contract surfaces later as a ConsistencyError, not
// here.
func Reconcile(c *Catalog, m Model, applied ID) (UpdateStats, error) {
	var stats UpdateStats
	for _, id := range m.AffectedRegion(applied) {
		rate := m.RateOf(id)
		prev, present := c.Rate(id)
		switch {
		case rate > 0 && !present:
			if err := c.Insert(Event{ID: id, Rate: rate}); err != nil {
				return stats, fmt.Errorf("reconcile after %s: %w", applied, err)
			}
			stats.Inserted++
		case rate > 0 && prev != rate:
			if err := c.UpdateRate(id, rate); err != nil {
				return stats, fmt.Errorf("reconcile after %s: %w", applied, err)
			}
			stats.Updated++
		case rate <= 0 && present:
			if err := c.Remove(id); err != nil {
				return stats, fmt.Errorf("reconcile after %s: %w", applied, err)
			}
			stats.Removed++
		default:
			stats.Unchanged++
		}
	}
	return stats, nil
}
