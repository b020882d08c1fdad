package kmc

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws the next event and its waiting time from a catalog. It owns
// the run's single pseudo-random source: all randomness in the simulation
// loop flows through here, so a run is reproducible from the seed alone.
//
// The engine does not require a particular RNG algorithm, only that the
// source is seedable; construct one with SimulationKey.NewRand.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler around the given source.
func NewSampler(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// Next draws (waiting_time, event) from the catalog. The waiting time is
// exponentially distributed with the catalog's total rate R at the moment of
// the draw; the event is selected with probability rate/R.
//
// Draw order is fixed (waiting time first, then selection) and is part of
// the reproducibility contract.
//
// Returns ErrNoEnabledEvents when R == 0; a terminal condition, not a
// failure.
func (s *Sampler) Next(c *Catalog) (float64, ID, error) {
	total := c.TotalRate()
	if c.Len() == 0 || total <= 0 {
		return 0, ID{}, ErrNoEnabledEvents
	}
	wait := distuv.Exponential{Rate: total, Src: s.rng}.Rand()
	id, err := c.SampleAt(s.rng.Float64())
	if err != nil {
		return 0, ID{}, err
	}
	return wait, id, nil
}
