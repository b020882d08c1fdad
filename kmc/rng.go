package kmc

import (
	"hash/fnv"

	"golang.org/x/exp/rand"
)

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical traces.
type SimulationKey uint64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed uint64) SimulationKey {
	return SimulationKey(seed)
}

const (
	// SubsystemSampler is the RNG subsystem owned by the rate sampler. It is
	// the only consumer of randomness during the simulation loop; no other
	// component draws from it, which is what makes a run reproducible from
	// the seed alone. Uses the master seed directly.
	SubsystemSampler = "sampler"

	// SubsystemInitialState is the RNG subsystem for random initial defect
	// seeding. It is consumed entirely before the loop starts, so varying
	// the amount of initial randomness never perturbs the sampler's stream.
	SubsystemInitialState = "initial-state"
)

// NewRand returns a deterministically seeded RNG for the named subsystem.
//
// Derivation formula:
//   - SubsystemSampler uses the master seed directly
//   - all other subsystems use masterSeed XOR fnv1a64(subsystemName)
//
// Not thread-safe; the engine is single-goroutine by design.
func (k SimulationKey) NewRand(subsystem string) *rand.Rand {
	seed := uint64(k)
	if subsystem != SubsystemSampler {
		seed ^= fnv1a64(subsystem)
	}
	return rand.New(rand.NewSource(seed))
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
