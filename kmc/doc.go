// Package kmc provides the core continuous-time kinetic Monte Carlo engine:
// event-rate bookkeeping, weighted sampling, incremental catalog maintenance,
// and the simulation driver.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - catalog.go: the enabled-event set with O(log n) weighted sampling
//   - sampler.go: waiting-time and event selection from a shared RNG
//   - driver.go: the simulation loop and its state machine
//
// # Architecture
//
// The kmc package defines the engine and the Model collaborator interface;
// concrete collaborators live in sub-packages:
//   - kmc/lattice/: periodic hexagonal grid and defect occupancy state
//   - kmc/physics/: the dichalcogenide defect model (kinds, rates, locality)
//   - kmc/trace/: trace records and JSON serialization
//
// The catalog deliberately keeps two representations of the same logical
// set: a plain identity-to-rate map and a cumulative-weight (Fenwick) index
// over compacted slots. The map is the reference the validator recounts
// from; the index is the acceleration layer the sampler draws from. The
// incremental updater keeps both in sync, and the consistency validator
// cross-checks them against a full re-enumeration rather than trusting the
// incremental path blindly.
package kmc
