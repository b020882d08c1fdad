package kmc

import "fmt"

// Config groups the engine's run parameters. The physical model carries its
// own configuration separately (see kmc/physics).
type Config struct {
	// Seed for the run's pseudo-random source.
	Seed uint64
	// MaxSteps stops the run after this many applied events. 0 = unbounded.
	MaxSteps int
	// MaxTime stops the run once the simulated clock reaches this value.
	// 0 = unbounded. With both bounds unset the run ends only when no
	// enabled events remain.
	MaxTime float64
	// ValidateEvery runs the consistency validator every N steps.
	// 0 = disabled.
	ValidateEvery int
	// Incremental selects incremental catalog maintenance. When false the
	// catalog is rebuilt from scratch before every sample, the ground-truth
	// mode for testing and for bisecting divergence.
	Incremental bool
}

// NewConfig returns a Config with validation enabled off and incremental
// maintenance on, matching normal production use.
func NewConfig(seed uint64, maxSteps int, maxTime float64) Config {
	return Config{
		Seed:        seed,
		MaxSteps:    maxSteps,
		MaxTime:     maxTime,
		Incremental: true,
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if c.MaxSteps < 0 {
		return fmt.Errorf("max steps must be non-negative, got %d", c.MaxSteps)
	}
	if c.MaxTime < 0 {
		return fmt.Errorf("max time must be non-negative, got %g", c.MaxTime)
	}
	if c.ValidateEvery < 0 {
		return fmt.Errorf("validate-every must be non-negative, got %d", c.ValidateEvery)
	}
	return nil
}
