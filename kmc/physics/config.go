package physics

import (
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/unit/constant"
	"gopkg.in/yaml.v3"

	"github.com/ExpHP/kmc-dichalcogen/kmc"
)

// boltzmannEV is the Boltzmann constant in eV/K, for converting energy
// barriers to rates.
var boltzmannEV = float64(constant.Boltzmann) / float64(constant.ElementaryCharge)

// Config is the physics configuration, loadable from a YAML file. Each rule
// takes either a rate or an energy barrier, not both; any barrier requires a
// temperature.
type Config struct {
	Rules       map[string]RuleConfig `yaml:"rules"`
	Temperature float64               `yaml:"temperature"` // Kelvin
	Initial     InitialConfig         `yaml:"initial"`
}

// RuleConfig sets one kind's kinetics. Nil pointer fields mean "not set in
// YAML".
type RuleConfig struct {
	Rate    *float64 `yaml:"rate"`    // events per unit time
	Barrier *float64 `yaml:"barrier"` // eV; converted via exp(-E / kT)
}

// InitialConfig controls random seeding of the starting configuration.
type InitialConfig struct {
	// DivacancyFraction is the probability that each site starts with a
	// divacancy. 0 starts from a pristine lattice.
	DivacancyFraction float64 `yaml:"divacancy_fraction"`
}

// DefaultConfig returns the demo kinetics: divacancies appear, fill, and
// migrate at unit rate; trefoils form fast and dissolve at half that.
func DefaultConfig() Config {
	rate := func(r float64) RuleConfig { return RuleConfig{Rate: &r} }
	return Config{
		Rules: map[string]RuleConfig{
			KindName(KindCreateDivacancy):  rate(1.0),
			KindName(KindFillDivacancy):    rate(1.0),
			KindName(KindMigrateDivacancy): rate(1.0),
			KindName(KindFormTrefoil):      rate(50.0),
			KindName(KindDissolveTrefoil):  rate(25.0),
		},
	}
}

// LoadConfig reads and parses a YAML physics configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading physics config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing physics config: %w", err)
	}
	return cfg, nil
}

// Validate checks rule names, the rate/barrier exclusivity, and parameter
// ranges.
func (c Config) Validate() error {
	valid := make(map[string]bool, numKinds)
	for _, name := range kindNames {
		valid[name] = true
	}
	needTemperature := false
	for name, rule := range c.Rules {
		if !valid[name] {
			return fmt.Errorf("unknown rule %q", name)
		}
		if rule.Rate != nil && rule.Barrier != nil {
			return fmt.Errorf("rule %q: rate and barrier are mutually exclusive", name)
		}
		if rule.Rate == nil && rule.Barrier == nil {
			return fmt.Errorf("rule %q: need one of rate, barrier", name)
		}
		if rule.Rate != nil && *rule.Rate < 0 {
			return fmt.Errorf("rule %q: rate must be non-negative, got %g", name, *rule.Rate)
		}
		if rule.Barrier != nil {
			if *rule.Barrier < 0 {
				return fmt.Errorf("rule %q: barrier must be non-negative, got %g", name, *rule.Barrier)
			}
			needTemperature = true
		}
	}
	if needTemperature && c.Temperature <= 0 {
		return fmt.Errorf("barriers given but temperature is %g K; need a positive temperature", c.Temperature)
	}
	if c.Initial.DivacancyFraction < 0 || c.Initial.DivacancyFraction > 1 {
		return fmt.Errorf("initial divacancy fraction must be in [0, 1], got %g", c.Initial.DivacancyFraction)
	}
	return nil
}

// KindRates resolves the configured kinetics into a per-kind rate table.
// Kinds absent from the config get rate 0 (never enabled).
func (c Config) KindRates() (map[kmc.Kind]float64, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	rates := make(map[kmc.Kind]float64, numKinds)
	for k := kmc.Kind(0); k < numKinds; k++ {
		rule, ok := c.Rules[KindName(k)]
		if !ok {
			continue
		}
		if rule.Rate != nil {
			rates[k] = *rule.Rate
			continue
		}
		rates[k] = math.Exp(-*rule.Barrier / (boltzmannEV * c.Temperature))
	}
	return rates, nil
}
