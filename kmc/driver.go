package kmc

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ExpHP/kmc-dichalcogen/kmc/trace"
)

// Phase is the driver's lifecycle state.
type Phase uint8

const (
	// PhaseInitializing covers catalog construction from the model.
	PhaseInitializing Phase = iota
	// PhaseRunning covers the sample/apply/update loop.
	PhaseRunning
	// PhaseFinished is a normal termination; see FinishReason.
	PhaseFinished
	// PhaseFailed is an aborted run; the returned error says why.
	PhaseFailed
)

// FinishReason says why a run terminated normally.
type FinishReason string

const (
	// FinishNoEvents: the initial catalog was empty.
	FinishNoEvents FinishReason = "no-events"
	// FinishExhausted: the catalog's total rate reached zero mid-run.
	FinishExhausted FinishReason = "exhausted"
	// FinishMaxSteps: the configured step budget was reached.
	FinishMaxSteps FinishReason = "max-steps"
	// FinishMaxTime: the simulated clock reached the configured budget.
	FinishMaxTime FinishReason = "max-time"
)

// TraceSink consumes the ordered trace of applied events. The driver
// guarantees records arrive in applied-event order with non-decreasing time.
type TraceSink interface {
	Append(rec trace.Record) error
}

// Result summarizes a completed run.
type Result struct {
	Reason FinishReason
	Steps  int
	Time   float64
}

// Driver orchestrates the simulation loop: sample, apply via the model,
// advance the clock, reconcile the catalog, optionally validate, record a
// trace entry, check stop conditions. Single-threaded and sequential: each
// step's phases strictly precede the next step's sample.
type Driver struct {
	cfg     Config
	model   Model
	sink    TraceSink
	catalog *Catalog
	sampler *Sampler
	phase   Phase
	clock   float64
	step    int
}

// NewDriver wires a driver. The sink may be nil to discard the trace.
func NewDriver(cfg Config, model Model, sink TraceSink) *Driver {
	return &Driver{
		cfg:     cfg,
		model:   model,
		sink:    sink,
		catalog: NewCatalog(),
		sampler: NewSampler(NewSimulationKey(cfg.Seed).NewRand(SubsystemSampler)),
	}
}

// Phase returns the driver's lifecycle state.
func (d *Driver) Phase() Phase { return d.phase }

// Clock returns the current simulated time.
func (d *Driver) Clock() float64 { return d.clock }

// Steps returns the number of applied events so far.
func (d *Driver) Steps() int { return d.step }

// Catalog exposes the live catalog for inspection and cross-validation.
func (d *Driver) Catalog() *Catalog { return d.catalog }

// Run executes the simulation to termination. Catalog-contract violations
// and consistency failures abort immediately with full context; the trace
// written so far remains valid up to the failing step.
func (d *Driver) Run() (Result, error) {
	if err := d.cfg.Validate(); err != nil {
		return d.fail(fmt.Errorf("config: %w", err))
	}

	d.phase = PhaseInitializing
	if err := d.rebuild(); err != nil {
		return d.fail(fmt.Errorf("initial enumeration: %w", err))
	}
	logrus.Infof("catalog initialized: %d enabled events, total rate %g",
		d.catalog.Len(), d.catalog.TotalRate())

	d.phase = PhaseRunning
	if d.catalog.Len() == 0 {
		return d.finish(FinishNoEvents)
	}

	for {
		total := d.catalog.TotalRate()
		wait, id, err := d.sampler.Next(d.catalog)
		if errors.Is(err, ErrNoEnabledEvents) {
			return d.finish(FinishExhausted)
		}
		if err != nil {
			return d.fail(fmt.Errorf("step %d sample: %w", d.step, err))
		}
		rate, _ := d.catalog.Rate(id)

		if err := d.model.Apply(id); err != nil {
			return d.fail(fmt.Errorf("step %d apply %s: %w", d.step, id, err))
		}
		d.clock += wait
		d.step++
		logrus.Debugf("[step %06d] t=%g applied %s (rate %g of %g)",
			d.step, d.clock, id, rate, total)

		if d.cfg.Incremental {
			stats, err := Reconcile(d.catalog, d.model, id)
			if err != nil {
				return d.fail(d.withContext(err))
			}
			logrus.Debugf("[step %06d] reconciled region: +%d ~%d -%d =%d",
				d.step, stats.Inserted, stats.Updated, stats.Removed, stats.Unchanged)
		} else {
			// Ground-truth mode: full rebuild after every applied event, so
			// the catalog reflects post-apply truth for validation and for
			// the next sample alike.
			if err := d.rebuild(); err != nil {
				return d.fail(fmt.Errorf("step %d rebuild: %w", d.step, err))
			}
		}

		if d.cfg.ValidateEvery > 0 && d.step%d.cfg.ValidateEvery == 0 {
			if err := Validate(d.catalog, d.model); err != nil {
				return d.fail(d.withContext(err))
			}
		}

		if d.sink != nil {
			rec := trace.Record{
				Step:      d.step,
				Time:      d.clock,
				Kind:      d.model.KindName(id.Kind),
				Nodes:     footprintCoords(id),
				Rate:      rate,
				TotalRate: total,
				StateKey:  d.model.StateKey(),
			}
			if err := d.sink.Append(rec); err != nil {
				return d.fail(fmt.Errorf("step %d trace: %w", d.step, err))
			}
		}

		if d.cfg.MaxSteps > 0 && d.step >= d.cfg.MaxSteps {
			return d.finish(FinishMaxSteps)
		}
		if d.cfg.MaxTime > 0 && d.clock >= d.cfg.MaxTime {
			return d.finish(FinishMaxTime)
		}
	}
}

// rebuild replaces the catalog with a full enumeration from the model.
func (d *Driver) rebuild() error {
	fresh := NewCatalog()
	for _, ev := range d.model.EnumerateAll() {
		if ev.Rate <= 0 {
			continue
		}
		if err := fresh.Insert(ev); err != nil {
			return err
		}
	}
	d.catalog = fresh
	return nil
}

// withContext stamps step/time onto consistency errors and wraps the rest.
func (d *Driver) withContext(err error) error {
	var cerr *ConsistencyError
	if errors.As(err, &cerr) {
		cerr.Step = d.step
		cerr.Time = d.clock
		return cerr
	}
	return fmt.Errorf("step %d (t=%g): %w", d.step, d.clock, err)
}

func (d *Driver) finish(reason FinishReason) (Result, error) {
	d.phase = PhaseFinished
	logrus.Infof("simulation finished (%s) after %d steps, t=%g", reason, d.step, d.clock)
	return Result{Reason: reason, Steps: d.step, Time: d.clock}, nil
}

func (d *Driver) fail(err error) (Result, error) {
	d.phase = PhaseFailed
	logrus.Errorf("simulation failed after %d steps, t=%g: %v", d.step, d.clock, err)
	return Result{Steps: d.step, Time: d.clock}, err
}

func footprintCoords(id ID) [][2]int {
	nodes := id.Footprint()
	out := make([][2]int, len(nodes))
	for i, n := range nodes {
		out[i] = [2]int{n.A, n.B}
	}
	return out
}
