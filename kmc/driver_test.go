package kmc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/ExpHP/kmc-dichalcogen/kmc/trace"
)

// constantModel holds a fixed set of enabled events whose rates never
// change; applying an event is a no-op on truth.
func constantModel() *fakeModel {
	m := newFakeModel()
	m.rates[siteID(0, 0)] = 1.0
	m.rates[siteID(0, 1)] = 2.0
	m.rates[siteID(0, 2)] = 0.5
	return m
}

// cycleModel has exactly one enabled event at every instant: applying event i
// disables it and enables event i+1 (mod 3), each with its own rate.
func cycleModel() *fakeModel {
	m := newFakeModel()
	ids := []ID{siteID(0, 0), siteID(0, 1), siteID(0, 2)}
	rates := []float64{2.0, 3.0, 5.0}
	m.rates[ids[0]] = rates[0]
	for i, id := range ids {
		next := (i + 1) % len(ids)
		m.effects[id] = map[ID]float64{id: 0, ids[next]: rates[next]}
	}
	return m
}

func recordsJSON(t *testing.T, recs []trace.Record) []byte {
	t.Helper()
	data, err := json.Marshal(recs)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestDriver_NoEventsTerminatesImmediately(t *testing.T) {
	sink := trace.New()
	d := NewDriver(NewConfig(42, 10, 0), newFakeModel(), sink)

	result, err := d.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Reason != FinishNoEvents {
		t.Errorf("reason = %s, want %s", result.Reason, FinishNoEvents)
	}
	if result.Steps != 0 || result.Time != 0 {
		t.Errorf("result = %+v, want 0 steps at t=0", result)
	}
	if d.Phase() != PhaseFinished {
		t.Errorf("phase = %d, want PhaseFinished", d.Phase())
	}
	if sink.Len() != 0 {
		t.Errorf("trace has %d records, want 0", sink.Len())
	}
}

func TestDriver_ExhaustedWhenLastEventDisablesItself(t *testing.T) {
	m := newFakeModel()
	only := siteID(0, 0)
	m.rates[only] = 1.0
	m.effects[only] = map[ID]float64{only: 0}

	sink := trace.New()
	d := NewDriver(NewConfig(42, 100, 0), m, sink)

	result, err := d.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Reason != FinishExhausted {
		t.Errorf("reason = %s, want %s", result.Reason, FinishExhausted)
	}
	if result.Steps != 1 || sink.Len() != 1 {
		t.Errorf("steps = %d, trace = %d records; want 1 and 1", result.Steps, sink.Len())
	}
	if result.Time <= 0 {
		t.Errorf("final time %g, want positive", result.Time)
	}
}

func TestDriver_StopsAtMaxSteps(t *testing.T) {
	sink := trace.New()
	d := NewDriver(NewConfig(42, 10, 0), constantModel(), sink)

	result, err := d.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Reason != FinishMaxSteps {
		t.Errorf("reason = %s, want %s", result.Reason, FinishMaxSteps)
	}
	if result.Steps != 10 || sink.Len() != 10 {
		t.Errorf("steps = %d, trace = %d records; want 10 and 10", result.Steps, sink.Len())
	}
	for i, rec := range sink.Records {
		if rec.Step != i+1 {
			t.Errorf("record %d has step %d, want %d", i, rec.Step, i+1)
		}
		if i > 0 && rec.Time < sink.Records[i-1].Time {
			t.Errorf("time decreased at record %d: %g -> %g", i, sink.Records[i-1].Time, rec.Time)
		}
		if rec.TotalRate != 3.5 {
			t.Errorf("record %d total rate %g, want 3.5", i, rec.TotalRate)
		}
	}
}

func TestDriver_StopsAtMaxTime(t *testing.T) {
	cfg := NewConfig(42, 0, 2.0)
	d := NewDriver(cfg, constantModel(), trace.New())

	result, err := d.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Reason != FinishMaxTime {
		t.Errorf("reason = %s, want %s", result.Reason, FinishMaxTime)
	}
	if result.Time < 2.0 {
		t.Errorf("final time %g, want >= 2", result.Time)
	}
	if result.Steps == 0 {
		t.Error("no steps applied before the time budget")
	}
}

func TestDriver_UnboundedRunEndsOnExhaustion(t *testing.T) {
	// With neither a step nor a time bound, a run is legal and terminates
	// when no enabled events remain.
	m := newFakeModel()
	ids := []ID{siteID(0, 0), siteID(0, 1), siteID(0, 2)}
	for i, id := range ids {
		m.rates[id] = float64(i + 1)
		m.effects[id] = map[ID]float64{id: 0}
	}
	d := NewDriver(Config{Seed: 42, Incremental: true}, m, trace.New())

	result, err := d.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Reason != FinishExhausted {
		t.Errorf("reason = %s, want %s", result.Reason, FinishExhausted)
	}
	if result.Steps != len(ids) {
		t.Errorf("steps = %d, want %d", result.Steps, len(ids))
	}
	if d.Phase() != PhaseFinished {
		t.Errorf("phase = %d, want PhaseFinished", d.Phase())
	}
}

func TestDriver_NegativeBoundsRejected(t *testing.T) {
	d := NewDriver(Config{Seed: 42, MaxSteps: -1, Incremental: true}, constantModel(), nil)
	if _, err := d.Run(); err == nil {
		t.Fatal("negative step bound: expected error")
	}
	if d.Phase() != PhaseFailed {
		t.Errorf("phase = %d, want PhaseFailed", d.Phase())
	}
}

func TestDriver_SameSeedSameTrace(t *testing.T) {
	run := func() []trace.Record {
		sink := trace.New()
		d := NewDriver(NewConfig(42, 25, 0), constantModel(), sink)
		if _, err := d.Run(); err != nil {
			t.Fatal(err)
		}
		return sink.Records
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two runs with the same seed produced different traces")
	}
	if !bytes.Equal(recordsJSON(t, first), recordsJSON(t, second)) {
		t.Fatal("serialized traces differ byte-for-byte")
	}
}

func TestDriver_DifferentSeedsDifferentTrace(t *testing.T) {
	run := func(seed uint64) []trace.Record {
		sink := trace.New()
		d := NewDriver(NewConfig(seed, 25, 0), constantModel(), sink)
		if _, err := d.Run(); err != nil {
			t.Fatal(err)
		}
		return sink.Records
	}
	if reflect.DeepEqual(run(1), run(2)) {
		t.Fatal("different seeds produced identical traces")
	}
}

func TestDriver_IncrementalMatchesRebuild(t *testing.T) {
	// With exactly one enabled event per instant, slot layout cannot differ
	// between maintenance modes, so the traces must agree byte-for-byte.
	run := func(incremental bool) []trace.Record {
		cfg := NewConfig(42, 30, 0)
		cfg.Incremental = incremental
		sink := trace.New()
		d := NewDriver(cfg, cycleModel(), sink)
		if _, err := d.Run(); err != nil {
			t.Fatal(err)
		}
		return sink.Records
	}

	inc, rebuild := run(true), run(false)
	if !bytes.Equal(recordsJSON(t, inc), recordsJSON(t, rebuild)) {
		t.Fatal("incremental and full-rebuild traces differ")
	}
}

func TestDriver_RebuildModeWithValidationPasses(t *testing.T) {
	// Full-rebuild maintenance combined with per-step validation must not
	// flag an honest model: the catalog is rebuilt after each apply, so the
	// validator always compares post-apply truth against itself.
	cfg := NewConfig(42, 30, 0)
	cfg.Incremental = false
	cfg.ValidateEvery = 1
	d := NewDriver(cfg, cycleModel(), trace.New())

	result, err := d.Run()
	if err != nil {
		t.Fatalf("Run with full rebuild and per-step validation: %v", err)
	}
	if result.Reason != FinishMaxSteps || result.Steps != 30 {
		t.Errorf("result = %+v, want 30 steps to max-steps", result)
	}
}

func TestDriver_ValidateEveryStepPasses(t *testing.T) {
	// An honest model survives per-step validation across real dynamics.
	cfg := NewConfig(42, 30, 0)
	cfg.ValidateEvery = 1
	d := NewDriver(cfg, cycleModel(), trace.New())

	result, err := d.Run()
	if err != nil {
		t.Fatalf("Run with per-step validation: %v", err)
	}
	if result.Reason != FinishMaxSteps || result.Steps != 30 {
		t.Errorf("result = %+v, want 30 steps to max-steps", result)
	}
}

func TestDriver_ValidationCatchesNarrowRegion(t *testing.T) {
	// GIVEN a model that under-reports the affected region on its second
	// event: applying b enables c, but the region claims only b changed
	a, b, c := siteID(0, 0), siteID(0, 1), siteID(0, 2)
	m := newFakeModel()
	m.rates[a] = 1.0
	m.effects[a] = map[ID]float64{a: 0, b: 4.0}
	m.regions[a] = []ID{a, b}
	m.effects[b] = map[ID]float64{b: 0, c: 2.0}
	m.regions[b] = []ID{b}

	cfg := NewConfig(42, 100, 0)
	cfg.ValidateEvery = 1
	sink := trace.New()
	d := NewDriver(cfg, m, sink)

	// WHEN running with per-step validation
	result, err := d.Run()

	// THEN the run aborts at step 2 with the divergence spelled out
	var cerr *ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want *ConsistencyError", err)
	}
	if cerr.Step != 2 {
		t.Errorf("failure step = %d, want 2", cerr.Step)
	}
	if len(cerr.Missing) != 1 || cerr.Missing[0] != c {
		t.Errorf("Missing = %v, want [%s]", cerr.Missing, c)
	}
	if d.Phase() != PhaseFailed {
		t.Errorf("phase = %d, want PhaseFailed", d.Phase())
	}
	if result.Steps != 2 {
		t.Errorf("result steps = %d, want 2", result.Steps)
	}
	// AND the trace holds only the steps before the failure
	if sink.Len() != 1 || sink.Records[0].Step != 1 {
		t.Fatalf("trace = %v, want exactly the step-1 record", sink.Records)
	}
}

func TestDriver_ValidationCatchesStaleRate(t *testing.T) {
	// A region that omits a neighbor whose rate changed leaves the catalog
	// carrying the old rate; the validator must flag it as a mismatch.
	a, b := siteID(0, 0), siteID(0, 1)
	m := &narrowRegionModel{fakeModel: newFakeModel()}
	m.rates[a] = 1.0
	m.rates[b] = 2.0
	m.effects[a] = map[ID]float64{b: 5.0} // b's rate changes outside a's region

	cfg := NewConfig(42, 100, 0)
	cfg.ValidateEvery = 1
	d := NewDriver(cfg, m, trace.New())

	_, err := d.Run()
	var cerr *ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want *ConsistencyError", err)
	}
	if len(cerr.Mismatched) != 1 || cerr.Mismatched[0].ID != b {
		t.Errorf("Mismatched = %v, want rate drift on %s", cerr.Mismatched, b)
	}
}

func TestDriver_RecordFieldsMatchAppliedEvent(t *testing.T) {
	m := newFakeModel()
	only := siteID(3, 7)
	m.rates[only] = 2.5
	m.effects[only] = map[ID]float64{only: 0}

	sink := trace.New()
	d := NewDriver(NewConfig(42, 10, 0), m, sink)
	if _, err := d.Run(); err != nil {
		t.Fatal(err)
	}
	if sink.Len() != 1 {
		t.Fatalf("trace = %d records, want 1", sink.Len())
	}
	rec := sink.Records[0]
	if rec.Kind != fmt.Sprintf("kind%d", only.Kind) {
		t.Errorf("kind = %q, want %q", rec.Kind, fmt.Sprintf("kind%d", only.Kind))
	}
	if len(rec.Nodes) != 1 || rec.Nodes[0] != [2]int{3, 7} {
		t.Errorf("nodes = %v, want [[3 7]]", rec.Nodes)
	}
	if rec.Rate != 2.5 || rec.TotalRate != 2.5 {
		t.Errorf("rates = (%g, %g), want (2.5, 2.5)", rec.Rate, rec.TotalRate)
	}
	if rec.StateKey != m.StateKey() {
		t.Errorf("state key = %#x, want %#x", rec.StateKey, m.StateKey())
	}
}
