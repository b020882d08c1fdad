// Package trace provides trace recording and JSON serialization for
// simulation runs. It has no dependencies on the engine; it stores pure
// data types, and the engine depends on it, not the other way around.
package trace

// Record captures one applied event. Records form an append-only sequence,
// ordered by step with non-decreasing time.
type Record struct {
	Step int     `json:"step"`
	Time float64 `json:"time"`
	Kind string  `json:"kind"`
	// Nodes is the event's site footprint in axial (a, b) coordinates.
	Nodes [][2]int `json:"nodes"`
	// Rate is the applied event's rate at the moment it was selected.
	Rate float64 `json:"rate"`
	// TotalRate is the catalog's total rate at the moment of selection; the
	// waiting time drawn for this step was exponential with this rate.
	TotalRate float64 `json:"total_rate"`
	// StateKey is a hash of the lattice configuration after this event was
	// applied. Records with equal keys mark revisited states.
	StateKey uint64 `json:"state_key"`
}

// GridInfo describes the lattice a trace was produced on, for downstream
// analysis and animation tools.
type GridInfo struct {
	LatticeType string `json:"lattice_type"`
	CoordFormat string `json:"coord_format"`
	Dim         [2]int `json:"dim"`
}

// Status closes a trace: whether the run completed normally, and why or why
// not.
type Status struct {
	Outcome   string  `json:"outcome"` // "complete" or "aborted"
	Reason    string  `json:"reason,omitempty"`
	Error     string  `json:"error,omitempty"`
	Steps     int     `json:"steps"`
	FinalTime float64 `json:"final_time"`
}
