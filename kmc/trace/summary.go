package trace

// Summary aggregates statistics from a recorded trace.
type Summary struct {
	Steps      int
	FinalTime  float64
	KindCounts map[string]int // kind name -> applied-event count
}

// Summarize computes aggregate statistics. Safe for nil or empty traces.
func Summarize(t *Trace) *Summary {
	summary := &Summary{KindCounts: make(map[string]int)}
	if t == nil || len(t.Records) == 0 {
		return summary
	}
	for _, rec := range t.Records {
		summary.KindCounts[rec.Kind]++
	}
	last := t.Records[len(t.Records)-1]
	summary.Steps = last.Step
	summary.FinalTime = last.Time
	return summary
}
