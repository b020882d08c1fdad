package trace

// Trace is an in-memory sink collecting records in order. Useful for tests
// and for post-run summarization.
type Trace struct {
	Records []Record
}

// New creates an empty Trace.
func New() *Trace {
	return &Trace{Records: make([]Record, 0)}
}

// Append adds a record.
func (t *Trace) Append(rec Record) error {
	t.Records = append(t.Records, rec)
	return nil
}

// Len returns the number of recorded events.
func (t *Trace) Len() int {
	return len(t.Records)
}
