package trace

import (
	"encoding/json"
	"fmt"
	"io"
)

// Writer streams a trace to JSON incrementally: a grid header, then one
// events-array element per record, then a status footer on Close. Streaming
// keeps the file salvageable if the run is interrupted: everything written
// before the failing step is valid.
//
// Output shape:
//
//	{
//	 "grid": {...},
//	 "events": [
//	  {...},
//	  {...}
//	 ],
//	 "status": {...}
//	}
type Writer struct {
	w      io.Writer
	n      int
	closed bool
}

// NewWriter writes the header and returns a Writer ready for records.
func NewWriter(w io.Writer, grid GridInfo) (*Writer, error) {
	head, err := json.Marshal(grid)
	if err != nil {
		return nil, fmt.Errorf("encoding grid info: %w", err)
	}
	if _, err := fmt.Fprintf(w, "{\n \"grid\": %s,\n \"events\": [", head); err != nil {
		return nil, fmt.Errorf("writing trace header: %w", err)
	}
	return &Writer{w: w}, nil
}

// Append writes one record as an events-array element.
func (tw *Writer) Append(rec Record) error {
	if tw.closed {
		return fmt.Errorf("append to closed trace writer")
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding trace record: %w", err)
	}
	sep := ","
	if tw.n == 0 {
		sep = ""
	}
	if _, err := fmt.Fprintf(tw.w, "%s\n  %s", sep, body); err != nil {
		return fmt.Errorf("writing trace record: %w", err)
	}
	tw.n++
	return nil
}

// Close terminates the events array and writes the status footer. The
// Writer is unusable afterwards.
func (tw *Writer) Close(status Status) error {
	if tw.closed {
		return fmt.Errorf("trace writer already closed")
	}
	tw.closed = true
	foot, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encoding trace status: %w", err)
	}
	if _, err := fmt.Fprintf(tw.w, "\n ],\n \"status\": %s\n}\n", foot); err != nil {
		return fmt.Errorf("writing trace footer: %w", err)
	}
	return nil
}
