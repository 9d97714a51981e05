package dispatch

import "time"

// Status is the terminal state of one pass.
type Status int

const (
	// Exhausted means every candidate in the pass was rejected.
	Exhausted Status = iota
	// Found means a candidate was accepted.
	Found
	// Canceled means the caller's context ended before the pass finished.
	Canceled
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Canceled:
		return "canceled"
	default:
		return "exhausted"
	}
}

// Outcome summarizes a pass.
type Outcome struct {
	Status    Status
	Candidate string
	// Attempts counts oracle calls made during this pass, including calls in
	// batches that were still in flight when the pass stopped.
	Attempts uint64
	// Failures counts candidates rejected after a transient oracle error.
	Failures uint64
	// Retired is the final watermark: every ordinal below it was tested.
	Retired uint64
	Elapsed time.Duration
}
