package history

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a recorded run.
type Status string

const (
	StatusRunning     Status = "running"
	StatusFound       Status = "found"
	StatusExhausted   Status = "exhausted"
	StatusInterrupted Status = "interrupted"
	StatusFailed      Status = "failed"
)

// ErrNotFound reports an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Run is one row of the ledger.
type Run struct {
	ID         string
	Archive    string
	Mode       string
	Charset    string
	MinLength  int
	MaxLength  int
	Status     Status
	Candidate  string
	Attempts   int64
	Elapsed    time.Duration
	StartedAt  time.Time
	FinishedAt time.Time
	Error      string
}

// Finished reports whether the run reached a terminal status.
func (r Run) Finished() bool {
	return r.Status != StatusRunning
}
