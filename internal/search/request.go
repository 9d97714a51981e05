package search

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInterrupted is returned when the caller cancels a run. It wraps
	// context.Canceled so callers can treat it like any other cancellation.
	ErrInterrupted = fmt.Errorf("search interrupted: %w", context.Canceled)
	// ErrInvalidRequest reports unusable search parameters.
	ErrInvalidRequest = errors.New("invalid search request")
)

// Mode names the kind of space a run enumerates.
type Mode string

const (
	ModeCharset Mode = "charset"
	ModePattern Mode = "pattern"
)

// Request describes one search run.
type Request struct {
	// Archive is recorded in the run ledger only.
	Archive string
	// Charset is the ordered symbol set; CharsetName labels it in logs.
	Charset     []rune
	CharsetName string
	MinLength   int
	MaxLength   int
	// Resume is either a full cursor record "L|prefix|N" or a literal prefix.
	Resume       string
	ForceRestart bool
	// Pattern switches to case-variant mode when non-empty.
	Pattern            string
	Workers            int
	BatchSize          int
	CheckpointInterval uint64
	// TestOnly skips extraction after a find.
	TestOnly bool
}

// Mode reports which space the request enumerates.
func (r Request) Mode() Mode {
	if r.Pattern != "" {
		return ModePattern
	}
	return ModeCharset
}

func (r Request) validate() error {
	if r.Mode() == ModePattern {
		return nil
	}
	if r.MinLength < 1 {
		return fmt.Errorf("%w: min length must be at least 1", ErrInvalidRequest)
	}
	if r.MaxLength < r.MinLength {
		return fmt.Errorf("%w: max length %d below min length %d", ErrInvalidRequest, r.MaxLength, r.MinLength)
	}
	if len(r.Charset) == 0 {
		return fmt.Errorf("%w: empty charset", ErrInvalidRequest)
	}
	return nil
}

// Result is the outcome of a run.
type Result struct {
	RunID     string
	Found     bool
	Candidate string
	// Length is the candidate length of the last pass that ran.
	Length   int
	Attempts uint64
	Failures uint64
	Elapsed  time.Duration
	// ExtractErr is set when the password was found but extraction failed.
	// The run itself still succeeded.
	ExtractErr error
}
