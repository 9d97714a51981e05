package progress

import "fmt"

// Pass describes one enumeration pass as seen by a reporter.
type Pass struct {
	// Label is a short human name such as "length 8" or "pattern".
	Label  string
	Length int
	// Total is the size of the whole pass; Offset is where it resumes.
	Total  uint64
	Offset uint64
}

// Reporter observes search progress. The dispatcher calls every method from
// a single goroutine, so implementations need no locking of their own.
type Reporter interface {
	// Start announces a new pass.
	Start(pass Pass)
	// Advance reports newly retired candidates, failures counts those whose
	// verdict was a transient oracle error.
	Advance(tested, failures uint64)
	// Candidate shows the candidate currently being dispatched.
	Candidate(candidate string)
	// Checkpoint reports a persisted retirement offset.
	Checkpoint(offset uint64)
	// Finish closes the current pass.
	Finish()
}

// Nop discards all progress.
type Nop struct{}

func (Nop) Start(Pass)             {}
func (Nop) Advance(uint64, uint64) {}
func (Nop) Candidate(string)       {}
func (Nop) Checkpoint(uint64)      {}
func (Nop) Finish()                {}

// Multi fans progress out to several reporters in order.
func Multi(reporters ...Reporter) Reporter {
	filtered := make(multi, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			filtered = append(filtered, r)
		}
	}
	switch len(filtered) {
	case 0:
		return Nop{}
	case 1:
		return filtered[0]
	}
	return filtered
}

type multi []Reporter

func (m multi) Start(pass Pass) {
	for _, r := range m {
		r.Start(pass)
	}
}

func (m multi) Advance(tested, failures uint64) {
	for _, r := range m {
		r.Advance(tested, failures)
	}
}

func (m multi) Candidate(candidate string) {
	for _, r := range m {
		r.Candidate(candidate)
	}
}

func (m multi) Checkpoint(offset uint64) {
	for _, r := range m {
		r.Checkpoint(offset)
	}
}

func (m multi) Finish() {
	for _, r := range m {
		r.Finish()
	}
}

// Percent returns done/total as a percentage, or -1 when total is zero.
func Percent(done, total uint64) float64 {
	if total == 0 {
		return -1
	}
	return float64(done) / float64(total) * 100
}

// PassLabel formats the default label for a length pass.
func PassLabel(length int) string {
	return fmt.Sprintf("length %d", length)
}
