package preflight

import (
	"errors"
	"fmt"
	"strings"

	"zipcrack/internal/config"
)

// ErrFailed reports that at least one check did not pass.
var ErrFailed = errors.New("preflight failed")

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks for a search over archive. The extraction
// directory is checked only when the run will extract.
func RunAll(cfg *config.Config, archive string, extract bool) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckArchive(archive),
		CheckCreatable("State directory", cfg.Paths.StateDir),
	}
	if extract {
		results = append(results, CheckCreatable("Extract directory", cfg.Paths.ExtractDir))
	}
	return results
}

// Err folds failed results into one error, or nil when everything passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrFailed, strings.Join(failed, "; "))
}
