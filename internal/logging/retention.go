package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	runLogPrefix = "zipcrack-"
	runLogSuffix = ".log"
	runLogStamp  = "20060102T150405Z"
)

// RunLogPath names the log file of a run started at started. Names sort in
// start order.
func RunLogPath(dir string, started time.Time) string {
	return filepath.Join(dir, runLogPrefix+started.UTC().Format(runLogStamp)+runLogSuffix)
}

// runLogTime recovers the start time from a run log name. Files that do not
// follow the naming scheme report false.
func runLogTime(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, runLogPrefix) || !strings.HasSuffix(name, runLogSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, runLogPrefix), runLogSuffix)
	started, err := time.Parse(runLogStamp, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return started, true
}

// PruneRunLogs removes run logs in dir whose start time is more than
// retentionDays before now. keep is never removed, and neither is anything
// outside the run log naming scheme. A retentionDays of 0 disables pruning.
// It returns the number of files removed.
func PruneRunLogs(logger *slog.Logger, dir string, retentionDays int, keep string, now time.Time) int {
	if retentionDays <= 0 || strings.TrimSpace(dir) == "" {
		return 0
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	keepAbs, _ := filepath.Abs(keep)

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		started, ok := runLogTime(entry.Name())
		if !ok || !started.Before(cutoff) {
			continue
		}
		fullPath := filepath.Join(dir, entry.Name())
		if abs, err := filepath.Abs(fullPath); err == nil && abs == keepAbs {
			continue
		}
		if err := os.Remove(fullPath); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String(FieldPath, fullPath),
				Error(err),
				String(FieldErrorHint, "check file permissions and log_dir ownership"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed++
	}
	if removed > 0 && logger != nil {
		logger.Debug("old run logs pruned", Int("removed", removed), String(FieldPath, dir))
	}
	return removed
}
