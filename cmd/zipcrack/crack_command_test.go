package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"zipcrack/internal/preflight"
	"zipcrack/internal/testsupport"
)

func TestCrackFindsPasswordAndExtracts(t *testing.T) {
	env := setupCLITestEnv(t)
	archive := env.archive(t, "73", testsupport.ArchiveEntry{Name: "docs/readme.txt", Content: "hello"})

	out, _, err := runCLI(t, []string{"crack", archive, "--workers", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("crack: %v", err)
	}
	requireContains(t, out, "Password found: 73")
	requireContains(t, out, "Extracted to: "+env.cfg.Paths.ExtractDir)

	data, err := os.ReadFile(filepath.Join(env.cfg.Paths.ExtractDir, "docs", "readme.txt"))
	if err != nil || string(data) != "hello" {
		t.Fatalf("extracted content mismatch: %q err=%v", data, err)
	}

	out, _, err = runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "No checkpoint saved")
	requireContains(t, out, "found")

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "73")
	requireContains(t, out, "found")
}

func TestCrackJSONTestOnly(t *testing.T) {
	env := setupCLITestEnv(t)
	archive := env.archive(t, "ba")

	out, _, err := runCLI(t, []string{
		"crack", archive, "--json", "--test-only",
		"--custom-charset", "ab", "--min-length", "2", "--max-length", "2",
	}, env.configPath)
	if err != nil {
		t.Fatalf("crack: %v", err)
	}
	var res crackJSON
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	// aa, ab, ba
	if res.Status != "found" || res.Password != "ba" || res.Attempts != 3 || res.ExtractedTo != "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if entries, _ := os.ReadDir(env.cfg.Paths.ExtractDir); len(entries) != 0 {
		t.Fatalf("test-only run should not extract, found %d entries", len(entries))
	}
}

func TestCrackExhaustedKeepsCheckpoint(t *testing.T) {
	env := setupCLITestEnv(t)
	archive := env.archive(t, "not-a-number")

	out, _, err := runCLI(t, []string{"crack", archive, "--max-length", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("crack: %v", err)
	}
	requireContains(t, out, "No password found (110 attempts")

	out, _, err = runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var status statusJSON
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode status %q: %v", out, err)
	}
	if !status.Saved || status.Cursor != "2||100" || status.Percent == nil || *status.Percent != 100 {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.LastRun == nil || status.LastRun.Status != "exhausted" {
		t.Fatalf("expected the exhausted run as last run, got %+v", status.LastRun)
	}

	out, _, err = runCLI(t, []string{"checkpoint", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("checkpoint clear: %v", err)
	}
	requireContains(t, out, "Checkpoint cleared")
	out, _, err = runCLI(t, []string{"checkpoint", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("second checkpoint clear: %v", err)
	}
	requireContains(t, out, "No checkpoint to clear")
}

func TestCrackResumeFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	archive := env.archive(t, "5")

	// Starting past "5" at length 1 means the password is never reached.
	out, _, err := runCLI(t, []string{"crack", archive, "--max-length", "1", "--resume", "1||6", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("crack: %v", err)
	}
	var res crackJSON
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if res.Status != "exhausted" || res.Attempts != 4 {
		t.Fatalf("unexpected result %+v", res)
	}

	out, _, err = runCLI(t, []string{"crack", archive, "--max-length", "1", "--force-restart", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("crack: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if res.Status != "found" || res.Password != "5" {
		t.Fatalf("force restart should find the password, got %+v", res)
	}
}

func TestCrackPatternMode(t *testing.T) {
	env := setupCLITestEnv(t)
	archive := env.archive(t, "SeCreT")

	out, _, err := runCLI(t, []string{"crack", archive, "--pattern", "secret", "--test-only"}, env.configPath)
	if err != nil {
		t.Fatalf("crack: %v", err)
	}
	requireContains(t, out, "Password found: SeCreT")
	requireContains(t, out, "Extraction skipped")
}

func TestCrackRejectsBadInput(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"crack", filepath.Join(env.baseDir, "missing.zip")}, env.configPath)
	if !errors.Is(err, preflight.ErrFailed) {
		t.Fatalf("expected preflight failure for a missing archive, got %v", err)
	}

	archive := env.archive(t, "1")
	_, _, err = runCLI(t, []string{"crack", archive, "--min-length", "5", "--max-length", "2"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "min_length") {
		t.Fatalf("expected a length range error, got %v", err)
	}

	_, _, err = runCLI(t, []string{"crack", archive, "--charset", "hex"}, env.configPath)
	if err == nil {
		t.Fatal("expected an error for an unknown charset")
	}
}

func TestCrackRefusesConcurrentRun(t *testing.T) {
	env := setupCLITestEnv(t)
	archive := env.archive(t, "1")

	if err := os.MkdirAll(env.cfg.Paths.StateDir, 0o755); err != nil {
		t.Fatalf("mkdir state dir: %v", err)
	}
	lock := flock.New(env.cfg.LockPath())
	if ok, err := lock.TryLock(); err != nil || !ok {
		t.Fatalf("lock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = lock.Unlock() })

	_, _, err := runCLI(t, []string{"crack", archive}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "another zipcrack run") {
		t.Fatalf("expected a lock conflict, got %v", err)
	}
}

func TestHistoryJSONAndLimit(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	archive := env.archive(t, "2")
	for i := 0; i < 2; i++ {
		if _, _, err := runCLI(t, []string{"crack", archive, "--test-only"}, env.configPath); err != nil {
			t.Fatalf("crack %d: %v", i, err)
		}
	}
	out, _, err = runCLI(t, []string{"history", "--json", "--limit", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var rows []runJSON
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode history %q: %v", out, err)
	}
	if len(rows) != 1 || rows[0].Password != "2" || rows[0].Archive != archive {
		t.Fatalf("unexpected history %+v", rows)
	}
	if _, _, err := runCLI(t, []string{"history", "--limit", "0"}, env.configPath); err == nil {
		t.Fatal("expected an error for a non-positive limit")
	}
}

func TestCrackStartAt(t *testing.T) {
	env := setupCLITestEnv(t)
	archive := env.archive(t, "31")

	out, _, err := runCLI(t, []string{"crack", archive, "--min-length", "2", "--max-length", "2", "--start-at", "30", "--json", "--test-only"}, env.configPath)
	if err != nil {
		t.Fatalf("crack: %v", err)
	}
	var res crackJSON
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if res.Password != "31" || res.Attempts != 2 {
		t.Fatalf("expected to find 31 on the second attempt, got %+v", res)
	}

	_, _, err = runCLI(t, []string{"crack", archive, "--start-at", "3x"}, env.configPath)
	if err == nil {
		t.Fatal("expected an error for a candidate outside the charset")
	}
}

func TestStatusShowsNextCandidate(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(filepath.Dir(env.cfg.CheckpointPath()), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(env.cfg.CheckpointPath(), []byte("2||42\n"), 0o644); err != nil {
		t.Fatalf("write checkpoint: %v", err)
	}
	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Cursor: 2||42")
	requireContains(t, out, "Next candidate: 42")
	requireContains(t, out, "(42.0%)")
}
