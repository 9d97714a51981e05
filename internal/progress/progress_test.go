package progress_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"zipcrack/internal/progress"
)

type recorder struct {
	passes      []progress.Pass
	tested      uint64
	failures    uint64
	candidates  []string
	checkpoints []uint64
	finished    int
}

func (r *recorder) Start(p progress.Pass)       { r.passes = append(r.passes, p) }
func (r *recorder) Advance(tested, fail uint64) { r.tested += tested; r.failures += fail }
func (r *recorder) Candidate(c string)          { r.candidates = append(r.candidates, c) }
func (r *recorder) Checkpoint(off uint64)       { r.checkpoints = append(r.checkpoints, off) }
func (r *recorder) Finish()                     { r.finished++ }

func TestMultiFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := progress.Multi(a, nil, b)
	m.Start(progress.Pass{Label: "length 3", Length: 3, Total: 8})
	m.Advance(4, 1)
	m.Candidate("101")
	m.Checkpoint(4)
	m.Finish()
	for name, r := range map[string]*recorder{"a": a, "b": b} {
		if len(r.passes) != 1 || r.tested != 4 || r.failures != 1 || r.finished != 1 {
			t.Fatalf("%s: unexpected state %+v", name, r)
		}
		if len(r.candidates) != 1 || len(r.checkpoints) != 1 || r.checkpoints[0] != 4 {
			t.Fatalf("%s: unexpected events %+v", name, r)
		}
	}
}

func TestMultiCollapses(t *testing.T) {
	if _, ok := progress.Multi().(progress.Nop); !ok {
		t.Fatal("expected Nop for empty Multi")
	}
	r := &recorder{}
	if progress.Multi(nil, r) != progress.Reporter(r) {
		t.Fatal("expected single reporter unwrapped")
	}
}

func TestPercent(t *testing.T) {
	if got := progress.Percent(5, 0); got != -1 {
		t.Fatalf("Percent with zero total = %v", got)
	}
	if got := progress.Percent(2, 8); got != 25 {
		t.Fatalf("Percent(2, 8) = %v", got)
	}
}

func TestLogReporterSamplesProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := progress.NewLog(logger)

	r.Start(progress.Pass{Label: "length 4", Length: 4, Total: 10000, Offset: 2500})
	for i := 0; i < 100; i++ {
		r.Advance(10, 0)
	}
	r.Candidate("0042")
	r.Candidate("0043")
	r.Checkpoint(3500)
	r.Finish()

	out := buf.String()
	if !strings.Contains(out, "resume_offset=2,500") {
		t.Fatalf("expected resume offset in start line: %s", out)
	}
	if got := strings.Count(out, `msg="search progress"`); got != 2 {
		t.Fatalf("expected 2 sampled progress lines for 25%%->35%%, got %d:\n%s", got, out)
	}
	if got := strings.Count(out, `msg="testing candidate"`); got != 1 {
		t.Fatalf("expected candidate lines to be rate limited, got %d", got)
	}
	if !strings.Contains(out, `msg="pass finished"`) || !strings.Contains(out, "tested=1,000") {
		t.Fatalf("expected finish summary: %s", out)
	}
}

func TestBarWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	bar := progress.NewBar(&buf)
	bar.Start(progress.Pass{Label: "pattern", Total: 4, Offset: 1})
	bar.Advance(3, 0)
	bar.Finish()
	bar.Finish()
	if !strings.Contains(buf.String(), "pattern") {
		t.Fatalf("expected bar description in output, got %q", buf.String())
	}
}
