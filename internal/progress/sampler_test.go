package progress

import "testing"

func TestOffsetSamplerBoundaries(t *testing.T) {
	var s offsetSampler
	s.reset(1000, 0)
	steps := []struct {
		done uint64
		want bool
	}{
		{10, false},
		{50, true},
		{60, false},
		{99, false},
		{100, true},
		{420, true},
		{440, false},
		{1000, true},
	}
	for _, step := range steps {
		if got := s.due(step.done); got != step.want {
			t.Fatalf("due(%d) = %v, want %v", step.done, got, step.want)
		}
	}
}

func TestOffsetSamplerResumedPassKeepsBoundaries(t *testing.T) {
	var s offsetSampler
	s.reset(1000, 130)
	if s.due(140) {
		t.Fatal("no boundary between 130 and 140")
	}
	if !s.due(150) {
		t.Fatal("expected the 150 boundary to emit")
	}
}

func TestOffsetSamplerSmallPass(t *testing.T) {
	var s offsetSampler
	s.reset(3, 0)
	for done := uint64(1); done <= 3; done++ {
		if !s.due(done) {
			t.Fatalf("every candidate of a tiny pass should emit, missed %d", done)
		}
	}
}

func TestOffsetSamplerUnknownTotal(t *testing.T) {
	var s offsetSampler
	s.reset(0, 0)
	if s.due(1 << 40) {
		t.Fatal("a pass without a total should not emit progress lines")
	}
}
