package progress

import (
	"io"
	"math"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Bar renders a terminal progress bar over the whole pass. A resumed pass
// starts the bar at its offset.
type Bar struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// NewBar returns a Bar writing to w.
func NewBar(w io.Writer) *Bar {
	return &Bar{w: w}
}

func (b *Bar) Start(pass Pass) {
	b.Finish()
	b.bar = progressbar.NewOptions64(clampInt64(pass.Total),
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription(pass.Label),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("pw"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
	if pass.Offset > 0 {
		_ = b.bar.Set64(clampInt64(pass.Offset))
	}
}

func (b *Bar) Advance(tested, _ uint64) {
	if b.bar == nil || tested == 0 {
		return
	}
	_ = b.bar.Add64(clampInt64(tested))
}

// Candidate is not rendered; redrawing per candidate would dominate the
// cost of cheap oracles.
func (b *Bar) Candidate(string) {}

func (b *Bar) Checkpoint(uint64) {}

func (b *Bar) Finish() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Exit()
	_, _ = io.WriteString(b.w, "\n")
	b.bar = nil
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
