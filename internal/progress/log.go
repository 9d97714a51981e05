package progress

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"zipcrack/internal/logging"
)

const candidateLogInterval = 10 * time.Second

// Log reports progress as sampled structured log lines, for non-interactive
// output or log files.
type Log struct {
	logger    *slog.Logger
	sampler   offsetSampler
	sometimes *rate.Sometimes
	now       func() time.Time

	pass     Pass
	done     uint64
	tested   uint64
	failures uint64
	started  time.Time
}

// NewLog returns a Log reporter that emits every 5% of a pass and at most one
// "currently testing" line per interval.
func NewLog(logger *slog.Logger) *Log {
	return &Log{
		logger:    logging.NewComponentLogger(logger, "progress"),
		sometimes: &rate.Sometimes{Interval: candidateLogInterval},
		now:       time.Now,
	}
}

func (l *Log) Start(pass Pass) {
	l.pass = pass
	l.done = pass.Offset
	l.tested = 0
	l.failures = 0
	l.started = l.now()
	l.sampler.reset(pass.Total, pass.Offset)
	l.logger.Info("pass started",
		logging.String("pass", pass.Label),
		logging.Int(logging.FieldLength, pass.Length),
		logging.String("total", humanize.Comma(clampInt64(pass.Total))),
		logging.String("resume_offset", humanize.Comma(clampInt64(pass.Offset))),
		logging.String(logging.FieldEventType, "pass_started"),
	)
}

func (l *Log) Advance(tested, failures uint64) {
	l.done += tested
	l.tested += tested
	l.failures += failures
	if !l.sampler.due(l.done) {
		return
	}
	l.logger.Info("search progress",
		logging.String("pass", l.pass.Label),
		logging.String("tested", humanize.Comma(clampInt64(l.done))),
		logging.String("total", humanize.Comma(clampInt64(l.pass.Total))),
		logging.String("percent", fmt.Sprintf("%.1f%%", Percent(l.done, l.pass.Total))),
		logging.String("rate", l.rate()),
		logging.Uint64("failures", l.failures),
	)
}

func (l *Log) Candidate(candidate string) {
	l.sometimes.Do(func() {
		l.logger.Info("testing candidate",
			logging.String("pass", l.pass.Label),
			logging.String("candidate", candidate),
		)
	})
}

func (l *Log) Checkpoint(offset uint64) {
	l.logger.Debug("checkpoint written",
		logging.String("pass", l.pass.Label),
		logging.Uint64("offset", offset),
	)
}

func (l *Log) Finish() {
	l.logger.Info("pass finished",
		logging.String("pass", l.pass.Label),
		logging.String("tested", humanize.Comma(clampInt64(l.tested))),
		logging.Duration("elapsed", l.now().Sub(l.started)),
		logging.String("rate", l.rate()),
		logging.Uint64("failures", l.failures),
	)
}

func (l *Log) rate() string {
	elapsed := l.now().Sub(l.started).Seconds()
	if elapsed <= 0 {
		return "n/a"
	}
	return humanize.Comma(int64(float64(l.tested)/elapsed)) + "/s"
}
