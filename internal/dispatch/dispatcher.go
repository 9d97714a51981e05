package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"zipcrack/internal/checkpoint"
	"zipcrack/internal/keyspace"
	"zipcrack/internal/logging"
	"zipcrack/internal/oracle"
	"zipcrack/internal/progress"
)

// ErrInvalidPass reports a Pass that cannot be run.
var ErrInvalidPass = errors.New("invalid pass")

// Pass is one enumeration of a Space starting at Start.
type Pass struct {
	Space  keyspace.Space
	Start  uint64
	Oracle oracle.Oracle
	// Label names the pass in logs and progress output.
	Label              string
	Workers            int
	BatchSize          int
	CheckpointInterval uint64
	// Store receives the retirement watermark. Nil disables checkpoints.
	Store    checkpoint.Store
	Progress progress.Reporter
}

// Dispatcher runs passes over a bounded worker pool.
type Dispatcher struct {
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Dispatcher logging through logger.
func New(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		logger: logging.NewComponentLogger(logger, "dispatch"),
		now:    time.Now,
	}
}

// Run enumerates the pass and stops at the first accepted candidate, at
// exhaustion, or when ctx ends. Cancellation is checked between candidates;
// an oracle call already in progress always completes.
func (d *Dispatcher) Run(ctx context.Context, pass Pass) (Outcome, error) {
	if pass.Oracle == nil {
		return Outcome{}, fmt.Errorf("%w: no oracle", ErrInvalidPass)
	}
	size := pass.Space.Size()
	if pass.Start > size {
		return Outcome{}, fmt.Errorf("%w: start %d beyond space size %d", ErrInvalidPass, pass.Start, size)
	}
	if pass.BatchSize <= 0 {
		pass.BatchSize = 1
	}
	if pass.Workers <= 0 {
		pass.Workers = 1
	}
	if pass.CheckpointInterval == 0 {
		pass.CheckpointInterval = uint64(pass.BatchSize)
	}
	if pass.Progress == nil {
		pass.Progress = progress.Nop{}
	}
	if pass.Label == "" {
		pass.Label = progress.PassLabel(pass.Space.Length())
	}

	started := d.now()
	logger := d.logger.With(logging.String("pass", pass.Label), logging.Int(logging.FieldLength, pass.Space.Length()))
	if pass.Start == size {
		logger.Info("pass already exhausted", logging.Uint64("size", size))
		return Outcome{Status: Exhausted, Retired: size, Elapsed: d.now().Sub(started)}, nil
	}

	pass.Progress.Start(progress.Pass{
		Label:  pass.Label,
		Length: pass.Space.Length(),
		Total:  size,
		Offset: pass.Start,
	})
	defer pass.Progress.Finish()

	logger.Debug("pass dispatching",
		logging.Uint64("start", pass.Start),
		logging.Uint64("size", size),
		logging.Int("workers", pass.Workers),
		logging.Int("batch_size", pass.BatchSize),
	)

	wm := &watermark{
		pass:      &pass,
		logger:    logger,
		offset:    pass.Start,
		lastSaved: pass.Start,
		length:    pass.Space.Length(),
		prefix:    pass.Space.Prefix(),
	}

	var out Outcome
	if pass.Workers == 1 {
		out = d.runSequential(ctx, &pass, wm)
	} else {
		out = d.runParallel(ctx, &pass, wm)
	}
	out.Retired = wm.offset

	switch {
	case out.Status == Found:
	case wm.offset == size:
		out.Status = Exhausted
		wm.flush(ctx)
	default:
		out.Status = Canceled
		wm.flush(ctx)
	}
	out.Elapsed = d.now().Sub(started)
	logger.Info("pass finished",
		logging.String("outcome", out.Status.String()),
		logging.Uint64("attempts", out.Attempts),
		logging.Uint64("retired", out.Retired),
		logging.Uint64("failures", out.Failures),
		logging.Duration("elapsed", out.Elapsed),
	)
	return out, nil
}

// batchResult is what a worker reports for one batch. A batch is complete
// only when every candidate in it received a verdict.
type batchResult struct {
	index    uint64
	size     int
	tested   int
	failures uint64
	found    string
	last     string
	complete bool
}

func (d *Dispatcher) testBatch(runCtx, callCtx context.Context, o oracle.Oracle, index uint64, batch keyspace.Batch) batchResult {
	res := batchResult{index: index, size: batch.Len()}
	for _, candidate := range batch.Candidates {
		if runCtx.Err() != nil {
			return res
		}
		ok, err := o.Test(callCtx, candidate)
		res.tested++
		res.last = candidate
		if err != nil {
			res.failures++
			d.logger.Debug("candidate rejected after oracle error",
				logging.String("candidate", candidate),
				logging.Error(err),
			)
			continue
		}
		if ok {
			res.found = candidate
			return res
		}
	}
	res.complete = true
	return res
}

func (d *Dispatcher) runSequential(ctx context.Context, pass *Pass, wm *watermark) Outcome {
	var out Outcome
	callCtx := context.WithoutCancel(ctx)
	it := pass.Space.Iterator(pass.Start)
	var index uint64
	for ctx.Err() == nil {
		batch, ok := it.NextBatch(pass.BatchSize)
		if !ok {
			break
		}
		res := d.testBatch(ctx, callCtx, pass.Oracle, index, batch)
		index++
		out.Attempts += uint64(res.tested)
		out.Failures += res.failures
		if res.last != "" {
			pass.Progress.Candidate(res.last)
		}
		if res.found != "" {
			out.Status = Found
			out.Candidate = res.found
			return out
		}
		if !res.complete {
			break
		}
		wm.retire(ctx, uint64(res.size), res.failures)
	}
	return out
}

func (d *Dispatcher) runParallel(ctx context.Context, pass *Pass, wm *watermark) Outcome {
	var out Outcome
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	callCtx := context.WithoutCancel(ctx)

	jobs := make(chan indexedBatch, pass.Workers)
	results := make(chan batchResult, pass.Workers)
	var attempts atomic.Uint64

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer close(jobs)
		it := pass.Space.Iterator(pass.Start)
		for index := uint64(0); ; index++ {
			batch, ok := it.NextBatch(pass.BatchSize)
			if !ok {
				return nil
			}
			select {
			case jobs <- indexedBatch{index: index, batch: batch}:
			case <-gctx.Done():
				return nil
			}
		}
	})

	for w := 0; w < pass.Workers; w++ {
		g.Go(func() error {
			for job := range jobs {
				res := d.testBatch(gctx, callCtx, pass.Oracle, job.index, job.batch)
				attempts.Add(uint64(res.tested))
				results <- res
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	pending := make(map[uint64]batchResult)
	var expect uint64
	blocked := false
	for res := range results {
		out.Failures += res.failures
		if res.last != "" {
			pass.Progress.Candidate(res.last)
		}
		if res.found != "" && out.Candidate == "" {
			out.Status = Found
			out.Candidate = res.found
			stop()
		}
		if out.Status == Found || blocked {
			continue
		}
		pending[res.index] = res
		for {
			next, ok := pending[expect]
			if !ok {
				break
			}
			delete(pending, expect)
			if !next.complete {
				// An interrupted batch pins the watermark for the rest of the pass.
				blocked = true
				break
			}
			expect++
			wm.retire(ctx, uint64(next.size), next.failures)
		}
	}
	out.Attempts = attempts.Load()
	return out
}

type indexedBatch struct {
	index uint64
	batch keyspace.Batch
}

// watermark owns the contiguous retired offset and the checkpoint cadence.
// Only the coordinating goroutine touches it.
type watermark struct {
	pass      *Pass
	logger    *slog.Logger
	offset    uint64
	lastSaved uint64
	length    int
	prefix    string
}

func (w *watermark) retire(ctx context.Context, n, failures uint64) {
	w.offset += n
	w.pass.Progress.Advance(n, failures)
	if w.offset-w.lastSaved >= w.pass.CheckpointInterval {
		w.save(ctx)
	}
}

// flush persists the watermark if it moved since the last save. It runs
// after cancellation, so the save must not inherit the cancelled context.
func (w *watermark) flush(ctx context.Context) {
	if w.offset == w.lastSaved {
		return
	}
	w.save(context.WithoutCancel(ctx))
}

func (w *watermark) save(ctx context.Context) {
	if w.pass.Store == nil {
		w.lastSaved = w.offset
		return
	}
	cursor := checkpoint.Cursor{Length: w.length, Prefix: w.prefix, Offset: w.offset}
	if err := w.pass.Store.Save(ctx, cursor); err != nil {
		logging.WarnWithContext(w.logger, "checkpoint write failed; search continues", "checkpoint_write_failed",
			logging.String("cursor", cursor.String()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "a restart may re-test more candidates"),
			logging.String(logging.FieldErrorHint, "check free space and permissions of the state directory"),
		)
		return
	}
	w.lastSaved = w.offset
	w.pass.Progress.Checkpoint(w.offset)
}
