package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"zipcrack/internal/checkpoint"
	"zipcrack/internal/dispatch"
	"zipcrack/internal/history"
	"zipcrack/internal/keyspace"
	"zipcrack/internal/logging"
	"zipcrack/internal/oracle"
	"zipcrack/internal/progress"
)

// Ledger records run lifecycles. history.Store satisfies it.
type Ledger interface {
	Begin(ctx context.Context, run history.Run) error
	Finish(ctx context.Context, id string, status history.Status, candidate string, attempts int64, elapsed time.Duration, runErr error) error
}

// RunObserver is told how each run ended.
type RunObserver interface {
	RunFinished(outcome string, elapsed time.Duration)
}

// Options wires a Controller to its collaborators. Only Oracle is required.
type Options struct {
	Oracle       oracle.Oracle
	Materializer oracle.Materializer
	Store        checkpoint.Store
	Progress     progress.Reporter
	Ledger       Ledger
	Observer     RunObserver
	Logger       *slog.Logger
	// MaxWorkers caps Request.Workers. Zero means runtime.NumCPU.
	MaxWorkers int
}

// Controller drives a run through its passes: Idle, then Running for each
// length, ending in Found or Exhausted.
type Controller struct {
	oracle       oracle.Oracle
	materializer oracle.Materializer
	store        checkpoint.Store
	progress     progress.Reporter
	ledger       Ledger
	observer     RunObserver
	logger       *slog.Logger
	dispatcher   *dispatch.Dispatcher
	maxWorkers   int
	now          func() time.Time

	state stateBox
}

// New builds a Controller.
func New(opts Options) (*Controller, error) {
	if opts.Oracle == nil {
		return nil, errors.New("search: oracle is required")
	}
	if opts.Progress == nil {
		opts.Progress = progress.Nop{}
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.NumCPU()
	}
	return &Controller{
		oracle:       opts.Oracle,
		materializer: opts.Materializer,
		store:        opts.Store,
		progress:     opts.Progress,
		ledger:       opts.Ledger,
		observer:     opts.Observer,
		logger:       logging.NewComponentLogger(opts.Logger, "search"),
		dispatcher:   dispatch.New(opts.Logger),
		maxWorkers:   opts.MaxWorkers,
		now:          time.Now,
	}, nil
}

// State returns the current lifecycle state and pass length.
func (c *Controller) State() (State, int) {
	return c.state.get()
}

func (c *Controller) transition(logger *slog.Logger, state State, length int) {
	c.state.set(state, length)
	logger.Debug("state changed",
		logging.String(logging.FieldState, string(state)),
		logging.Int(logging.FieldLength, length),
		logging.String(logging.FieldEventType, "state_transition"),
	)
}

// Run executes the request. A cancelled ctx yields ErrInterrupted with the
// checkpoint preserved.
func (c *Controller) Run(ctx context.Context, req Request) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}
	if req.Workers > c.maxWorkers {
		c.logger.Info("worker count capped at CPU count",
			logging.Int("requested", req.Workers),
			logging.Int("workers", c.maxWorkers),
		)
		req.Workers = c.maxWorkers
	}

	res := Result{RunID: uuid.NewString()}
	logger := c.logger.With(logging.String(logging.FieldRunID, res.RunID))
	started := c.now()
	c.state.set(StateIdle, 0)
	c.beginLedger(ctx, logger, req, res.RunID, started)

	logger.Info("search starting",
		logging.String("mode", string(req.Mode())),
		logging.String("charset", req.CharsetName),
		logging.Int("min_length", req.MinLength),
		logging.Int("max_length", req.MaxLength),
		logging.Int("workers", req.Workers),
		logging.String(logging.FieldEventType, "search_started"),
	)

	var err error
	if req.Mode() == ModePattern {
		err = c.runPattern(ctx, logger, req, &res)
	} else {
		err = c.runCharset(ctx, logger, req, &res)
	}
	res.Elapsed = c.now().Sub(started)

	if err == nil && res.Found {
		if req.Mode() == ModeCharset {
			c.clearCheckpoint(ctx, logger)
		}
		if !req.TestOnly && c.materializer != nil {
			if extractErr := c.materializer.Materialize(context.WithoutCancel(ctx), res.Candidate); extractErr != nil {
				res.ExtractErr = extractErr
				logging.WarnWithContext(logger, "password found but extraction failed", "extract_failed",
					logging.Error(extractErr),
					logging.String(logging.FieldImpact, "archive contents were not written"),
					logging.String(logging.FieldErrorHint, "check the extract directory, then rerun with --resume set to the password"),
				)
			}
		}
	}

	c.finishLedger(ctx, logger, res, err)
	c.logSummary(logger, res, err)
	return res, err
}

func (c *Controller) runCharset(ctx context.Context, logger *slog.Logger, req Request, res *Result) error {
	cursor, err := c.resolveStart(ctx, logger, req)
	if err != nil {
		return err
	}
	for {
		space, err := keyspace.NewCharsetSpace(req.Charset, cursor.Length, cursor.Prefix)
		if err != nil {
			return fmt.Errorf("build length %d space: %w", cursor.Length, err)
		}
		if cursor.Offset > space.Size() {
			return fmt.Errorf("%w: resume offset %d beyond space size %d", ErrInvalidRequest, cursor.Offset, space.Size())
		}

		c.transition(logger, StateRunning, cursor.Length)
		out, err := c.dispatcher.Run(ctx, dispatch.Pass{
			Space:              space,
			Start:              cursor.Offset,
			Oracle:             c.oracle,
			Label:              progress.PassLabel(cursor.Length),
			Workers:            req.Workers,
			BatchSize:          req.BatchSize,
			CheckpointInterval: req.CheckpointInterval,
			Store:              c.store,
			Progress:           c.progress,
		})
		if err != nil {
			return err
		}
		res.Length = cursor.Length
		res.Attempts += out.Attempts
		res.Failures += out.Failures

		switch out.Status {
		case dispatch.Found:
			c.transition(logger, StateFound, cursor.Length)
			res.Found = true
			res.Candidate = out.Candidate
			return nil
		case dispatch.Canceled:
			return ErrInterrupted
		}
		if cursor.Length >= req.MaxLength {
			c.transition(logger, StateExhausted, cursor.Length)
			return nil
		}
		c.transition(logger, StateNextLength, cursor.Length)
		cursor = checkpoint.Cursor{Length: cursor.Length + 1}
	}
}

func (c *Controller) runPattern(ctx context.Context, logger *slog.Logger, req Request, res *Result) error {
	space, err := keyspace.NewPatternSpace(req.Pattern)
	if err != nil {
		return fmt.Errorf("%w: pattern: %w", ErrInvalidRequest, err)
	}
	if req.Resume != "" || req.ForceRestart {
		logger.Debug("resume options ignored in pattern mode")
	}
	logger.Info("pattern mode",
		logging.Uint64("variants", space.Size()),
		logging.Int(logging.FieldLength, space.Length()),
	)

	c.transition(logger, StateRunning, space.Length())
	out, err := c.dispatcher.Run(ctx, dispatch.Pass{
		Space:     space,
		Oracle:    c.oracle,
		Label:     "pattern",
		Workers:   req.Workers,
		BatchSize: req.BatchSize,
		Progress:  c.progress,
	})
	if err != nil {
		return err
	}
	res.Length = space.Length()
	res.Attempts = out.Attempts
	res.Failures = out.Failures
	switch out.Status {
	case dispatch.Found:
		c.transition(logger, StateFound, space.Length())
		res.Found = true
		res.Candidate = out.Candidate
	case dispatch.Canceled:
		return ErrInterrupted
	default:
		c.transition(logger, StateExhausted, space.Length())
	}
	return nil
}

// resolveStart picks the first cursor: an explicit resume string wins over
// the persisted checkpoint, which wins over the start of MinLength.
func (c *Controller) resolveStart(ctx context.Context, logger *slog.Logger, req Request) (checkpoint.Cursor, error) {
	zero := checkpoint.Cursor{Length: req.MinLength}
	scope := checkpoint.CharsetScope(req.Charset)
	if scoped, ok := c.store.(checkpoint.Scoped); ok {
		scoped.BindScope(scope)
	}
	if req.ForceRestart && c.store != nil {
		if err := c.store.Clear(ctx); err != nil {
			return zero, fmt.Errorf("clear checkpoint: %w", err)
		}
		logger.Info("checkpoint cleared for forced restart")
	}

	if req.Resume != "" {
		cursor, err := parseResume(req.Resume, req.MaxLength)
		if err != nil {
			return zero, err
		}
		logger.Info("resuming from explicit cursor", logging.String("cursor", cursor.String()))
		return cursor, nil
	}

	if c.store == nil || req.ForceRestart {
		return zero, nil
	}
	cursor, ok, err := c.store.Load(ctx)
	if err != nil {
		return zero, fmt.Errorf("load checkpoint: %w", err)
	}
	if !ok {
		return zero, nil
	}
	reason, err := c.persistedCursorProblem(ctx, req, scope, cursor)
	if err != nil {
		return zero, err
	}
	if reason != "" {
		logging.WarnWithContext(logger, "ignoring saved checkpoint", "checkpoint_discarded",
			logging.String("cursor", cursor.String()),
			logging.String("reason", reason),
			logging.String(logging.FieldImpact, fmt.Sprintf("search restarts at length %d", req.MinLength)),
			logging.String(logging.FieldErrorHint, "pass the same length range and charset as the interrupted run"),
		)
		return zero, nil
	}
	logger.Info("resuming from checkpoint", logging.String("cursor", cursor.String()))
	return cursor, nil
}

// persistedCursorProblem explains why a saved cursor cannot seed this run,
// or returns "" when it can. Resuming in another charset would reinterpret
// the offset and skip untested candidates.
func (c *Controller) persistedCursorProblem(ctx context.Context, req Request, scope string, cursor checkpoint.Cursor) (string, error) {
	if cursor.Length < req.MinLength || cursor.Length > req.MaxLength {
		return fmt.Sprintf("length %d outside %d..%d", cursor.Length, req.MinLength, req.MaxLength), nil
	}
	if scoped, ok := c.store.(checkpoint.Scoped); ok {
		saved, err := scoped.Scope(ctx)
		if err != nil {
			return "", fmt.Errorf("load checkpoint: %w", err)
		}
		switch saved {
		case scope:
		case "":
			return "checkpoint has no charset fingerprint", nil
		default:
			return "checkpoint was written for a different charset", nil
		}
	}
	for _, r := range cursor.Prefix {
		if !slices.Contains(req.Charset, r) {
			return fmt.Sprintf("prefix symbol %q not in charset", r), nil
		}
	}
	space, err := keyspace.NewCharsetSpace(req.Charset, cursor.Length, cursor.Prefix)
	if err != nil {
		return err.Error(), nil
	}
	if cursor.Offset > space.Size() {
		return fmt.Sprintf("offset %d beyond space size %d", cursor.Offset, space.Size()), nil
	}
	return "", nil
}

// parseResume accepts a full cursor record or a literal prefix. A literal
// prefix fixes the length to its own rune count and starts at offset 0.
func parseResume(value string, maxLength int) (checkpoint.Cursor, error) {
	if cursor, err := checkpoint.ParseCursor(value); err == nil {
		if cursor.Length > maxLength {
			return checkpoint.Cursor{}, fmt.Errorf("%w: resume length %d exceeds max length %d", ErrInvalidRequest, cursor.Length, maxLength)
		}
		return cursor, nil
	}
	if !utf8.ValidString(value) {
		return checkpoint.Cursor{}, fmt.Errorf("%w: resume value is not valid UTF-8", ErrInvalidRequest)
	}
	length := utf8.RuneCountInString(value)
	if length > maxLength {
		return checkpoint.Cursor{}, fmt.Errorf("%w: resume prefix length %d exceeds max length %d", ErrInvalidRequest, length, maxLength)
	}
	return checkpoint.Cursor{Length: length, Prefix: value}, nil
}

func (c *Controller) clearCheckpoint(ctx context.Context, logger *slog.Logger) {
	if c.store == nil {
		return
	}
	if err := c.store.Clear(context.WithoutCancel(ctx)); err != nil {
		logging.WarnWithContext(logger, "could not clear checkpoint after success", "checkpoint_clear_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the next run resumes from a stale position"),
			logging.String(logging.FieldErrorHint, "run 'zipcrack checkpoint clear'"),
		)
	}
}

func (c *Controller) beginLedger(ctx context.Context, logger *slog.Logger, req Request, id string, started time.Time) {
	if c.ledger == nil {
		return
	}
	err := c.ledger.Begin(ctx, history.Run{
		ID:        id,
		Archive:   req.Archive,
		Mode:      string(req.Mode()),
		Charset:   req.CharsetName,
		MinLength: req.MinLength,
		MaxLength: req.MaxLength,
		StartedAt: started,
	})
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will be missing from 'zipcrack history'"),
		)
	}
}

func (c *Controller) finishLedger(ctx context.Context, logger *slog.Logger, res Result, runErr error) {
	status := outcomeStatus(res, runErr)
	if c.observer != nil {
		c.observer.RunFinished(string(status), res.Elapsed)
	}
	if c.ledger == nil {
		return
	}
	var recorded error
	if status == history.StatusFailed {
		recorded = runErr
	}
	err := c.ledger.Finish(context.WithoutCancel(ctx), res.RunID, status, res.Candidate, int64(res.Attempts), res.Elapsed, recorded)
	if err != nil {
		logging.WarnWithContext(logger, "run history update failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "'zipcrack history' shows this run as running"),
		)
	}
}

func outcomeStatus(res Result, err error) history.Status {
	switch {
	case errors.Is(err, ErrInterrupted):
		return history.StatusInterrupted
	case err != nil:
		return history.StatusFailed
	case res.Found:
		return history.StatusFound
	default:
		return history.StatusExhausted
	}
}

func (c *Controller) logSummary(logger *slog.Logger, res Result, err error) {
	attrs := []slog.Attr{
		logging.Uint64("attempts", res.Attempts),
		logging.Uint64("failures", res.Failures),
		logging.Duration("elapsed", res.Elapsed),
		logging.Int(logging.FieldLength, res.Length),
	}
	switch {
	case errors.Is(err, ErrInterrupted):
		logger.Info("search interrupted; checkpoint kept", logging.Args(attrs...)...)
	case err != nil:
		logging.ErrorWithContext(logger, "search failed", "search_failed", append(attrs, logging.Error(err))...)
	case res.Found:
		logger.Info("password found", logging.Args(append(attrs, logging.String(logging.FieldEventType, "password_found"))...)...)
	default:
		logger.Info("search exhausted without a match", logging.Args(attrs...)...)
	}
}
