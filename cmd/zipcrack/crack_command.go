package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"zipcrack/internal/checkpoint"
	"zipcrack/internal/config"
	"zipcrack/internal/history"
	"zipcrack/internal/keyspace"
	"zipcrack/internal/logging"
	"zipcrack/internal/metrics"
	"zipcrack/internal/oracle"
	"zipcrack/internal/preflight"
	"zipcrack/internal/progress"
	"zipcrack/internal/search"
)

type crackOptions struct {
	extractDir     string
	checkpointPath string
	charset        string
	customCharset  string
	resume         string
	startAt        string
	pattern        string
	minLength      int
	maxLength      int
	workers        int
	batchSize      int
	saveEvery      int
	testOnly       bool
	forceRestart   bool
	jsonOutput     bool
}

func newCrackCommand(ctx *commandContext) *cobra.Command {
	var opts crackOptions

	cmd := &cobra.Command{
		Use:   "crack <archive>",
		Short: "Search for the password of an encrypted ZIP archive",
		Long: `Enumerate candidate passwords in a fixed order until one opens the archive.

Progress is checkpointed to the state directory; an interrupted run resumes
where it stopped the next time it is started with the same length range and
charset. Use --force-restart to discard the checkpoint.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrack(cmd, ctx, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.extractDir, "extract-dir", "d", "", "Directory receiving the archive contents once the password is found")
	flags.StringVar(&opts.checkpointPath, "checkpoint", "", "Checkpoint file path")
	flags.StringVarP(&opts.charset, "charset", "C", "", "Charset preset: "+strings.Join(keyspace.CharsetNames(), ", "))
	flags.StringVar(&opts.customCharset, "custom-charset", "", "Symbols to use with --charset custom")
	flags.StringVarP(&opts.resume, "resume", "r", "", "Start from a cursor (length|prefix|offset) or a literal prefix")
	flags.StringVar(&opts.startAt, "start-at", "", "Start at this candidate (it is tested first)")
	flags.StringVarP(&opts.pattern, "pattern", "b", "", "Try every upper/lower case variant of this word instead")
	flags.IntVar(&opts.minLength, "min-length", 0, "Shortest password length to try")
	flags.IntVar(&opts.maxLength, "max-length", 0, "Longest password length to try")
	flags.IntVarP(&opts.workers, "workers", "p", 0, "Parallel workers (capped at the CPU count)")
	flags.IntVar(&opts.batchSize, "batch-size", 0, "Candidates handed to a worker at a time")
	flags.IntVarP(&opts.saveEvery, "save-every", "s", 0, "Candidates retired between checkpoint writes")
	flags.BoolVarP(&opts.testOnly, "test-only", "t", false, "Report the password without extracting")
	flags.BoolVarP(&opts.forceRestart, "force-restart", "f", false, "Discard any saved checkpoint and start over")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print the result as JSON")
	return cmd
}

// applyCrackFlags copies explicitly set flags over the loaded configuration.
func applyCrackFlags(cmd *cobra.Command, cfg *config.Config, opts crackOptions) error {
	flags := cmd.Flags()
	if flags.Changed("extract-dir") {
		dir, err := config.ExpandPath(opts.extractDir)
		if err != nil {
			return fmt.Errorf("resolve extract dir: %w", err)
		}
		cfg.Paths.ExtractDir = dir
	}
	if flags.Changed("checkpoint") {
		path, err := config.ExpandPath(opts.checkpointPath)
		if err != nil {
			return fmt.Errorf("resolve checkpoint path: %w", err)
		}
		cfg.Paths.CheckpointFile = path
	}
	if flags.Changed("charset") {
		cfg.Search.Charset = strings.ToLower(strings.TrimSpace(opts.charset))
	}
	if flags.Changed("custom-charset") {
		cfg.Search.CustomCharset = opts.customCharset
		if !flags.Changed("charset") {
			cfg.Search.Charset = keyspace.CharsetCustom
		}
	}
	if flags.Changed("min-length") {
		cfg.Search.MinLength = opts.minLength
	}
	if flags.Changed("max-length") {
		cfg.Search.MaxLength = opts.maxLength
	}
	if flags.Changed("workers") {
		cfg.Search.Workers = opts.workers
	}
	if flags.Changed("batch-size") {
		cfg.Search.BatchSize = opts.batchSize
	}
	if flags.Changed("save-every") {
		cfg.Search.CheckpointInterval = opts.saveEvery
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

func runCrack(cmd *cobra.Command, ctx *commandContext, archivePath string, opts crackOptions) (err error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := applyCrackFlags(cmd, cfg, opts); err != nil {
		return err
	}
	archivePath, err = config.ExpandPath(archivePath)
	if err != nil {
		return fmt.Errorf("resolve archive path: %w", err)
	}
	charset, err := keyspace.Charset(cfg.Search.Charset, cfg.Search.CustomCharset)
	if err != nil {
		return err
	}
	if opts.startAt != "" {
		if opts.resume != "" {
			return fmt.Errorf("--start-at and --resume are mutually exclusive")
		}
		cursor, err := startCursor(charset, opts.startAt)
		if err != nil {
			return err
		}
		opts.resume = cursor.String()
	}
	if err := preflight.Err(preflight.RunAll(cfg, archivePath, !opts.testOnly)); err != nil {
		return err
	}

	signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stderr := cmd.ErrOrStderr()
	started := time.Now()
	logPath := logging.RunLogPath(cfg.Paths.LogDir, started)
	logger, err := ctx.logger(stderr, logPath)
	if err != nil {
		return err
	}
	logging.PruneRunLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, logPath, started)

	var cleanup cleanupStack
	defer func() {
		if closeErr := cleanup.run(); closeErr != nil {
			logging.WarnWithContext(logger, "shutdown incomplete", "shutdown_failed",
				logging.Error(closeErr),
				logging.String(logging.FieldImpact, "some resources were not released cleanly"),
			)
			if err == nil {
				err = closeErr
			}
		}
	}()

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another zipcrack run holds %s", cfg.LockPath())
	}
	cleanup.push(lock.Unlock)

	archive, err := oracle.OpenZip(archivePath, oracle.ZipOptions{
		ExtractDir:    cfg.Paths.ExtractDir,
		RetryAttempts: uint(cfg.Oracle.RetryAttempts),
		RetryDelay:    time.Duration(cfg.Oracle.RetryDelayMS) * time.Millisecond,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	cleanup.push(archive.Close)

	recorder := metrics.New()
	if cfg.Metrics.Enabled {
		server, err := metrics.Serve(signalCtx, cfg.Metrics.Bind, recorder.Handler(), logger)
		if err != nil {
			return err
		}
		cleanup.push(server.Close)
	}

	searchOpts := search.Options{
		Oracle:       archive,
		Materializer: archive,
		Store:        checkpoint.NewFileStore(cfg.CheckpointPath(), logger),
		Progress:     progress.Multi(newProgressReporter(stderr, logger), recorder),
		Observer:     recorder,
		Logger:       logger,
	}
	if ledger, err := history.Open(cfg.HistoryPath()); err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldPath, cfg.HistoryPath()),
			logging.String(logging.FieldImpact, "this run will not appear in 'zipcrack history'"),
		)
	} else {
		searchOpts.Ledger = ledger
		cleanup.push(ledger.Close)
	}
	controller, err := search.New(searchOpts)
	if err != nil {
		return err
	}

	req := search.Request{
		Archive:            archivePath,
		Charset:            charset,
		CharsetName:        cfg.Search.Charset,
		MinLength:          cfg.Search.MinLength,
		MaxLength:          cfg.Search.MaxLength,
		Resume:             opts.resume,
		ForceRestart:       opts.forceRestart,
		Pattern:            opts.pattern,
		Workers:            cfg.Search.Workers,
		BatchSize:          cfg.Search.BatchSize,
		CheckpointInterval: uint64(cfg.Search.CheckpointInterval),
		TestOnly:           opts.testOnly,
	}
	res, runErr := controller.Run(signalCtx, req)
	if errors.Is(runErr, search.ErrInterrupted) {
		fmt.Fprintf(stderr, "Interrupted after %s attempts; progress saved to %s\n",
			humanize.Comma(int64(res.Attempts)), cfg.CheckpointPath())
		return runErr
	}
	if runErr != nil {
		return runErr
	}

	if opts.jsonOutput {
		return writeJSON(cmd, newCrackJSON(res, cfg, opts.testOnly))
	}
	printCrackResult(cmd.OutOrStdout(), res, cfg, opts.testOnly)
	return nil
}

// startCursor positions a run on candidate within its own length pass.
func startCursor(charset []rune, candidate string) (checkpoint.Cursor, error) {
	length := utf8.RuneCountInString(candidate)
	space, err := keyspace.NewCharsetSpace(charset, length, "")
	if err != nil {
		return checkpoint.Cursor{}, fmt.Errorf("start-at: %w", err)
	}
	ordinal, err := space.Ordinal(candidate)
	if err != nil {
		return checkpoint.Cursor{}, fmt.Errorf("start-at: %w", err)
	}
	return checkpoint.Cursor{Length: length, Offset: ordinal}, nil
}

func newProgressReporter(w io.Writer, logger *slog.Logger) progress.Reporter {
	if f, ok := w.(*os.File); ok {
		return progress.Auto(f, logger)
	}
	return progress.NewLog(logger)
}

type crackJSON struct {
	RunID        string  `json:"run_id"`
	Status       string  `json:"status"`
	Password     string  `json:"password,omitempty"`
	Attempts     uint64  `json:"attempts"`
	Failures     uint64  `json:"failures"`
	ElapsedSec   float64 `json:"elapsed_seconds"`
	ExtractedTo  string  `json:"extracted_to,omitempty"`
	ExtractError string  `json:"extract_error,omitempty"`
}

func newCrackJSON(res search.Result, cfg *config.Config, testOnly bool) crackJSON {
	out := crackJSON{
		RunID:      res.RunID,
		Status:     string(history.StatusExhausted),
		Attempts:   res.Attempts,
		Failures:   res.Failures,
		ElapsedSec: res.Elapsed.Seconds(),
	}
	if !res.Found {
		return out
	}
	out.Status = string(history.StatusFound)
	out.Password = res.Candidate
	switch {
	case res.ExtractErr != nil:
		out.ExtractError = res.ExtractErr.Error()
	case !testOnly:
		out.ExtractedTo = cfg.Paths.ExtractDir
	}
	return out
}

func printCrackResult(out io.Writer, res search.Result, cfg *config.Config, testOnly bool) {
	elapsed := res.Elapsed.Round(time.Millisecond)
	if !res.Found {
		fmt.Fprintf(out, "No password found (%s attempts in %s)\n", humanize.Comma(int64(res.Attempts)), elapsed)
		return
	}
	fmt.Fprintf(out, "Password found: %s\n", res.Candidate)
	fmt.Fprintf(out, "Attempts: %s\n", humanize.Comma(int64(res.Attempts)))
	fmt.Fprintf(out, "Elapsed: %s\n", elapsed)
	if res.Failures > 0 {
		fmt.Fprintf(out, "Oracle failures: %s\n", humanize.Comma(int64(res.Failures)))
	}
	switch {
	case res.ExtractErr != nil:
		fmt.Fprintf(out, "Extraction failed: %v\n", res.ExtractErr)
	case testOnly:
		fmt.Fprintln(out, "Extraction skipped (--test-only)")
	default:
		fmt.Fprintf(out, "Extracted to: %s\n", cfg.Paths.ExtractDir)
	}
}
