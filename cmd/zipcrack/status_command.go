package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"zipcrack/internal/checkpoint"
	"zipcrack/internal/config"
	"zipcrack/internal/history"
	"zipcrack/internal/keyspace"
	"zipcrack/internal/progress"
)

type statusJSON struct {
	CheckpointPath string   `json:"checkpoint_path"`
	Saved          bool     `json:"saved"`
	Cursor         string   `json:"cursor,omitempty"`
	Length         int      `json:"length,omitempty"`
	Prefix         string   `json:"prefix,omitempty"`
	Offset         uint64   `json:"offset,omitempty"`
	PassSize       uint64   `json:"pass_size,omitempty"`
	NextCandidate  string   `json:"next_candidate,omitempty"`
	Percent        *float64 `json:"percent,omitempty"`
	LastRun        *runJSON `json:"last_run,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the saved checkpoint and the most recent run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr(), "")
			if err != nil {
				return err
			}
			store := checkpoint.NewFileStore(cfg.CheckpointPath(), logger)
			cursor, ok, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			status := statusJSON{CheckpointPath: store.Path(), Saved: ok}
			if ok {
				status.Cursor = cursor.String()
				status.Length = cursor.Length
				status.Prefix = cursor.Prefix
				status.Offset = cursor.Offset
				if space, ok := cursorSpace(cfg, cursor); ok {
					status.PassSize = space.Size()
					pct := progress.Percent(cursor.Offset, space.Size())
					status.Percent = &pct
					if cursor.Offset < space.Size() {
						status.NextCandidate, _ = space.Candidate(cursor.Offset)
					}
				}
			}
			if last, ok := lastRun(cmd.Context(), cfg); ok {
				row := newRunJSON(last)
				status.LastRun = &row
			}
			if jsonOutput {
				return writeJSON(cmd, status)
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print status as JSON")
	return cmd
}

// cursorSpace rebuilds the cursor's pass with the configured charset. The
// checkpoint does not record the charset, so the result assumes it is
// unchanged.
func cursorSpace(cfg *config.Config, cursor checkpoint.Cursor) (keyspace.Space, bool) {
	charset, err := keyspace.Charset(cfg.Search.Charset, cfg.Search.CustomCharset)
	if err != nil {
		return keyspace.Space{}, false
	}
	space, err := keyspace.NewCharsetSpace(charset, cursor.Length, cursor.Prefix)
	if err != nil || cursor.Offset > space.Size() {
		return keyspace.Space{}, false
	}
	return space, true
}

func lastRun(ctx context.Context, cfg *config.Config) (history.Run, bool) {
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return history.Run{}, false
	}
	defer store.Close()
	runs, err := store.List(ctx, 1)
	if err != nil || len(runs) == 0 {
		return history.Run{}, false
	}
	return runs[0], true
}

func printStatus(out io.Writer, status statusJSON) {
	fmt.Fprintf(out, "Checkpoint file: %s\n", status.CheckpointPath)
	if !status.Saved {
		fmt.Fprintln(out, "No checkpoint saved")
	} else {
		fmt.Fprintf(out, "Cursor: %s\n", status.Cursor)
		fmt.Fprintf(out, "Length: %d\n", status.Length)
		if status.Prefix != "" {
			fmt.Fprintf(out, "Prefix: %s\n", status.Prefix)
		}
		if status.Percent != nil {
			fmt.Fprintf(out, "Progress: %s / %s (%.1f%%) with the configured charset\n",
				humanize.Comma(int64(status.Offset)), humanize.Comma(int64(status.PassSize)), *status.Percent)
		} else {
			fmt.Fprintf(out, "Offset: %s\n", humanize.Comma(int64(status.Offset)))
		}
		if status.NextCandidate != "" {
			fmt.Fprintf(out, "Next candidate: %s\n", status.NextCandidate)
		}
	}
	if status.LastRun != nil {
		run := status.LastRun
		fmt.Fprintf(out, "Last run: %s %s (%s attempts, started %s)\n",
			shortID(run.ID), run.Status, humanize.Comma(run.Attempts), run.StartedAt)
	}
}
