package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"zipcrack/internal/history"
)

type runJSON struct {
	ID         string  `json:"id"`
	Archive    string  `json:"archive"`
	Mode       string  `json:"mode"`
	Charset    string  `json:"charset,omitempty"`
	MinLength  int     `json:"min_length"`
	MaxLength  int     `json:"max_length"`
	Status     string  `json:"status"`
	Password   string  `json:"password,omitempty"`
	Attempts   int64   `json:"attempts"`
	ElapsedSec float64 `json:"elapsed_seconds"`
	StartedAt  string  `json:"started_at"`
	FinishedAt string  `json:"finished_at,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func newRunJSON(run history.Run) runJSON {
	out := runJSON{
		ID:         run.ID,
		Archive:    run.Archive,
		Mode:       run.Mode,
		Charset:    run.Charset,
		MinLength:  run.MinLength,
		MaxLength:  run.MaxLength,
		Status:     string(run.Status),
		Password:   run.Candidate,
		Attempts:   run.Attempts,
		ElapsedSec: run.Elapsed.Seconds(),
		StartedAt:  run.StartedAt.Local().Format(time.DateTime),
		Error:      run.Error,
	}
	if !run.FinishedAt.IsZero() {
		out.FinishedAt = run.FinishedAt.Local().Format(time.DateTime)
	}
	return out
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent search runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			rows := make([]runJSON, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, newRunJSON(run))
			}
			if jsonOutput {
				return writeJSON(cmd, rows)
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistoryTable(rows))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}

func renderHistoryTable(rows []runJSON) string {
	columns := []column{
		{header: "ID"},
		{header: "Started"},
		{header: "Status"},
		{header: "Mode"},
		{header: "Lengths", numeric: true},
		{header: "Attempts", numeric: true},
		{header: "Elapsed", numeric: true},
		{header: "Password"},
	}
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		lengths := "-"
		if row.Mode != "pattern" {
			lengths = strconv.Itoa(row.MinLength) + "-" + strconv.Itoa(row.MaxLength)
		}
		password := row.Password
		if password == "" {
			password = "-"
		}
		table = append(table, []string{
			shortID(row.ID),
			row.StartedAt,
			row.Status,
			row.Mode,
			lengths,
			humanize.Comma(row.Attempts),
			(time.Duration(row.ElapsedSec * float64(time.Second))).Round(time.Second).String(),
			password,
		})
	}
	return renderTable(columns, table)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
