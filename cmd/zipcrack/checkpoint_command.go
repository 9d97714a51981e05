package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zipcrack/internal/checkpoint"
)

func newCheckpointCommand(ctx *commandContext) *cobra.Command {
	checkpointCmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage the saved search position",
	}
	checkpointCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the saved checkpoint so the next run starts over",
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
			_, existed, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			if existed {
				fmt.Fprintf(cmd.OutOrStdout(), "Checkpoint cleared (%s)\n", store.Path())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No checkpoint to clear")
			}
			return nil
		},
	})
	return checkpointCmd
}
