package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"zipcrack/internal/keyspace"
)

// maxListedVariants bounds how many variants are printed in one listing.
const maxListedVariants = 1 << 16

func newVariantsCommand() *cobra.Command {
	var countOnly bool

	cmd := &cobra.Command{
		Use:         "variants <word>",
		Short:       "List the case variants a --pattern run would try, in order",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			space, err := keyspace.NewPatternSpace(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if countOnly {
				fmt.Fprintln(out, space.Size())
				return nil
			}
			if space.Size() > maxListedVariants {
				return fmt.Errorf("%q has %s variants; use --count or a shorter word", args[0], humanize.Comma(int64(space.Size())))
			}
			for _, variant := range keyspace.GenerateAllCaseCombinations(args[0]) {
				fmt.Fprintln(out, variant)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&countOnly, "count", false, "Print only the number of variants")
	return cmd
}
