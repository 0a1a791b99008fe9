package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "oqlpager",
		Short: "Two-phase paged OQL query derivation",
		Long: "oqlpager derives the keys query and values query of a two-phase paged\n" +
			"query execution from a single OQL query statement, either ad hoc on the\n" +
			"command line or as a long-running derivation service.",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newDeriveCommand())

	return root
}
