package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var dbFlag string
	var jsonFlag bool

	ctx := newCommandContext(&dbFlag, &jsonFlag)

	rootCmd := &cobra.Command{
		Use:           "lacquerctl",
		Short:         "Operate lacquer ingestion jobs and catalog data",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "SQLite database path (defaults to LACQUER_DB_PATH)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print machine-readable JSON")

	rootCmd.AddCommand(newJobsCommand(ctx))
	rootCmd.AddCommand(newQueueCommand(ctx))
	rootCmd.AddCommand(newCatalogCommand(ctx))

	return rootCmd
}
