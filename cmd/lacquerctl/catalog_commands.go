package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fr0stylo/lacquer/internal/adapters/sqlite"
	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/services"
	"github.com/fr0stylo/lacquer/internal/config"
	"github.com/fr0stylo/lacquer/internal/connectors"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage catalog shades",
	}
	catalogCmd.AddCommand(newCatalogSeedCommand(ctx))
	catalogCmd.AddCommand(newCatalogCountCommand(ctx))
	return catalogCmd
}

func newCatalogSeedCommand(ctx *commandContext) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "seed <file.json>",
		Short: "Upsert shades from a JSON record list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := connectors.ReadRecordsFile(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ config.Config, store *sqlite.Store) error {
				result, err := services.SeedCatalog(cmd.Context(), store, domain.IngestionSource(source), records)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d record(s): %d inserted, %d updated, %d skipped\n",
					len(records), result.Inserted, result.Updated, result.Skipped)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", string(domain.SourceManualFeed), "Source recorded on seeded shades")
	return cmd
}

func newCatalogCountCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of catalog shades",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ config.Config, store *sqlite.Store) error {
				count, err := store.CountShades(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]int64{"shades": count})
				}
				fmt.Fprintln(cmd.OutOrStdout(), count)
				return nil
			})
		},
	}
}
