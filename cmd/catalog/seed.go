package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storefront/internal/application/orchestrators"
)

func (c *cli) newSeedCmd() *cobra.Command {
	var ifEmpty bool
	cmd := &cobra.Command{
		Use:   "seed <yaml>",
		Short: "Upsert products from a YAML seed file",
		Long: `Upsert every product listed in a YAML seed file.

The file holds a top-level "products" list. Nothing is written when any
entry is invalid.

Examples:
  catalog seed seed/catalog.yaml
  catalog seed seed/catalog.yaml --if-empty`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			products, closeDB, err := c.openProducts()
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := orchestrators.ExecuteSeedCatalog(cmd.Context(), orchestrators.SeedCatalogInput{
				Reader:      f,
				OnlyIfEmpty: ifEmpty,
			}, orchestrators.SeedCatalogDeps{ProductStore: products})
			if err != nil {
				return err
			}
			if res.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog not empty: skipped")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", res.Seeded)
			return nil
		},
	}
	cmd.Flags().BoolVar(&ifEmpty, "if-empty", false, "only seed when the catalog has no products")
	return cmd
}
