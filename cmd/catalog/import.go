package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"storefront/internal/application/orchestrators"
)

func (c *cli) newImportCmd() *cobra.Command {
	var (
		dryRun bool
		update bool
	)
	cmd := &cobra.Command{
		Use:   "import <csv>",
		Short: "Import products from a CSV file",
		Long: `Import products from a CSV file with a header row.

Required columns: id, name, price. Optional: currency, category, description,
image and any attr:<Name> column, which becomes a product attribute.
Existing products are skipped unless --update is given.

Examples:
  catalog import products.csv --dry-run
  catalog import products.csv --update`,
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

			res, err := orchestrators.ExecuteImportProducts(cmd.Context(), orchestrators.ImportProductsInput{
				Reader:     f,
				Operator:   operator(),
				DryRun:     dryRun,
				UpdateMode: update,
			}, orchestrators.ImportProductsDeps{ProductStore: products})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.DryRun {
				fmt.Fprintln(out, "dry run: nothing was written")
			}
			fmt.Fprintf(out, "rows: %d  created: %d  updated: %d  skipped: %d  errors: %d\n",
				res.Total, res.Created, res.Updated, res.Skipped, len(res.Errors))
			for _, col := range res.Unknown {
				fmt.Fprintf(out, "ignored column: %s\n", col)
			}
			for _, e := range res.Errors {
				fmt.Fprintf(out, "row %d: %s\n", e.Row, e.Message)
			}
			if len(res.Errors) > 0 {
				return fmt.Errorf("%d rows failed", len(res.Errors))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate without writing")
	cmd.Flags().BoolVar(&update, "update", false, "overwrite products that already exist")
	return cmd
}

func operator() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "cli"
}
