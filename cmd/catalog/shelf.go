package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"storefront/internal/adapters/storage/kv"
	domain "storefront/internal/domain/shelf"
)

func (c *cli) newShelfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shelf",
		Short: "Inspect and reset visitor shelves",
		Long: `Inspect and reset the favorites, compare and recently viewed lists
kept for each visitor.

Examples:
  catalog shelf list
  catalog shelf show 3f2b...
  catalog shelf clear 3f2b... compare`,
	}
	cmd.AddCommand(c.newShelfListCmd(), c.newShelfShowCmd(), c.newShelfClearCmd())
	return cmd
}

func (c *cli) newShelfListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List visitors with stored shelves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := c.openShelfStorage()
			if err != nil {
				return err
			}
			defer closeStore()

			lister, ok := store.(kv.Lister)
			if !ok {
				return errors.New("shelf storage cannot list visitors")
			}
			visitors, err := lister.Namespaces(cmd.Context())
			if err != nil {
				return err
			}
			sort.Strings(visitors)
			for _, v := range visitors {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}

func (c *cli) newShelfShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <visitor>",
		Short: "Show one visitor's lists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := c.openShelfStorage()
			if err != nil {
				return err
			}
			defer closeStore()

			sh, err := shelvesOver(store).For(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, list := range domain.Lists() {
				s, _ := sh.Store(list)
				fmt.Fprintf(out, "%-16s %s\n", list+":", strings.Join(s.Snapshot(), ", "))
			}
			return nil
		},
	}
}

func (c *cli) newShelfClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <visitor> <list>",
		Short: "Empty one of a visitor's lists",
		Long: `Empty one of a visitor's lists: favorites, compare or recently-viewed.

Servers using the file backend pick the change up and update open tabs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, ok := domain.ParseList(args[1])
			if !ok {
				return fmt.Errorf("unknown list %q", args[1])
			}
			store, closeStore, err := c.openShelfStorage()
			if err != nil {
				return err
			}
			defer closeStore()

			sh, err := shelvesOver(store).For(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			sh.Clear(cmd.Context(), list)
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s for %s\n", list, args[0])
			return nil
		},
	}
}
