package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"scriptline/internal/sequence"
)

var reorderCmd = &cobra.Command{
	Use:   "reorder <item>...",
	Short: "Replace the whole sequence",
	Long:  "Commits a new order. Every item must be listed exactly once.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ws, err := openWorkspace(ctx)
		if err != nil {
			return err
		}
		defer ws.Close()

		order := make([]string, 0, len(args))
		for _, ref := range args {
			it, err := ResolveItem(ws.store, ref)
			if err != nil {
				return err
			}
			order = append(order, it.ID)
		}
		if err := sequence.ValidatePermutation(order, ws.store.Snapshot().Items); err != nil {
			return err
		}
		if err := ws.store.Reorder(ctx, order); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d items\n", len(order))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reorderCmd)
}
