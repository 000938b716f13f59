package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"scriptline/internal/render"
)

var rmCmd = &cobra.Command{
	Use:   "rm <item>...",
	Short: "Delete items from the script",
	Long:  "Deletes each item and its place in the sequence. Unknown references are reported and skipped.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ws, err := openWorkspace(ctx)
		if err != nil {
			return err
		}
		defer ws.Close()

		for _, ref := range args {
			id := ref
			it, err := ResolveItem(ws.store, ref)
			switch {
			case err == nil:
				id = it.ID
			case errors.Is(err, errAmbiguous):
				return err
			}
			before := ws.store.Len()
			if err := ws.store.Delete(ctx, id); err != nil {
				return err
			}
			if ws.store.Len() < before {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", render.ShortID(id))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
