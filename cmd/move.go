package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"scriptline/internal/render"
)

var moveAfter string

var moveCmd = &cobra.Command{
	Use:   "move <item> [index]",
	Short: "Move an item to a new position in the sequence",
	Long:  "Moves an item to index (0-based, clamped to the ends), or to just after another item with --after.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ws, err := openWorkspace(ctx)
		if err != nil {
			return err
		}
		defer ws.Close()

		it, err := ResolveItem(ws.store, args[0])
		if err != nil {
			return err
		}

		var index int
		switch {
		case moveAfter != "":
			anchor, err := ResolveItem(ws.store, moveAfter)
			if err != nil {
				return err
			}
			if anchor.ID == it.ID {
				return fmt.Errorf("cannot move an item after itself")
			}
			// Positions are counted with the moved item taken out.
			index = positionOf(ws.store.Order(), anchor.ID) + 1
			if positionOf(ws.store.Order(), it.ID) < index {
				index--
			}
		case len(args) == 2:
			index, err = strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index must be a number: %w", err)
			}
		default:
			return fmt.Errorf("give an index or --after <item>")
		}

		if err := ws.store.Move(ctx, it.ID, index); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to position %d\n", render.ShortID(it.ID), positionOf(ws.store.Order(), it.ID))
		return nil
	},
}

func init() {
	moveCmd.Flags().StringVar(&moveAfter, "after", "", "Place the item right after this one")
	rootCmd.AddCommand(moveCmd)
}
