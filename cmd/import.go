package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"scriptline/internal/scriptfile"
)

var importCmd = &cobra.Command{
	Use:   "import <file.toml>",
	Short: "Append a TOML script (items and catalogs) to the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		doc, err := scriptfile.Read(args[0])
		if err != nil {
			return err
		}

		ws, err := openWorkspace(ctx)
		if err != nil {
			return err
		}
		defer ws.Close()

		logf("import", "%s: %d items, %d characters, %d locations", args[0], len(doc.Items), len(doc.Characters), len(doc.Locations))
		n, err := scriptfile.Import(ctx, doc, ws.store, ws.cats)
		if err != nil {
			return fmt.Errorf("imported %d of %d items: %w", n, len(doc.Items), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items from %s\n", n, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
