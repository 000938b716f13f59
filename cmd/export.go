package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"scriptline/internal/scriptfile"
)

var exportCmd = &cobra.Command{
	Use:   "export [file.toml]",
	Short: "Write the script and its catalogs as TOML (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.Close()

		doc := scriptfile.Export(ws.store, ws.cats)
		if len(args) == 0 {
			data, err := scriptfile.Encode(doc)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := scriptfile.Write(args[0], doc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d items to %s\n", len(doc.Items), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
