package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"scriptline/internal/render"
)

var (
	lsJSON  bool
	lsIDs   bool
	lsWidth int
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Show the laid-out script",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.Close()

		res, err := ws.derive()
		if err != nil {
			return err
		}
		if lsJSON {
			return printJSON(cmd.OutOrStdout(), res.Layout)
		}
		if len(res.Layout.Items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "(empty script: add items with `scriptline add`)")
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), render.ScriptView(res.Layout.Items, render.ScriptOptions{
			Names:   names(ws.cats),
			ShowIDs: lsIDs,
			Width:   lsWidth,
		}))
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d items, total %s\n", len(res.Layout.Items), render.Timecode(res.Layout.TotalDuration))
		return nil
	},
}

func init() {
	lsCmd.Flags().BoolVar(&lsJSON, "json", false, "Output as JSON")
	lsCmd.Flags().BoolVar(&lsIDs, "ids", false, "Show item ids")
	lsCmd.Flags().IntVar(&lsWidth, "width", 0, "Truncate rows to this width")
	rootCmd.AddCommand(lsCmd)
}
