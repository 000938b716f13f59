package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"scriptline/internal/render"
	"scriptline/internal/script"
)

var (
	summaryBy   string
	summaryJSON bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Per-act or per-scene durations, start times, characters and locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		container := script.Type(summaryBy)
		if !container.IsContainer() {
			return fmt.Errorf("--by must be act or scene, got %q", summaryBy)
		}

		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.Close()

		res, err := ws.derive()
		if err != nil {
			return err
		}
		sum := res.Scenes
		if container == script.TypeAct {
			sum = res.Acts
		}

		if summaryJSON {
			return printJSON(cmd.OutOrStdout(), sum)
		}

		byID := res.Layout.ByID()
		titles := make(map[string]string, len(sum.Order))
		for _, id := range sum.Order {
			titles[id] = byID[id].Label()
		}
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprint(cmd.OutOrStdout(), render.Summary(sum, titles, res.Layout.TotalDuration, names(ws.cats)))
		fmt.Fprintf(cmd.OutOrStdout(), "\n  Total: %s\n", render.Timecode(res.Layout.TotalDuration))
		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryBy, "by", "scene", "Container type: act or scene")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(summaryCmd)
}
