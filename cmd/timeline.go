package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"scriptline/internal/config"
	"scriptline/internal/render"
)

var (
	timelineZoom   float64
	timelineOffset int
	timelineWidth  int
	timelineJSON   bool
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Draw the script as horizontal lanes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		zoom := cfg.Zoom
		if cmd.Flags().Changed("zoom") {
			zoom = timelineZoom
		}
		if zoom < config.MinZoom || zoom > config.MaxZoom {
			return fmt.Errorf("--zoom must be within [%v, %v]", config.MinZoom, config.MaxZoom)
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
		if timelineJSON {
			return printJSON(cmd.OutOrStdout(), res.View)
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Lanes(res.View, render.LaneOptions{
			Zoom:   zoom,
			Offset: timelineOffset,
			Width:  timelineWidth,
		}))
		return nil
	},
}

func init() {
	timelineCmd.Flags().Float64Var(&timelineZoom, "zoom", 1, "Columns per second")
	timelineCmd.Flags().IntVar(&timelineOffset, "offset", 0, "First column to draw")
	timelineCmd.Flags().IntVar(&timelineWidth, "width", 0, "Columns to draw (default: whole script)")
	timelineCmd.Flags().BoolVar(&timelineJSON, "json", false, "Output the view model as JSON")
	rootCmd.AddCommand(timelineCmd)
}
