package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"scriptline/internal/config"
	"scriptline/internal/tui"
	"scriptline/internal/watch"
)

var viewZoom float64

var viewCmd = &cobra.Command{
	Use:   "view [file.toml]",
	Short: "Browse the timeline interactively",
	Long: `Opens the lane timeline in a full-screen viewer (+/- zoom, arrows scroll,
q quits). With a file argument the viewer reads the TOML script and
reloads it whenever it is saved; otherwise it shows the database.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		zoom := cfg.Zoom
		if cmd.Flags().Changed("zoom") {
			zoom = viewZoom
		}
		if zoom < config.MinZoom || zoom > config.MaxZoom {
			return fmt.Errorf("--zoom must be within [%v, %v]", config.MinZoom, config.MaxZoom)
		}

		if len(args) == 1 {
			return viewFile(args[0], zoom)
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
		title := fmt.Sprintf("scriptline  %d items", len(res.Layout.Items))
		_, err = tea.NewProgram(tui.New(title, res.View, zoom), tea.WithAltScreen()).Run()
		return err
	},
}

func viewFile(path string, zoom float64) error {
	src := newFileSource(path)
	res, _, err := src.load()
	if err != nil {
		return err
	}

	w, err := watch.New(path, time.Duration(cfg.DebounceMS)*time.Millisecond)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	prog := tea.NewProgram(tui.New("scriptline  "+filepath.Base(path), res.View, zoom), tea.WithAltScreen())
	go func() {
		for c := range w.Changes {
			if c.Removed {
				src.forget()
				continue
			}
			res, _, err := src.load()
			if err != nil {
				prog.Send(tui.ErrMsg{Err: err})
				continue
			}
			prog.Send(tui.TimelineMsg{Timeline: res.View})
		}
	}()

	_, err = prog.Run()
	return err
}

func init() {
	viewCmd.Flags().Float64Var(&viewZoom, "zoom", 1, "Initial columns per second")
	rootCmd.AddCommand(viewCmd)
}
