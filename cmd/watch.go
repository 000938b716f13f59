package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"scriptline/internal/config"
	"scriptline/internal/engine"
	"scriptline/internal/render"
	"scriptline/internal/scriptfile"
	"scriptline/internal/watch"
)

var (
	watchZoom   float64
	watchScript bool
	watchClear  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <file.toml>",
	Short: "Redraw a TOML script every time it is saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		zoom := cfg.Zoom
		if cmd.Flags().Changed("zoom") {
			zoom = watchZoom
		}
		if zoom < config.MinZoom || zoom > config.MaxZoom {
			return fmt.Errorf("--zoom must be within [%v, %v]", config.MinZoom, config.MaxZoom)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()

		src := newFileSource(args[0])
		out := cmd.OutOrStdout()
		draw := func() {
			if watchClear {
				fmt.Fprint(out, "\033[H\033[2J")
			}
			res, n, err := src.load()
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
				return
			}
			drawResult(out, res, n, zoom, watchScript)
			fmt.Fprintf(out, "[watch] %s  version %d  %s\n", render.TruncateMiddle(args[0], 40), res.Version, time.Now().Format("15:04:05"))
		}

		w, err := watch.New(args[0], time.Duration(cfg.DebounceMS)*time.Millisecond)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()

		draw()
		for {
			select {
			case <-ctx.Done():
				return nil
			case c, ok := <-w.Changes:
				if !ok {
					return nil
				}
				if c.Removed {
					src.forget()
					fmt.Fprintf(os.Stderr, "warning: %s was removed; waiting for it to come back\n", c.Path)
					continue
				}
				draw()
			}
		}
	},
}

func init() {
	watchCmd.Flags().Float64Var(&watchZoom, "zoom", 1, "Columns per second")
	watchCmd.Flags().BoolVar(&watchScript, "script", false, "Draw the linear script instead of lanes")
	watchCmd.Flags().BoolVar(&watchClear, "clear", true, "Clear the screen before each redraw")
	rootCmd.AddCommand(watchCmd)
}

// fileSource derives a TOML script straight from disk. The memo version only
// moves when the file's bytes change, so saves that change nothing reuse the
// cached derivation.
type fileSource struct {
	path    string
	engine  *engine.Engine
	version uint64
	last    []byte
}

func newFileSource(path string) *fileSource {
	return &fileSource{
		path:   path,
		engine: engine.New(engine.Options{DecorateSceneTitles: cfg.ActPrefix}),
	}
}

func (f *fileSource) load() (*engine.Result, render.Names, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, render.Names{}, fmt.Errorf("reading %s: %w", f.path, err)
	}
	doc, err := scriptfile.Decode(data)
	if err != nil {
		return nil, render.Names{}, fmt.Errorf("%s: %w", f.path, err)
	}
	if f.last == nil || !bytes.Equal(data, f.last) {
		f.version++
		f.last = data
	}
	res, err := f.engine.Compute(doc.Snapshot(f.version))
	if err != nil {
		return nil, render.Names{}, err
	}
	n := render.Names{
		Characters: make(map[string]string, len(doc.Characters)),
		Locations:  make(map[string]string, len(doc.Locations)),
	}
	for _, c := range doc.Characters {
		n.Characters[c.ID] = c.Name
	}
	for _, l := range doc.Locations {
		n.Locations[l.ID] = l.Name
	}
	return res, n, nil
}

// forget drops the derivation of a file that went away.
func (f *fileSource) forget() {
	f.last = nil
	f.engine.Invalidate()
}

func drawResult(out io.Writer, res *engine.Result, n render.Names, zoom float64, asScript bool) {
	if asScript {
		fmt.Fprint(out, render.ScriptView(res.Layout.Items, render.ScriptOptions{Names: n}))
		return
	}
	fmt.Fprint(out, render.Lanes(res.View, render.LaneOptions{Zoom: zoom}))
}
