package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"scriptline/internal/render"
	"scriptline/internal/script"
)

var setJSON bool

var setCmd = &cobra.Command{
	Use:   "set <item> <path> [key] <value>",
	Short: "Change one field of an item",
	Long: `Change one field of an item. path is one of type, title, duration,
details, tags or notes; details takes a key. Values are read as JSON when
they parse (3.5, true, null, ["a","b"]) and as plain strings otherwise.

  scriptline set 3f2a duration 4.5
  scriptline set 3f2a duration null      # infer again
  scriptline set 3f2a details text "Who goes there?"`,
	Args: cobra.RangeArgs(3, 4),
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

		path, key, raw := args[1], "", args[2]
		if len(args) == 4 {
			key, raw = args[2], args[3]
		}
		if path == script.PathDetails && key == "" {
			return fmt.Errorf("details needs a key: set <item> details <key> <value>")
		}
		if path != script.PathDetails && key != "" {
			return fmt.Errorf("%s takes no key", path)
		}

		value := parseValue(raw)
		if path == script.PathTitle || path == script.PathType {
			value = raw
		}
		if path == script.PathDetails && key == script.KeyRef {
			if s, ok := value.(string); ok {
				value = resolveRef(ws.cats, it.Type, s)
			}
		}

		updated, err := ws.store.Update(ctx, it.ID, path, key, value)
		if err != nil {
			return err
		}
		if setJSON {
			return printJSON(cmd.OutOrStdout(), updated)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", render.ShortID(updated.ID), updated.Label())
		return nil
	},
}

func init() {
	setCmd.Flags().BoolVar(&setJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(setCmd)
}
