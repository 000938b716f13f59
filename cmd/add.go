package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"scriptline/internal/catalog"
	"scriptline/internal/render"
	"scriptline/internal/script"
)

var (
	addDuration float64
	addAt       int
	addRef      string
	addText     string
	addDetails  []string
	addTags     []string
	addNotes    []string
	addID       string
	addJSON     bool
)

var addCmd = &cobra.Command{
	Use:   "add <type> [title...]",
	Short: "Create a timeline item",
	Long: `Create a timeline item and insert it into the sequence.

Types: ` + typeList() + `.
Unknown types are accepted and shown as Uncategorized.

--ref takes a character (dialogue) or location (location) by id or name.
Location items must reference an existing location.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ws, err := openWorkspace(ctx)
		if err != nil {
			return err
		}
		defer ws.Close()

		it := script.Item{
			ID:    addID,
			Type:  script.Type(strings.ToLower(args[0])),
			Title: strings.Join(args[1:], " "),
		}
		if !it.Type.Known() {
			fmt.Fprintf(os.Stderr, "warning: unknown type %q (shown as Uncategorized)\n", it.Type)
		}
		if cmd.Flags().Changed("duration") {
			if addDuration < 0 {
				return fmt.Errorf("--duration must not be negative")
			}
			it.Duration = script.Seconds(addDuration)
		}

		details := script.Details{}
		for _, kv := range addDetails {
			k, v, ok := parseDetail(kv)
			if !ok {
				return fmt.Errorf("--set expects key=value, got %q", kv)
			}
			details[k] = v
		}
		if addText != "" {
			details[script.KeyText] = addText
		}
		if addRef != "" {
			details[script.KeyRef] = resolveRef(ws.cats, it.Type, addRef)
		}
		if len(details) > 0 {
			it.Details = details
		}

		for _, t := range addTags {
			tag, ok := ws.cats.Tags.Find(t)
			if !ok {
				return fmt.Errorf("tag not found: %s", t)
			}
			it.Tags = append(it.Tags, tag.ID)
		}
		for _, n := range addNotes {
			if !ws.cats.Notes.Has(n) {
				return fmt.Errorf("note not found: %s", n)
			}
			it.Notes = append(it.Notes, n)
		}

		if missing := script.MissingFields(it); len(missing) > 0 {
			return fmt.Errorf("%s needs %s", it.Type, strings.Join(missing, ", "))
		}

		created, err := ws.store.Create(ctx, it, addAt)
		if err != nil {
			return err
		}
		logf("add", "created %s at position %d of %d", created.ID, positionOf(ws.store.Order(), created.ID), ws.store.Len())

		if addJSON {
			return printJSON(cmd.OutOrStdout(), created)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s %s\n", render.ShortID(created.ID), created.Type, created.Label())
		return nil
	},
}

func init() {
	addCmd.Flags().Float64VarP(&addDuration, "duration", "d", 0, "Duration in seconds (omit to infer)")
	addCmd.Flags().IntVar(&addAt, "at", -1, "Insert at this position (default: append)")
	addCmd.Flags().StringVar(&addRef, "ref", "", "Character or location id or name")
	addCmd.Flags().StringVar(&addText, "text", "", "Dialogue line or cue text")
	addCmd.Flags().StringArrayVar(&addDetails, "set", nil, "Extra detail as key=value (repeatable)")
	addCmd.Flags().StringArrayVar(&addTags, "tag", nil, "Tag id or name (repeatable)")
	addCmd.Flags().StringArrayVar(&addNotes, "note", nil, "Note id (repeatable)")
	addCmd.Flags().StringVar(&addID, "id", "", "Explicit item id (default: random UUID)")
	addCmd.Flags().BoolVar(&addJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(addCmd)
}

// resolveRef maps a name to a canonical id for the catalog the type points
// at. Unresolved references are kept verbatim so the store's own checks
// report them.
func resolveRef(cats *catalog.Set, t script.Type, ref string) string {
	switch t {
	case script.TypeDialogue:
		if c, ok := cats.Characters.Find(ref); ok {
			return c.ID
		}
	case script.TypeLocation:
		if l, ok := cats.Locations.Find(ref); ok {
			return l.ID
		}
	}
	return ref
}

func positionOf(order []string, id string) int {
	for i, o := range order {
		if o == id {
			return i
		}
	}
	return -1
}

func typeList() string {
	types := script.Types()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return strings.Join(out, ", ")
}
