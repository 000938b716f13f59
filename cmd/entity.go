package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"scriptline/internal/catalog"
	"scriptline/internal/render"
	"scriptline/internal/script"
)

// entityFlags holds the add flags of one catalog command group.
type entityFlags struct {
	id          string
	description string
	color       string
	json        bool
}

// entityCommand builds "<name> add|ls|rm" over one catalog. build turns the
// positional label and the flags into a record.
func entityCommand[T catalog.Entity[T]](
	name, short string,
	pick func(*catalog.Set) *catalog.Catalog[T],
	build func(label string, f *entityFlags) T,
	detail func(T) string,
) *cobra.Command {
	f := &entityFlags{}
	group := &cobra.Command{
		Use:   name,
		Short: short,
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a " + name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			v := build(args[0], f)
			if f.id != "" {
				v = v.WithEntityID(f.id)
			}
			saved, err := pick(ws.cats).Add(cmd.Context(), v)
			if err != nil {
				return err
			}
			logf(name, "added %s", saved.EntityID())
			if f.json {
				return printJSON(cmd.OutOrStdout(), saved)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s (%s)\n", name, saved.Label(), render.ShortID(saved.EntityID()))
			return nil
		},
	}
	add.Flags().StringVar(&f.id, "id", "", "Explicit id (default: generated)")
	add.Flags().StringVar(&f.description, "description", "", "Description")
	add.Flags().StringVar(&f.color, "color", "", "Display color")
	add.Flags().BoolVar(&f.json, "json", false, "Output as JSON")

	var listJSON bool
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List " + name + " records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			all := pick(ws.cats).All()
			if listJSON {
				return printJSON(cmd.OutOrStdout(), all)
			}
			if len(all) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "(no %s records)\n", name)
				return nil
			}
			for _, v := range all {
				line := fmt.Sprintf("  %s  %s", render.ShortID(v.EntityID()), v.Label())
				if d := detail(v); d != "" {
					line += "  " + render.Truncate(d, 50)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	ls.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")

	rm := &cobra.Command{
		Use:   "rm <id-or-name>",
		Short: "Remove a " + name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			c := pick(ws.cats)
			v, ok := c.Find(args[0])
			if !ok {
				return fmt.Errorf("%s not found (or name is ambiguous): %s", name, args[0])
			}
			if err := c.Remove(cmd.Context(), v.EntityID()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", name, v.Label())
			return nil
		},
	}

	group.AddCommand(add, ls, rm)
	return group
}

func init() {
	rootCmd.AddCommand(
		entityCommand("character", "Manage the characters dialogue refers to",
			func(s *catalog.Set) *catalog.Catalog[script.Character] { return s.Characters },
			func(label string, f *entityFlags) script.Character {
				return script.Character{Name: label, Description: f.description}
			},
			func(c script.Character) string { return c.Description },
		),
		entityCommand("location", "Manage the locations location items refer to",
			func(s *catalog.Set) *catalog.Catalog[script.Location] { return s.Locations },
			func(label string, f *entityFlags) script.Location {
				return script.Location{Name: label, Description: f.description}
			},
			func(l script.Location) string { return l.Description },
		),
		entityCommand("tag", "Manage tags",
			func(s *catalog.Set) *catalog.Catalog[script.Tag] { return s.Tags },
			func(label string, f *entityFlags) script.Tag {
				return script.Tag{Name: label, Color: f.color}
			},
			func(t script.Tag) string { return t.Color },
		),
		noteCmd(),
	)
}

var noteShowWidth int

func noteCmd() *cobra.Command {
	group := entityCommand("note", "Manage notes",
		func(s *catalog.Set) *catalog.Catalog[script.Note] { return s.Notes },
		func(body string, f *entityFlags) script.Note {
			return script.Note{Body: body}
		},
		func(script.Note) string { return "" },
	)
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note body rendered as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			n, ok := ws.cats.Notes.Find(args[0])
			if !ok {
				return fmt.Errorf("note not found: %s", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Markdown(n.Body, noteShowWidth))
			return nil
		},
	}
	show.Flags().IntVar(&noteShowWidth, "width", 80, "Wrap width")
	group.AddCommand(show)
	return group
}
