package script

import xansi "github.com/charmbracelet/x/ansi"

// HasCanonicalRef is implemented by anything that points at a shared,
// deduplicated record through a ref.
type HasCanonicalRef interface {
	CanonicalRef() (string, bool)
}

// Labeled is anything with a display label.
type Labeled interface {
	Label() string
}

var (
	_ HasCanonicalRef = Item{}
	_ Labeled         = Item{}
)

// Character is a speaking role referenced by dialogue items.
type Character struct {
	ID          string `json:"id" toml:"id"`
	Name        string `json:"name" toml:"name"`
	Description string `json:"description,omitempty" toml:"description,omitempty"`
}

func (c Character) EntityID() string                 { return c.ID }
func (c Character) WithEntityID(id string) Character { c.ID = id; return c }
func (c Character) Label() string                    { return c.Name }

// Location is a canonical place referenced by location items.
type Location struct {
	ID          string `json:"id" toml:"id"`
	Name        string `json:"name" toml:"name"`
	Description string `json:"description,omitempty" toml:"description,omitempty"`
}

func (l Location) EntityID() string                { return l.ID }
func (l Location) WithEntityID(id string) Location { l.ID = id; return l }
func (l Location) Label() string                   { return l.Name }

// Tag labels items across the script.
type Tag struct {
	ID    string `json:"id" toml:"id"`
	Name  string `json:"name" toml:"name"`
	Color string `json:"color,omitempty" toml:"color,omitempty"`
}

func (t Tag) EntityID() string           { return t.ID }
func (t Tag) WithEntityID(id string) Tag { t.ID = id; return t }
func (t Tag) Label() string              { return t.Name }

// Note is a free-form annotation attached to items.
type Note struct {
	ID   string `json:"id" toml:"id"`
	Body string `json:"body" toml:"body"`
}

func (n Note) EntityID() string            { return n.ID }
func (n Note) WithEntityID(id string) Note { n.ID = id; return n }

// Label is the first line of the note body, cut to 40 display cells.
func (n Note) Label() string {
	line := n.Body
	for i, r := range line {
		if r == '\n' {
			line = line[:i]
			break
		}
	}
	if xansi.StringWidth(line) > 40 {
		line = xansi.Cut(line, 0, 40) + "..."
	}
	return line
}
