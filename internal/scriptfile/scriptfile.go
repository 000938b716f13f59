// Package scriptfile reads and writes a whole script (items, their order and
// the canonical catalogs) as a single TOML document.
package scriptfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
	"scriptline/internal/catalog"
	"scriptline/internal/script"
	"scriptline/internal/sequence"
)

// ErrBadItem is returned for an item the document cannot represent.
var ErrBadItem = errors.New("invalid item")

// Document is the on-disk shape of a script.
type Document struct {
	Sequence   []string           `toml:"sequence"`
	Items      []script.Item      `toml:"items"`
	Characters []script.Character `toml:"characters,omitempty"`
	Locations  []script.Location  `toml:"locations,omitempty"`
	Tags       []script.Tag       `toml:"tags,omitempty"`
	Notes      []script.Note      `toml:"notes,omitempty"`
}

// rawItem is what TOML decodes an item into. Durations may be written as
// integers or floats, so they are normalised after decoding.
type rawItem struct {
	ID       string         `toml:"id"`
	Type     string         `toml:"type"`
	Title    string         `toml:"title"`
	Duration any            `toml:"duration"`
	Details  map[string]any `toml:"details"`
	Tags     []string       `toml:"tags"`
	Notes    []string       `toml:"notes"`
}

type rawDocument struct {
	Sequence   []string           `toml:"sequence"`
	Items      []rawItem          `toml:"items"`
	Characters []script.Character `toml:"characters"`
	Locations  []script.Location  `toml:"locations"`
	Tags       []script.Tag       `toml:"tags"`
	Notes      []script.Note      `toml:"notes"`
}

// Decode parses a TOML script. Items without an id get a fresh UUID, and
// type defaults are applied.
func Decode(data []byte) (*Document, error) {
	var raw rawDocument
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}

	doc := &Document{
		Sequence:   raw.Sequence,
		Items:      make([]script.Item, 0, len(raw.Items)),
		Characters: raw.Characters,
		Locations:  raw.Locations,
		Tags:       raw.Tags,
		Notes:      raw.Notes,
	}
	for i, r := range raw.Items {
		it, err := r.item()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		doc.Items = append(doc.Items, it)
	}
	return doc, nil
}

func (r rawItem) item() (script.Item, error) {
	if r.Type == "" {
		return script.Item{}, fmt.Errorf("%w: missing type", ErrBadItem)
	}
	it := script.Item{
		ID:      r.ID,
		Type:    script.Type(r.Type),
		Title:   r.Title,
		Details: script.Details(r.Details),
		Tags:    r.Tags,
		Notes:   r.Notes,
	}
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	for k := range r.Details {
		if script.IsComputedKey(k) {
			return script.Item{}, fmt.Errorf("%w: %s: details.%s is computed by layout", ErrBadItem, it.ID, k)
		}
	}
	if r.Duration != nil {
		d, ok := script.ToFloat(r.Duration)
		if !ok {
			return script.Item{}, fmt.Errorf("%w: %s: duration must be a number, got %T", ErrBadItem, it.ID, r.Duration)
		}
		if d < 0 {
			return script.Item{}, fmt.Errorf("%w: %s: negative duration", ErrBadItem, it.ID)
		}
		it.Duration = script.Seconds(d)
	}
	return script.ApplyDefaults(it), nil
}

// Encode renders doc as TOML.
func Encode(doc *Document) ([]byte, error) {
	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling script: %w", err)
	}
	return data, nil
}

// Read loads the script at path.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Write saves doc to path atomically (write temp + rename), creating parent
// directories as needed.
func Write(path string, doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp script: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming script: %w", err)
	}
	return nil
}

// Order is the document's effective sequence: listed ids that name an item,
// first occurrence only, followed by unlisted items in document order. A
// document with no sequence is therefore laid out as written.
func (d *Document) Order() []string {
	known := make(map[string]bool, len(d.Items))
	for _, it := range d.Items {
		known[it.ID] = true
	}
	order := make([]string, 0, len(d.Items))
	seen := make(map[string]bool, len(d.Items))
	for _, id := range d.Sequence {
		if known[id] && !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	for _, it := range d.Items {
		if !seen[it.ID] {
			seen[it.ID] = true
			order = append(order, it.ID)
		}
	}
	return order
}

// Snapshot turns the document into engine input without going through a
// store. version keys the engine's memo; callers bump it per reload.
func (d *Document) Snapshot(version uint64) sequence.Snapshot {
	items := make(map[string]script.Item, len(d.Items))
	for _, it := range d.Items {
		if _, dup := items[it.ID]; !dup {
			items[it.ID] = it
		}
	}
	return sequence.Snapshot{Version: version, Order: d.Order(), Items: items}
}

// Import writes the document's catalogs and then its items, in order, into
// an existing store. Catalogs go first so location items resolve.
func Import(ctx context.Context, d *Document, store *sequence.Store, cats *catalog.Set) (int, error) {
	for _, c := range d.Characters {
		if _, err := cats.Characters.Add(ctx, c); err != nil {
			return 0, err
		}
	}
	for _, l := range d.Locations {
		if _, err := cats.Locations.Add(ctx, l); err != nil {
			return 0, err
		}
	}
	for _, t := range d.Tags {
		if _, err := cats.Tags.Add(ctx, t); err != nil {
			return 0, err
		}
	}
	for _, n := range d.Notes {
		if _, err := cats.Notes.Add(ctx, n); err != nil {
			return 0, err
		}
	}

	snap := d.Snapshot(0)
	n := 0
	for _, id := range snap.Order {
		if _, err := store.Create(ctx, snap.Items[id], sequence.Append); err != nil {
			return n, fmt.Errorf("importing item %s: %w", id, err)
		}
		n++
	}
	return n, nil
}

// Export captures the store and catalogs as a document.
func Export(store *sequence.Store, cats *catalog.Set) *Document {
	snap := store.Snapshot()
	doc := &Document{
		Sequence:   snap.Order,
		Items:      make([]script.Item, 0, len(snap.Order)),
		Characters: cats.Characters.All(),
		Locations:  cats.Locations.All(),
		Tags:       cats.Tags.All(),
		Notes:      cats.Notes.All(),
	}
	for _, id := range snap.Order {
		doc.Items = append(doc.Items, snap.Items[id])
	}
	return doc
}
