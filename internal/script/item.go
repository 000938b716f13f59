package script

import (
	"encoding/json"
	"fmt"
)

// Well-known keys in an item's details bag.
const (
	KeyStart              = "start"
	KeyEnd                = "end"
	KeyRef                = "ref"
	KeyText               = "text"
	KeyDoesNotAdvanceTime = "doesNotAdvanceTime"
)

// Item is a single entry in the script timeline.
type Item struct {
	ID       string   `json:"id" toml:"id"`
	Type     Type     `json:"type" toml:"type"`
	Title    string   `json:"title,omitempty" toml:"title,omitempty"`
	Duration *float64 `json:"duration" toml:"duration,omitempty"` // nil = inferred by layout
	Details  Details  `json:"details,omitempty" toml:"details,omitempty"`
	Tags     []string `json:"tags,omitempty" toml:"tags,omitempty"`
	Notes    []string `json:"notes,omitempty" toml:"notes,omitempty"`
}

// Details is the open, type-specific payload of an item. Layout writes
// start/end into it; callers never mutate a bag that belongs to a stored item.
type Details map[string]any

// Copy returns a shallow copy of the bag. A nil bag copies to an empty one.
func (d Details) Copy() Details {
	out := make(Details, len(d)+2)
	for k, v := range d {
		out[k] = v
	}
	return out
}

// With returns a copy of the bag with key set to value.
func (d Details) With(key string, value any) Details {
	out := d.Copy()
	out[key] = value
	return out
}

// Without returns a copy of the bag minus keys.
func (d Details) Without(keys ...string) Details {
	out := d.Copy()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// IsComputedKey reports whether key is written by layout and so never part
// of a stored record.
func IsComputedKey(key string) bool {
	return key == KeyStart || key == KeyEnd
}

// Number reads a numeric value. Values decoded from JSON, TOML or set from Go
// code arrive as different numeric kinds; all are accepted.
func (d Details) Number(key string) (float64, bool) {
	v, ok := d[key]
	if !ok || v == nil {
		return 0, false
	}
	return ToFloat(v)
}

// String reads a non-empty string value.
func (d Details) String(key string) (string, bool) {
	s, ok := d[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Bool reports whether key holds boolean true.
func (d Details) Bool(key string) bool {
	b, ok := d[key].(bool)
	return ok && b
}

// ToFloat converts any numeric kind to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Field is one optional member of a Patch. Only fields with Set=true are
// applied, which lets a patch clear Duration back to nil.
type Field[T any] struct {
	Value T
	Set   bool
}

// Set wraps v as a present patch field.
func Set[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Patch lists the fields CloneWith overrides. Details replaces the whole bag;
// merge with Details.With first.
type Patch struct {
	Type     Field[Type]
	Title    Field[string]
	Duration Field[*float64]
	Details  Field[Details]
	Tags     Field[[]string]
	Notes    Field[[]string]
}

// CloneWith returns a new item equal to it except for the fields present in
// p. The result never shares its details map or tag/note slices with it.
func (it Item) CloneWith(p Patch) Item {
	out := Item{
		ID:       it.ID,
		Type:     it.Type,
		Title:    it.Title,
		Duration: copyFloat(it.Duration),
		Details:  it.Details.Copy(),
		Tags:     copyStrings(it.Tags),
		Notes:    copyStrings(it.Notes),
	}
	if p.Type.Set {
		out.Type = p.Type.Value
	}
	if p.Title.Set {
		out.Title = p.Title.Value
	}
	if p.Duration.Set {
		out.Duration = copyFloat(p.Duration.Value)
	}
	if p.Details.Set {
		out.Details = p.Details.Value.Copy()
	}
	if p.Tags.Set {
		out.Tags = copyStrings(p.Tags.Value)
	}
	if p.Notes.Set {
		out.Notes = copyStrings(p.Notes.Value)
	}
	return out
}

// Start is the layout-assigned start time in seconds (0 before layout).
func (it Item) Start() float64 {
	v, _ := it.Details.Number(KeyStart)
	return v
}

// End is the layout-assigned end time. Only items whose duration was
// inferred carry one.
func (it Item) End() (float64, bool) {
	return it.Details.Number(KeyEnd)
}

// DurationOr returns the item's duration, or fallback when it has none.
func (it Item) DurationOr(fallback float64) float64 {
	if it.Duration == nil {
		return fallback
	}
	return *it.Duration
}

// DoesNotAdvanceTime reports whether the item is an instantaneous cue.
func (it Item) DoesNotAdvanceTime() bool {
	return it.Details.Bool(KeyDoesNotAdvanceTime)
}

// CanonicalRef returns the id of the canonical record the item points at.
func (it Item) CanonicalRef() (string, bool) {
	return it.Details.String(KeyRef)
}

// Label is the item's title, or a fallback built from its type.
func (it Item) Label() string {
	if it.Title != "" {
		return it.Title
	}
	return fmt.Sprintf("Untitled %s", SpecFor(it.Type).Label)
}

// Seconds returns a pointer to v, for building items with explicit durations.
func Seconds(v float64) *float64 {
	return &v
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
