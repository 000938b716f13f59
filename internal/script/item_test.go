package script

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCloneWith_OnlyPatchedFieldsChange(t *testing.T) {
	orig := Item{
		ID:       "d1",
		Type:     TypeDialogue,
		Title:    "Hello",
		Duration: Seconds(3),
		Details:  Details{KeyRef: "alice", KeyText: "Hi."},
		Tags:     []string{"t1"},
	}

	got := orig.CloneWith(Patch{Title: Set("Goodbye")})
	if got.Title != "Goodbye" {
		t.Errorf("title = %q, want Goodbye", got.Title)
	}
	if got.ID != "d1" || got.Type != TypeDialogue || *got.Duration != 3 {
		t.Errorf("unpatched fields changed: %+v", got)
	}
	if orig.Title != "Hello" {
		t.Errorf("original mutated: %q", orig.Title)
	}
}

func TestCloneWith_DoesNotShareState(t *testing.T) {
	orig := Item{ID: "a", Duration: Seconds(2), Details: Details{"k": "v"}, Tags: []string{"x"}}
	clone := orig.CloneWith(Patch{})

	clone.Details["k"] = "changed"
	clone.Tags[0] = "y"
	*clone.Duration = 99

	if orig.Details["k"] != "v" {
		t.Error("details map shared with clone")
	}
	if orig.Tags[0] != "x" {
		t.Error("tags slice shared with clone")
	}
	if *orig.Duration != 2 {
		t.Error("duration pointer shared with clone")
	}
}

func TestCloneWith_DetailsReplacesWholeBag(t *testing.T) {
	orig := Item{ID: "a", Details: Details{"keep": 1, "drop": 2}}
	got := orig.CloneWith(Patch{Details: Set(Details{"keep": 1})})
	if _, ok := got.Details["drop"]; ok {
		t.Error("details patch should replace the bag, not merge")
	}

	merged := orig.CloneWith(Patch{Details: Set(orig.Details.With("new", 3))})
	if len(merged.Details) != 3 {
		t.Errorf("merged details = %v, want 3 keys", merged.Details)
	}
}

func TestCloneWith_ClearDuration(t *testing.T) {
	orig := Item{ID: "a", Duration: Seconds(4)}
	got := orig.CloneWith(Patch{Duration: Set[*float64](nil)})
	if got.Duration != nil {
		t.Errorf("duration = %v, want nil", *got.Duration)
	}
}

func TestDetails_NumberKinds(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
		ok    bool
	}{
		{"float64", 1.5, 1.5, true},
		{"int", 3, 3, true},
		{"int64", int64(7), 7, true},
		{"json number", json.Number("2.25"), 2.25, true},
		{"string", "5", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Details{"n": tt.value}
			got, ok := d.Number("n")
			if ok != tt.ok || got != tt.want {
				t.Errorf("Number = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestItem_Label(t *testing.T) {
	if got := (Item{Type: TypeScene, Title: "Opening"}).Label(); got != "Opening" {
		t.Errorf("Label = %q", got)
	}
	if got := (Item{Type: TypeScene}).Label(); got != "Untitled Scene" {
		t.Errorf("fallback Label = %q", got)
	}
}

func TestApplyDefaults(t *testing.T) {
	cam := ApplyDefaults(Item{ID: "c", Type: TypeCamera})
	if !cam.DoesNotAdvanceTime() {
		t.Error("camera should default to doesNotAdvanceTime")
	}

	explicit := ApplyDefaults(Item{ID: "c", Type: TypeCamera, Details: Details{KeyDoesNotAdvanceTime: false}})
	if explicit.DoesNotAdvanceTime() {
		t.Error("explicit false must survive defaults")
	}

	dlg := ApplyDefaults(Item{ID: "d", Type: TypeDialogue})
	if dlg.DoesNotAdvanceTime() {
		t.Error("dialogue advances time")
	}
}

func TestSpecFor_UnknownType(t *testing.T) {
	s := SpecFor(Type("hologram"))
	if s.Section != SectionUncategorized {
		t.Errorf("section = %q, want Uncategorized", s.Section)
	}
	if Type("hologram").Known() {
		t.Error("hologram should not be a known type")
	}
}

func TestMissingFields(t *testing.T) {
	got := MissingFields(Item{Type: TypeDialogue, Details: Details{KeyRef: "alice"}})
	if len(got) != 1 || got[0] != KeyText {
		t.Errorf("MissingFields = %v, want [text]", got)
	}
}

func TestPatchFor(t *testing.T) {
	cur := Item{ID: "a", Type: TypeScene, Details: Details{"x": 1}}

	p, err := PatchFor(cur, PathDetails, "y", "two")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	got := cur.CloneWith(p)
	if got.Details["x"] != 1 || got.Details["y"] != "two" {
		t.Errorf("details patch should merge into current bag, got %v", got.Details)
	}

	p, err = PatchFor(cur, PathDuration, "", 12.0)
	if err != nil {
		t.Fatalf("duration: %v", err)
	}
	if d := cur.CloneWith(p).Duration; d == nil || *d != 12 {
		t.Errorf("duration patch = %v", d)
	}

	if _, err := PatchFor(cur, PathDuration, "", -1.0); !errors.Is(err, ErrBadValue) {
		t.Errorf("negative duration err = %v, want ErrBadValue", err)
	}
	if _, err := PatchFor(cur, "colour", "", "red"); !errors.Is(err, ErrUnknownPath) {
		t.Errorf("unknown path err = %v, want ErrUnknownPath", err)
	}
	if _, err := PatchFor(cur, PathDetails, "", "v"); !errors.Is(err, ErrBadValue) {
		t.Errorf("details without key err = %v, want ErrBadValue", err)
	}

	p, err = PatchFor(cur, PathTags, "", []any{"t1", "t2"})
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	if tags := cur.CloneWith(p).Tags; len(tags) != 2 {
		t.Errorf("tags = %v", tags)
	}
}

func TestNote_Label(t *testing.T) {
	n := Note{Body: "first line\nsecond line"}
	if got := n.Label(); got != "first line" {
		t.Errorf("Label = %q", got)
	}

	long := Note{Body: strings.Repeat("é", 39) + "日本語"}
	got := long.Label()
	if !utf8.ValidString(got) {
		t.Fatalf("Label split a character: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("long label not shortened: %q", got)
	}
}

func TestPatchFor_RejectsComputedKeys(t *testing.T) {
	cur := Item{ID: "a", Type: TypeDialogue}
	for _, key := range []string{KeyStart, KeyEnd} {
		if _, err := PatchFor(cur, PathDetails, key, 99.0); !errors.Is(err, ErrBadValue) {
			t.Errorf("details.%s err = %v, want ErrBadValue", key, err)
		}
	}
}

func TestDetails_Without(t *testing.T) {
	d := Details{KeyEnd: 4.0, KeyText: "hi"}
	out := d.Without(KeyEnd)
	if _, ok := out[KeyEnd]; ok {
		t.Error("end survived")
	}
	if _, ok := d[KeyEnd]; !ok {
		t.Error("Without modified the receiver")
	}
	if out[KeyText] != "hi" {
		t.Errorf("other keys lost: %v", out)
	}
}
