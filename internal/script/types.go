package script

import "sort"

// Type tags an item and selects its behaviour from the type table.
type Type string

const (
	TypeAct        Type = "act"
	TypeScene      Type = "scene"
	TypeBeat       Type = "beat"
	TypeDialogue   Type = "dialogue"
	TypeAction     Type = "action"
	TypeLocation   Type = "location"
	TypePause      Type = "pause"
	TypeTransition Type = "transition"
	TypeCamera     Type = "camera"
	TypeLighting   Type = "lighting"
	TypeSound      Type = "sound"
	TypeSoundFX    Type = "soundfx"
	TypeMusic      Type = "music"
)

// Section is a named display bucket of the timeline view.
type Section string

const (
	SectionMarkers       Section = "Structural Markers"
	SectionScript        Section = "Script Items"
	SectionCues          Section = "Technical Cues"
	SectionMeta          Section = "Meta/Transition"
	SectionUncategorized Section = "Uncategorized"
)

// SectionOrder is the display order of timeline lanes.
var SectionOrder = []Section{
	SectionMarkers,
	SectionScript,
	SectionCues,
	SectionMeta,
	SectionUncategorized,
}

// FieldKind describes how a create form collects one details key.
type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldRef    FieldKind = "ref"
	FieldChoice FieldKind = "choice"
)

// FieldSpec is one entry of a type's "create new" form schema.
type FieldSpec struct {
	Key      string    `json:"key"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	RefTo    string    `json:"ref_to,omitempty"` // catalog collection for FieldRef
	Choices  []string  `json:"choices,omitempty"`
}

// TypeSpec is the behaviour attached to an item type.
type TypeSpec struct {
	Label      string      `json:"label"`
	Section    Section     `json:"section"`
	Structural bool        `json:"structural"` // duration normally inferred
	Instant    bool        `json:"instant"`    // created with doesNotAdvanceTime
	Fields     []FieldSpec `json:"fields,omitempty"`
}

var (
	refCharacter = FieldSpec{Key: KeyRef, Kind: FieldRef, Required: true, RefTo: "characters"}
	refLocation  = FieldSpec{Key: KeyRef, Kind: FieldRef, Required: true, RefTo: "locations"}
	cueText      = FieldSpec{Key: KeyText, Kind: FieldText}
)

var specs = map[Type]TypeSpec{
	TypeAct:      {Label: "Act", Section: SectionMarkers, Structural: true},
	TypeScene:    {Label: "Scene", Section: SectionMarkers, Structural: true},
	TypeBeat:     {Label: "Beat", Section: SectionMarkers, Structural: true, Instant: true},
	TypeDialogue: {Label: "Dialogue", Section: SectionScript, Fields: []FieldSpec{refCharacter, {Key: KeyText, Kind: FieldText, Required: true}}},
	TypeAction:   {Label: "Action", Section: SectionScript, Instant: true, Fields: []FieldSpec{cueText}},
	TypeLocation: {Label: "Location", Section: SectionScript, Fields: []FieldSpec{refLocation}},
	TypePause:    {Label: "Pause", Section: SectionScript, Instant: true},
	TypeTransition: {Label: "Transition", Section: SectionMeta, Fields: []FieldSpec{
		{Key: "style", Kind: FieldChoice, Choices: []string{"cut", "fade", "dissolve", "wipe", "smash"}},
	}},
	TypeCamera:   {Label: "Camera", Section: SectionCues, Instant: true, Fields: []FieldSpec{{Key: "shot", Kind: FieldText}}},
	TypeLighting: {Label: "Lighting", Section: SectionCues, Instant: true, Fields: []FieldSpec{cueText}},
	TypeSound:    {Label: "Sound", Section: SectionCues, Instant: true, Fields: []FieldSpec{cueText}},
	TypeSoundFX:  {Label: "Sound FX", Section: SectionCues, Instant: true, Fields: []FieldSpec{cueText}},
	TypeMusic:    {Label: "Music", Section: SectionCues, Instant: true, Fields: []FieldSpec{cueText}},
}

// SpecFor returns the behaviour of t. Unknown types get a generic spec in
// the Uncategorized section rather than being rejected.
func SpecFor(t Type) TypeSpec {
	if s, ok := specs[t]; ok {
		return s
	}
	return TypeSpec{Label: string(t), Section: SectionUncategorized}
}

// Known reports whether t is one of the built-in types.
func (t Type) Known() bool {
	_, ok := specs[t]
	return ok
}

// IsContainer reports whether t groups other items for aggregation.
func (t Type) IsContainer() bool {
	return t == TypeAct || t == TypeScene
}

// Types lists the built-in types in name order.
func Types() []Type {
	out := make([]Type, 0, len(specs))
	for t := range specs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ApplyDefaults fills the type's default fields on a new item without
// touching keys the caller already set.
func ApplyDefaults(it Item) Item {
	spec := SpecFor(it.Type)
	if !spec.Instant {
		return it
	}
	if _, set := it.Details[KeyDoesNotAdvanceTime]; set {
		return it
	}
	return it.CloneWith(Patch{Details: Set(it.Details.With(KeyDoesNotAdvanceTime, true))})
}

// MissingFields returns the required form fields absent from it.
func MissingFields(it Item) []string {
	var missing []string
	for _, f := range SpecFor(it.Type).Fields {
		if !f.Required {
			continue
		}
		if v, ok := it.Details[f.Key]; !ok || v == nil || v == "" {
			missing = append(missing, f.Key)
		}
	}
	return missing
}
