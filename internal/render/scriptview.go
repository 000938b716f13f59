package render

import (
	"fmt"
	"strings"

	"scriptline/internal/script"
)

// Names maps canonical ids to display names for dialogue speakers and
// location items. Missing ids fall back to the raw ref.
type Names struct {
	Characters map[string]string
	Locations  map[string]string
}

func nameOf(m map[string]string, id string) string {
	if name, ok := m[id]; ok && name != "" {
		return name
	}
	return id
}

// ScriptOptions tunes ScriptView.
type ScriptOptions struct {
	Names   Names
	ShowIDs bool
	Width   int // 0 disables truncation
}

// ScriptView renders laid-out items as a linear script, one row per item:
// start timecode, duration, type badge and an indented body. Acts and
// scenes open a heading.
func ScriptView(items []script.Item, opts ScriptOptions) string {
	var b strings.Builder
	for i, it := range items {
		if it.Type == script.TypeAct && i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(scriptRow(it, opts))
		b.WriteString("\n")
	}
	return b.String()
}

func scriptRow(it script.Item, opts ScriptOptions) string {
	prefix := styleTime.Render(pad(Timecode(it.Start()), 8)) +
		styleTime.Render(pad(Duration(it.DurationOr(0)), 8))
	if opts.ShowIDs {
		prefix += styleID.Render(pad(ShortID(it.ID), 10))
	}
	badge := badgeStyle(it.Type).Render(pad(strings.ToUpper(string(it.Type)), 11))

	var body string
	switch it.Type {
	case script.TypeAct:
		body = styleTitleAct.Render(it.Label())
	case script.TypeScene:
		body = "  " + styleTitleScene.Render(it.Label())
	default:
		body = "    " + styleText.Render(itemBody(it, opts.Names))
	}

	row := prefix + badge + body
	if opts.Width > 0 {
		row = Truncate(row, opts.Width)
	}
	return row
}

// itemBody is the readable content of a non-structural item.
func itemBody(it script.Item, names Names) string {
	text, _ := it.Details.String(script.KeyText)
	ref, hasRef := it.CanonicalRef()

	switch it.Type {
	case script.TypeDialogue:
		speaker := "?"
		if hasRef {
			speaker = strings.ToUpper(nameOf(names.Characters, ref))
		}
		if text == "" {
			text = it.Title
		}
		return fmt.Sprintf("%s: %s", speaker, styleQuote.Render(text))
	case script.TypeLocation:
		if hasRef {
			return "@ " + nameOf(names.Locations, ref)
		}
		return "@ " + it.Label()
	case script.TypeTransition:
		if style, ok := it.Details.String("style"); ok {
			return strings.ToUpper(style) + " TO:"
		}
	}
	if it.Title != "" && text != "" {
		return it.Title + " (" + text + ")"
	}
	if text != "" {
		return text
	}
	return it.Label()
}
