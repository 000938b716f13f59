// Package viewmodel projects a laid-out script into display lanes for the
// horizontal timeline.
package viewmodel

import "scriptline/internal/script"

// Entry is one drawable span.
type Entry struct {
	ID       string      `json:"id"`
	Type     script.Type `json:"type"`
	Label    string      `json:"label"`
	Start    float64     `json:"start"`
	End      float64     `json:"end"`
	Duration float64     `json:"duration"`
	Instant  bool        `json:"instant,omitempty"`
}

// Timeline is the projected view: entries bucketed by section, each bucket
// in script order.
type Timeline struct {
	Sections      map[script.Section][]Entry `json:"sections"`
	TotalDuration float64                    `json:"total_duration"`
}

// Lane is a non-empty section in display order.
type Lane struct {
	Section script.Section
	Entries []Entry
}

// Project groups laid-out items by their type's section. Structural markers
// get their end recomputed as the start of the next marker of the same type,
// or total when there is none, so an explicit marker duration never shortens
// the drawn span. Everything else ends at start + duration. Items of unknown
// type land in the Uncategorized section.
func Project(items []script.Item, total float64) Timeline {
	markerEnd := make(map[string]float64)
	nextStart := make(map[script.Type]float64)
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if !script.SpecFor(it.Type).Structural {
			continue
		}
		end, ok := nextStart[it.Type]
		if !ok {
			end = total
		}
		markerEnd[it.ID] = end
		nextStart[it.Type] = it.Start()
	}

	tl := Timeline{
		Sections:      make(map[script.Section][]Entry),
		TotalDuration: total,
	}
	for _, it := range items {
		spec := script.SpecFor(it.Type)
		e := Entry{
			ID:       it.ID,
			Type:     it.Type,
			Label:    it.Label(),
			Start:    it.Start(),
			Duration: it.DurationOr(0),
			Instant:  it.DoesNotAdvanceTime(),
		}
		if end, ok := markerEnd[it.ID]; ok {
			e.End = end
			e.Duration = end - e.Start
		} else {
			e.End = e.Start + e.Duration
		}
		tl.Sections[spec.Section] = append(tl.Sections[spec.Section], e)
	}
	return tl
}

// Lanes returns the non-empty sections in display order.
func (t Timeline) Lanes() []Lane {
	var out []Lane
	for _, s := range script.SectionOrder {
		if entries := t.Sections[s]; len(entries) > 0 {
			out = append(out, Lane{Section: s, Entries: entries})
		}
	}
	return out
}

// Len is the number of entries across all sections.
func (t Timeline) Len() int {
	n := 0
	for _, entries := range t.Sections {
		n += len(entries)
	}
	return n
}
