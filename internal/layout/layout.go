// Package layout places script items on an absolute timeline.
//
// Compute runs two passes over the ordered items. The first walks a clock
// from zero, stamping each item's start and advancing by its duration unless
// the item is an instantaneous cue. The second gives every item without a
// duration a span that runs to the start of the next item of the same type,
// or to the end of the script when there is none.
package layout

import (
	"strconv"

	"scriptline/internal/script"
)

// Result is a laid-out timeline.
type Result struct {
	Items         []script.Item `json:"items"`
	TotalDuration float64       `json:"total_duration"`
}

// Compute lays out the items named by order. Input records are never
// modified; every output item is a fresh clone carrying details.start, and
// items with an inferred duration also carry details.end. Ids in order with
// no record are skipped.
func Compute(order []string, items map[string]script.Item) Result {
	out := make([]script.Item, 0, len(order))

	// Pass 1: absolute placement on a running clock.
	now := 0.0
	for _, id := range order {
		it, ok := items[id]
		if !ok {
			continue
		}
		// Stale start/end from a stored record must not survive: end marks
		// an inferred duration.
		placed := it.CloneWith(script.Patch{
			Details: script.Set(it.Details.Without(script.KeyEnd).With(script.KeyStart, now)),
		})
		if !placed.DoesNotAdvanceTime() {
			now += placed.DurationOr(0)
		}
		out = append(out, placed)
	}
	total := now

	// Pass 2: infer missing durations. Scanning backwards, nextStart holds
	// the start of the nearest later item of each type.
	nextStart := make(map[script.Type]float64)
	for i := len(out) - 1; i >= 0; i-- {
		it := out[i]
		start := it.Start()
		if it.Duration == nil {
			end, ok := nextStart[it.Type]
			if !ok {
				end = total
			}
			out[i] = it.CloneWith(script.Patch{
				Duration: script.Set(script.Seconds(end - start)),
				Details:  script.Set(it.Details.With(script.KeyEnd, end)),
			})
		}
		nextStart[it.Type] = start
	}

	return Result{Items: out, TotalDuration: total}
}

// ByID indexes laid-out items by id.
func (r Result) ByID() map[string]script.Item {
	m := make(map[string]script.Item, len(r.Items))
	for _, it := range r.Items {
		m[it.ID] = it
	}
	return m
}

// DecorateSceneTitles prefixes each scene title with the number of the act
// it falls in ("Act 2, The Chase"). It is a display concern applied on top
// of a layout and never changes start or duration. Scenes before the first
// act are left alone.
func DecorateSceneTitles(items []script.Item) []script.Item {
	out := make([]script.Item, len(items))
	act := 0
	for i, it := range items {
		switch {
		case it.Type == script.TypeAct:
			act++
			out[i] = it
		case it.Type == script.TypeScene && act > 0:
			out[i] = it.CloneWith(script.Patch{
				Title: script.Set(sceneTitle(act, it.Label())),
			})
		default:
			out[i] = it
		}
	}
	return out
}

func sceneTitle(act int, title string) string {
	return "Act " + strconv.Itoa(act) + ", " + title
}
