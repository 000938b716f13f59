// Package aggregate derives per-container lookups (act or scene) from a
// laid-out script: how long each container runs, where it starts, and which
// characters and locations it references.
//
// Every aggregate is a single forward scan that opens an accumulator at each
// container marker and commits it under that marker's id when the next
// marker, or the end of the script, is reached. Items before the first
// marker belong to no container.
package aggregate

import (
	"errors"
	"fmt"

	"scriptline/internal/script"
)

// ErrMissingLocationRef is returned when a location item carries no ref.
// It means the data was corrupted upstream of derivation.
var ErrMissingLocationRef = errors.New("location item has no ref")

// Summary holds all four aggregates for one container type.
type Summary struct {
	Container  script.Type         `json:"container"`
	Order      []string            `json:"order"`
	Durations  map[string]float64  `json:"durations"`
	Starts     map[string]float64  `json:"starts"`
	Characters map[string][]string `json:"characters"`
	Locations  map[string][]string `json:"locations"`
}

// Summarize computes every aggregate of items for container type c.
func Summarize(items []script.Item, c script.Type) (Summary, error) {
	locs, err := Locations(items, c)
	if err != nil {
		return Summary{}, err
	}
	var order []string
	for _, it := range items {
		if it.Type == c {
			order = append(order, it.ID)
		}
	}
	return Summary{
		Container:  c,
		Order:      order,
		Durations:  Durations(items, c),
		Starts:     StartTimes(items, c),
		Characters: Characters(items, c),
		Locations:  locs,
	}, nil
}

// Durations maps each container id to the time that elapses inside it: the
// sum of the clock advance of the marker and of every item up to the next
// marker. Inferred durations and instantaneous cues contribute nothing, so a
// marker's own inferred span is never counted twice.
func Durations(items []script.Item, c script.Type) map[string]float64 {
	out, _ := fold(items, c,
		func(marker script.Item) float64 { return advance(marker) },
		func(acc float64, it script.Item) (float64, error) { return acc + advance(it), nil },
		func(acc float64) float64 { return acc },
	)
	return out
}

// StartTimes maps each container id to its laid-out start.
func StartTimes(items []script.Item, c script.Type) map[string]float64 {
	out, _ := fold(items, c,
		func(marker script.Item) float64 { return marker.Start() },
		func(acc float64, _ script.Item) (float64, error) { return acc, nil },
		func(acc float64) float64 { return acc },
	)
	return out
}

// Characters maps each container id to the distinct character refs of the
// dialogue inside it, in order of first appearance. Dialogue without a ref
// is skipped.
func Characters(items []script.Item, c script.Type) map[string][]string {
	out, _ := fold(items, c,
		func(script.Item) *refSet { return newRefSet() },
		func(acc *refSet, it script.Item) (*refSet, error) {
			if it.Type == script.TypeDialogue {
				if ref, ok := it.CanonicalRef(); ok {
					acc.add(ref)
				}
			}
			return acc, nil
		},
		(*refSet).snapshot,
	)
	return out
}

// Locations maps each container id to the distinct location refs inside it.
// A location item without a ref anywhere in items is an error.
func Locations(items []script.Item, c script.Type) (map[string][]string, error) {
	for _, it := range items {
		if it.Type == script.TypeLocation {
			if _, ok := it.CanonicalRef(); !ok {
				return nil, fmt.Errorf("aggregating %s locations: item %s: %w", c, it.ID, ErrMissingLocationRef)
			}
		}
	}
	return fold(items, c,
		func(script.Item) *refSet { return newRefSet() },
		func(acc *refSet, it script.Item) (*refSet, error) {
			if it.Type == script.TypeLocation {
				ref, _ := it.CanonicalRef()
				acc.add(ref)
			}
			return acc, nil
		},
		(*refSet).snapshot,
	)
}

// fold is the shared boundary scan. open starts an accumulator at a marker,
// step feeds it each following item, and commit turns it into the stored
// value. The last open accumulator is committed after the scan.
func fold[A, R any](
	items []script.Item,
	c script.Type,
	open func(marker script.Item) A,
	step func(acc A, it script.Item) (A, error),
	commit func(acc A) R,
) (map[string]R, error) {
	out := make(map[string]R)
	var (
		current string
		active  bool
		acc     A
	)
	for _, it := range items {
		if it.Type == c {
			if active {
				out[current] = commit(acc)
			}
			current, active, acc = it.ID, true, open(it)
			continue
		}
		if !active {
			continue
		}
		var err error
		if acc, err = step(acc, it); err != nil {
			return nil, err
		}
	}
	if active {
		out[current] = commit(acc)
	}
	return out, nil
}

// advance is how far an item pushed the layout clock. Layout stamps
// details.end only on items whose duration it inferred.
func advance(it script.Item) float64 {
	if it.DoesNotAdvanceTime() {
		return 0
	}
	if _, inferred := it.End(); inferred {
		return 0
	}
	return it.DurationOr(0)
}

type refSet struct {
	ids  []string
	seen map[string]bool
}

func newRefSet() *refSet {
	return &refSet{seen: make(map[string]bool)}
}

func (s *refSet) add(id string) {
	if s.seen[id] {
		return
	}
	s.seen[id] = true
	s.ids = append(s.ids, id)
}

func (s *refSet) snapshot() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}
