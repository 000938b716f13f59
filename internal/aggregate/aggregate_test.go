package aggregate

import (
	"errors"
	"reflect"
	"testing"

	"scriptline/internal/layout"
	"scriptline/internal/script"
)

// laidOut builds items in order and runs them through layout.
func laidOut(t *testing.T, items ...script.Item) []script.Item {
	t.Helper()
	order := make([]string, len(items))
	byID := make(map[string]script.Item, len(items))
	for i, it := range items {
		order[i] = it.ID
		byID[it.ID] = script.ApplyDefaults(it)
	}
	return layout.Compute(order, byID).Items
}

func marker(id string, typ script.Type) script.Item {
	return script.Item{ID: id, Type: typ}
}

func line(id string, dur float64, character string) script.Item {
	it := script.Item{ID: id, Type: script.TypeDialogue, Duration: script.Seconds(dur)}
	if character != "" {
		it.Details = script.Details{script.KeyRef: character}
	}
	return it
}

func place(id, location string) script.Item {
	return script.Item{ID: id, Type: script.TypeLocation, Details: script.Details{script.KeyRef: location}}
}

func cue(id string, typ script.Type, dur float64) script.Item {
	return script.Item{ID: id, Type: typ, Duration: script.Seconds(dur)}
}

func scenario(t *testing.T) []script.Item {
	return laidOut(t,
		marker("act1", script.TypeAct),
		marker("scene1", script.TypeScene),
		line("dialogue1", 3, "alice"),
		line("dialogue2", 2, "bob"),
		marker("scene2", script.TypeScene),
		line("dialogue3", 4, "alice"),
	)
}

func TestDurations_Scenario(t *testing.T) {
	items := scenario(t)

	scenes := Durations(items, script.TypeScene)
	want := map[string]float64{"scene1": 5, "scene2": 4}
	if !reflect.DeepEqual(scenes, want) {
		t.Errorf("scene durations = %v, want %v", scenes, want)
	}

	acts := Durations(items, script.TypeAct)
	if !reflect.DeepEqual(acts, map[string]float64{"act1": 9}) {
		t.Errorf("act durations = %v", acts)
	}
}

func TestDurations_IgnoresCuesAndInferredSpans(t *testing.T) {
	items := laidOut(t,
		marker("s1", script.TypeScene),
		line("d1", 2, ""),
		cue("cam", script.TypeCamera, 30),
		marker("beat", script.TypeBeat),
		line("d2", 1, ""),
		marker("s2", script.TypeScene),
		line("d3", 6, ""),
	)
	got := Durations(items, script.TypeScene)
	want := map[string]float64{"s1": 3, "s2": 6}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("durations = %v, want %v", got, want)
	}
}

func TestDurations_StaleEndDoesNotHideExplicitDuration(t *testing.T) {
	d1 := line("d1", 3, "c1")
	d1.Details[script.KeyEnd] = 99.0
	items := laidOut(t, marker("s1", script.TypeScene), d1)

	got := Durations(items, script.TypeScene)
	if got["s1"] != 3 {
		t.Errorf("s1 = %v, want 3", got["s1"])
	}
}

func TestDurations_ExplicitMarkerDurationCounts(t *testing.T) {
	items := laidOut(t,
		script.Item{ID: "s1", Type: script.TypeScene, Duration: script.Seconds(10)},
		line("d1", 2, ""),
	)
	got := Durations(items, script.TypeScene)
	if got["s1"] != 12 {
		t.Errorf("s1 = %v, want 12", got["s1"])
	}
}

func TestStartTimes(t *testing.T) {
	items := scenario(t)
	got := StartTimes(items, script.TypeScene)
	want := map[string]float64{"scene1": 0, "scene2": 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("starts = %v, want %v", got, want)
	}
}

func TestCharacters_DistinctFirstAppearance(t *testing.T) {
	items := laidOut(t,
		marker("a1", script.TypeAct),
		line("d1", 1, "bob"),
		line("d2", 1, "alice"),
		line("d3", 1, "bob"),
		line("d4", 1, ""),
		marker("a2", script.TypeAct),
	)
	got := Characters(items, script.TypeAct)
	if !reflect.DeepEqual(got["a1"], []string{"bob", "alice"}) {
		t.Errorf("a1 = %v", got["a1"])
	}
	if got["a2"] == nil || len(got["a2"]) != 0 {
		t.Errorf("a2 should be an empty set, got %#v", got["a2"])
	}
}

func TestCharacters_CommittedSetsAreIndependent(t *testing.T) {
	items := scenario(t)
	got := Characters(items, script.TypeScene)
	got["scene1"][0] = "mallory"

	again := Characters(items, script.TypeScene)
	if again["scene1"][0] != "alice" {
		t.Error("committed set shared state between scans")
	}
	if !reflect.DeepEqual(got["scene2"], []string{"alice"}) {
		t.Errorf("scene2 = %v", got["scene2"])
	}
}

func TestCharacters_CrossContainerItemsCountInOpenContainer(t *testing.T) {
	// A line spoken after an act marker but before the act's first scene
	// belongs to whichever scene is still open.
	items := laidOut(t,
		marker("a1", script.TypeAct),
		marker("s1", script.TypeScene),
		line("d1", 1, "alice"),
		marker("a2", script.TypeAct),
		line("d2", 1, "bob"),
		marker("s2", script.TypeScene),
	)
	got := Characters(items, script.TypeScene)
	if !reflect.DeepEqual(got["s1"], []string{"alice", "bob"}) {
		t.Errorf("s1 = %v", got["s1"])
	}
}

func TestLocations(t *testing.T) {
	items := laidOut(t,
		marker("s1", script.TypeScene),
		place("l1", "harbour"),
		place("l2", "harbour"),
		marker("s2", script.TypeScene),
		place("l3", "lighthouse"),
	)
	got, err := Locations(items, script.TypeScene)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]string{"s1": {"harbour"}, "s2": {"lighthouse"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("locations = %v, want %v", got, want)
	}
}

func TestLocations_MissingRefFails(t *testing.T) {
	items := laidOut(t,
		marker("s1", script.TypeScene),
		place("l1", "harbour"),
		script.Item{ID: "l2", Type: script.TypeLocation},
	)
	_, err := Locations(items, script.TypeScene)
	if !errors.Is(err, ErrMissingLocationRef) {
		t.Fatalf("expected ErrMissingLocationRef, got %v", err)
	}
	if _, err := Summarize(items, script.TypeAct); !errors.Is(err, ErrMissingLocationRef) {
		t.Errorf("Summarize should propagate the guard, got %v", err)
	}
}

func TestAggregates_KeySetMatchesContainers(t *testing.T) {
	items := laidOut(t,
		line("intro", 2, "narrator"),
		marker("a1", script.TypeAct),
		marker("s1", script.TypeScene),
		marker("s2", script.TypeScene),
		line("d1", 1, "alice"),
		marker("a2", script.TypeAct),
		marker("s3", script.TypeScene),
	)
	for _, c := range []script.Type{script.TypeAct, script.TypeScene} {
		sum, err := Summarize(items, c)
		if err != nil {
			t.Fatal(err)
		}
		want := map[string]bool{}
		for _, it := range items {
			if it.Type == c {
				want[it.ID] = true
			}
		}
		for name, keys := range map[string][]string{
			"durations":  keysOf(sum.Durations),
			"starts":     keysOf(sum.Starts),
			"characters": keysOf(sum.Characters),
			"locations":  keysOf(sum.Locations),
		} {
			if len(keys) != len(want) {
				t.Errorf("%s %s: %d keys, want %d", c, name, len(keys), len(want))
			}
			for _, k := range keys {
				if !want[k] {
					t.Errorf("%s %s: unexpected key %s", c, name, k)
				}
			}
		}
		if len(sum.Order) != len(want) {
			t.Errorf("%s order = %v", c, sum.Order)
		}
	}
}

func TestSummarize_ItemsBeforeFirstContainerUnattributed(t *testing.T) {
	items := laidOut(t,
		line("intro", 2, "narrator"),
		marker("s1", script.TypeScene),
		line("d1", 1, "alice"),
	)
	sum, err := Summarize(items, script.TypeScene)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Durations["s1"] != 1 {
		t.Errorf("s1 duration = %v, want 1", sum.Durations["s1"])
	}
	if !reflect.DeepEqual(sum.Characters["s1"], []string{"alice"}) {
		t.Errorf("s1 characters = %v", sum.Characters["s1"])
	}
}

func TestSummarize_Idempotent(t *testing.T) {
	items := scenario(t)
	a, err := Summarize(items, script.TypeScene)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Summarize(items, script.TypeScene)
	if !reflect.DeepEqual(a, b) {
		t.Error("two summaries of the same layout differ")
	}
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
