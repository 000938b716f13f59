package catalog

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"scriptline/internal/db"
	"scriptline/internal/script"
	"scriptline/internal/sequence"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.OpenDB(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestAdd_AssignsID(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	chars := New[script.Character](d, CollectionCharacters)

	alice, err := chars.Add(ctx, script.Character{Name: "Alice"})
	if err != nil {
		t.Fatal(err)
	}
	if alice.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if !chars.Has(alice.ID) {
		t.Error("added record not found")
	}

	named, _ := chars.Add(ctx, script.Character{ID: "bob", Name: "Bob"})
	if named.ID != "bob" {
		t.Errorf("explicit id replaced: %s", named.ID)
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	locs := New[script.Location](d, CollectionLocations)
	locs.Add(ctx, script.Location{ID: "harbour", Name: "Harbour", Description: "fog"})

	again := New[script.Location](d, CollectionLocations)
	if err := again.Load(ctx); err != nil {
		t.Fatal(err)
	}
	got, ok := again.Get("harbour")
	if !ok || got.Name != "Harbour" || got.Description != "fog" {
		t.Errorf("got %+v, %v", got, ok)
	}
}

func TestRemove(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	tags := New[script.Tag](d, CollectionTags)
	tags.Add(ctx, script.Tag{ID: "t1", Name: "rewrite"})

	if err := tags.Remove(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
	if tags.Has("t1") {
		t.Error("record survived removal")
	}
	if err := tags.Remove(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFind(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	chars := New[script.Character](d, CollectionCharacters)
	chars.Add(ctx, script.Character{ID: "c1", Name: "Alice"})
	chars.Add(ctx, script.Character{ID: "c2", Name: "Sam"})
	chars.Add(ctx, script.Character{ID: "c3", Name: "sam"})

	if v, ok := chars.Find("alice"); !ok || v.ID != "c1" {
		t.Errorf("Find(alice) = %+v, %v", v, ok)
	}
	if v, ok := chars.Find("c2"); !ok || v.Name != "Sam" {
		t.Errorf("Find(c2) = %+v, %v", v, ok)
	}
	if _, ok := chars.Find("SAM"); ok {
		t.Error("ambiguous label should not resolve")
	}
}

func TestAll_SortedByLabel(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	chars := New[script.Character](d, CollectionCharacters)
	for _, name := range []string{"carol", "Alice", "bob"} {
		chars.Add(ctx, script.Character{Name: name})
	}
	all := chars.All()
	want := []string{"Alice", "bob", "carol"}
	for i, c := range all {
		if c.Name != want[i] {
			t.Errorf("position %d = %s, want %s", i, c.Name, want[i])
		}
	}
}

func TestOpen_LocationsGuardStore(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	set, err := Open(ctx, d)
	if err != nil {
		t.Fatal(err)
	}
	set.Locations.Add(ctx, script.Location{ID: "harbour", Name: "Harbour"})

	store := sequence.New(d, sequence.Options{Locations: set.Locations, Logger: io.Discard})
	_, err = store.Create(ctx, script.Item{
		Type:    script.TypeLocation,
		Details: script.Details{script.KeyRef: "harbour"},
	}, sequence.Append)
	if err != nil {
		t.Fatalf("known location rejected: %v", err)
	}
	_, err = store.Create(ctx, script.Item{
		Type:    script.TypeLocation,
		Details: script.Details{script.KeyRef: "moon"},
	}, sequence.Append)
	if !errors.Is(err, sequence.ErrLocationNotFound) {
		t.Errorf("expected ErrLocationNotFound, got %v", err)
	}
}
