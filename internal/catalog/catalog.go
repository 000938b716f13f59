// Package catalog stores the canonical records that timeline items point at
// through details.ref: characters, locations, tags and notes.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"scriptline/internal/script"
)

// Collection names in the record store.
const (
	CollectionCharacters = "characters"
	CollectionLocations  = "locations"
	CollectionTags       = "tags"
	CollectionNotes      = "notes"
)

// ErrNotFound is returned when removing an id the catalog does not hold.
var ErrNotFound = errors.New("catalog entry not found")

// Backend is the record storage a catalog writes through. *db.DB satisfies it.
type Backend interface {
	GetAll(ctx context.Context, collection string) (map[string]json.RawMessage, error)
	Put(ctx context.Context, collection, id string, v any) error
	Delete(ctx context.Context, collection, id string) error
}

// Entity is a record with a settable id and a display label.
type Entity[T any] interface {
	script.Labeled
	EntityID() string
	WithEntityID(id string) T
}

// Catalog is an id-keyed collection of canonical records, persisted on
// every change.
type Catalog[T Entity[T]] struct {
	backend    Backend
	collection string

	mu      sync.RWMutex
	records map[string]T
}

// New returns an empty catalog over collection. Call Load to read it.
func New[T Entity[T]](b Backend, collection string) *Catalog[T] {
	return &Catalog[T]{backend: b, collection: collection, records: make(map[string]T)}
}

// Load replaces the in-memory records with the persisted ones.
func (c *Catalog[T]) Load(ctx context.Context) error {
	raw, err := c.backend.GetAll(ctx, c.collection)
	if err != nil {
		return fmt.Errorf("loading %s: %w", c.collection, err)
	}
	records := make(map[string]T, len(raw))
	for id, body := range raw {
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return fmt.Errorf("decoding %s %s: %w", c.collection, id, err)
		}
		records[id] = v.WithEntityID(id)
	}
	c.mu.Lock()
	c.records = records
	c.mu.Unlock()
	return nil
}

// Add stores v, replacing any record with the same id. An empty id gets a
// fresh UUID. The stored value is returned.
func (c *Catalog[T]) Add(ctx context.Context, v T) (T, error) {
	if v.EntityID() == "" {
		v = v.WithEntityID(uuid.New().String())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.backend.Put(ctx, c.collection, v.EntityID(), v); err != nil {
		var zero T
		return zero, fmt.Errorf("adding to %s: %w", c.collection, err)
	}
	c.records[v.EntityID()] = v
	return v, nil
}

// Remove deletes the record with id.
func (c *Catalog[T]) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[id]; !ok {
		return fmt.Errorf("removing %s from %s: %w", id, c.collection, ErrNotFound)
	}
	if err := c.backend.Delete(ctx, c.collection, id); err != nil {
		return fmt.Errorf("removing %s from %s: %w", id, c.collection, err)
	}
	delete(c.records, id)
	return nil
}

// Get returns the record with id.
func (c *Catalog[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.records[id]
	return v, ok
}

// Has reports whether id is present.
func (c *Catalog[T]) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// Find resolves an id, or failing that a case-insensitive label match.
// Ambiguous labels resolve to nothing.
func (c *Catalog[T]) Find(idOrLabel string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.records[idOrLabel]; ok {
		return v, true
	}
	var (
		match T
		n     int
	)
	for _, v := range c.records {
		if strings.EqualFold(v.Label(), idOrLabel) {
			match = v
			n++
		}
	}
	if n != 1 {
		var zero T
		return zero, false
	}
	return match, true
}

// All returns every record ordered by label, then id.
func (c *Catalog[T]) All() []T {
	c.mu.RLock()
	out := make([]T, 0, len(c.records))
	for _, v := range c.records {
		out = append(out, v)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i].Label()), strings.ToLower(out[j].Label())
		if li != lj {
			return li < lj
		}
		return out[i].EntityID() < out[j].EntityID()
	})
	return out
}

// Len is the number of records.
func (c *Catalog[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Set groups the four catalogs of a script.
type Set struct {
	Characters *Catalog[script.Character]
	Locations  *Catalog[script.Location]
	Tags       *Catalog[script.Tag]
	Notes      *Catalog[script.Note]
}

// Open builds and loads every catalog from b.
func Open(ctx context.Context, b Backend) (*Set, error) {
	s := &Set{
		Characters: New[script.Character](b, CollectionCharacters),
		Locations:  New[script.Location](b, CollectionLocations),
		Tags:       New[script.Tag](b, CollectionTags),
		Notes:      New[script.Note](b, CollectionNotes),
	}
	for _, load := range []func(context.Context) error{
		s.Characters.Load, s.Locations.Load, s.Tags.Load, s.Notes.Load,
	} {
		if err := load(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}
