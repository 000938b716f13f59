package sequence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
	"scriptline/internal/db"
	"scriptline/internal/script"
)

const (
	// CollectionItems holds timeline item records.
	CollectionItems = "items"
	// MetaSequence is the meta key holding the ordered id list.
	MetaSequence = "timelineSequence"
	// Append places a created item at the end of the sequence.
	Append = -1
)

var (
	// ErrLocationNotFound is the referential-integrity failure for a
	// location item whose ref names no canonical location.
	ErrLocationNotFound = errors.New("canonical location not found")
	// ErrMissingRef is returned for a location item with no ref at all.
	ErrMissingRef = errors.New("location item has no ref")
	// ErrDuplicateID is returned when creating an item whose id is taken.
	ErrDuplicateID = errors.New("duplicate item id")
	// ErrNotFound is returned when updating an id that is not stored.
	ErrNotFound = errors.New("item not found")
	// ErrNotPermutation is returned by ValidatePermutation.
	ErrNotPermutation = errors.New("sequence is not a permutation of stored items")
)

// Persister is the key-value storage collaborator. *db.DB satisfies it.
type Persister interface {
	GetAll(ctx context.Context, collection string) (map[string]json.RawMessage, error)
	GetMeta(ctx context.Context, key string, dst any) (bool, error)
	Atomic(ctx context.Context, fn func(w db.Writer) error) error
}

// LocationLookup answers whether a canonical location exists.
type LocationLookup interface {
	Has(id string) bool
}

// Options configures a Store.
type Options struct {
	Locations LocationLookup
	Logger    io.Writer // warnings; defaults to stderr
}

// Snapshot is an immutable view of the store at one version. Engines read
// snapshots and never touch the store directly.
type Snapshot struct {
	Version uint64
	Order   []string
	Items   map[string]script.Item
}

// Store owns the canonical item records and their order. Every mutation is
// persisted before it becomes visible; a failed write leaves both the
// in-memory state and storage unchanged.
//
// Mutations are serialised. Two edits of the same item are last-write-wins.
type Store struct {
	mu        sync.RWMutex
	persist   Persister
	locations LocationLookup
	logger    io.Writer

	order   []string
	items   map[string]script.Item
	version uint64
}

// New creates an empty store backed by p. Call Load to read persisted state.
func New(p Persister, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = os.Stderr
	}
	return &Store{
		persist:   p,
		locations: opts.Locations,
		logger:    logger,
		items:     make(map[string]script.Item),
	}
}

// Load replaces in-memory state with the persisted items and sequence.
// Sequence entries without a record are dropped and records missing from
// the sequence are appended in id order, each with a warning.
func (s *Store) Load(ctx context.Context) error {
	raw, err := s.persist.GetAll(ctx, CollectionItems)
	if err != nil {
		return fmt.Errorf("loading items: %w", err)
	}
	items := make(map[string]script.Item, len(raw))
	for id, body := range raw {
		var it script.Item
		if err := json.Unmarshal(body, &it); err != nil {
			return fmt.Errorf("decoding item %s: %w", id, err)
		}
		items[id] = it
	}

	var stored []string
	if _, err := s.persist.GetMeta(ctx, MetaSequence, &stored); err != nil {
		return fmt.Errorf("loading sequence: %w", err)
	}

	order := make([]string, 0, len(items))
	seen := make(map[string]bool, len(stored))
	for _, id := range stored {
		if _, ok := items[id]; !ok {
			fmt.Fprintf(s.logger, "warning: sequence references missing item %s (dropped)\n", id)
			continue
		}
		if seen[id] {
			fmt.Fprintf(s.logger, "warning: sequence lists %s twice (kept first)\n", id)
			continue
		}
		seen[id] = true
		order = append(order, id)
	}
	var orphans []string
	for id := range items {
		if !seen[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		fmt.Fprintf(s.logger, "warning: item %s missing from sequence (appended)\n", id)
		order = append(order, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = order
	s.items = items
	s.version++
	return nil
}

// Create stores item and splices its id into the sequence at insertAt when
// 0 <= insertAt <= len, appending otherwise. An empty id is replaced with a
// fresh UUID and type defaults are applied. The stored item is returned.
func (s *Store) Create(ctx context.Context, item script.Item, insertAt int) (script.Item, error) {
	// The stored record never shares maps or slices with the caller.
	item = item.CloneWith(script.Patch{})
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item = script.ApplyDefaults(item)

	if item.Type == script.TypeLocation {
		ref, ok := item.CanonicalRef()
		if !ok {
			return script.Item{}, fmt.Errorf("creating %s: %w", item.ID, ErrMissingRef)
		}
		if s.locations == nil || !s.locations.Has(ref) {
			return script.Item{}, fmt.Errorf("creating %s: %w: %s", item.ID, ErrLocationNotFound, ref)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; exists {
		return script.Item{}, fmt.Errorf("creating %s: %w", item.ID, ErrDuplicateID)
	}

	order := make([]string, 0, len(s.order)+1)
	if insertAt >= 0 && insertAt <= len(s.order) {
		order = append(order, s.order[:insertAt]...)
		order = append(order, item.ID)
		order = append(order, s.order[insertAt:]...)
	} else {
		order = append(order, s.order...)
		order = append(order, item.ID)
	}

	err := s.persist.Atomic(ctx, func(w db.Writer) error {
		if err := w.Put(ctx, CollectionItems, item.ID, item); err != nil {
			return err
		}
		return w.PutMeta(ctx, MetaSequence, order)
	})
	if err != nil {
		return script.Item{}, fmt.Errorf("creating %s: %w", item.ID, err)
	}

	items := s.copyItems()
	items[item.ID] = item
	s.swap(order, items)
	return item, nil
}

// Reorder replaces the sequence wholesale. The caller guarantees that
// newSequence is a permutation of the stored ids; it is not checked here.
// Use ValidatePermutation or Move when that guarantee is not already held.
func (s *Store) Reorder(ctx context.Context, newSequence []string) error {
	order := make([]string, len(newSequence))
	copy(order, newSequence)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reorderLocked(ctx, order)
}

// reorderLocked persists and swaps in order. s.mu must be held for writing.
func (s *Store) reorderLocked(ctx context.Context, order []string) error {
	err := s.persist.Atomic(ctx, func(w db.Writer) error {
		return w.PutMeta(ctx, MetaSequence, order)
	})
	if err != nil {
		return fmt.Errorf("reordering: %w", err)
	}
	s.swap(order, s.items)
	return nil
}

// Move commits the permutation that takes id out of the sequence and
// reinserts it at index (clamped to the ends), as a drag-and-drop drop does.
// The read of the current order and the write happen under one lock.
func (s *Store) Move(ctx context.Context, id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := make([]string, 0, len(s.order))
	found := false
	for _, o := range s.order {
		if o == id {
			found = true
			continue
		}
		order = append(order, o)
	}
	if !found {
		return fmt.Errorf("moving %s: %w", id, ErrNotFound)
	}

	if index < 0 {
		index = 0
	}
	if index > len(order) {
		index = len(order)
	}
	order = append(order[:index], append([]string{id}, order[index:]...)...)
	return s.reorderLocked(ctx, order)
}

// Update sets path (and key, for details) to value on the stored item and
// replaces the record with the patched clone.
func (s *Store) Update(ctx context.Context, id, path, key string, value any) (script.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[id]
	if !ok {
		return script.Item{}, fmt.Errorf("updating %s: %w", id, ErrNotFound)
	}
	patch, err := script.PatchFor(current, path, key, value)
	if err != nil {
		return script.Item{}, fmt.Errorf("updating %s: %w", id, err)
	}
	next := current.CloneWith(patch)

	err = s.persist.Atomic(ctx, func(w db.Writer) error {
		if err := w.Put(ctx, CollectionItems, id, next); err != nil {
			return err
		}
		return w.PutMeta(ctx, MetaSequence, s.order)
	})
	if err != nil {
		return script.Item{}, fmt.Errorf("updating %s: %w", id, err)
	}

	items := s.copyItems()
	items[id] = next
	s.swap(s.order, items)
	return next, nil
}

// Delete removes the record and its sequence entry together. Deleting an
// absent id logs a warning and does nothing.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		fmt.Fprintf(s.logger, "warning: delete of unknown item %s ignored\n", id)
		return nil
	}

	order := make([]string, 0, len(s.order))
	for _, o := range s.order {
		if o != id {
			order = append(order, o)
		}
	}

	err := s.persist.Atomic(ctx, func(w db.Writer) error {
		if err := w.Delete(ctx, CollectionItems, id); err != nil {
			return err
		}
		return w.PutMeta(ctx, MetaSequence, order)
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}

	items := s.copyItems()
	delete(items, id)
	s.swap(order, items)
	return nil
}

// Get returns the stored record for id.
func (s *Store) Get(id string) (script.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	return it, ok
}

// Order returns a copy of the current sequence.
func (s *Store) Order() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len is the number of stored items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Version increases on every successful mutation or load.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns the current state for derivation. The returned maps and
// slices are private copies; stored items are never mutated in place, so
// sharing their details bags is safe.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order := make([]string, len(s.order))
	copy(order, s.order)
	return Snapshot{Version: s.version, Order: order, Items: s.copyItems()}
}

// copyItems must be called with mu held.
func (s *Store) copyItems() map[string]script.Item {
	out := make(map[string]script.Item, len(s.items)+1)
	for id, it := range s.items {
		out[id] = it
	}
	return out
}

// swap must be called with mu held for writing.
func (s *Store) swap(order []string, items map[string]script.Item) {
	s.order = order
	s.items = items
	s.version++
}

// ValidatePermutation checks that order lists every stored id exactly once.
func ValidatePermutation(order []string, items map[string]script.Item) error {
	if len(order) != len(items) {
		return fmt.Errorf("%w: %d ids for %d items", ErrNotPermutation, len(order), len(items))
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if _, ok := items[id]; !ok {
			return fmt.Errorf("%w: unknown id %s", ErrNotPermutation, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: %s listed twice", ErrNotPermutation, id)
		}
		seen[id] = true
	}
	return nil
}
