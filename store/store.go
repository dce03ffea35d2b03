// Package store keeps the local shopping list.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/szopper/go-szopper/codec"
	"github.com/szopper/go-szopper/common/types"
	"github.com/szopper/go-szopper/database"
)

var (
	// ErrNotFound is returned for unknown item ids.
	ErrNotFound = errors.New("item not found")
	// ErrInvalidOrder is returned by Reorder for ids that repeat.
	ErrInvalidOrder = errors.New("invalid order")
)

var itemPrefix = []byte("item/")

func itemKey(id string) []byte {
	return append(slices.Clone(itemPrefix), id...)
}

// Database is the key value store under a Store, see database.LDBDatabase.
type Database interface {
	Get(key []byte) ([]byte, error)
	Iterate(prefix []byte, fn func(key, value []byte) bool) error
	Update(fn func(database.Batch) error) error
}

// Opt configures a Store.
type Opt func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock sets the clock used for item timestamps.
func WithClock(clock clockwork.Clock) Opt {
	return func(s *Store) {
		s.clock = clock
	}
}

// Store is the list of items on this device.
// Items are returned ordered by position.
type Store struct {
	logger *zap.Logger
	clock  clockwork.Clock
	db     Database

	// serializes read-modify-write sequences
	mu sync.Mutex
}

// New creates a Store over db.
func New(db Database, opts ...Opt) *Store {
	s := &Store{
		logger: zap.NewNop(),
		clock:  clockwork.NewRealClock(),
		db:     db,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) now() int64 {
	return types.Millis(s.clock.Now())
}

// ListAll returns all items.
func (s *Store) ListAll(_ context.Context) ([]types.Item, error) {
	return s.list()
}

func (s *Store) list() ([]types.Item, error) {
	var (
		items  []types.Item
		decErr error
	)
	err := s.db.Iterate(itemPrefix, func(key, value []byte) bool {
		var item types.Item
		if err := codec.Decode(value, &item); err != nil {
			decErr = fmt.Errorf("decode %s: %w", key, err)
			return false
		}
		items = append(items, item)
		return true
	})
	if err != nil {
		return nil, err
	}
	if decErr != nil {
		return nil, decErr
	}
	types.SortByPosition(items)
	return items, nil
}

// Count returns the number of items.
func (s *Store) Count(_ context.Context) (int, error) {
	n := 0
	if err := s.db.Iterate(itemPrefix, func(_, _ []byte) bool {
		n++
		return true
	}); err != nil {
		return 0, err
	}
	return n, nil
}

// Get returns the item with id.
func (s *Store) Get(_ context.Context, id string) (types.Item, error) {
	return s.get(id)
}

func (s *Store) get(id string) (types.Item, error) {
	value, err := s.db.Get(itemKey(id))
	if errors.Is(err, database.ErrNotFound) {
		return types.Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	} else if err != nil {
		return types.Item{}, err
	}
	var item types.Item
	if err := codec.Decode(value, &item); err != nil {
		return types.Item{}, fmt.Errorf("decode item %s: %w", id, err)
	}
	return item, nil
}

func put(b database.Batch, item *types.Item) error {
	value, err := codec.Encode(item)
	if err != nil {
		return fmt.Errorf("encode item %s: %w", item.ID, err)
	}
	b.Put(itemKey(item.ID), value)
	return nil
}

// Add appends a new item named name to the end of the list.
func (s *Store) Add(_ context.Context, name string) (types.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Item{}, types.ErrEmptyItemName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.list()
	if err != nil {
		return types.Item{}, err
	}
	var position int32
	for _, item := range items {
		position = max(position, item.Position+1)
	}
	now := s.now()
	item := types.Item{
		ID:        uuid.NewString(),
		Name:      name,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.Update(func(b database.Batch) error { return put(b, &item) }); err != nil {
		return types.Item{}, err
	}
	s.logger.Debug("added item", zap.Object("item", &item))
	return item, nil
}

// Update overwrites an existing item and refreshes its UpdatedAt.
func (s *Store) Update(_ context.Context, item types.Item) (types.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modify(item.ID, func(stored *types.Item) error {
		*stored = item
		return nil
	})
}

// modify applies fn to the stored item and saves it with a fresh UpdatedAt.
func (s *Store) modify(id string, fn func(*types.Item) error) (types.Item, error) {
	item, err := s.get(id)
	if err != nil {
		return types.Item{}, err
	}
	createdAt := item.CreatedAt
	if err := fn(&item); err != nil {
		return types.Item{}, err
	}
	item.ID = id
	item.CreatedAt = createdAt
	item.UpdatedAt = max(s.now(), createdAt)
	if err := item.Validate(); err != nil {
		return types.Item{}, err
	}
	if err := s.db.Update(func(b database.Batch) error { return put(b, &item) }); err != nil {
		return types.Item{}, err
	}
	return item, nil
}

// ToggleBought flips the bought flag of an item.
func (s *Store) ToggleBought(_ context.Context, id string) (types.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modify(id, func(item *types.Item) error {
		item.Bought = !item.Bought
		return nil
	})
}

// Rename changes the name of an item.
func (s *Store) Rename(_ context.Context, id, name string) (types.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Item{}, types.ErrEmptyItemName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modify(id, func(item *types.Item) error {
		item.Name = name
		return nil
	})
}

// Delete removes an item.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.get(id); err != nil {
		return err
	}
	return s.db.Update(func(b database.Batch) error {
		b.Delete(itemKey(id))
		return nil
	})
}

// Reorder moves the items with ids to the front of the list in the given order.
// Items not listed keep their relative order after them. Only items whose
// position changes are updated.
func (s *Store) Reorder(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.list()
	if err != nil {
		return err
	}
	index := make(map[string]int, len(items))
	for i, item := range items {
		index[item.ID] = i
	}
	ordered := make([]types.Item, 0, len(items))
	moved := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		i, ok := index[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if _, ok := moved[id]; ok {
			return fmt.Errorf("%w: %s listed twice", ErrInvalidOrder, id)
		}
		moved[id] = struct{}{}
		ordered = append(ordered, items[i])
	}
	for _, item := range items {
		if _, ok := moved[item.ID]; !ok {
			ordered = append(ordered, item)
		}
	}
	now := s.now()
	return s.db.Update(func(b database.Batch) error {
		for i := range ordered {
			item := &ordered[i]
			if item.Position == int32(i) {
				continue
			}
			item.Position = int32(i)
			item.UpdatedAt = max(now, item.CreatedAt)
			if err := put(b, item); err != nil {
				return err
			}
		}
		return nil
	})
}

// ResetAll marks every item as not bought.
func (s *Store) ResetAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.list()
	if err != nil {
		return err
	}
	now := s.now()
	return s.db.Update(func(b database.Batch) error {
		for i := range items {
			item := &items[i]
			if !item.Bought {
				continue
			}
			item.Bought = false
			item.UpdatedAt = max(now, item.CreatedAt)
			if err := put(b, item); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceAll makes items the whole list, as received from a sync.
// Items are stored as given, including timestamps.
func (s *Store) ReplaceAll(_ context.Context, items []types.Item) error {
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.list()
	if err != nil {
		return err
	}
	keep := make(map[string]struct{}, len(items))
	for _, item := range items {
		keep[item.ID] = struct{}{}
	}
	err = s.db.Update(func(b database.Batch) error {
		for _, item := range current {
			if _, ok := keep[item.ID]; !ok {
				b.Delete(itemKey(item.ID))
			}
		}
		for i := range items {
			if err := put(b, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("replaced items", zap.Int("before", len(current)), zap.Int("after", len(items)))
	return nil
}
