package types

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap/zapcore"
)

// Item is a single shopping list entry.
// CreatedAt and UpdatedAt are milliseconds since the unix epoch.
type Item struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Bought    bool   `json:"bought"`
	Position  int32  `json:"position"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Limits of the stored encoding, items exceeding them are invalid.
const (
	MaxIDLength   = 256
	MaxNameLength = 4096
)

var (
	ErrEmptyItemID   = errors.New("item id is empty")
	ErrEmptyItemName = errors.New("item name is empty")
	ErrItemTooLong   = errors.New("item field too long")
)

// Validate checks structural invariants of the item.
func (i *Item) Validate() error {
	if i.ID == "" {
		return ErrEmptyItemID
	}
	if len(i.ID) > MaxIDLength {
		return fmt.Errorf("item id of %d bytes: %w", len(i.ID), ErrItemTooLong)
	}
	if len(i.Name) > MaxNameLength {
		return fmt.Errorf("item %s name of %d bytes: %w", i.ID, len(i.Name), ErrItemTooLong)
	}
	if i.Name == "" {
		return fmt.Errorf("item %s: %w", i.ID, ErrEmptyItemName)
	}
	if i.UpdatedAt < i.CreatedAt {
		return fmt.Errorf("item %s updated (%d) before created (%d)", i.ID, i.UpdatedAt, i.CreatedAt)
	}
	return nil
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (i *Item) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", i.ID)
	enc.AddString("name", i.Name)
	enc.AddBool("bought", i.Bought)
	enc.AddInt32("position", i.Position)
	enc.AddInt64("updated_at", i.UpdatedAt)
	return nil
}

// SortByPosition orders items by position, ties broken by creation time.
func SortByPosition(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return items[i].CreatedAt < items[j].CreatedAt
	})
}

// ItemIDs returns ids of items in order.
func ItemIDs(items []Item) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

// Millis converts t to milliseconds since the unix epoch.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
