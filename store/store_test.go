package store

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/szopper/go-szopper/common/types"
	"github.com/szopper/go-szopper/database"
	"github.com/szopper/go-szopper/log/logtest"
)

func newStore(t *testing.T) (*Store, clockwork.FakeClock) {
	db := database.NewMemDatabase()
	t.Cleanup(func() { db.Close() })
	clock := clockwork.NewFakeClockAt(time.UnixMilli(1_000))
	return New(db, WithLogger(logtest.New(t)), WithClock(clock)), clock
}

func names(items []types.Item) []string {
	rst := make([]string, 0, len(items))
	for _, item := range items {
		rst = append(rst, item.Name)
	}
	return rst
}

func TestAddList(t *testing.T) {
	s, clock := newStore(t)
	ctx := context.Background()

	milk, err := s.Add(ctx, " milk ")
	require.NoError(t, err)
	require.NotEmpty(t, milk.ID)
	require.Equal(t, "milk", milk.Name)
	require.Equal(t, int32(0), milk.Position)
	require.Equal(t, int64(1_000), milk.CreatedAt)
	require.Equal(t, milk.CreatedAt, milk.UpdatedAt)

	clock.Advance(time.Second)
	bread, err := s.Add(ctx, "bread")
	require.NoError(t, err)
	require.Equal(t, int32(1), bread.Position)

	items, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []types.Item{milk, bread}, items)
	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = s.Add(ctx, "  ")
	require.ErrorIs(t, err, types.ErrEmptyItemName)
}

func TestModify(t *testing.T) {
	s, clock := newStore(t)
	ctx := context.Background()
	milk, err := s.Add(ctx, "milk")
	require.NoError(t, err)

	clock.Advance(time.Second)
	toggled, err := s.ToggleBought(ctx, milk.ID)
	require.NoError(t, err)
	require.True(t, toggled.Bought)
	require.Equal(t, int64(2_000), toggled.UpdatedAt)
	require.Equal(t, milk.CreatedAt, toggled.CreatedAt)

	renamed, err := s.Rename(ctx, milk.ID, "Organic Milk")
	require.NoError(t, err)
	require.Equal(t, "Organic Milk", renamed.Name)
	require.True(t, renamed.Bought)

	got, err := s.Get(ctx, milk.ID)
	require.NoError(t, err)
	require.Equal(t, renamed, got)

	updated := got
	updated.Position = 7
	updated.CreatedAt = 0
	updated, err = s.Update(ctx, updated)
	require.NoError(t, err)
	require.Equal(t, int32(7), updated.Position)
	require.Equal(t, milk.CreatedAt, updated.CreatedAt, "creation time is kept")

	_, err = s.Rename(ctx, milk.ID, "")
	require.ErrorIs(t, err, types.ErrEmptyItemName)
	_, err = s.ToggleBought(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	milk, err := s.Add(ctx, "milk")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, milk.ID))
	_, err = s.Get(ctx, milk.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, milk.ID), ErrNotFound)
}

func TestReorder(t *testing.T) {
	s, clock := newStore(t)
	ctx := context.Background()
	var ids []string
	for _, name := range []string{"a", "b", "c", "d"} {
		item, err := s.Add(ctx, name)
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}
	clock.Advance(time.Second)
	require.NoError(t, s.Reorder(ctx, []string{ids[2], ids[0]}))

	items, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "a", "b", "d"}, names(items))
	for i, item := range items {
		require.Equal(t, int32(i), item.Position)
	}
	// d kept its position
	require.Equal(t, int64(1_000), items[3].UpdatedAt)
	require.Equal(t, int64(2_000), items[0].UpdatedAt)

	require.ErrorIs(t, s.Reorder(ctx, []string{"missing"}), ErrNotFound)
	require.ErrorIs(t, s.Reorder(ctx, []string{ids[1], ids[1]}), ErrInvalidOrder)
}

func TestResetAll(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b"} {
		item, err := s.Add(ctx, name)
		require.NoError(t, err)
		_, err = s.ToggleBought(ctx, item.ID)
		require.NoError(t, err)
	}
	require.NoError(t, s.ResetAll(ctx))
	items, err := s.ListAll(ctx)
	require.NoError(t, err)
	for _, item := range items {
		require.False(t, item.Bought)
	}
}

func TestReplaceAll(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	stale, err := s.Add(ctx, "stale")
	require.NoError(t, err)
	kept, err := s.Add(ctx, "kept")
	require.NoError(t, err)

	kept.Bought = true
	kept.UpdatedAt = 5_000
	merged := []types.Item{
		kept,
		{ID: "remote", Name: "eggs", Position: 2, CreatedAt: 900, UpdatedAt: 1_200},
	}
	require.NoError(t, s.ReplaceAll(ctx, merged))
	items, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, merged, items)
	_, err = s.Get(ctx, stale.ID)
	require.ErrorIs(t, err, ErrNotFound)

	err = s.ReplaceAll(ctx, []types.Item{{ID: "x"}})
	require.ErrorIs(t, err, types.ErrEmptyItemName)
	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n, "invalid input leaves the list untouched")
}
