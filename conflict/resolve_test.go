package conflict

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/szopper/go-szopper/common/types"
)

var byID = cmpopts.SortSlices(func(a, b types.Item) bool { return a.ID < b.ID })

func item(id string, bought bool, updatedAt int64) types.Item {
	return types.Item{ID: id, Name: "item " + id, Bought: bought, CreatedAt: 1000, UpdatedAt: updatedAt}
}

func find(t *testing.T, items []types.Item, id string) types.Item {
	t.Helper()
	for _, it := range items {
		if it.ID == id {
			return it
		}
	}
	require.FailNow(t, "missing item", id)
	return types.Item{}
}

func TestLastUpdatedWins(t *testing.T) {
	local := []types.Item{item("1", true, 1500), item("2", false, 1200)}
	remote := []types.Item{item("1", false, 1300), item("2", true, 1400), item("4", false, 1250)}

	res := Resolve(local, remote, LastUpdatedWins)
	require.Equal(t, LastUpdatedWins, res.Strategy)
	require.Equal(t, 2, res.Conflicts)
	require.ElementsMatch(t, []string{"1", "2", "4"}, types.ItemIDs(res.Items))
	require.Equal(t, local[0], find(t, res.Items, "1"))
	require.Equal(t, remote[1], find(t, res.Items, "2"))
	require.Equal(t, remote[2], find(t, res.Items, "4"))
}

func TestTieKeepsLocal(t *testing.T) {
	local := []types.Item{{ID: "1", Name: "Milk", UpdatedAt: 10}}
	remote := []types.Item{{ID: "1", Name: "Oat milk", Bought: true, UpdatedAt: 10}}
	for _, s := range []Strategy{LastUpdatedWins, ManualResolution} {
		res := Resolve(local, remote, s)
		require.Equal(t, local, res.Items, s.String())
	}

	res := Resolve(local, remote, MergeAll)
	require.Equal(t, []types.Item{{ID: "1", Name: "Milk", Bought: true, UpdatedAt: 10}}, res.Items)
}

func TestMergeAll(t *testing.T) {
	local := []types.Item{{ID: "1", Name: "Milk", Bought: true, CreatedAt: 1000, UpdatedAt: 1200}}
	remote := []types.Item{{ID: "1", Name: "Organic Milk", Bought: false, Position: 3, CreatedAt: 1000, UpdatedAt: 1400}}

	res := Resolve(local, remote, MergeAll)
	require.Equal(t, []types.Item{
		{ID: "1", Name: "Organic Milk", Bought: true, Position: 3, CreatedAt: 1000, UpdatedAt: 1400},
	}, res.Items)

	// newer side unbought never clears bought, older side bought still wins the flag
	res = Resolve(remote, local, MergeAll)
	require.Equal(t, "Organic Milk", res.Items[0].Name)
	require.True(t, res.Items[0].Bought)
}

func TestManualFallsBackToLastUpdatedWins(t *testing.T) {
	local := []types.Item{item("1", true, 1500), item("2", false, 1200)}
	remote := []types.Item{item("1", false, 1300), item("2", true, 1400), item("3", true, 1)}
	require.Equal(t,
		Resolve(local, remote, LastUpdatedWins).Items,
		Resolve(local, remote, ManualResolution).Items,
	)
}

func TestIdempotent(t *testing.T) {
	a := []types.Item{item("1", true, 5), item("2", false, 6), item("3", true, 7)}
	for _, s := range []Strategy{LastUpdatedWins, MergeAll, ManualResolution} {
		res := Resolve(a, a, s)
		if diff := cmp.Diff(a, res.Items, byID); diff != "" {
			t.Errorf("%s: resolve(A, A) mismatch (-want +got):\n%s", s, diff)
		}
	}
}

func TestOrder(t *testing.T) {
	local := []types.Item{item("b", false, 1), item("a", false, 1)}
	remote := []types.Item{item("z", false, 1), item("a", false, 2), item("y", false, 1)}
	res := Resolve(local, remote, LastUpdatedWins)
	require.Equal(t, []string{"b", "a", "z", "y"}, types.ItemIDs(res.Items))
}

func TestInputsNotModified(t *testing.T) {
	local := []types.Item{item("1", false, 1)}
	remote := []types.Item{item("1", true, 0)}
	localCopy := append([]types.Item(nil), local...)
	remoteCopy := append([]types.Item(nil), remote...)

	res := Resolve(local, remote, MergeAll)
	require.True(t, res.Items[0].Bought)
	require.Equal(t, localCopy, local)
	require.Equal(t, remoteCopy, remote)

	res.Items[0].Name = "changed"
	require.Equal(t, localCopy, local)
}

func TestDuplicateIDs(t *testing.T) {
	local := []types.Item{item("1", false, 1), item("1", false, 5)}
	remote := []types.Item{item("2", false, 1), item("2", true, 2), item("1", false, 3)}
	res := Resolve(local, remote, LastUpdatedWins)
	require.Equal(t, []types.Item{item("1", false, 5), item("2", true, 2)}, res.Items)
	require.Equal(t, 1, res.Conflicts)
}

func TestEmpty(t *testing.T) {
	require.Empty(t, Resolve(nil, nil, MergeAll).Items)
	remote := []types.Item{item("1", false, 1)}
	require.Equal(t, remote, Resolve(nil, remote, LastUpdatedWins).Items)
	require.Equal(t, remote, Resolve(remote, nil, LastUpdatedWins).Items)
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{LastUpdatedWins, MergeAll, ManualResolution} {
		parsed, err := ParseStrategy(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}
	parsed, err := ParseStrategy("merge_all")
	require.NoError(t, err)
	require.Equal(t, MergeAll, parsed)

	_, err = ParseStrategy("newest")
	require.Error(t, err)

	var s Strategy
	require.NoError(t, s.UnmarshalText([]byte("MANUAL_RESOLUTION")))
	require.Equal(t, ManualResolution, s)
}
