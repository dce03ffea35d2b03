// Package conflict merges two independently edited item lists.
package conflict

import (
	"fmt"
	"slices"
	"strings"

	"github.com/szopper/go-szopper/common/types"
)

// Strategy decides which version of an item present on both sides survives.
type Strategy uint8

const (
	// LastUpdatedWins keeps the version with the greater UpdatedAt, local on ties.
	LastUpdatedWins Strategy = iota
	// MergeAll is LastUpdatedWins except that Bought is true if either side bought the item.
	MergeAll
	// ManualResolution has no interactive implementation and behaves as LastUpdatedWins.
	ManualResolution
)

func (s Strategy) String() string {
	switch s {
	case LastUpdatedWins:
		return "LAST_UPDATED_WINS"
	case MergeAll:
		return "MERGE_ALL"
	case ManualResolution:
		return "MANUAL_RESOLUTION"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// ParseStrategy parses the String form of a strategy, case insensitive.
func ParseStrategy(text string) (Strategy, error) {
	for _, s := range []Strategy{LastUpdatedWins, MergeAll, ManualResolution} {
		if strings.EqualFold(text, s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown conflict strategy %q", text)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Set implements pflag.Value.
func (s *Strategy) Set(text string) error {
	return s.UnmarshalText([]byte(text))
}

// Type implements pflag.Value.
func (*Strategy) Type() string { return "strategy" }

// Resolution is the outcome of merging two lists.
type Resolution struct {
	Strategy Strategy
	// Items holds one entry per unique id: local items in their input order,
	// followed by items only the remote side has, in remote order.
	Items []types.Item
	// Conflicts is the number of ids present on both sides.
	Conflicts int
}

// Resolve merges remote into local. Inputs are never modified.
// When one list repeats an id, its last occurrence is the one considered.
func Resolve(local, remote []types.Item, strategy Strategy) Resolution {
	byID := make(map[string]int, len(local)+len(remote))
	items := make([]types.Item, 0, len(local)+len(remote))
	for _, item := range local {
		if idx, ok := byID[item.ID]; ok {
			items[idx] = item
			continue
		}
		byID[item.ID] = len(items)
		items = append(items, item)
	}
	localCount := len(items)
	ours := slices.Clone(items)

	conflicts := 0
	seen := make(map[string]struct{}, len(remote))
	for _, theirs := range remote {
		idx, ok := byID[theirs.ID]
		if !ok {
			byID[theirs.ID] = len(items)
			items = append(items, theirs)
			continue
		}
		if idx >= localCount {
			// repeated remote-only id
			items[idx] = theirs
			continue
		}
		if _, dup := seen[theirs.ID]; !dup {
			seen[theirs.ID] = struct{}{}
			conflicts++
		}
		items[idx] = merge(ours[idx], theirs, strategy)
	}
	return Resolution{Strategy: strategy, Items: items, Conflicts: conflicts}
}

func merge(local, remote types.Item, strategy Strategy) types.Item {
	winner := local
	if remote.UpdatedAt > local.UpdatedAt {
		winner = remote
	}
	if strategy == MergeAll {
		winner.Bought = local.Bought || remote.Bought
	}
	return winner
}
