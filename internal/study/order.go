package study

import (
	"math/rand/v2"
	"slices"

	"github.com/vytor/studycards/internal/models"
)

// IDs returns the ids of cards in order.
func IDs(cards []models.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

// SameIDSet reports whether a and b hold the same ids, ignoring order.
func SameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return len(set) == len(b)
}

// Shuffle returns a uniformly random permutation of ids.
func Shuffle(ids []string, rng *rand.Rand) []string {
	out := slices.Clone(ids)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// BuildOrder computes the traversal order over an already filtered base.
//
// In fixed mode the order is the base ids in card-set order. In random mode the
// previous order is reused while its id set equals the base id set; any membership
// change produces a fresh permutation. previous must be a random-mode order when
// f.Random is set. rebuilt reports that the caller must reset cursor and reveal.
func BuildOrder(base []models.Card, f Filter, previous []string, rng *rand.Rand) (order []string, rebuilt bool) {
	ids := IDs(base)
	if len(ids) == 0 {
		return nil, len(previous) > 0
	}
	if !f.Random {
		return ids, !slices.Equal(ids, previous)
	}
	if len(previous) > 0 && SameIDSet(previous, ids) {
		return previous, false
	}
	return Shuffle(ids, rng), true
}
