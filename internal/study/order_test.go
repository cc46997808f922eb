package study_test

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/studycards/internal/models"
	"github.com/vytor/studycards/internal/study"
)

func makeCards(category string, n int) []models.Card {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cards := make([]models.Card, n)
	for i := range cards {
		cards[i] = models.Card{
			ID:        fmt.Sprintf("%s-%d", category, i+1),
			Category:  category,
			Front:     fmt.Sprintf("Front %d", i+1),
			Back:      fmt.Sprintf("back %d", i+1),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return cards
}

func TestFilterCards_Pipeline(t *testing.T) {
	cards := []models.Card{
		{ID: "1", Category: "X", Front: "Ohm's Law", Back: "V=IR", WrongCount: 1},
		{ID: "2", Category: "X", Front: "Kirchhoff", Back: "current LAW at nodes"},
		{ID: "3", Category: "Y", Front: "law of Y", Back: "other", WrongCount: 4},
		{ID: "4", Category: "X", Front: "Capacitor", Back: "stores charge", WrongCount: 2},
	}

	tests := []struct {
		name   string
		filter study.Filter
		want   []string
	}{
		{name: "category only", filter: study.Filter{Category: "X"}, want: []string{"1", "2", "4"}},
		{name: "wrong only", filter: study.Filter{Category: "X", WrongOnly: true}, want: []string{"1", "4"}},
		{name: "search front and back ignoring case", filter: study.Filter{Category: "X", Search: "law"}, want: []string{"1", "2"}},
		{name: "wrong only and search", filter: study.Filter{Category: "X", WrongOnly: true, Search: "LAW"}.Normalize(), want: []string{"1"}},
		{name: "unknown category", filter: study.Filter{Category: "Z"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := study.IDs(study.FilterCards(cards, tt.filter))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategories_SortedAndUnique(t *testing.T) {
	cards := append(makeCards("curriculum", 2), makeCards("circuits", 3)...)
	assert.Equal(t, []string{"circuits", "curriculum"}, study.Categories(cards))
	assert.Empty(t, study.Categories(nil))
}

func TestBuildOrder_IDSetMatchesFilteredSet(t *testing.T) {
	cards := makeCards("X", 12)
	for i := range cards {
		cards[i].WrongCount = i % 3
	}
	cards = append(cards, makeCards("Y", 4)...)
	rng := rand.New(rand.NewPCG(7, 11))

	filters := []study.Filter{
		{Category: "X"},
		{Category: "X", Random: true},
		{Category: "X", WrongOnly: true},
		{Category: "X", WrongOnly: true, Random: true},
		{Category: "X", Search: "front 1"},
		{Category: "X", Search: "front 1", Random: true},
		{Category: "Y", Random: true},
	}

	for _, f := range filters {
		t.Run(fmt.Sprintf("%+v", f), func(t *testing.T) {
			base := study.FilterCards(cards, f)
			order, rebuilt := study.BuildOrder(base, f, nil, rng)
			assert.True(t, rebuilt)
			assert.ElementsMatch(t, study.IDs(base), order)
			assert.Len(t, order, len(base))
		})
	}
}

func TestBuildOrder_FixedModeFollowsCardSetOrder(t *testing.T) {
	cards := makeCards("X", 5)
	f := study.Filter{Category: "X"}

	order, rebuilt := study.BuildOrder(cards, f, nil, nil)
	assert.True(t, rebuilt)
	assert.Equal(t, []string{"X-1", "X-2", "X-3", "X-4", "X-5"}, order)

	again, rebuilt := study.BuildOrder(cards, f, order, nil)
	assert.False(t, rebuilt, "unchanged inputs must give a stable order")
	assert.Equal(t, order, again)
}

func TestBuildOrder_RandomModeReusesOrderForSameSet(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	cards := makeCards("X", 3)
	f := study.Filter{Category: "X", Random: true}

	first, rebuilt := study.BuildOrder(cards, f, nil, rng)
	require.True(t, rebuilt)

	// Same members in a different sequence are still the same set.
	reversed := []models.Card{cards[2], cards[1], cards[0]}
	second, rebuilt := study.BuildOrder(reversed, f, first, rng)
	assert.False(t, rebuilt)
	assert.Equal(t, first, second)

	changed := []models.Card{cards[0], cards[1], makeCards("X", 4)[3]}
	third, rebuilt := study.BuildOrder(changed, f, first, rng)
	assert.True(t, rebuilt)
	assert.ElementsMatch(t, []string{"X-1", "X-2", "X-4"}, third)
}

func TestBuildOrder_EmptyBase(t *testing.T) {
	order, rebuilt := study.BuildOrder(nil, study.Filter{Category: "X"}, nil, nil)
	assert.Empty(t, order)
	assert.False(t, rebuilt)

	order, rebuilt = study.BuildOrder(nil, study.Filter{Category: "X"}, []string{"gone"}, nil)
	assert.Empty(t, order)
	assert.True(t, rebuilt)
}

func TestSameIDSet(t *testing.T) {
	assert.True(t, study.SameIDSet([]string{"1", "2", "3"}, []string{"3", "1", "2"}))
	assert.True(t, study.SameIDSet(nil, []string{}))
	assert.False(t, study.SameIDSet([]string{"1", "2", "3"}, []string{"1", "2", "4"}))
	assert.False(t, study.SameIDSet([]string{"1", "2"}, []string{"1", "2", "3"}))
	assert.False(t, study.SameIDSet([]string{"1", "1"}, []string{"1", "2"}))
}

func TestShuffle_IsPermutation(t *testing.T) {
	ids := study.IDs(makeCards("X", 20))
	shuffled := study.Shuffle(ids, rand.New(rand.NewPCG(3, 4)))

	assert.ElementsMatch(t, ids, shuffled)
	assert.Equal(t, "X-1", ids[0], "input must not be modified")
}
