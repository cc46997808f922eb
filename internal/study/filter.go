package study

import (
	"sort"
	"strings"

	"github.com/vytor/studycards/internal/models"
)

// Filter is the filter signature of a session: which cards are eligible and how
// they are shown. Two filters are the same signature iff they compare equal after
// Normalize.
type Filter struct {
	Category  string `json:"category"`
	Random    bool   `json:"random"`
	WrongOnly bool   `json:"wrong_only"`
	Recall    bool   `json:"recall"`
	Search    string `json:"search"`
}

// Normalize trims the category and lowercases the search text.
func (f Filter) Normalize() Filter {
	f.Category = strings.TrimSpace(f.Category)
	f.Search = strings.ToLower(strings.TrimSpace(f.Search))
	return f
}

// FilterCards keeps, in card-set order, the cards of the selected category, then
// only those answered wrong at least once when WrongOnly is set, then those whose
// front or back contains the search text ignoring case.
func FilterCards(cards []models.Card, f Filter) []models.Card {
	var out []models.Card
	for _, c := range cards {
		if c.Category != f.Category {
			continue
		}
		if f.WrongOnly && c.WrongCount <= 0 {
			continue
		}
		if f.Search != "" &&
			!strings.Contains(strings.ToLower(c.Front), f.Search) &&
			!strings.Contains(strings.ToLower(c.Back), f.Search) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Categories returns the distinct categories in sorted order.
func Categories(cards []models.Card) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range cards {
		if !seen[c.Category] {
			seen[c.Category] = true
			out = append(out, c.Category)
		}
	}
	sort.Strings(out)
	return out
}
