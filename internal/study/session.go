// Package study holds the process-local state of one study session and the pure
// logic that derives its traversal order and displayed card. It performs no I/O;
// services.StudyService drives it against the card store.
package study

import (
	"errors"
	"math/rand/v2"
	"slices"

	"github.com/vytor/studycards/internal/models"
)

var (
	// ErrAnswerHidden is returned when a card is marked before its answer is shown.
	ErrAnswerHidden = errors.New("answer not revealed yet")
	// ErrNoCard is returned when the filter leaves no card to act on.
	ErrNoCard = errors.New("no cards to show")
)

// Session is the mutable snapshot of one study session. It is not safe for
// concurrent use; callers serialize actions per session.
type Session struct {
	cards    []models.Card
	filter   Filter
	order    []string
	shuffled bool
	cursor   int
	reveal   Reveal
	online   bool
	rng      *rand.Rand
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the source used for random-mode permutations.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) {
		s.rng = rng
	}
}

// WithSeed makes random-mode permutations reproducible.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewSession returns an empty, connected session showing the question side.
func NewSession(opts ...Option) *Session {
	s := &Session{
		reveal: Question,
		online: true,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Replace swaps in a freshly fetched card set and marks the session connected.
// Derived state is recomputed on the next render.
func (s *Session) Replace(cards []models.Card) {
	s.cards = slices.Clone(cards)
	s.online = true
}

// MarkOffline records a failed fetch; the session stays blocked until Replace.
func (s *Session) MarkOffline() {
	s.online = false
}

func (s *Session) Online() bool { return s.online }

// Cards returns a copy of the card set.
func (s *Session) Cards() []models.Card {
	return slices.Clone(s.cards)
}

// Card returns the card with id from the card set.
func (s *Session) Card(id string) (models.Card, bool) {
	for _, c := range s.cards {
		if c.ID == id {
			return c, true
		}
	}
	return models.Card{}, false
}

func (s *Session) Filter() Filter { return s.filter }

func (s *Session) Cursor() int { return s.cursor }

func (s *Session) Reveal() Reveal { return s.reveal }

// Order returns the traversal order of the last render.
func (s *Session) Order() []string {
	return slices.Clone(s.order)
}

// SetFilter applies a new filter signature. A changed signature resets the cursor
// and shows the question side; a random order is kept while its id set still
// matches.
func (s *Session) SetFilter(f Filter) {
	f = f.Normalize()
	if f == s.filter {
		return
	}
	s.filter = f
	s.cursor = 0
	s.reveal = Question
}

// Reshuffle draws a fresh permutation in random mode regardless of membership.
// It reports false, changing nothing, in fixed mode or when no card is eligible.
func (s *Session) Reshuffle() bool {
	f := s.effectiveFilter()
	if !f.Random {
		return false
	}
	ids := IDs(FilterCards(s.cards, f))
	if len(ids) == 0 {
		return false
	}
	s.order = Shuffle(ids, s.rng)
	s.shuffled = true
	s.cursor = 0
	s.reveal = Question
	return true
}

// Advance applies the advance input to the reveal state machine.
func (s *Session) Advance() error {
	if _, ok := s.current(); !ok {
		return ErrNoCard
	}
	s.step()
	return nil
}

// MarkCorrect is an advance from the answer side.
func (s *Session) MarkCorrect() error {
	if _, ok := s.current(); !ok {
		return ErrNoCard
	}
	if s.reveal != Answer {
		return ErrAnswerHidden
	}
	s.step()
	return nil
}

// MarkWrong is MarkCorrect plus an optimistic local wrong_count increment. It
// returns the card as it was before the increment so the caller can persist
// WrongCount+1; the cursor has already moved on.
func (s *Session) MarkWrong() (models.Card, error) {
	card, ok := s.current()
	if !ok {
		return models.Card{}, ErrNoCard
	}
	if s.reveal != Answer {
		return models.Card{}, ErrAnswerHidden
	}
	for i := range s.cards {
		if s.cards[i].ID == card.ID {
			s.cards[i].WrongCount++
			break
		}
	}
	s.step()
	return card, nil
}

// Current returns the card under the cursor after recomputing derived state.
func (s *Session) Current() (models.Card, bool) {
	return s.current()
}

func (s *Session) step() {
	next, move := s.reveal.Step()
	s.reveal = next
	if move {
		s.cursor = wrap(s.cursor+1, len(s.order))
	}
}

// effectiveFilter selects the first category when none is chosen yet.
func (s *Session) effectiveFilter() Filter {
	if s.filter.Category == "" {
		if cats := Categories(s.cards); len(cats) > 0 {
			f := s.filter
			f.Category = cats[0]
			s.SetFilter(f)
		}
	}
	return s.filter
}

// current recomputes the traversal order for the present card set and filter and
// returns the card under the cursor.
func (s *Session) current() (models.Card, bool) {
	f := s.effectiveFilter()
	base := FilterCards(s.cards, f)

	// The second pass only runs when the order names a card missing from the base.
	for attempt := 0; attempt < 2; attempt++ {
		previous := s.order
		if f.Random && !s.shuffled {
			previous = nil
		}
		order, rebuilt := BuildOrder(base, f, previous, s.rng)
		s.order = order
		s.shuffled = f.Random && len(order) > 0
		if rebuilt {
			s.cursor = 0
			s.reveal = Question
		}
		if len(order) == 0 {
			s.cursor = 0
			return models.Card{}, false
		}
		s.cursor = wrap(s.cursor, len(order))

		id := order[s.cursor]
		for _, c := range base {
			if c.ID == id {
				return c, true
			}
		}
		s.order = nil
		s.shuffled = false
		s.cursor = 0
		s.reveal = Question
	}
	return models.Card{}, false
}

func wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
