package study_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/studycards/internal/models"
	"github.com/vytor/studycards/internal/study"
)

type SessionTestSuite struct {
	suite.Suite
	session *study.Session
	cards   []models.Card
}

func (s *SessionTestSuite) SetupTest() {
	s.cards = append(makeCards("X", 5), makeCards("Y", 2)...)
	s.session = study.NewSession(study.WithSeed(42))
	s.session.Replace(s.cards)
}

func TestSessionTestSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}

func (s *SessionTestSuite) TestRender_DefaultsToFirstCategory() {
	v := s.session.Render()

	s.False(v.Empty)
	s.Equal("X", v.Filter.Category)
	s.Equal("X-1", v.CardID)
	s.Equal(1, v.Position)
	s.Equal(5, v.Total)
	s.Equal(study.Question, v.Reveal)
	s.Equal("question", v.Label)
	s.Equal("Front 1", v.Content)
	s.True(v.Online)
}

func (s *SessionTestSuite) TestRender_EmptyFilterShowsMessage() {
	s.session.SetFilter(study.Filter{Category: "X", Search: "no such text"})

	v := s.session.Render()
	s.True(v.Empty)
	s.Equal(study.NoCardsMessage, v.Message)
	s.Empty(v.CardID)
	s.Zero(s.session.Cursor())

	s.ErrorIs(s.session.Advance(), study.ErrNoCard)
	s.ErrorIs(s.session.MarkCorrect(), study.ErrNoCard)
	_, err := s.session.MarkWrong()
	s.ErrorIs(err, study.ErrNoCard)
}

func (s *SessionTestSuite) TestAdvance_CyclesRevealAndWrapsCursor() {
	s.session.SetFilter(study.Filter{Category: "X"})
	n := 5

	for i := 0; i < n; i++ {
		v := s.session.Render()
		s.Equal(i+1, v.Position)
		s.Equal(study.Question, v.Reveal)

		s.Require().NoError(s.session.Advance())
		v = s.session.Render()
		s.Equal(study.Answer, v.Reveal)
		s.Equal("answer", v.Label)
		s.Equal(i+1, v.Position, "revealing must not move the cursor")

		s.Require().NoError(s.session.Advance())
	}

	v := s.session.Render()
	s.Equal(1, v.Position, "cursor wraps after the last card")
	s.Equal(study.Question, v.Reveal)
}

func (s *SessionTestSuite) TestMarkCorrect_RequiresAnswerSide() {
	s.session.SetFilter(study.Filter{Category: "X"})

	s.ErrorIs(s.session.MarkCorrect(), study.ErrAnswerHidden)
	_, err := s.session.MarkWrong()
	s.ErrorIs(err, study.ErrAnswerHidden)
	s.Zero(s.session.Cursor())
	s.Equal(study.Question, s.session.Reveal())

	s.Require().NoError(s.session.Advance())
	s.Require().NoError(s.session.MarkCorrect())
	s.Equal(1, s.session.Cursor())
	s.Equal(study.Question, s.session.Reveal())

	card, ok := s.session.Card("X-1")
	s.True(ok)
	s.Zero(card.WrongCount, "mark correct never changes wrong_count")
}

func (s *SessionTestSuite) TestMarkWrong_IncrementsLocallyAndAdvances() {
	s.session.SetFilter(study.Filter{Category: "X"})
	s.Require().NoError(s.session.Advance())

	before, err := s.session.MarkWrong()
	s.Require().NoError(err)
	s.Equal("X-1", before.ID)
	s.Zero(before.WrongCount)

	card, ok := s.session.Card("X-1")
	s.True(ok)
	s.Equal(1, card.WrongCount)
	s.Equal(1, s.session.Cursor())
	s.Equal(study.Question, s.session.Reveal())
}

func (s *SessionTestSuite) TestSetFilter_ChangeResetsCursorAndReveal() {
	s.session.SetFilter(study.Filter{Category: "X"})
	s.Require().NoError(s.session.Advance())
	s.Require().NoError(s.session.Advance())
	s.Require().NoError(s.session.Advance())
	s.Equal(1, s.session.Cursor())
	s.Equal(study.Answer, s.session.Reveal())

	// Same signature after normalization changes nothing.
	s.session.SetFilter(study.Filter{Category: " X "})
	s.Equal(1, s.session.Cursor())
	s.Equal(study.Answer, s.session.Reveal())

	s.session.SetFilter(study.Filter{Category: "X", Search: "front"})
	s.Zero(s.session.Cursor())
	s.Equal(study.Question, s.session.Reveal())
}

func (s *SessionTestSuite) TestRandomMode_SameSetKeepsPermutation() {
	cards := []models.Card{
		{ID: "1", Category: "X", Front: "apple one", Back: "b", WrongCount: 1},
		{ID: "2", Category: "X", Front: "apple two", Back: "b", WrongCount: 1},
		{ID: "3", Category: "X", Front: "apple three", Back: "b", WrongCount: 1},
		{ID: "4", Category: "X", Front: "apple four", Back: "b"},
	}
	s.session.Replace(cards)

	s.session.SetFilter(study.Filter{Category: "X", Random: true, WrongOnly: true})
	s.session.Render()
	first := s.session.Order()
	s.ElementsMatch([]string{"1", "2", "3"}, first)

	// A different signature selecting the same set does not draw a new permutation.
	s.session.SetFilter(study.Filter{Category: "X", Random: true, WrongOnly: true, Search: "apple"})
	s.session.Render()
	s.Equal(first, s.session.Order())
	s.Zero(s.session.Cursor())

	cards[2].WrongCount = 0
	cards[3].WrongCount = 1
	s.session.Replace(cards)
	s.session.Render()
	s.ElementsMatch([]string{"1", "2", "4"}, s.session.Order())
	s.Zero(s.session.Cursor())
	s.Equal(study.Question, s.session.Reveal())
}

func (s *SessionTestSuite) TestRandomMode_ReplaceWithSameSetKeepsPosition() {
	s.session.SetFilter(study.Filter{Category: "X", Random: true})
	s.session.Render()
	first := s.session.Order()
	s.Require().NoError(s.session.Advance())
	s.Require().NoError(s.session.Advance())

	cards := slices.Clone(s.cards)
	cards[0].WrongCount = 3
	s.session.Replace(cards)
	s.session.Render()

	s.Equal(first, s.session.Order())
	s.Equal(1, s.session.Cursor())
}

func (s *SessionTestSuite) TestReshuffle() {
	s.session.SetFilter(study.Filter{Category: "X"})
	s.False(s.session.Reshuffle(), "fixed mode has nothing to reshuffle")

	s.session.Replace(makeCards("X", 20))
	s.session.SetFilter(study.Filter{Category: "X", Random: true})
	s.session.Render()
	first := s.session.Order()
	s.Require().NoError(s.session.Advance())
	s.Require().NoError(s.session.Advance())
	s.Require().NoError(s.session.Advance())

	s.True(s.session.Reshuffle())
	s.session.Render()
	second := s.session.Order()
	s.ElementsMatch(first, second)
	s.NotEqual(first, second)
	s.Zero(s.session.Cursor())
	s.Equal(study.Question, s.session.Reveal())
}

func (s *SessionTestSuite) TestRender_RecoversWhenCurrentCardDisappears() {
	s.session.SetFilter(study.Filter{Category: "X", Random: true})
	s.session.Render()
	for i := 0; i < 4; i++ {
		s.Require().NoError(s.session.Advance())
	}
	current, ok := s.session.Current()
	s.Require().True(ok)

	var remaining []models.Card
	for _, c := range s.cards {
		if c.ID != current.ID {
			remaining = append(remaining, c)
		}
	}
	s.session.Replace(remaining)

	v := s.session.Render()
	s.False(v.Empty)
	s.Equal(1, v.Position)
	s.Equal(4, v.Total)
	s.Equal(study.Question, v.Reveal)
	s.NotContains(s.session.Order(), current.ID)
}

func (s *SessionTestSuite) TestRecallMode_SwapsSides() {
	img := "front.png"
	s.session.Replace([]models.Card{
		{ID: "1", Category: "X", Front: "concept text", Back: "explanation text", FrontImage: &img},
	})
	s.session.SetFilter(study.Filter{Category: "X", Recall: true})

	v := s.session.Render()
	s.Equal("explanation", v.Label)
	s.Equal("explanation text", v.Content)
	s.Nil(v.Image)

	s.Require().NoError(s.session.Advance())
	v = s.session.Render()
	s.Equal("concept", v.Label)
	s.Equal("concept text", v.Content)
	s.Require().NotNil(v.Image)
	s.Equal("front.png", *v.Image)
}

func (s *SessionTestSuite) TestMarkOffline() {
	s.session.MarkOffline()
	s.False(s.session.Online())
	s.False(s.session.Render().Online)

	s.session.Replace(s.cards)
	s.True(s.session.Online())
}

func TestSession_MarkWrongThenFilterWrongOnly(t *testing.T) {
	session := study.NewSession(study.WithSeed(1))
	session.Replace(makeCards("X", 5))
	session.SetFilter(study.Filter{Category: "X"})

	for i := 0; i < 3; i++ {
		require.NoError(t, session.Advance())
		_, err := session.MarkWrong()
		require.NoError(t, err)
	}

	session.SetFilter(study.Filter{Category: "X", WrongOnly: true})
	session.Render()
	assert.Equal(t, []string{"X-1", "X-2", "X-3"}, session.Order())
}

func TestReveal_StepAndLabels(t *testing.T) {
	next, move := study.Question.Step()
	assert.Equal(t, study.Answer, next)
	assert.False(t, move)

	next, move = study.Answer.Step()
	assert.Equal(t, study.Question, next)
	assert.True(t, move)

	q, a := study.Labels(false)
	assert.Equal(t, "question", q)
	assert.Equal(t, "answer", a)

	text, err := study.Answer.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "answer", string(text))
}
