package study

// NoCardsMessage is shown when the filter leaves nothing to study.
const NoCardsMessage = "no cards to show"

// View is what the study screen displays after an action.
type View struct {
	Empty      bool    `json:"empty"`
	Message    string  `json:"message,omitempty"`
	CardID     string  `json:"card_id,omitempty"`
	Category   string  `json:"category,omitempty"`
	Reveal     Reveal  `json:"reveal"`
	Label      string  `json:"label,omitempty"`
	Content    string  `json:"content,omitempty"`
	Image      *string `json:"image,omitempty"`
	WrongCount int     `json:"wrong_count"`
	Position   int     `json:"position"`
	Total      int     `json:"total"`
	Filter     Filter  `json:"filter"`
	Online     bool    `json:"online"`
}

// Render recomputes derived state and describes the current card. In recall mode
// the back is asked first and the front is the answer.
func (s *Session) Render() View {
	card, ok := s.current()
	v := View{
		Reveal: s.reveal,
		Filter: s.filter,
		Online: s.online,
	}
	if !ok {
		v.Empty = true
		v.Message = NoCardsMessage
		return v
	}

	primary, secondary := card.Front, card.Back
	primaryImg, secondaryImg := card.FrontImage, card.BackImage
	if s.filter.Recall {
		primary, secondary = secondary, primary
		primaryImg, secondaryImg = secondaryImg, primaryImg
	}
	questionLabel, answerLabel := Labels(s.filter.Recall)

	v.CardID = card.ID
	v.Category = card.Category
	v.WrongCount = card.WrongCount
	v.Position = s.cursor + 1
	v.Total = len(s.order)
	if s.reveal == Question {
		v.Label, v.Content, v.Image = questionLabel, primary, primaryImg
	} else {
		v.Label, v.Content, v.Image = answerLabel, secondary, secondaryImg
	}
	return v
}
