package study

import "fmt"

// Reveal is which side of the current card is showing.
type Reveal int

const (
	Question Reveal = iota
	Answer
)

func (r Reveal) String() string {
	switch r {
	case Question:
		return "question"
	case Answer:
		return "answer"
	default:
		return fmt.Sprintf("Reveal(%d)", int(r))
	}
}

// MarshalText encodes the state by name.
func (r Reveal) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Step is the single "advance" transition: QUESTION goes to ANSWER; ANSWER goes back
// to QUESTION and moves the cursor to the next card.
func (r Reveal) Step() (next Reveal, moveCursor bool) {
	if r == Question {
		return Answer, false
	}
	return Question, true
}

// Labels returns the labels for the question and answer sides.
func Labels(recall bool) (question, answer string) {
	if recall {
		return "explanation", "concept"
	}
	return "question", "answer"
}
