package models

import (
	"strings"
	"time"
)

type Card struct {
	ID         string    `json:"id" db:"id"`
	Category   string    `json:"category" db:"category"`
	Front      string    `json:"front" db:"front"`
	Back       string    `json:"back" db:"back"`
	FrontImage *string   `json:"front_image,omitempty" db:"front_image"`
	BackImage  *string   `json:"back_image,omitempty" db:"back_image"`
	WrongCount int       `json:"wrong_count" db:"wrong_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Input returns the writable fields of the card.
func (c Card) Input() CardInput {
	return CardInput{
		Category:   c.Category,
		Front:      c.Front,
		Back:       c.Back,
		FrontImage: c.FrontImage,
		BackImage:  c.BackImage,
	}
}

// CardInput carries the user-editable fields of a card.
type CardInput struct {
	Category   string  `json:"category"`
	Front      string  `json:"front"`
	Back       string  `json:"back"`
	FrontImage *string `json:"front_image,omitempty"`
	BackImage  *string `json:"back_image,omitempty"`
}

// Normalize trims every field; blank image references become nil. Newlines inside
// the back are kept.
func (in CardInput) Normalize() CardInput {
	return CardInput{
		Category:   strings.TrimSpace(in.Category),
		Front:      strings.TrimSpace(in.Front),
		Back:       strings.TrimSpace(in.Back),
		FrontImage: trimRef(in.FrontImage),
		BackImage:  trimRef(in.BackImage),
	}
}

// MissingField returns the name of the first empty required field, or "".
func (in CardInput) MissingField() string {
	switch {
	case in.Category == "":
		return "category"
	case in.Front == "":
		return "front"
	case in.Back == "":
		return "back"
	}
	return ""
}

func trimRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	v := strings.TrimSpace(*ref)
	if v == "" {
		return nil
	}
	return &v
}

type CategoryCount struct {
	Category string `json:"category" db:"category"`
	Count    int    `json:"count" db:"count"`
}
