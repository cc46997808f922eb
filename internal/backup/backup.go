// Package backup converts card sets to and from the JSON backup file format: an
// array of objects carrying at least category, front and back.
package backup

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/vytor/studycards/internal/errors"
	"github.com/vytor/studycards/internal/models"
)

// Kind tells why a backup was taken.
type Kind string

const (
	KindManual Kind = "manual"
	KindSafety Kind = "safety"
	KindAudit  Kind = "audit"
)

// ContentType of every encoded backup.
const ContentType = "application/json"

const stampLayout = "20060102T150405.000000000Z"

// Name returns the immutable object name for a backup taken at t.
func Name(kind Kind, t time.Time) string {
	return fmt.Sprintf("cards-%s-%s.json", kind, t.UTC().Format(stampLayout))
}

// Encode serializes the card set in list order.
func Encode(cards []models.Card) ([]byte, error) {
	if cards == nil {
		cards = []models.Card{}
	}
	return json.MarshalIndent(cards, "", "  ")
}

// Decoded is the outcome of reading a backup file.
type Decoded struct {
	Cards   []models.Card
	Skipped int
}

// Decode parses a backup leniently: entries that are not objects or lack a non-empty
// category, front or back are discarded; id and wrong_count are defaulted when absent
// or unusable. A payload that is not an array, or that leaves no valid record, is a
// validation error. Creation stamps in the file are ignored.
func Decode(data []byte) (Decoded, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Decoded{}, errors.NewValidationError("backup", "not a JSON array of card records")
	}

	out := Decoded{Cards: make([]models.Card, 0, len(raw))}
	seenIDs := make(map[string]bool, len(raw))
	for _, entry := range raw {
		card, ok := decodeRecord(entry)
		if !ok {
			out.Skipped++
			continue
		}
		if card.ID != "" {
			if seenIDs[card.ID] {
				card.ID = ""
			} else {
				seenIDs[card.ID] = true
			}
		}
		out.Cards = append(out.Cards, card)
	}

	if len(out.Cards) == 0 {
		return out, errors.NewValidationError("backup", fmt.Sprintf("no valid card records (%d malformed)", out.Skipped))
	}
	return out, nil
}

func decodeRecord(entry json.RawMessage) (models.Card, bool) {
	var rec map[string]any
	if err := json.Unmarshal(entry, &rec); err != nil || rec == nil {
		return models.Card{}, false
	}

	card := models.Card{
		Category: requiredString(rec["category"]),
		Front:    requiredString(rec["front"]),
		Back:     requiredString(rec["back"]),
	}
	if card.Category == "" || card.Front == "" || card.Back == "" {
		return models.Card{}, false
	}

	card.ID = idOf(rec["id"])
	card.WrongCount = wrongCountOf(rec["wrong_count"])
	card.FrontImage = optionalString(rec["front_image"])
	card.BackImage = optionalString(rec["back_image"])
	return card, true
}

func requiredString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func optionalString(v any) *string {
	s := requiredString(v)
	if s == "" {
		return nil
	}
	return &s
}

func idOf(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		if id == math.Trunc(id) {
			return fmt.Sprintf("%d", int64(id))
		}
	}
	return ""
}

func wrongCountOf(v any) int {
	n, ok := v.(float64)
	if !ok || n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return 0
	}
	return int(n)
}
