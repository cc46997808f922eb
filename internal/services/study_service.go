package services

import (
	"context"
	stderrors "errors"

	"github.com/vytor/studycards/internal/errors"
	"github.com/vytor/studycards/internal/logger"
	"github.com/vytor/studycards/internal/models"
	"github.com/vytor/studycards/internal/repository"
	"github.com/vytor/studycards/internal/study"
)

// Outcome is what a study action leaves on screen.
type Outcome struct {
	View       study.View   `json:"view"`
	Categories []string     `json:"categories"`
	CardCount  int          `json:"card_count"`
	Card       *models.Card `json:"card,omitempty"`
	Warnings   []string     `json:"warnings,omitempty"`
}

// StudyService drives a study session against the card store. Every successful
// mutation is followed by an audit backup and a full refetch of the card set.
// Callers serialize calls per session.
type StudyService interface {
	Sync(ctx context.Context, sess *study.Session) (Outcome, error)
	View(ctx context.Context, sess *study.Session) Outcome
	SetFilter(ctx context.Context, sess *study.Session, f study.Filter) (Outcome, error)
	Advance(ctx context.Context, sess *study.Session) (Outcome, error)
	MarkCorrect(ctx context.Context, sess *study.Session) (Outcome, error)
	MarkWrong(ctx context.Context, sess *study.Session) (Outcome, error)
	Reshuffle(ctx context.Context, sess *study.Session) (Outcome, error)
	AddCard(ctx context.Context, sess *study.Session, in models.CardInput) (Outcome, error)
	EditCard(ctx context.Context, sess *study.Session, id string, in models.CardInput) (Outcome, error)
	DeleteCard(ctx context.Context, sess *study.Session, id string) (Outcome, error)
	ResetWrongCount(ctx context.Context, sess *study.Session, id string) (Outcome, error)
	ListCards(ctx context.Context, sess *study.Session, category string) ([]models.Card, error)
}

type studyService struct {
	cards   repository.CardRepository
	auditor Auditor
}

// NewStudyService creates a new StudyService
func NewStudyService(cards repository.CardRepository, auditor Auditor) StudyService {
	if auditor == nil {
		auditor = NoopAuditor()
	}
	return &studyService{cards: cards, auditor: auditor}
}

func (s *studyService) Sync(ctx context.Context, sess *study.Session) (Outcome, error) {
	logger.FromContext(ctx).Debug("syncing session")
	return s.resync(ctx, sess, nil)
}

func (s *studyService) View(ctx context.Context, sess *study.Session) Outcome {
	return outcomeOf(sess, nil)
}

func (s *studyService) SetFilter(ctx context.Context, sess *study.Session, f study.Filter) (Outcome, error) {
	if err := requireOnline(sess); err != nil {
		return Outcome{}, err
	}
	logger.FromContext(ctx).Debug("setting filter: %+v", f)
	sess.SetFilter(f)
	return outcomeOf(sess, nil), nil
}

func (s *studyService) Advance(ctx context.Context, sess *study.Session) (Outcome, error) {
	if err := requireOnline(sess); err != nil {
		return Outcome{}, err
	}
	if err := localError(sess.Advance()); err != nil {
		return Outcome{}, err
	}
	return outcomeOf(sess, nil), nil
}

func (s *studyService) MarkCorrect(ctx context.Context, sess *study.Session) (Outcome, error) {
	if err := requireOnline(sess); err != nil {
		return Outcome{}, err
	}
	if err := localError(sess.MarkCorrect()); err != nil {
		return Outcome{}, err
	}
	return outcomeOf(sess, nil), nil
}

// MarkWrong advances first and then persists wrong_count+1. A failed counter write
// is a warning: the advance stands and the resync shows the stored counter.
func (s *studyService) MarkWrong(ctx context.Context, sess *study.Session) (Outcome, error) {
	log := logger.FromContext(ctx)
	if err := requireOnline(sess); err != nil {
		return Outcome{}, err
	}

	card, err := sess.MarkWrong()
	if stderrors.Is(err, study.ErrNoCard) {
		return outcomeOf(sess, nil), nil
	}
	if err := localError(err); err != nil {
		return Outcome{}, err
	}

	var warnings []string
	next := card.WrongCount + 1
	if err := s.cards.UpdateWrongCount(ctx, card.ID, next); err != nil {
		log.Warn("failed to update wrong_count: id=%s, value=%d: %v", card.ID, next, err)
		warnings = append(warnings, warningOf(errors.NewBestEffortError("wrong count update", err)))
	} else {
		warnings = s.audit(ctx, "mark_wrong", warnings)
	}
	return s.resync(ctx, sess, warnings)
}

func (s *studyService) Reshuffle(ctx context.Context, sess *study.Session) (Outcome, error) {
	if err := requireOnline(sess); err != nil {
		return Outcome{}, err
	}
	if !sess.Reshuffle() {
		logger.FromContext(ctx).Debug("reshuffle ignored outside random mode")
	}
	return outcomeOf(sess, nil), nil
}

func (s *studyService) AddCard(ctx context.Context, sess *study.Session, in models.CardInput) (Outcome, error) {
	log := logger.FromContext(ctx)
	if err := requireOnline(sess); err != nil {
		return Outcome{}, err
	}
	in, err := validInput(in)
	if err != nil {
		return Outcome{}, err
	}

	card, err := s.cards.Insert(ctx, in)
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return Outcome{}, errors.NewWriteError("save card", err)
	}
	log.Info("card added: id=%s, category=%s", card.ID, card.Category)

	out, err := s.resync(ctx, sess, s.audit(ctx, "insert", nil))
	if err != nil {
		return Outcome{}, err
	}
	out.Card = &card
	return out, nil
}

func (s *studyService) EditCard(ctx context.Context, sess *study.Session, id string, in models.CardInput) (Outcome, error) {
	log := logger.FromContext(ctx)
	if err := requireOnline(sess); err != nil {
		return Outcome{}, err
	}
	in, err := validInput(in)
	if err != nil {
		return Outcome{}, err
	}

	if err := s.cards.Update(ctx, id, in); err != nil {
		return Outcome{}, writeError(log, "update card", id, err)
	}
	log.Info("card updated: id=%s", id)
	return s.resync(ctx, sess, s.audit(ctx, "update", nil))
}

func (s *studyService) DeleteCard(ctx context.Context, sess *study.Session, id string) (Outcome, error) {
	log := logger.FromContext(ctx)
	if err := requireOnline(sess); err != nil {
		return Outcome{}, err
	}

	if err := s.cards.Delete(ctx, id); err != nil {
		return Outcome{}, writeError(log, "delete card", id, err)
	}
	log.Info("card deleted: id=%s", id)
	return s.resync(ctx, sess, s.audit(ctx, "delete", nil))
}

func (s *studyService) ResetWrongCount(ctx context.Context, sess *study.Session, id string) (Outcome, error) {
	log := logger.FromContext(ctx)
	if err := requireOnline(sess); err != nil {
		return Outcome{}, err
	}

	if err := s.cards.UpdateWrongCount(ctx, id, 0); err != nil {
		return Outcome{}, writeError(log, "reset wrong count", id, err)
	}
	log.Info("wrong_count reset: id=%s", id)
	return s.resync(ctx, sess, s.audit(ctx, "reset_wrong", nil))
}

// ListCards returns the session's cards in card-set order, limited to category
// unless it is empty.
func (s *studyService) ListCards(ctx context.Context, sess *study.Session, category string) ([]models.Card, error) {
	if err := requireOnline(sess); err != nil {
		return nil, err
	}
	cards := sess.Cards()
	if category == "" {
		return cards, nil
	}
	out := []models.Card{}
	for _, c := range cards {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *studyService) audit(ctx context.Context, reason string, warnings []string) []string {
	if err := s.auditor.Audit(ctx, reason); err != nil {
		return append(warnings, warningOf(err))
	}
	return warnings
}

// resync replaces the card set with a fresh fetch. A failed fetch blocks the
// session until a later sync succeeds.
func (s *studyService) resync(ctx context.Context, sess *study.Session, warnings []string) (Outcome, error) {
	log := logger.FromContext(ctx)

	cards, err := s.cards.List(ctx)
	if err != nil {
		log.Error("failed to fetch cards, session is offline: %v", err)
		sess.MarkOffline()
		return Outcome{}, errors.NewConnectivityError(err)
	}
	sess.Replace(cards)
	return outcomeOf(sess, warnings), nil
}

func outcomeOf(sess *study.Session, warnings []string) Outcome {
	cards := sess.Cards()
	return Outcome{
		View:       sess.Render(),
		Categories: study.Categories(cards),
		CardCount:  len(cards),
		Warnings:   warnings,
	}
}

func requireOnline(sess *study.Session) error {
	if !sess.Online() {
		return errors.NewConnectivityError(stderrors.New("session is offline"))
	}
	return nil
}

// localError maps session rule violations; an empty filter is not an error.
func localError(err error) error {
	switch {
	case err == nil, stderrors.Is(err, study.ErrNoCard):
		return nil
	case stderrors.Is(err, study.ErrAnswerHidden):
		return errors.NewValidationError("reveal", "show the answer before marking the card")
	default:
		return errors.NewInternalError(err)
	}
}

func validInput(in models.CardInput) (models.CardInput, error) {
	in = in.Normalize()
	if field := in.MissingField(); field != "" {
		return in, errors.NewValidationError(field, "cannot be empty")
	}
	return in, nil
}

func writeError(log *logger.Logger, op, id string, err error) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NewNotFoundError("card", id)
	}
	log.Error("%s failed: id=%s: %v", op, id, err)
	return errors.NewWriteError(op, err)
}

func warningOf(err error) string {
	if appErr, ok := errors.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}
