package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/studycards/internal/errors"
	"github.com/vytor/studycards/internal/logger"
	"github.com/vytor/studycards/internal/models"
	"github.com/vytor/studycards/internal/repository"
	"github.com/vytor/studycards/internal/services"
	"github.com/vytor/studycards/internal/study"
)

type Server struct {
	StudyService       services.StudyService
	MaintenanceService services.MaintenanceService
	Cards              repository.CardRepository
	Sessions           *SessionRegistry
}

// sessionAction is a study action applied to the request's session.
type sessionAction func(ctx context.Context, sess *study.Session) (services.Outcome, error)

func (s *Server) respondOutcome(w http.ResponseWriter, r *http.Request, status int, action sessionAction) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		handleError(w, r, errors.NewInternalError(errNoSession))
		return
	}

	out, err := action(r.Context(), sess)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if len(out.Warnings) > 0 {
		logger.FromContext(r.Context()).Warn("action completed with warnings: %v", out.Warnings)
	}
	writeJSON(w, status, out)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.respondOutcome(w, r, http.StatusOK, func(ctx context.Context, sess *study.Session) (services.Outcome, error) {
		return s.StudyService.View(ctx, sess), nil
	})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	s.respondOutcome(w, r, http.StatusOK, s.StudyService.Sync)
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var f study.Filter
	if err := decodeJSON(r, &f); err != nil {
		handleError(w, r, err)
		return
	}
	s.respondOutcome(w, r, http.StatusOK, func(ctx context.Context, sess *study.Session) (services.Outcome, error) {
		return s.StudyService.SetFilter(ctx, sess, f)
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.respondOutcome(w, r, http.StatusOK, s.StudyService.Advance)
}

func (s *Server) handleMarkCorrect(w http.ResponseWriter, r *http.Request) {
	s.respondOutcome(w, r, http.StatusOK, s.StudyService.MarkCorrect)
}

func (s *Server) handleMarkWrong(w http.ResponseWriter, r *http.Request) {
	s.respondOutcome(w, r, http.StatusOK, s.StudyService.MarkWrong)
}

func (s *Server) handleReshuffle(w http.ResponseWriter, r *http.Request) {
	s.respondOutcome(w, r, http.StatusOK, s.StudyService.Reshuffle)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		handleError(w, r, errors.NewInternalError(errNoSession))
		return
	}

	cards, err := s.StudyService.ListCards(r.Context(), sess, r.URL.Query().Get("category"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Card{"cards": cards})
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var in models.CardInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	s.respondOutcome(w, r, http.StatusCreated, func(ctx context.Context, sess *study.Session) (services.Outcome, error) {
		return s.StudyService.AddCard(ctx, sess, in)
	})
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in models.CardInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	s.respondOutcome(w, r, http.StatusOK, func(ctx context.Context, sess *study.Session) (services.Outcome, error) {
		return s.StudyService.EditCard(ctx, sess, id, in)
	})
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.respondOutcome(w, r, http.StatusOK, func(ctx context.Context, sess *study.Session) (services.Outcome, error) {
		return s.StudyService.DeleteCard(ctx, sess, id)
	})
}

func (s *Server) handleResetWrongCount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.respondOutcome(w, r, http.StatusOK, func(ctx context.Context, sess *study.Session) (services.Outcome, error) {
		return s.StudyService.ResetWrongCount(ctx, sess, id)
	})
}
