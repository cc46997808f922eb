package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/studycards/internal/logger"
	"github.com/vytor/studycards/internal/services"
)

type renameRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type deleteCategoryRequest struct {
	Name string `json:"name"`
	services.Confirmation
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	counts, err := s.MaintenanceService.Categories(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": counts})
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	report, err := s.MaintenanceService.RenameCategory(r.Context(), req.From, req.To)
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.resyncSession(r.Context())
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	var req deleteCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	report, err := s.MaintenanceService.DeleteCategory(r.Context(), req.Name, req.Confirmation)
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.resyncSession(r.Context())
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleBackups(w http.ResponseWriter, r *http.Request) {
	names, err := s.MaintenanceService.ListBackups(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"backups": names})
}

func (s *Server) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	name, err := s.MaintenanceService.BackupNow(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	logger.FromContext(r.Context()).Info("restore requested: %s", name)

	report, err := s.MaintenanceService.Restore(r.Context(), name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.resyncSession(r.Context())
	writeJSON(w, http.StatusOK, report)
}

// resyncSession refreshes the caller's session after a bulk change. A failure
// leaves the session offline until its next sync.
func (s *Server) resyncSession(ctx context.Context) {
	sess := sessionFromContext(ctx)
	if sess == nil {
		return
	}
	if _, err := s.StudyService.Sync(ctx, sess); err != nil {
		logger.FromContext(ctx).Warn("resync after maintenance failed: %v", err)
	}
}
