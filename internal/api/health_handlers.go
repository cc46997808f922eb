package api

import (
	"net/http"

	"github.com/vytor/studycards/internal/logger"
)

type healthStatus struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthStatus{Status: "ok"})
}

// handleReady reports 503 while the card store does not answer a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.Cards.Ping(ctx); err != nil {
		logger.FromContext(ctx).Warn("readiness check failed: card store: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, healthStatus{Status: "unavailable", Detail: "card store unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, healthStatus{Status: "ready", Sessions: s.Sessions.Len()})
}
