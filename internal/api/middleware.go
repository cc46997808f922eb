package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/studycards/internal/errors"
	"github.com/vytor/studycards/internal/logger"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

type contextKey string

const (
	sessionContextKey contextKey = "study_session"
	sessionCookieName            = "study_session"
)

// sessionMiddleware attaches the caller's study session and holds its lock for the
// whole request. Unknown or missing cookies start a new session, synced once.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var requested string
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			if _, err := uuid.Parse(cookie.Value); err == nil {
				requested = cookie.Value
			} else {
				log.Warn("invalid session cookie, starting a new session")
			}
		}

		id, entry, created := s.Sessions.acquire(requested)
		entry.mu.Lock()
		defer entry.mu.Unlock()

		log = log.WithField("session_id", id)
		ctx := logger.NewContext(context.WithValue(r.Context(), sessionContextKey, entry.session), log)

		if created {
			log.Debug("new study session")
			setSessionCookie(w, id)
			if _, err := s.StudyService.Sync(ctx, entry.session); err != nil {
				log.Warn("initial sync failed: %v", err)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

const requestIDHeader = "X-Request-ID"

// loggingMiddleware stores a request-scoped logger in the context and logs one
// line per completed request. Incoming X-Request-ID values are kept.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		log := logger.Default().WithPrefix("http").WithFields(map[string]any{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r.WithContext(logger.NewContext(r.Context(), log)))

		log = log.WithFields(map[string]any{
			"status":      wrapped.status,
			"size":        wrapped.size,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		switch {
		case wrapped.status >= 500:
			log.Error("request failed")
		case wrapped.status >= 400:
			log.Warn("request rejected")
		default:
			log.Debug("request completed")
		}
	})
}

// recoveryMiddleware recovers from panics and logs them.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log := logger.FromContext(r.Context())
				log.Error("panic recovered: %v", rec)
				writeError(w, errors.NewInternalError(fmt.Errorf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
