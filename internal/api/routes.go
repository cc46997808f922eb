package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/sync", s.handleSync)
			r.Put("/filter", s.handleSetFilter)
			r.Post("/advance", s.handleAdvance)
			r.Post("/mark-correct", s.handleMarkCorrect)
			r.Post("/mark-wrong", s.handleMarkWrong)
			r.Post("/reshuffle", s.handleReshuffle)
		})

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", s.handleListCards)
			r.Post("/", s.handleCreateCard)
			r.Put("/{id}", s.handleUpdateCard)
			r.Delete("/{id}", s.handleDeleteCard)
			r.Post("/{id}/reset-wrong", s.handleResetWrongCount)
		})

		r.Get("/categories", s.handleCategories)
		r.Post("/categories/rename", s.handleRenameCategory)
		r.Post("/categories/delete", s.handleDeleteCategory)

		r.Get("/backups", s.handleBackups)
		r.Post("/backups", s.handleCreateBackup)
		r.Post("/backups/{name}/restore", s.handleRestore)
	})
	return r
}
