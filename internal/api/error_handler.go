package api

import (
	"net/http"

	"github.com/vytor/studycards/internal/errors"
	"github.com/vytor/studycards/internal/logger"
)

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := errors.As(err)
	if !ok {
		// Wrap unknown errors as internal errors
		appErr = errors.NewInternalError(err)
	}

	// Log based on status code
	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	writeError(w, appErr)
}

func writeError(w http.ResponseWriter, appErr *errors.AppError) {
	writeJSON(w, appErr.Status, map[string]errorBody{
		"error": {
			Code:      appErr.Code,
			Message:   appErr.Message,
			Retryable: appErr.Retryable(),
		},
	})
}
