package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/vytor/studycards/internal/errors"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a single JSON object into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}
