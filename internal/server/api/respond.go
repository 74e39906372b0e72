// Package api implements the JSON endpoints of the HTTP server.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/signova/internal/app"
	"github.com/ayusman/signova/internal/sentence"
)

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeSessionError maps session lifecycle errors to 409.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrAlreadyRunning), errors.Is(err, app.ErrNotRunning):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// queryLanguage reads ?language=, falling back to def.
func queryLanguage(r *http.Request, def sentence.Language) (sentence.Language, error) {
	v := r.URL.Query().Get("language")
	if v == "" {
		return def, nil
	}
	return sentence.ParseLanguage(v)
}
