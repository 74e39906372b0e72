package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/signova/internal/store"
)

const defaultSentenceLimit = 50

// SentencesHandler serves the persisted sentence history.
type SentencesHandler struct {
	store *store.Store
}

// NewSentencesHandler creates a SentencesHandler backed by s.
func NewSentencesHandler(s *store.Store) *SentencesHandler {
	return &SentencesHandler{store: s}
}

// Routes mounts the handler's endpoints on r.
func (h *SentencesHandler) Routes(r chi.Router) {
	r.Get("/sentences", h.list)
	r.Get("/sessions/{id}/sentences", h.listBySession)
}

type listSentencesResponse struct {
	Sentences []store.Sentence `json:"sentences"`
}

// list handles GET /api/sentences?limit=n
func (h *SentencesHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultSentenceLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	sentences, err := h.store.Sentences().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sentences")
		return
	}
	writeJSON(w, http.StatusOK, listSentencesResponse{Sentences: sentences})
}

// listBySession handles GET /api/sessions/{id}/sentences
func (h *SentencesHandler) listBySession(w http.ResponseWriter, r *http.Request) {
	sentences, err := h.store.Sentences().ListBySession(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sentences")
		return
	}
	writeJSON(w, http.StatusOK, listSentencesResponse{Sentences: sentences})
}
