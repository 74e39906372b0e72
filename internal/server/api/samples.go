package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/signova/internal/app"
	"github.com/ayusman/signova/internal/store"
)

// SamplesHandler serves recorded training samples and toggles recording.
type SamplesHandler struct {
	app   *app.App
	store *store.Store
}

// NewSamplesHandler creates a SamplesHandler. s may be nil, in which case
// listing reports 503.
func NewSamplesHandler(a *app.App, s *store.Store) *SamplesHandler {
	return &SamplesHandler{app: a, store: s}
}

// Routes mounts the handler's endpoints on r.
func (h *SamplesHandler) Routes(r chi.Router) {
	r.Get("/samples", h.list)
	r.Get("/samples/logging", h.getLogging)
	r.Post("/samples/logging", h.setLogging)
}

type listSamplesResponse struct {
	Kind    store.Kind     `json:"kind"`
	Count   int            `json:"count"`
	Samples []store.Sample `json:"samples"`
}

type loggingRequest struct {
	Enabled bool       `json:"enabled"`
	Kind    store.Kind `json:"kind"`
	ClassID int        `json:"class_id"`
}

type loggingResponse struct {
	Enabled bool       `json:"enabled"`
	Kind    store.Kind `json:"kind,omitempty"`
	ClassID int        `json:"class_id"`
}

// list handles GET /api/samples?kind=pose|motion
func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "Storage not configured")
		return
	}

	kindParam := r.URL.Query().Get("kind")
	if kindParam == "" {
		kindParam = string(store.KindPose)
	}
	kind, err := store.ParseKind(kindParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	samples, err := h.store.Samples().List(kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	writeJSON(w, http.StatusOK, listSamplesResponse{
		Kind:    kind,
		Count:   len(samples),
		Samples: samples,
	})
}

// getLogging handles GET /api/samples/logging
func (h *SamplesHandler) getLogging(w http.ResponseWriter, r *http.Request) {
	st := h.app.Status("")
	resp := loggingResponse{}
	if st.Sampling != nil {
		resp = loggingResponse{Enabled: true, Kind: st.Sampling.Kind, ClassID: st.Sampling.ClassID}
	}
	writeJSON(w, http.StatusOK, resp)
}

// setLogging handles POST /api/samples/logging
func (h *SamplesHandler) setLogging(w http.ResponseWriter, r *http.Request) {
	var req loggingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var l *app.SampleLogging
	if req.Enabled {
		l = &app.SampleLogging{Kind: req.Kind, ClassID: req.ClassID}
	}
	if err := h.app.SetSampleLogging(l); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := loggingResponse{Enabled: req.Enabled}
	if req.Enabled {
		resp.Kind = req.Kind
		resp.ClassID = req.ClassID
	}
	writeJSON(w, http.StatusOK, resp)
}
