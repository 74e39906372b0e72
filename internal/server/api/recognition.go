package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/signova/internal/app"
	"github.com/ayusman/signova/internal/sentence"
)

// RecognitionHandler exposes session control and recognition state.
type RecognitionHandler struct {
	app *app.App
}

// NewRecognitionHandler creates a RecognitionHandler for a.
func NewRecognitionHandler(a *app.App) *RecognitionHandler {
	return &RecognitionHandler{app: a}
}

// Routes mounts the handler's endpoints on r.
func (h *RecognitionHandler) Routes(r chi.Router) {
	r.Post("/session/start", h.start)
	r.Post("/session/stop", h.stop)
	r.Get("/recognition", h.recognition)
	r.Get("/translation", h.translation)
	r.Get("/translation/english", h.toEnglish)
	r.Post("/sentence/clear", h.clear)
	r.Post("/sentence/backspace", h.backspace)
	r.Post("/sentence/speak", h.speak)
	r.Get("/language", h.getLanguage)
	r.Post("/language", h.setLanguage)
}

type startResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

type recognitionResponse struct {
	Signs              []string          `json:"signs"`
	CurrentSentence    string            `json:"current_sentence"`
	TranslatedSentence string            `json:"translated_sentence"`
	Language           sentence.Language `json:"language"`
	Speaking           bool              `json:"speaking"`
	FPS                float64           `json:"fps"`
	Motion             string            `json:"motion,omitempty"`
	State              string            `json:"state"`
	SessionID          string            `json:"session_id,omitempty"`
}

type translationResponse struct {
	CurrentSentence    string            `json:"current_sentence"`
	TranslatedSentence string            `json:"translated_sentence"`
	Language           sentence.Language `json:"language"`
}

type sentenceResponse struct {
	Status   string `json:"status"`
	Sentence string `json:"sentence"`
}

type languageRequest struct {
	Language string `json:"language"`
}

// start handles POST /api/session/start.
func (h *RecognitionHandler) start(w http.ResponseWriter, r *http.Request) {
	s, err := h.app.Start()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, startResponse{Status: "started", SessionID: s.ID()})
}

// stop handles POST /api/session/stop.
func (h *RecognitionHandler) stop(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Stop(); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "stopped"})
}

// recognition handles GET /api/recognition.
func (h *RecognitionHandler) recognition(w http.ResponseWriter, r *http.Request) {
	lang, err := queryLanguage(r, h.app.Language())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st := h.app.Status(lang)
	writeJSON(w, http.StatusOK, recognitionResponse{
		Signs:              st.RecentWords,
		CurrentSentence:    st.Sentence,
		TranslatedSentence: st.Translation,
		Language:           st.Language,
		Speaking:           st.Speaking,
		FPS:                st.FPS,
		Motion:             st.Motion,
		State:              st.State,
		SessionID:          st.SessionID,
	})
}

// translation handles GET /api/translation.
func (h *RecognitionHandler) translation(w http.ResponseWriter, r *http.Request) {
	lang, err := queryLanguage(r, h.app.Language())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st := h.app.Status(lang)
	writeJSON(w, http.StatusOK, translationResponse{
		CurrentSentence:    st.Sentence,
		TranslatedSentence: st.Translation,
		Language:           lang,
	})
}

type englishResponse struct {
	Text     string            `json:"text"`
	Language sentence.Language `json:"language"`
	English  string            `json:"english"`
}

// toEnglish handles GET /api/translation/english?text=&language=.
func (h *RecognitionHandler) toEnglish(w http.ResponseWriter, r *http.Request) {
	lang, err := queryLanguage(r, h.app.Language())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	text := strings.TrimSpace(r.URL.Query().Get("text"))
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	writeJSON(w, http.StatusOK, englishResponse{
		Text:     text,
		Language: lang,
		English:  h.app.ToEnglish(text, lang),
	})
}

// clear handles POST /api/sentence/clear.
func (h *RecognitionHandler) clear(w http.ResponseWriter, r *http.Request) {
	text, err := h.app.ClearSentence()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sentenceResponse{Status: "cleared", Sentence: text})
}

// backspace handles POST /api/sentence/backspace.
func (h *RecognitionHandler) backspace(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Backspace(); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sentenceResponse{
		Status:   "ok",
		Sentence: h.app.Status("").Sentence,
	})
}

// speak handles POST /api/sentence/speak.
func (h *RecognitionHandler) speak(w http.ResponseWriter, r *http.Request) {
	if err := h.app.SpeakSentence(); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "speaking"})
}

// getLanguage handles GET /api/language.
func (h *RecognitionHandler) getLanguage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, languageRequest{Language: string(h.app.Language())})
}

// setLanguage handles POST /api/language.
func (h *RecognitionHandler) setLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	lang, err := sentence.ParseLanguage(req.Language)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.app.SetLanguage(lang); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	st := h.app.Status(lang)
	writeJSON(w, http.StatusOK, translationResponse{
		CurrentSentence:    st.Sentence,
		TranslatedSentence: st.Translation,
		Language:           lang,
	})
}
