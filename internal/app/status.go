package app

import "github.com/ayusman/signova/internal/sentence"

// Status is a snapshot of recognition state for presentation layers.
type Status struct {
	SessionID   string            `json:"session_id,omitempty"`
	State       string            `json:"state"`
	Sentence    string            `json:"sentence"`
	Translation string            `json:"translation"`
	Language    sentence.Language `json:"language"`
	RecentWords []string          `json:"recent_words"`
	History     []string          `json:"history"`
	Speaking    bool              `json:"speaking"`
	FPS         float64           `json:"fps"`
	Motion      string            `json:"motion,omitempty"`
	Sampling    *SampleLogging    `json:"sampling,omitempty"`
}

// Status describes the session using lang for the translation.
func (s *Session) Status(lang sentence.Language) Status {
	text := s.assembler.Text()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		SessionID:   s.id,
		State:       s.state.String(),
		Sentence:    text,
		Translation: s.assembler.Translate(text, lang),
		Language:    lang,
		RecentWords: append([]string{}, s.recent...),
		History:     s.assembler.History(),
		Speaking:    s.speech.IsSpeaking(),
		FPS:         s.lastFPS,
		Motion:      s.lastMotion,
	}
	if s.sampling != nil {
		cp := *s.sampling
		st.Sampling = &cp
	}
	return st
}

// Status describes the current session. An empty lang uses the selected
// language.
func (a *App) Status(lang sentence.Language) Status {
	if lang == "" {
		lang = a.Language()
	}
	if s := a.Session(); s != nil {
		return s.Status(lang)
	}
	return Status{
		State:       StateIdle.String(),
		Language:    lang,
		RecentWords: []string{},
		History:     []string{},
	}
}
