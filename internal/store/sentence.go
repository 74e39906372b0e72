package store

import (
	"errors"
	"time"
)

// Sentence is a finished sentence from a capture session.
type Sentence struct {
	ID        int64     `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Text      string    `db:"text" json:"text"`
	Language  string    `db:"language" json:"language"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SentenceRepository stores sentence history.
type SentenceRepository struct {
	store *Store
}

// Sentences returns the sentence repository for this store.
func (s *Store) Sentences() *SentenceRepository {
	return &SentenceRepository{store: s}
}

// Create stores a sentence. Empty text is rejected.
func (r *SentenceRepository) Create(sessionID, text, language string) (*Sentence, error) {
	if text == "" {
		return nil, errors.New("sentence text is empty")
	}
	if language == "" {
		language = "english"
	}

	now := time.Now().UTC()
	res, err := r.store.db.Exec(
		`INSERT INTO sentences (session_id, text, language, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, text, language, now,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &Sentence{
		ID:        id,
		SessionID: sessionID,
		Text:      text,
		Language:  language,
		CreatedAt: now,
	}, nil
}

// List returns the most recent sentences, newest first. A limit of zero or
// less returns all of them.
func (r *SentenceRepository) List(limit int) ([]Sentence, error) {
	if limit <= 0 {
		limit = -1
	}
	sentences := []Sentence{}
	err := r.store.db.Select(&sentences,
		`SELECT id, session_id, text, language, created_at FROM sentences ORDER BY id DESC LIMIT ?`,
		limit,
	)
	return sentences, err
}

// ListBySession returns a session's sentences in order.
func (r *SentenceRepository) ListBySession(sessionID string) ([]Sentence, error) {
	sentences := []Sentence{}
	err := r.store.db.Select(&sentences,
		`SELECT id, session_id, text, language, created_at FROM sentences WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	return sentences, err
}
