package store

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind names the feature vector a sample holds.
type Kind string

const (
	KindPose   Kind = "pose"
	KindMotion Kind = "motion"
)

// ParseKind validates a sample kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindPose, KindMotion:
		return k, nil
	}
	return "", fmt.Errorf("unknown sample kind %q", s)
}

// Vector is a feature vector stored as a JSON array.
type Vector []float64

// Value implements driver.Valuer.
func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		v = Vector{}
	}
	data, err := json.Marshal([]float64(v))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (v *Vector) Scan(src any) error {
	var data []byte
	switch s := src.(type) {
	case string:
		data = []byte(s)
	case []byte:
		data = s
	case nil:
		*v = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Vector", src)
	}
	return json.Unmarshal(data, (*[]float64)(v))
}

// Sample is one labelled training vector.
type Sample struct {
	ID        int64     `db:"id" json:"id"`
	Kind      Kind      `db:"kind" json:"kind"`
	ClassID   int       `db:"class_id" json:"class_id"`
	Vector    Vector    `db:"vector" json:"vector"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SampleRepository appends and reads training samples.
type SampleRepository struct {
	store *Store
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{store: s}
}

// Append stores a sample and returns its ID.
func (r *SampleRepository) Append(kind Kind, classID int, vector []float64) (int64, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return 0, err
	}
	if classID < 0 {
		return 0, errors.New("class id must not be negative")
	}

	res, err := r.store.db.Exec(
		`INSERT INTO samples (kind, class_id, vector, created_at) VALUES (?, ?, ?, ?)`,
		kind, classID, Vector(vector), time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// List returns samples of kind in insertion order.
func (r *SampleRepository) List(kind Kind) ([]Sample, error) {
	samples := []Sample{}
	err := r.store.db.Select(&samples,
		`SELECT id, kind, class_id, vector, created_at FROM samples WHERE kind = ? ORDER BY id`,
		kind,
	)
	return samples, err
}

// Count returns the number of samples of kind.
func (r *SampleRepository) Count(kind Kind) (int, error) {
	var n int
	err := r.store.db.Get(&n, `SELECT COUNT(*) FROM samples WHERE kind = ?`, kind)
	return n, err
}

// DeleteByKind removes every sample of kind.
func (r *SampleRepository) DeleteByKind(kind Kind) error {
	_, err := r.store.db.Exec(`DELETE FROM samples WHERE kind = ?`, kind)
	return err
}
