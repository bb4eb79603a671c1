package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

// SymptomRecord is one recognized symptom token logged for a user
type SymptomRecord struct {
	ID       string     `json:"id" db:"id"`
	UserID   string     `json:"user_id" db:"user_id"`
	Name     string     `json:"name" db:"name"`
	Concepts StringList `json:"concepts,omitempty" db:"concepts"`
	Date     time.Time  `json:"date" db:"date"`
}

// Response converts the record to its API form
func (r SymptomRecord) Response() SymptomResponse {
	return SymptomResponse{
		Name:     r.Name,
		Date:     r.Date.Format(time.RFC3339),
		Concepts: r.Concepts,
	}
}

// PredictionLog is an audit row for one served prediction
type PredictionLog struct {
	ID            string          `json:"id" db:"id"`
	UserID        *string         `json:"user_id,omitempty" db:"user_id"`
	Symptoms      string          `json:"symptoms" db:"symptoms"`
	Normalized    string          `json:"normalized" db:"normalized"`
	Predictions   PredictionList  `json:"predictions" db:"predictions"`
	Probabilities pgvector.Vector `json:"-" db:"probabilities"` // full class distribution
	ModelID       string          `json:"model_id" db:"model_id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// PredictionEvent is published for every served prediction
type PredictionEvent struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id,omitempty"`
	Predictions []DiseasePrediction `json:"predictions"`
	Symptoms    []string            `json:"symptoms"`
	ModelID     string              `json:"model_id"`
	Timestamp   time.Time           `json:"timestamp"`
}

// StringList represents a JSON array field
type StringList []string

// Value implements driver.Valuer interface
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner interface
func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	return scanJSON(value, s)
}

// PredictionList stores ranked predictions as a JSON column
type PredictionList []DiseasePrediction

// Value implements driver.Valuer interface
func (p PredictionList) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface
func (p *PredictionList) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	return scanJSON(value, p)
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", value)
	}
}
