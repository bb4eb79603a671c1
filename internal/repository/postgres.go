package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"smartdiagnosis/internal/model"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS symptoms (
	id       UUID PRIMARY KEY,
	user_id  TEXT NOT NULL,
	name     TEXT NOT NULL,
	concepts JSONB,
	date     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_symptoms_user_date ON symptoms (user_id, date);

CREATE TABLE IF NOT EXISTS prediction_logs (
	id            UUID PRIMARY KEY,
	user_id       TEXT,
	symptoms      TEXT NOT NULL,
	normalized    TEXT NOT NULL,
	predictions   JSONB NOT NULL,
	probabilities vector,
	model_id      TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PostgresRepository stores symptoms and prediction logs in PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &PostgresRepository{db: db}, nil
}

// EnsureSchema creates the tables if they are missing
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InsertSymptom appends one symptom record
func (r *PostgresRepository) InsertSymptom(ctx context.Context, record model.SymptomRecord) error {
	query := `
		INSERT INTO symptoms (id, user_id, name, concepts, date)
		VALUES (:id, :user_id, :name, :concepts, :date)
	`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to insert symptom: %w", err)
	}
	return nil
}

// FindSymptomsByUser returns every record of userID, oldest first
func (r *PostgresRepository) FindSymptomsByUser(ctx context.Context, userID string) ([]model.SymptomRecord, error) {
	query := `
		SELECT id, user_id, name, concepts, date
		FROM symptoms
		WHERE user_id = $1
		ORDER BY date ASC
	`
	records := []model.SymptomRecord{}
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("failed to fetch symptoms: %w", err)
	}
	return records, nil
}

// LogPrediction stores an audit row with the full probability vector
func (r *PostgresRepository) LogPrediction(ctx context.Context, entry *model.PredictionLog) error {
	query := `
		INSERT INTO prediction_logs (id, user_id, symptoms, normalized, predictions, probabilities, model_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Symptoms, entry.Normalized,
		entry.Predictions, entry.Probabilities, entry.ModelID, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to log prediction: %w", err)
	}
	return nil
}
