package repository

import (
	"context"
	"sort"
	"sync"

	"smartdiagnosis/internal/model"
)

// MemoryRepository keeps everything in process memory. Useful for local runs
// and tests; nothing survives a restart.
type MemoryRepository struct {
	mu          sync.RWMutex
	symptoms    map[string][]model.SymptomRecord
	predictions []model.PredictionLog
}

// NewMemoryRepository creates an empty store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{symptoms: make(map[string][]model.SymptomRecord)}
}

// InsertSymptom appends one symptom record
func (r *MemoryRepository) InsertSymptom(ctx context.Context, record model.SymptomRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.symptoms[record.UserID] = append(r.symptoms[record.UserID], record)
	return nil
}

// FindSymptomsByUser returns a copy of the user's records, oldest first
func (r *MemoryRepository) FindSymptomsByUser(ctx context.Context, userID string) ([]model.SymptomRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.SymptomRecord, len(r.symptoms[userID]))
	copy(out, r.symptoms[userID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// LogPrediction records an audit entry
func (r *MemoryRepository) LogPrediction(ctx context.Context, entry *model.PredictionLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predictions = append(r.predictions, *entry)
	return nil
}

// Predictions returns a copy of the logged predictions
func (r *MemoryRepository) Predictions() []model.PredictionLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.PredictionLog, len(r.predictions))
	copy(out, r.predictions)
	return out
}

// Ping always succeeds
func (r *MemoryRepository) Ping(context.Context) error { return nil }

// Close is a no-op
func (r *MemoryRepository) Close() error { return nil }
