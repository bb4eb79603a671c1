package repository

import (
	"context"
	"fmt"
	"time"

	"smartdiagnosis/internal/config"
	"smartdiagnosis/internal/model"
)

// SymptomRepository is the append-only log of symptoms recognized per user.
type SymptomRepository interface {
	InsertSymptom(ctx context.Context, record model.SymptomRecord) error
	// FindSymptomsByUser returns the user's records oldest first.
	FindSymptomsByUser(ctx context.Context, userID string) ([]model.SymptomRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

// PredictionLogger is implemented by stores that keep an audit row per prediction.
type PredictionLogger interface {
	LogPrediction(ctx context.Context, entry *model.PredictionLog) error
}

// Open connects the backend selected by STORE_BACKEND.
func Open(ctx context.Context, cfg *config.Config) (SymptomRepository, error) {
	switch cfg.Store.Backend {
	case config.StoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return NewMongoRepository(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	case config.StorePostgres:
		repo, err := NewPostgresRepository(cfg.GetPostgreSQLDSN(), cfg.PostgreSQL.MaxConnections, cfg.PostgreSQL.MaxIdleConnections)
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		return repo, nil
	case config.StoreMemory:
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
