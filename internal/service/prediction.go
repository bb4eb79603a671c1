package service

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"smartdiagnosis/internal/catalog"
	"smartdiagnosis/internal/classifier"
	"smartdiagnosis/internal/config"
	"smartdiagnosis/internal/events"
	"smartdiagnosis/internal/model"
	"smartdiagnosis/internal/nlp"
	"smartdiagnosis/internal/repository"
)

// Classifier is the part of the predictor the service depends on.
type Classifier interface {
	Classify(normalized string, topN int) (*classifier.Classification, error)
	Loaded() bool
}

// Options holds request defaults and persistence bounds.
type Options struct {
	DefaultTopN       int
	MinSymptomsLength int
	StoreBackend      string
	WriteTimeout      time.Duration
	ReadTimeout       time.Duration
	LogPredictions    bool
}

// OptionsFromConfig extracts service options from the application config.
// The prediction audit log is kept only by the postgres backend.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DefaultTopN:       cfg.Predict.DefaultTopN,
		MinSymptomsLength: cfg.Predict.MinSymptomsLength,
		StoreBackend:      cfg.Store.Backend,
		WriteTimeout:      cfg.Store.WriteTimeout,
		ReadTimeout:       cfg.Store.ReadTimeout,
		LogPredictions:    cfg.PostgreSQL.LogPredictions && cfg.Store.Backend == config.StorePostgres,
	}
}

// PredictionService handles prediction business logic
type PredictionService struct {
	normalizer *nlp.Normalizer
	extractor  *nlp.Extractor
	classifier Classifier
	catalog    *catalog.Catalog
	store      repository.SymptomRepository
	predLog    repository.PredictionLogger
	events     events.Publisher
	opts       Options
	log        *logrus.Entry

	pending sync.WaitGroup
	now     func() time.Time
}

// NewPredictionService creates a new prediction service. The store doubles as
// the prediction log when it supports it and logging is enabled.
func NewPredictionService(
	normalizer *nlp.Normalizer,
	extractor *nlp.Extractor,
	clf Classifier,
	cat *catalog.Catalog,
	store repository.SymptomRepository,
	publisher events.Publisher,
	opts Options,
	log *logrus.Entry,
) *PredictionService {
	s := &PredictionService{
		normalizer: normalizer,
		extractor:  extractor,
		classifier: clf,
		catalog:    cat,
		store:      store,
		events:     publisher,
		opts:       opts,
		log:        log,
		now:        time.Now,
	}
	if pl, ok := store.(repository.PredictionLogger); ok && opts.LogPredictions {
		s.predLog = pl
	}
	if s.events == nil {
		s.events = events.NoopPublisher{}
	}
	return s
}

// Predict ranks diseases for the request's symptom text. When a user id is
// given, recognized symptoms are logged in the background.
func (s *PredictionService) Predict(ctx context.Context, req *model.PredictionRequest) ([]model.DiseasePrediction, error) {
	if utf8.RuneCountInString(req.Symptoms) < s.opts.MinSymptomsLength {
		return nil, &ValidationError{
			Message: fmt.Sprintf("Please provide more detailed symptoms (at least %d characters)", s.opts.MinSymptomsLength),
		}
	}

	topN := s.opts.DefaultTopN
	if req.TopN != nil {
		topN = *req.TopN
	}

	normalized := s.normalizer.Normalize(req.Symptoms)
	result, err := s.classifier.Classify(normalized, topN)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}

	predictions := make([]model.DiseasePrediction, len(result.Predictions))
	for i, p := range result.Predictions {
		predictions[i] = model.DiseasePrediction{
			Disease:    p.Label,
			Confidence: p.Probability,
			Info:       s.catalog.Description(p.Label),
		}
	}

	userID := lo.FromPtr(req.UserID)
	matches := s.extractor.ExtractMatches(normalized)
	now := s.now().UTC()

	if userID != "" && len(matches) > 0 {
		records := lo.Map(matches, func(m nlp.Match, _ int) model.SymptomRecord {
			return model.SymptomRecord{
				ID:       uuid.NewString(),
				UserID:   userID,
				Name:     m.Token,
				Concepts: m.Concepts,
				Date:     now,
			}
		})
		s.background(func() {
			for _, record := range records {
				s.write("insert symptom", func(ctx context.Context) error {
					return s.store.InsertSymptom(ctx, record)
				})
			}
		})
	}

	s.recordPrediction(req, normalized, predictions, result, matches, now)

	return predictions, nil
}

// recordPrediction writes the audit log row and publishes the event, both best-effort.
func (s *PredictionService) recordPrediction(
	req *model.PredictionRequest,
	normalized string,
	predictions []model.DiseasePrediction,
	result *classifier.Classification,
	matches []nlp.Match,
	now time.Time,
) {
	id := uuid.NewString()

	if s.predLog != nil {
		entry := &model.PredictionLog{
			ID:          id,
			UserID:      req.UserID,
			Symptoms:    req.Symptoms,
			Normalized:  normalized,
			Predictions: predictions,
			Probabilities: pgvector.NewVector(lo.Map(result.Probabilities, func(p float64, _ int) float32 {
				return float32(p)
			})),
			ModelID:   result.ModelID,
			CreatedAt: now,
		}
		s.background(func() {
			s.write("log prediction", func(ctx context.Context) error {
				return s.predLog.LogPrediction(ctx, entry)
			})
		})
	}

	event := &model.PredictionEvent{
		ID:          id,
		UserID:      lo.FromPtr(req.UserID),
		Predictions: predictions,
		Symptoms:    lo.Map(matches, func(m nlp.Match, _ int) string { return m.Token }),
		ModelID:     result.ModelID,
		Timestamp:   now,
	}
	s.background(func() {
		s.write("publish prediction event", func(ctx context.Context) error {
			return s.events.Publish(ctx, event)
		})
	})
}

// DiseaseInfo returns the catalog entry for name.
func (s *PredictionService) DiseaseInfo(name string) (*model.DiseaseInfoResponse, error) {
	label, desc, ok := s.catalog.Lookup(name)
	if !ok {
		return nil, &UnknownDiseaseError{Name: name}
	}
	return &model.DiseaseInfoResponse{Disease: label, Description: desc}, nil
}

// UserSymptoms returns the symptom history of userID, oldest first.
func (s *PredictionService) UserSymptoms(ctx context.Context, userID string) ([]model.SymptomResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ReadTimeout)
	defer cancel()

	records, err := s.store.FindSymptomsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load symptoms for %s: %w", userID, err)
	}
	return lo.Map(records, func(r model.SymptomRecord, _ int) model.SymptomResponse {
		return r.Response()
	}), nil
}

// Health reports model and store status. It never fails.
func (s *PredictionService) Health(ctx context.Context) model.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ReadTimeout)
	defer cancel()

	storeStatus := "connected"
	if err := s.store.Ping(ctx); err != nil {
		storeStatus = "disconnected: " + err.Error()
	}

	return model.HealthResponse{
		Status:       "healthy",
		ModelsLoaded: s.classifier.Loaded(),
		MongoDB:      storeStatus,
		StoreBackend: s.opts.StoreBackend,
	}
}

// Wait blocks until every background write has finished.
func (s *PredictionService) Wait() {
	s.pending.Wait()
}

func (s *PredictionService) background(fn func()) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		fn()
	}()
}

// write runs one persistence call under the write timeout and logs failures.
func (s *PredictionService) write(op string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.WriteTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		s.log.WithError(&PersistenceError{Op: op, Err: err}).Error("Background write failed")
	}
}
