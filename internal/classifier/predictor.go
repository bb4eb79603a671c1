package classifier

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"smartdiagnosis/internal/artifact"
	"smartdiagnosis/internal/config"
	"smartdiagnosis/internal/dataset"
	"smartdiagnosis/internal/nlp"
)

// Classification is the outcome of scoring one normalized text.
type Classification struct {
	Predictions []Prediction
	// Probabilities holds every class probability in Classes order.
	Probabilities []float64
	Classes       []string
	ModelID       string
}

// Predictor owns the active model pair and its persistence.
// The pair is swapped atomically so reads never lock.
type Predictor struct {
	normalizer *nlp.Normalizer
	store      artifact.Store
	names      ArtifactNames
	params     TrainParams
	log        *logrus.Entry

	pair atomic.Pointer[Pair]
}

// NewPredictor creates a predictor with no model installed.
func NewPredictor(normalizer *nlp.Normalizer, store artifact.Store, names ArtifactNames, params TrainParams, log *logrus.Entry) *Predictor {
	return &Predictor{
		normalizer: normalizer,
		store:      store,
		names:      names,
		params:     params,
		log:        log,
	}
}

// NewPredictorFromConfig wires the English normalizer and the configured
// artifact store into a predictor.
func NewPredictorFromConfig(ctx context.Context, cfg *config.Config, log *logrus.Entry) (*Predictor, error) {
	lemmatizer, err := nlp.NewGolemLemmatizer()
	if err != nil {
		return nil, err
	}
	store, err := artifact.New(ctx, cfg.Artifacts)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact store: %w", err)
	}

	names := ArtifactNames{Model: cfg.Model.ModelFile, Vectorizer: cfg.Model.VectorizerFile}
	return NewPredictor(nlp.NewEnglishNormalizer(lemmatizer), store, names, ParamsFromConfig(cfg.Model), log), nil
}

// Loaded reports whether a model pair is installed.
func (p *Predictor) Loaded() bool {
	return p.pair.Load() != nil
}

// ArtifactsExist reports whether both halves of a saved pair are present.
func (p *Predictor) ArtifactsExist(ctx context.Context) (bool, error) {
	for _, name := range []string{p.names.Vectorizer, p.names.Model} {
		ok, err := p.store.Exists(ctx, name)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// LoadSavedModel installs the persisted pair. Any failure is logged and
// reported as false; the current model, if any, stays in place.
func (p *Predictor) LoadSavedModel(ctx context.Context) bool {
	pair, err := Load(ctx, p.store, p.names)
	if err != nil {
		p.log.WithError(err).WithField("location", p.store.Location(p.names.Model)).Warn("Error loading models")
		return false
	}

	p.pair.Store(pair)
	p.log.WithFields(logrus.Fields{
		"pair_id":  pair.Model.PairID,
		"classes":  len(pair.Model.Classes),
		"features": pair.Model.NumFeatures,
	}).Info("Loaded saved model")
	return true
}

// TrainModel trains on samples, installs the new pair and saves it.
// A failed save returns the report with an error wrapping ErrModelSave; the
// trained model is installed and serves either way.
func (p *Predictor) TrainModel(ctx context.Context, samples []dataset.Sample) (*Report, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples", dataset.ErrCorpus)
	}

	docs := make([]string, len(samples))
	for i, s := range samples {
		docs[i] = p.normalizer.Normalize(s.Text)
	}

	vec, model, report, err := Train(docs, dataset.Labels(samples), p.params)
	if err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}
	pair := &Pair{Vectorizer: vec, Model: model}
	p.pair.Store(pair)

	p.log.WithFields(logrus.Fields{
		"pair_id":       model.PairID,
		"samples":       report.Samples,
		"train_samples": report.TrainSamples,
		"test_samples":  report.TestSamples,
		"classes":       report.Classes,
		"features":      report.Features,
		"accuracy":      report.Accuracy,
		"duration":      report.Duration.String(),
	}).Info("Model trained")

	if err := Save(ctx, p.store, p.names, pair); err != nil {
		return report, fmt.Errorf("%w: %w", ErrModelSave, err)
	}
	return report, nil
}

// Predict normalizes raw text and ranks the topN most probable diseases.
func (p *Predictor) Predict(text string, topN int) ([]Prediction, error) {
	c, err := p.Classify(p.normalizer.Normalize(text), topN)
	if err != nil {
		return nil, err
	}
	return c.Predictions, nil
}

// Classify scores text that is already normalized.
func (p *Predictor) Classify(normalized string, topN int) (*Classification, error) {
	pair := p.pair.Load()
	if pair == nil {
		return nil, ErrModelNotLoaded
	}

	x := pair.Vectorizer.Transform(normalized)
	proba := pair.Model.PredictProba(x)
	return &Classification{
		Predictions:   pair.Model.Rank(x, topN),
		Probabilities: proba,
		Classes:       pair.Model.Classes,
		ModelID:       pair.Model.PairID,
	}, nil
}

// Classes returns the labels of the installed model.
func (p *Predictor) Classes() ([]string, error) {
	pair := p.pair.Load()
	if pair == nil {
		return nil, ErrModelNotLoaded
	}
	out := make([]string, len(pair.Model.Classes))
	copy(out, pair.Model.Classes)
	return out, nil
}

// Normalizer returns the normalizer applied before classification.
func (p *Predictor) Normalizer() *nlp.Normalizer {
	return p.normalizer
}

// Bootstrap installs a model at startup: load the saved pair when both halves
// exist, otherwise or on load failure train from the corpus at corpusPath.
// Training errors are returned; the caller cannot serve without a model.
func Bootstrap(ctx context.Context, p *Predictor, corpusPath string) error {
	exist, err := p.ArtifactsExist(ctx)
	if err != nil {
		p.log.WithError(err).Warn("Could not check saved model, training a new one")
	}
	if exist && p.LoadSavedModel(ctx) {
		return nil
	}

	if exist {
		p.log.Info("Saved model unusable, retraining")
	} else {
		p.log.Info("No saved model found, training")
	}

	samples, err := dataset.Load(corpusPath)
	if err != nil {
		return err
	}
	if _, err := p.TrainModel(ctx, samples); err != nil {
		if !errors.Is(err, ErrModelSave) {
			return err
		}
		p.log.WithError(err).WithField("location", p.store.Location(p.names.Model)).Error("Failed to save trained model, serving it unsaved")
	}
	if !p.Loaded() {
		return errors.New("model missing after training")
	}
	return nil
}
