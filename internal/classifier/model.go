package classifier

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"smartdiagnosis/internal/config"
)

// Prediction is one ranked class with its calibrated probability.
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// TrainParams controls the whole training pipeline.
type TrainParams struct {
	MaxFeatures int
	TestSize    float64
	Seed        int64
	Folds       int
	SVM         SVMParams
}

// DefaultTrainParams returns the stock hyperparameters.
func DefaultTrainParams() TrainParams {
	return TrainParams{
		MaxFeatures: 5000,
		TestSize:    0.2,
		Seed:        42,
		Folds:       5,
		SVM:         DefaultSVMParams(),
	}
}

// ParamsFromConfig reads hyperparameters from the model configuration.
func ParamsFromConfig(cfg config.ModelConfig) TrainParams {
	return TrainParams{
		MaxFeatures: cfg.MaxFeatures,
		TestSize:    cfg.TestSize,
		Seed:        cfg.Seed,
		Folds:       cfg.CVFolds,
		SVM: SVMParams{
			C:         cfg.C,
			MaxIter:   cfg.MaxIter,
			Tolerance: cfg.Tolerance,
		},
	}
}

// Report summarizes a training run.
type Report struct {
	Samples      int
	TrainSamples int
	TestSamples  int
	Classes      int
	Features     int
	// Accuracy on the hold-out split; zero when TestSamples is zero.
	Accuracy float64
	Duration time.Duration
}

// Model is a calibrated one-vs-rest linear SVM: an ensemble of per-fold
// classifiers whose probabilities are averaged.
type Model struct {
	PairID      string            `json:"pair_id"`
	NumFeatures int               `json:"num_features"`
	Classes     []string          `json:"classes"`
	Folds       []*calibratedFold `json:"folds"`
	TrainedAt   time.Time         `json:"trained_at"`
}

// PredictProba returns one probability per class, in Classes order, summing to 1.
func (m *Model) PredictProba(x SparseVector) []float64 {
	out := make([]float64, len(m.Classes))
	for _, fold := range m.Folds {
		for c, p := range fold.proba(x) {
			out[c] += p
		}
	}
	for c := range out {
		out[c] /= float64(len(m.Folds))
	}
	return out
}

// Rank returns the topN most probable classes, highest first. Equal
// probabilities keep class order. topN <= 0 yields an empty list.
func (m *Model) Rank(x SparseVector, topN int) []Prediction {
	if topN <= 0 {
		return []Prediction{}
	}
	proba := m.PredictProba(x)

	order := make([]int, len(proba))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return proba[order[i]] > proba[order[j]]
	})

	n := min(topN, len(order))
	out := make([]Prediction, n)
	for i := 0; i < n; i++ {
		out[i] = Prediction{Label: m.Classes[order[i]], Probability: proba[order[i]]}
	}
	return out
}

func (m *Model) validate() error {
	if len(m.Classes) < 2 {
		return errors.New("model has fewer than two classes")
	}
	if len(m.Folds) == 0 {
		return errors.New("model has no calibrated folds")
	}
	for i, fold := range m.Folds {
		if fold == nil || fold.Classifier == nil {
			return fmt.Errorf("fold %d is empty", i)
		}
		if len(fold.Classifier.Estimators) != len(m.Classes) || len(fold.Sigmoids) != len(m.Classes) {
			return fmt.Errorf("fold %d does not cover %d classes", i, len(m.Classes))
		}
		for c, est := range fold.Classifier.Estimators {
			if est == nil || len(est.Weights) != m.NumFeatures {
				return fmt.Errorf("fold %d class %d has wrong weight dimension", i, c)
			}
		}
	}
	return nil
}

// Train fits the vectorizer and the calibrated classifier on normalized docs.
// The vectorizer sees the whole corpus; the classifier sees the training split
// and is scored on the hold-out split.
func Train(docs, labels []string, p TrainParams) (*TFIDFVectorizer, *Model, *Report, error) {
	start := time.Now()

	if len(docs) != len(labels) {
		return nil, nil, nil, fmt.Errorf("got %d documents but %d labels", len(docs), len(labels))
	}
	if p.Folds < 2 {
		return nil, nil, nil, fmt.Errorf("need at least 2 calibration folds, got %d", p.Folds)
	}
	if p.TestSize < 0 || p.TestSize >= 1 {
		return nil, nil, nil, fmt.Errorf("test size must be in [0, 1), got %g", p.TestSize)
	}

	classes := lo.Uniq(labels)
	sort.Strings(classes)
	if len(classes) < 2 {
		return nil, nil, nil, fmt.Errorf("need at least 2 classes, got %d", len(classes))
	}
	classIndex := make(map[string]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}
	y := lo.Map(labels, func(label string, _ int) int { return classIndex[label] })

	vec := NewTFIDFVectorizer(p.MaxFeatures)
	if err := vec.Fit(docs); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fit vectorizer: %w", err)
	}
	x := vec.TransformAll(docs)
	dim := vec.NumFeatures()

	trainIdx, testIdx := splitIndices(len(docs), p.TestSize, p.Seed)
	if len(trainIdx) < p.Folds {
		return nil, nil, nil, fmt.Errorf("training split has %d samples, fewer than %d folds", len(trainIdx), p.Folds)
	}
	trainX := lo.Map(trainIdx, func(i int, _ int) SparseVector { return x[i] })
	trainY := lo.Map(trainIdx, func(i int, _ int) int { return y[i] })

	model := &Model{
		PairID:      uuid.NewString(),
		NumFeatures: dim,
		Classes:     classes,
		Folds:       trainCalibratedFolds(trainX, trainY, len(classes), dim, p),
		TrainedAt:   time.Now().UTC(),
	}

	report := &Report{
		Samples:      len(docs),
		TrainSamples: len(trainIdx),
		TestSamples:  len(testIdx),
		Classes:      len(classes),
		Features:     dim,
	}
	if len(testIdx) > 0 {
		correct := lo.CountBy(testIdx, func(i int) bool {
			return model.Rank(x[i], 1)[0].Label == labels[i]
		})
		report.Accuracy = float64(correct) / float64(len(testIdx))
	}
	report.Duration = time.Since(start)

	return vec, model, report, nil
}

// trainCalibratedFolds trains one calibrated fold per cross-validation split.
// Folds train concurrently, each with its own seeded source.
func trainCalibratedFolds(x []SparseVector, y []int, numClasses, dim int, p TrainParams) []*calibratedFold {
	foldOf := stratifiedFolds(y, p.Folds)
	folds := make([]*calibratedFold, p.Folds)

	var wg sync.WaitGroup
	for f := 0; f < p.Folds; f++ {
		wg.Add(1)
		go func(f int) {
			defer wg.Done()

			var fitX, calX []SparseVector
			var fitY, calY []int
			for i := range x {
				if foldOf[i] == f {
					calX = append(calX, x[i])
					calY = append(calY, y[i])
				} else {
					fitX = append(fitX, x[i])
					fitY = append(fitY, y[i])
				}
			}

			rng := rand.New(rand.NewSource(p.Seed + int64(f)))
			ovr := trainOneVsRest(fitX, fitY, numClasses, dim, p.SVM, rng)

			sigmoids := make([]Sigmoid, numClasses)
			dec := make([]float64, len(calX))
			positive := make([]bool, len(calX))
			for c := 0; c < numClasses; c++ {
				for i := range calX {
					dec[i] = ovr.Estimators[c].decision(calX[i])
					positive[i] = calY[i] == c
				}
				sigmoids[c] = fitSigmoid(dec, positive)
			}

			folds[f] = &calibratedFold{Classifier: ovr, Sigmoids: sigmoids}
		}(f)
	}
	wg.Wait()

	return folds
}

// splitIndices shuffles 0..n-1 with a seeded source and returns the train
// and test index sets. The test set has ceil(testSize*n) members.
func splitIndices(n int, testSize float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}
	return perm[nTest:], perm[:nTest]
}
