package classifier

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartdiagnosis/internal/dataset"
)

var classWords = map[string][]string{
	"Malaria":   {"mosquito", "chills", "sweating", "shivering"},
	"Psoriasis": {"peeling", "scaly", "patches", "silvery"},
	"Migraine":  {"throbbing", "aura", "flashes", "nausea"},
	"Pneumonia": {"phlegm", "wheezing", "chest", "crackles"},
	"Diabetes":  {"thirst", "urination", "sugar", "hunger"},
}

var noiseWords = []string{"feel", "days", "since", "really", "lately"}

// syntheticCorpus returns perClass samples for each class, each sample made of
// three class keywords and two shared filler words.
func syntheticCorpus(perClass int) []dataset.Sample {
	labels := make([]string, 0, len(classWords))
	for label := range classWords {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var samples []dataset.Sample
	for i := 0; i < perClass; i++ {
		for _, label := range labels {
			w := classWords[label]
			text := fmt.Sprintf("I %s %s %s %s and %s",
				noiseWords[i%5], w[i%4], w[(i+1)%4], w[(i+2)%4], noiseWords[(i+2)%5])
			samples = append(samples, dataset.Sample{Text: text, Label: label})
		}
	}
	return samples
}

func lowerTexts(samples []dataset.Sample) []string {
	out := make([]string, len(samples))
	for i, s := range samples {
		out[i] = strings.ToLower(s.Text)
	}
	return out
}

func trainSynthetic(t *testing.T) (*TFIDFVectorizer, *Model, *Report) {
	t.Helper()
	samples := syntheticCorpus(10)
	vec, model, report, err := Train(lowerTexts(samples), dataset.Labels(samples), DefaultTrainParams())
	require.NoError(t, err)
	return vec, model, report
}

func TestSplitIndices(t *testing.T) {
	train, test := splitIndices(50, 0.2, 42)
	assert.Len(t, train, 40)
	assert.Len(t, test, 10)
	assert.ElementsMatch(t, seq(50), append(append([]int{}, train...), test...))

	train2, test2 := splitIndices(50, 0.2, 42)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	train, test = splitIndices(11, 0.2, 42)
	assert.Len(t, test, 3)
	assert.Len(t, train, 8)

	train, test = splitIndices(10, 0, 42)
	assert.Empty(t, test)
	assert.Len(t, train, 10)
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestStratifiedFolds(t *testing.T) {
	labels := []int{0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 2, 2, 2, 2, 2}
	folds := stratifiedFolds(labels, 5)

	perFold := make(map[int]map[int]int)
	for i, f := range folds {
		require.GreaterOrEqual(t, f, 0)
		require.Less(t, f, 5)
		if perFold[f] == nil {
			perFold[f] = make(map[int]int)
		}
		perFold[f][labels[i]]++
	}
	for f := 0; f < 5; f++ {
		assert.Equal(t, map[int]int{0: 1, 1: 1, 2: 1}, perFold[f], "fold %d", f)
	}
}

func TestFitSigmoid(t *testing.T) {
	dec := []float64{-2, -1.5, -1, -0.5, 0.5, 1, 1.5, 2}
	positive := []bool{false, false, false, true, false, true, true, true}

	s := fitSigmoid(dec, positive)
	assert.Less(t, s.A, 0.0, "higher decision values mean higher probability")
	assert.Greater(t, s.Prob(2), 0.7)
	assert.Less(t, s.Prob(-2), 0.3)
	assert.Greater(t, s.Prob(1), s.Prob(0))

	// no positives at all: probability stays low everywhere
	s = fitSigmoid([]float64{-1, -1, -1}, []bool{false, false, false})
	assert.Less(t, s.Prob(-1), 0.5)
}

func TestSigmoidProbIsStable(t *testing.T) {
	s := Sigmoid{A: -1000, B: 0}
	assert.Equal(t, 1.0, s.Prob(10))
	assert.Equal(t, 0.0, s.Prob(-10))
	assert.False(t, math.IsNaN(s.Prob(1e308)))
}

func TestTrain(t *testing.T) {
	vec, model, report := trainSynthetic(t)

	assert.Equal(t, []string{"Diabetes", "Malaria", "Migraine", "Pneumonia", "Psoriasis"}, model.Classes)
	assert.Len(t, model.Folds, 5)
	assert.Equal(t, vec.NumFeatures(), model.NumFeatures)
	assert.NotEmpty(t, model.PairID)
	require.NoError(t, model.validate())

	assert.Equal(t, 50, report.Samples)
	assert.Equal(t, 40, report.TrainSamples)
	assert.Equal(t, 10, report.TestSamples)
	assert.Equal(t, 5, report.Classes)
	assert.GreaterOrEqual(t, report.Accuracy, 0.8)
}

func TestTrainErrors(t *testing.T) {
	p := DefaultTrainParams()

	_, _, _, err := Train([]string{"a"}, []string{"x", "y"}, p)
	assert.Error(t, err)

	_, _, _, err = Train([]string{"fever chills", "fever cough"}, []string{"Flu", "Flu"}, p)
	assert.Error(t, err, "single class")

	bad := p
	bad.Folds = 1
	_, _, _, err = Train([]string{"fever", "rash"}, []string{"Flu", "Pox"}, bad)
	assert.Error(t, err)

	bad = p
	bad.TestSize = 1
	_, _, _, err = Train([]string{"fever", "rash"}, []string{"Flu", "Pox"}, bad)
	assert.Error(t, err)

	_, _, _, err = Train([]string{"fever", "rash", "cough"}, []string{"Flu", "Pox", "Flu"}, p)
	assert.Error(t, err, "fewer training samples than folds")
}

func TestModelPredictProba(t *testing.T) {
	vec, model, _ := trainSynthetic(t)

	for _, text := range []string{"mosquito chills", "silvery scaly patches", "", "totally unrelated words"} {
		proba := model.PredictProba(vec.Transform(text))
		require.Len(t, proba, len(model.Classes))
		var sum float64
		for _, p := range proba {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "text %q", text)
	}
}

func TestModelRank(t *testing.T) {
	vec, model, _ := trainSynthetic(t)
	x := vec.Transform("mosquito chills shivering")

	top := model.Rank(x, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "Malaria", top[0].Label)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Probability, top[i].Probability)
	}

	assert.Len(t, model.Rank(x, 100), len(model.Classes))
	assert.Empty(t, model.Rank(x, 0))
	assert.Empty(t, model.Rank(x, -2))
	assert.NotNil(t, model.Rank(x, 0))
}

func TestModelRankTiesKeepClassOrder(t *testing.T) {
	_, model, _ := trainSynthetic(t)

	// all folds see the zero vector; the ranking must still be deterministic
	first := model.Rank(SparseVector{}, len(model.Classes))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, model.Rank(SparseVector{}, len(model.Classes)))
	}
}
