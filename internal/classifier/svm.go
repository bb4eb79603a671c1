package classifier

import (
	"math"
	"math/rand"
)

// SVMParams controls linear SVM training.
type SVMParams struct {
	C         float64
	MaxIter   int
	Tolerance float64
}

// DefaultSVMParams matches the usual LinearSVC defaults.
func DefaultSVMParams() SVMParams {
	return SVMParams{C: 1, MaxIter: 10000, Tolerance: 1e-4}
}

// linearSVM is one binary separator: f(x) = w.x + b.
type linearSVM struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

func (m *linearSVM) decision(x SparseVector) float64 {
	return x.Dot(m.Weights) + m.Bias
}

// trainBinarySVM fits an L2-regularized squared-hinge SVM with dual coordinate
// descent. The intercept is learned as the weight of a constant feature of 1,
// so it is regularized like every other weight. positive[i] marks the +1 class.
func trainBinarySVM(x []SparseVector, positive []bool, dim int, p SVMParams, rng *rand.Rand) *linearSVM {
	n := len(x)
	w := make([]float64, dim)
	var b float64

	alpha := make([]float64, n)
	y := make([]float64, n)
	qd := make([]float64, n)
	diag := 1 / (2 * p.C)
	for i := range x {
		y[i] = -1
		if positive[i] {
			y[i] = 1
		}
		qd[i] = x[i].SquaredNorm() + 1 + diag
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	for iter := 0; iter < p.MaxIter; iter++ {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		pgMax := math.Inf(-1)
		pgMin := math.Inf(1)
		for _, i := range order {
			g := y[i]*(x[i].Dot(w)+b) - 1 + diag*alpha[i]

			pg := g
			if alpha[i] == 0 && g > 0 {
				pg = 0
			}
			pgMax = math.Max(pgMax, pg)
			pgMin = math.Min(pgMin, pg)

			if math.Abs(pg) <= 1e-12 {
				continue
			}
			old := alpha[i]
			alpha[i] = math.Max(alpha[i]-g/qd[i], 0)
			delta := (alpha[i] - old) * y[i]
			for k, idx := range x[i].Indices {
				w[idx] += delta * x[i].Values[k]
			}
			b += delta
		}

		if pgMax-pgMin <= p.Tolerance {
			break
		}
	}

	return &linearSVM{Weights: w, Bias: b}
}

// oneVsRest holds one binary separator per class, in class order.
type oneVsRest struct {
	Estimators []*linearSVM `json:"estimators"`
}

// trainOneVsRest fits one separator per class index in [0, numClasses).
func trainOneVsRest(x []SparseVector, labels []int, numClasses, dim int, p SVMParams, rng *rand.Rand) *oneVsRest {
	ovr := &oneVsRest{Estimators: make([]*linearSVM, numClasses)}
	positive := make([]bool, len(labels))
	for c := 0; c < numClasses; c++ {
		for i, label := range labels {
			positive[i] = label == c
		}
		ovr.Estimators[c] = trainBinarySVM(x, positive, dim, p, rng)
	}
	return ovr
}

// decisions returns one score per class.
func (o *oneVsRest) decisions(x SparseVector) []float64 {
	out := make([]float64, len(o.Estimators))
	for c, est := range o.Estimators {
		out[c] = est.decision(x)
	}
	return out
}
