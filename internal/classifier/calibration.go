package classifier

import (
	"math"
)

// Sigmoid maps a decision value f to P(positive) = 1 / (1 + exp(A*f + B)).
type Sigmoid struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Prob evaluates the sigmoid without overflowing for large |A*f+B|.
func (s Sigmoid) Prob(f float64) float64 {
	z := s.A*f + s.B
	if z >= 0 {
		e := math.Exp(-z)
		return e / (1 + e)
	}
	return 1 / (1 + math.Exp(z))
}

// fitSigmoid fits Platt's sigmoid to decision values with Newton's method and
// backtracking line search. Targets are smoothed with the class priors.
func fitSigmoid(dec []float64, positive []bool) Sigmoid {
	const (
		maxIter = 100
		minStep = 1e-10
		sigma   = 1e-12
		eps     = 1e-5
	)

	var prior1, prior0 float64
	for _, p := range positive {
		if p {
			prior1++
		} else {
			prior0++
		}
	}
	hiTarget := (prior1 + 1) / (prior1 + 2)
	loTarget := 1 / (prior0 + 2)

	t := make([]float64, len(dec))
	for i, p := range positive {
		t[i] = loTarget
		if p {
			t[i] = hiTarget
		}
	}

	objective := func(a, b float64) float64 {
		var f float64
		for i, d := range dec {
			z := d*a + b
			if z >= 0 {
				f += t[i]*z + math.Log1p(math.Exp(-z))
			} else {
				f += (t[i]-1)*z + math.Log1p(math.Exp(z))
			}
		}
		return f
	}

	a := 0.0
	b := math.Log((prior0 + 1) / (prior1 + 1))
	fval := objective(a, b)

	for iter := 0; iter < maxIter; iter++ {
		h11, h22, h21 := sigma, sigma, 0.0
		g1, g2 := 0.0, 0.0
		for i, d := range dec {
			z := d*a + b
			var p, q float64
			if z >= 0 {
				e := math.Exp(-z)
				p = e / (1 + e)
				q = 1 / (1 + e)
			} else {
				e := math.Exp(z)
				p = 1 / (1 + e)
				q = e / (1 + e)
			}
			d2 := p * q
			h11 += d * d * d2
			h22 += d2
			h21 += d * d2
			d1 := t[i] - p
			g1 += d * d1
			g2 += d1
		}

		if math.Abs(g1) < eps && math.Abs(g2) < eps {
			break
		}

		det := h11*h22 - h21*h21
		dA := -(h22*g1 - h21*g2) / det
		dB := -(-h21*g1 + h11*g2) / det
		gd := g1*dA + g2*dB

		step := 1.0
		for step >= minStep {
			newA := a + step*dA
			newB := b + step*dB
			newF := objective(newA, newB)
			if newF < fval+1e-4*step*gd {
				a, b, fval = newA, newB, newF
				break
			}
			step /= 2
		}
		if step < minStep {
			break
		}
	}

	return Sigmoid{A: a, B: b}
}

// calibratedFold is a one-vs-rest SVM trained on one cross-validation split,
// with a sigmoid per class fitted on the held-out part.
type calibratedFold struct {
	Classifier *oneVsRest `json:"classifier"`
	Sigmoids   []Sigmoid  `json:"sigmoids"`
}

// proba returns normalized class probabilities for one vector.
func (f *calibratedFold) proba(x SparseVector) []float64 {
	dec := f.Classifier.decisions(x)
	out := make([]float64, len(dec))
	var sum float64
	for c, d := range dec {
		out[c] = f.Sigmoids[c].Prob(d)
		sum += out[c]
	}
	if sum == 0 {
		for c := range out {
			out[c] = 1 / float64(len(out))
		}
		return out
	}
	for c := range out {
		out[c] /= sum
	}
	return out
}

// stratifiedFolds assigns every sample a fold in [0, k). Samples are grouped
// by class in ascending label order and dealt to folds round-robin, so each
// fold gets a near-equal share of every class and of the whole set.
func stratifiedFolds(labels []int, k int) []int {
	numClasses := 0
	for _, label := range labels {
		if label+1 > numClasses {
			numClasses = label + 1
		}
	}
	byClass := make([][]int, numClasses)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}

	folds := make([]int, len(labels))
	pos := 0
	for _, members := range byClass {
		for _, i := range members {
			folds[i] = pos % k
			pos++
		}
	}
	return folds
}
