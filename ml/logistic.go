package ml

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	sterrors "github.com/edulytics/studentdw/pkg/errors"
)

const (
	defaultMaxIter = 100
	defaultTol     = 1e-4
	defaultC       = 1.0
	probEpsilon    = 1e-15
)

// LogisticRegression is a binary logistic-regression classifier trained
// with L-BFGS and l2 regularization. Parameters start from zero, so
// training is deterministic: the same data always produces the same
// coefficients. Model fields are exported for gob encoding.
type LogisticRegression struct {
	Coef      []float64
	Intercept float64
	NFeatures int
	NIter     int
	Fitted    bool

	maxIter int
	tol     float64
	c       float64
}

// LogisticRegressionOption is a functional option for LogisticRegression.
type LogisticRegressionOption func(*LogisticRegression)

// WithMaxIter caps the number of optimizer iterations.
func WithMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithTol sets the gradient threshold for convergence.
func WithTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithC sets the inverse l2 regularization strength.
func WithC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.c = c
	}
}

// NewLogisticRegression creates an unfitted classifier.
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		maxIter: defaultMaxIter,
		tol:     defaultTol,
		c:       defaultC,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// stableSigmoid computes sigmoid(z) without overflow for large |z|.
func stableSigmoid(z float64) float64 {
	if z >= 0 {
		ez := math.Exp(-z)
		return 1.0 / (1.0 + ez)
	}
	ez := math.Exp(z)
	return ez / (1.0 + ez)
}

// clampProbability keeps p away from 0 and 1 so log stays finite.
func clampProbability(p float64) float64 {
	if p < probEpsilon {
		return probEpsilon
	}
	if p > 1-probEpsilon {
		return 1 - probEpsilon
	}
	return p
}

// Fit trains the classifier on X with binary labels y (0 or 1).
func (lr *LogisticRegression) Fit(X mat.Matrix, y []int) error {
	nSamples, nFeatures := X.Dims()
	if nSamples != len(y) {
		return sterrors.NewDimensionError("LogisticRegression.Fit", nSamples, len(y), 0)
	}
	if nSamples == 0 {
		return sterrors.NewModelError("LogisticRegression.Fit", "empty data", sterrors.ErrEmptyData)
	}
	for i, label := range y {
		if label != 0 && label != 1 {
			return sterrors.NewValidationError("y",
				"labels must be binary (0 or 1)", y[i])
		}
	}
	if lr.c <= 0 {
		return sterrors.NewValueError("LogisticRegression.Fit", "C must be > 0")
	}

	lr.NFeatures = nFeatures
	lambda := 1.0 / lr.c
	xD := mat.DenseCopyOf(X)

	// Parameter vector is [w_0..w_{d-1}, b].
	pDim := nFeatures + 1
	x0 := make([]float64, pDim)

	prob := optimize.Problem{
		Func: func(theta []float64) float64 {
			w := theta[:nFeatures]
			b := theta[nFeatures]
			loss := 0.0
			for i := 0; i < nSamples; i++ {
				z := b
				for j := 0; j < nFeatures; j++ {
					z += w[j] * xD.At(i, j)
				}
				p := clampProbability(stableSigmoid(z))
				yv := float64(y[i])
				loss += -yv*math.Log(p) - (1.0-yv)*math.Log(1.0-p)
			}
			loss /= float64(nSamples)
			reg := 0.0
			for j := 0; j < nFeatures; j++ {
				reg += w[j] * w[j]
			}
			return loss + 0.5*lambda*reg
		},
		Grad: func(grad, theta []float64) {
			w := theta[:nFeatures]
			b := theta[nFeatures]
			for j := range grad {
				grad[j] = 0
			}
			for i := 0; i < nSamples; i++ {
				z := b
				for j := 0; j < nFeatures; j++ {
					z += w[j] * xD.At(i, j)
				}
				diff := stableSigmoid(z) - float64(y[i])
				for j := 0; j < nFeatures; j++ {
					grad[j] += diff * xD.At(i, j)
				}
				grad[nFeatures] += diff
			}
			invN := 1.0 / float64(nSamples)
			for j := range grad {
				grad[j] *= invN
			}
			for j := 0; j < nFeatures; j++ {
				grad[j] += lambda * w[j]
			}
		},
	}

	settings := optimize.Settings{
		GradientThreshold: lr.tol,
		MajorIterations:   lr.maxIter,
	}
	result, err := optimize.Minimize(prob, x0, &settings, &optimize.LBFGS{})
	if err != nil {
		return errors.Wrap(err, "lbfgs optimization failed")
	}

	lr.Coef = make([]float64, nFeatures)
	copy(lr.Coef, result.X[:nFeatures])
	lr.Intercept = result.X[nFeatures]
	lr.NIter = result.Stats.MajorIterations
	lr.Fitted = true
	return nil
}

// PredictProba returns the probability of the positive class for every
// row of X.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) ([]float64, error) {
	if !lr.Fitted {
		return nil, sterrors.NewNotFittedError("LogisticRegression", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.NFeatures {
		return nil, sterrors.NewDimensionError("LogisticRegression.PredictProba", lr.NFeatures, nFeatures, 1)
	}

	probs := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		z := lr.Intercept
		for j := 0; j < nFeatures; j++ {
			z += X.At(i, j) * lr.Coef[j]
		}
		probs[i] = stableSigmoid(z)
	}
	return probs, nil
}

// Predict returns the predicted labels of X at the given probability
// threshold.
func (lr *LogisticRegression) Predict(X mat.Matrix, threshold float64) ([]int, error) {
	probs, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(probs))
	for i, p := range probs {
		if p >= threshold {
			labels[i] = 1
		}
	}
	return labels, nil
}
