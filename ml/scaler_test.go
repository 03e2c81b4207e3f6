package ml

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	sterrors "github.com/edulytics/studentdw/pkg/errors"
)

const epsilon = 1e-9

func TestStandardScaler_FitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	scaler := NewStandardScaler()
	Z, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	wantMean := []float64{2.5, 25}
	for j, m := range scaler.Mean {
		if math.Abs(m-wantMean[j]) > epsilon {
			t.Errorf("mean[%d] = %v, want %v", j, m, wantMean[j])
		}
	}

	// Each transformed column has zero mean and unit variance.
	r, c := Z.Dims()
	for j := 0; j < c; j++ {
		sum, sumSq := 0.0, 0.0
		for i := 0; i < r; i++ {
			sum += Z.At(i, j)
		}
		mean := sum / float64(r)
		for i := 0; i < r; i++ {
			d := Z.At(i, j) - mean
			sumSq += d * d
		}
		if math.Abs(mean) > epsilon {
			t.Errorf("column %d mean = %v, want 0", j, mean)
		}
		if std := math.Sqrt(sumSq / float64(r)); math.Abs(std-1) > epsilon {
			t.Errorf("column %d std = %v, want 1", j, std)
		}
	}
}

func TestStandardScaler_ConstantFeature(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{7, 7, 7})

	scaler := NewStandardScaler()
	Z, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	if scaler.Scale[0] != 1.0 {
		t.Errorf("constant feature scale = %v, want 1", scaler.Scale[0])
	}
	for i := 0; i < 3; i++ {
		if Z.At(i, 0) != 0 {
			t.Errorf("Z[%d] = %v, want 0", i, Z.At(i, 0))
		}
	}
}

func TestStandardScaler_TransformUsesTrainStatistics(t *testing.T) {
	train := mat.NewDense(2, 1, []float64{0, 10})
	test := mat.NewDense(1, 1, []float64{20})

	scaler := NewStandardScaler()
	if _, err := scaler.FitTransform(train); err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	Z, err := scaler.Transform(test)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	// Train mean 5, std 5, so 20 maps to 3.
	if got := Z.At(0, 0); math.Abs(got-3) > epsilon {
		t.Errorf("transformed test value = %v, want 3", got)
	}
}

func TestStandardScaler_NotFitted(t *testing.T) {
	_, err := NewStandardScaler().Transform(mat.NewDense(1, 1, []float64{1}))
	var nf *sterrors.NotFittedError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}
}

func TestStandardScaler_DimensionMismatch(t *testing.T) {
	scaler := NewStandardScaler()
	if _, err := scaler.FitTransform(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	_, err := scaler.Transform(mat.NewDense(1, 3, []float64{1, 2, 3}))
	var de *sterrors.DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
}
