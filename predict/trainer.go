// Package predict trains the pass/fail classifier over early-indicator
// features, evaluates it on a held-out split, scores every student in
// the warehouse and persists the fitted artifacts.
package predict

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/edulytics/studentdw/ml"
	sterrors "github.com/edulytics/studentdw/pkg/errors"
	"github.com/edulytics/studentdw/warehouse"
)

// FeatureNames are the model features, restricted to indicators
// available before the final exam. final_score and final_grade are
// excluded to avoid label leakage.
var FeatureNames = []string{
	"attendance_rate",
	"midterm_score",
	"projects_score",
	"quizzes_avg",
	"assignments_avg",
}

// Options are the training tunables.
type Options struct {
	Seed         uint64
	TestFraction float64
	MaxIter      int
	Threshold    float64
}

// Coefficient is a fitted feature weight. Sign indicates the direction
// of the feature's effect on pass probability.
type Coefficient struct {
	Feature string
	Value   float64
}

// Evaluation summarizes model performance on the held-out test split.
type Evaluation struct {
	TrainSize    int
	TestSize     int
	Accuracy     float64
	AUC          float64
	Confusion    ml.ConfusionMatrix
	Report       ml.ClassificationReport
	Coefficients []Coefficient
}

// featureMatrix lays the five feature columns of the training rows out
// as a dense matrix plus the label vector.
func featureMatrix(rows []warehouse.TrainingRow) (*mat.Dense, []int) {
	x := mat.NewDense(len(rows), len(FeatureNames), nil)
	y := make([]int, len(rows))
	for i, r := range rows {
		x.Set(i, 0, r.Attendance)
		x.Set(i, 1, r.Midterm)
		x.Set(i, 2, r.Projects)
		x.Set(i, 3, r.Quizzes)
		x.Set(i, 4, r.Assignments)
		y[i] = r.Pass
	}
	return x, y
}

// selectRows extracts the given sample indices from X and y.
func selectRows(x *mat.Dense, y []int, idx []int) (*mat.Dense, []int) {
	_, cols := x.Dims()
	sub := mat.NewDense(len(idx), cols, nil)
	labels := make([]int, len(idx))
	for i, j := range idx {
		for c := 0; c < cols; c++ {
			sub.Set(i, c, x.At(j, c))
		}
		labels[i] = y[j]
	}
	return sub, labels
}

// Train fits the scaler and classifier on a stratified train split and
// evaluates on the test split. With a fixed seed, repeated runs produce
// identical coefficients and accuracy.
func Train(rows []warehouse.TrainingRow, opts Options) (*ml.LogisticRegression, *ml.StandardScaler, *Evaluation, error) {
	if len(rows) == 0 {
		return nil, nil, nil, sterrors.NewModelError("predict.Train", "no training rows", sterrors.ErrEmptyData)
	}

	x, y := featureMatrix(rows)

	trainIdx, testIdx, err := ml.StratifiedSplit(y, opts.TestFraction, opts.Seed)
	if err != nil {
		return nil, nil, nil, err
	}
	xTrain, yTrain := selectRows(x, y, trainIdx)
	xTest, yTest := selectRows(x, y, testIdx)

	scaler := ml.NewStandardScaler()
	xTrainScaled, err := scaler.FitTransform(xTrain)
	if err != nil {
		return nil, nil, nil, err
	}
	xTestScaled, err := scaler.Transform(xTest)
	if err != nil {
		return nil, nil, nil, err
	}

	model := ml.NewLogisticRegression(ml.WithMaxIter(opts.MaxIter))
	if err := model.Fit(xTrainScaled, yTrain); err != nil {
		return nil, nil, nil, err
	}

	eval, err := evaluate(model, xTestScaled, yTest, opts.Threshold)
	if err != nil {
		return nil, nil, nil, err
	}
	eval.TrainSize = len(trainIdx)
	eval.TestSize = len(testIdx)

	return model, scaler, eval, nil
}

func evaluate(model *ml.LogisticRegression, xTest *mat.Dense, yTest []int, threshold float64) (*Evaluation, error) {
	yPred, err := model.Predict(xTest, threshold)
	if err != nil {
		return nil, err
	}
	probs, err := model.PredictProba(xTest)
	if err != nil {
		return nil, err
	}

	accuracy, err := ml.Accuracy(yTest, yPred)
	if err != nil {
		return nil, err
	}
	auc, err := ml.ROCAUC(yTest, probs)
	if err != nil {
		return nil, err
	}
	cm, err := ml.NewConfusionMatrix(yTest, yPred)
	if err != nil {
		return nil, err
	}

	coefficients := make([]Coefficient, len(FeatureNames))
	for i, name := range FeatureNames {
		coefficients[i] = Coefficient{Feature: name, Value: model.Coef[i]}
	}
	sort.SliceStable(coefficients, func(i, j int) bool {
		return coefficients[i].Value > coefficients[j].Value
	})

	return &Evaluation{
		Accuracy:     accuracy,
		AUC:          auc,
		Confusion:    cm,
		Report:       ml.NewClassificationReport(cm),
		Coefficients: coefficients,
	}, nil
}
