package ml

import (
	"sort"

	sterrors "github.com/edulytics/studentdw/pkg/errors"
)

// Accuracy is the fraction of predictions matching the true labels.
func Accuracy(yTrue, yPred []int) (float64, error) {
	if len(yTrue) == 0 {
		return 0, sterrors.NewModelError("Accuracy", "empty labels", sterrors.ErrEmptyData)
	}
	if len(yTrue) != len(yPred) {
		return 0, sterrors.NewDimensionError("Accuracy", len(yTrue), len(yPred), 0)
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// ROCAUC computes the area under the ROC curve by the trapezoid rule
// over scores sorted descending. If all samples share one class the AUC
// is undefined and 0.5 is returned.
func ROCAUC(yTrue []int, scores []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, sterrors.NewModelError("ROCAUC", "empty labels", sterrors.ErrEmptyData)
	}
	if n != len(scores) {
		return 0, sterrors.NewDimensionError("ROCAUC", n, len(scores), 0)
	}

	type pair struct {
		score float64
		label int
	}
	pairs := make([]pair, n)
	totalPos, totalNeg := 0.0, 0.0
	for i := range yTrue {
		if yTrue[i] != 0 && yTrue[i] != 1 {
			return 0, sterrors.NewValidationError("yTrue", "labels must be binary (0 or 1)", yTrue[i])
		}
		pairs[i] = pair{score: scores[i], label: yTrue[i]}
		if yTrue[i] == 1 {
			totalPos++
		} else {
			totalNeg++
		}
	}
	if totalPos == 0 || totalNeg == 0 {
		return 0.5, nil
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].score > pairs[j].score
	})

	tprs := []float64{0}
	fprs := []float64{0}
	tp, fp := 0.0, 0.0
	prevScore := pairs[0].score + 1

	for _, p := range pairs {
		if p.score != prevScore {
			tprs = append(tprs, tp/totalPos)
			fprs = append(fprs, fp/totalNeg)
			prevScore = p.score
		}
		if p.label == 1 {
			tp++
		} else {
			fp++
		}
	}
	tprs = append(tprs, 1)
	fprs = append(fprs, 1)

	auc := 0.0
	for i := 1; i < len(fprs); i++ {
		width := fprs[i] - fprs[i-1]
		height := (tprs[i] + tprs[i-1]) / 2
		auc += width * height
	}
	return auc, nil
}

// ConfusionMatrix is the 2x2 contingency table of a binary classifier.
// Rows are actual class (0 then 1), columns predicted class.
type ConfusionMatrix [2][2]int

// NewConfusionMatrix tallies predictions against true labels.
func NewConfusionMatrix(yTrue, yPred []int) (ConfusionMatrix, error) {
	var cm ConfusionMatrix
	if len(yTrue) != len(yPred) {
		return cm, sterrors.NewDimensionError("NewConfusionMatrix", len(yTrue), len(yPred), 0)
	}
	for i := range yTrue {
		if yTrue[i] < 0 || yTrue[i] > 1 || yPred[i] < 0 || yPred[i] > 1 {
			return cm, sterrors.NewValidationError("labels", "must be binary (0 or 1)", yTrue[i])
		}
		cm[yTrue[i]][yPred[i]]++
	}
	return cm, nil
}

// ClassMetrics holds precision, recall, F1 and support for one class.
type ClassMetrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// ClassificationReport holds per-class metrics for the negative (0) and
// positive (1) classes.
type ClassificationReport struct {
	Fail ClassMetrics
	Pass ClassMetrics
}

// NewClassificationReport computes per-class precision, recall and F1
// from a confusion matrix.
func NewClassificationReport(cm ConfusionMatrix) ClassificationReport {
	return ClassificationReport{
		Fail: classMetrics(cm, 0),
		Pass: classMetrics(cm, 1),
	}
}

func classMetrics(cm ConfusionMatrix, class int) ClassMetrics {
	other := 1 - class
	tp := float64(cm[class][class])
	fp := float64(cm[other][class])
	fn := float64(cm[class][other])

	m := ClassMetrics{Support: cm[class][0] + cm[class][1]}
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}
