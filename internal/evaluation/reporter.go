// Package evaluation scores binary predictions against ground truth.
package evaluation

import (
	"math"

	"creditrisk/domain/metrics"
	"creditrisk/internal/errors"
	"creditrisk/internal/logging"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Reporter computes classification metrics
type Reporter struct {
	logger logging.Logger
}

// NewReporter creates a reporter
func NewReporter(logger logging.Logger) *Reporter {
	return &Reporter{logger: logging.OrNop(logger)}
}

// Compute scores predictions with 1 as the positive class. yProba is the
// predicted probability of class 1. Ratios with a zero denominator are 0.
// ROC-AUC needs both classes in yTrue; a single class is a
// DEGENERATE_INPUT error.
func (r *Reporter) Compute(yTrue, yPred []int, yProba []float64) (metrics.Bundle, error) {
	if err := checkInputs(yTrue, yPred, yProba); err != nil {
		return metrics.Bundle{}, err
	}

	cm := ConfusionMatrix(yTrue, yPred)
	if cm.TP+cm.FN == 0 || cm.TN+cm.FP == 0 {
		return metrics.Bundle{}, errors.DegenerateInput("y_true contains a single class; ROC-AUC is undefined")
	}

	precision := ratio(cm.TP, cm.TP+cm.FP)
	recall := ratio(cm.TP, cm.TP+cm.FN)
	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	bundle := metrics.Bundle{
		Accuracy:  ratio(cm.TP+cm.TN, cm.Total()),
		Precision: precision,
		Recall:    recall,
		F1:        f1,
		ROCAUC:    ROCAUC(yTrue, yProba),
		Confusion: cm,
	}
	r.logger.Info("Evaluated %d predictions: %s", cm.Total(), bundle)
	return bundle, nil
}

func checkInputs(yTrue, yPred []int, yProba []float64) error {
	if len(yTrue) == 0 {
		return errors.InvalidArgument("no predictions to evaluate")
	}
	if len(yPred) != len(yTrue) || len(yProba) != len(yTrue) {
		return errors.InvalidArgument("length mismatch: y_true=%d y_pred=%d y_proba=%d", len(yTrue), len(yPred), len(yProba))
	}
	for i := range yTrue {
		if yTrue[i] != 0 && yTrue[i] != 1 {
			return errors.InvalidArgument("y_true[%d] = %d, labels must be 0 or 1", i, yTrue[i])
		}
		if yPred[i] != 0 && yPred[i] != 1 {
			return errors.InvalidArgument("y_pred[%d] = %d, labels must be 0 or 1", i, yPred[i])
		}
		if p := yProba[i]; math.IsNaN(p) || p < 0 || p > 1 {
			return errors.InvalidArgument("y_proba[%d] = %v, probabilities must be in [0, 1]", i, p)
		}
	}
	return nil
}

// ConfusionMatrix counts outcomes with 1 as the positive class
func ConfusionMatrix(yTrue, yPred []int) metrics.Confusion {
	var cm metrics.Confusion
	for i := range yTrue {
		switch {
		case yTrue[i] == 1 && yPred[i] == 1:
			cm.TP++
		case yTrue[i] == 0 && yPred[i] == 1:
			cm.FP++
		case yTrue[i] == 0 && yPred[i] == 0:
			cm.TN++
		default:
			cm.FN++
		}
	}
	return cm
}

// ROCAUC is the area under the ROC curve of yProba against yTrue. Tied
// scores form a single curve point, which gives ties half credit. Both
// classes must be present.
func ROCAUC(yTrue []int, yProba []float64) float64 {
	scores := make([]float64, len(yProba))
	copy(scores, yProba)
	classes := make([]bool, len(yTrue))
	for i, y := range yTrue {
		classes[i] = y == 1
	}

	stat.SortWeightedLabeled(scores, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, scores, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
