package app

import (
	"context"
	"fmt"
	"math"

	"creditrisk/adapters/tabular"
	"creditrisk/domain/core"
	"creditrisk/domain/metrics"
	"creditrisk/domain/table"
	"creditrisk/internal/errors"
	"creditrisk/internal/evaluation"
	"creditrisk/internal/logging"
	"creditrisk/ports"
)

// EvaluationService scores a predictions file and attaches the result to
// a run
type EvaluationService struct {
	runs     ports.RunRepository
	reporter *evaluation.Reporter
	reader   *tabular.Reader
	logger   logging.Logger
}

// NewEvaluationService creates an evaluation service
func NewEvaluationService(runs ports.RunRepository, logger logging.Logger) *EvaluationService {
	logger = logging.OrNop(logger)
	cfg := tabular.DefaultReaderConfig()
	cfg.Schema = table.PredictionsSchema()
	return &EvaluationService{
		runs:     runs,
		reporter: evaluation.NewReporter(logger),
		reader:   tabular.NewReader(cfg, logger),
		logger:   logger,
	}
}

// Evaluate computes metrics for the y_true, y_pred and y_proba columns of
// the file at path. When runID is set the bundle is stored on that run.
func (s *EvaluationService) Evaluate(ctx context.Context, runID core.RunID, path string) (metrics.Bundle, error) {
	t, err := s.reader.Read(path)
	if err != nil {
		return metrics.Bundle{}, err
	}

	yTrue, yPred, yProba, err := PredictionColumns(t)
	if err != nil {
		return metrics.Bundle{}, err
	}
	bundle, err := s.reporter.Compute(yTrue, yPred, yProba)
	if err != nil {
		return metrics.Bundle{}, err
	}

	if runID != "" {
		if err := s.runs.AttachMetrics(ctx, runID, bundle); err != nil {
			return metrics.Bundle{}, err
		}
		s.logger.Info("Attached metrics to run %s", runID)
	}
	return bundle, nil
}

// PredictionColumns extracts the label, prediction and probability
// columns. Labels must be whole numbers and no cell may be missing.
func PredictionColumns(t *table.Table) ([]int, []int, []float64, error) {
	yTrueCol, err := numericColumn(t, "y_true")
	if err != nil {
		return nil, nil, nil, err
	}
	yPredCol, err := numericColumn(t, "y_pred")
	if err != nil {
		return nil, nil, nil, err
	}
	yProba, err := numericColumn(t, "y_proba")
	if err != nil {
		return nil, nil, nil, err
	}

	yTrue, err := toLabels("y_true", yTrueCol)
	if err != nil {
		return nil, nil, nil, err
	}
	yPred, err := toLabels("y_pred", yPredCol)
	if err != nil {
		return nil, nil, nil, err
	}
	return yTrue, yPred, yProba, nil
}

func numericColumn(t *table.Table, name string) ([]float64, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, errors.InvalidArgument("predictions file has no %s column", name)
	}
	out := make([]float64, col.Len())
	for i, v := range col.Values {
		if v.IsMissing() || !v.IsNumeric() {
			return nil, errors.InvalidArgument("%s row %d is not a number", name, i+1)
		}
		out[i] = v.NumericVal
	}
	return out, nil
}

func toLabels(name string, values []float64) ([]int, error) {
	labels := make([]int, len(values))
	for i, v := range values {
		if v != math.Trunc(v) {
			return nil, errors.InvalidArgument("%s row %d: %s is not a class label", name, i+1, fmt.Sprint(v))
		}
		labels[i] = int(v)
	}
	return labels, nil
}
