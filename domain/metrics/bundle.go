// Package metrics holds binary classification metric values.
package metrics

import "fmt"

// Confusion is a binary confusion matrix with 1 as the positive class
type Confusion struct {
	TP int `json:"tp" db:"tp"`
	FP int `json:"fp" db:"fp"`
	TN int `json:"tn" db:"tn"`
	FN int `json:"fn" db:"fn"`
}

// Total returns the number of predictions counted
func (c Confusion) Total() int {
	return c.TP + c.FP + c.TN + c.FN
}

// Bundle is the full set of reported metrics
type Bundle struct {
	Accuracy  float64   `json:"accuracy"`
	Precision float64   `json:"precision"`
	Recall    float64   `json:"recall"`
	F1        float64   `json:"f1"`
	ROCAUC    float64   `json:"roc_auc"`
	Confusion Confusion `json:"confusion"`
}

// Map returns the scalar metrics keyed by their report names
func (b Bundle) Map() map[string]float64 {
	return map[string]float64{
		"accuracy":  b.Accuracy,
		"precision": b.Precision,
		"recall":    b.Recall,
		"f1":        b.F1,
		"roc_auc":   b.ROCAUC,
	}
}

// Names lists the scalar metric names in report order
func Names() []string {
	return []string{"accuracy", "precision", "recall", "f1", "roc_auc"}
}

func (b Bundle) String() string {
	return fmt.Sprintf("accuracy=%.4f precision=%.4f recall=%.4f f1=%.4f roc_auc=%.4f",
		b.Accuracy, b.Precision, b.Recall, b.F1, b.ROCAUC)
}
