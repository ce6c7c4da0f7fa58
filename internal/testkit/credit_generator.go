package testkit

import (
	"math"
	"math/rand"
	"strconv"

	"creditrisk/domain/table"
)

// CreditGeneratorConfig configures the synthetic applicant generator
type CreditGeneratorConfig struct {
	DefaultRate float64 `json:"default_rate"` // base share of credit_risk=1 rows
	MissingRate float64 `json:"missing_rate"` // per-cell missing rate for feature columns
	OutlierRate float64 `json:"outlier_rate"` // share of incomes multiplied into the far tail
	Seed        int64   `json:"seed"`
}

// DefaultCreditConfig returns sensible defaults for the given seed
func DefaultCreditConfig(seed int64) CreditGeneratorConfig {
	return CreditGeneratorConfig{
		DefaultRate: 0.3,
		MissingRate: 0.05,
		OutlierRate: 0.02,
		Seed:        seed,
	}
}

// CreditGenerator produces credit applicant tables with a label that
// depends on credit score and debt load, plus missing cells and income
// outliers for the cleaning stages to work on
type CreditGenerator struct {
	config CreditGeneratorConfig
	rng    *rand.Rand
}

// NewCreditGenerator creates a generator; the same seed yields the same table
func NewCreditGenerator(config CreditGeneratorConfig) *CreditGenerator {
	return &CreditGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var (
	homeOwnership = []string{"rent", "own", "mortgage"}
	loanPurposes  = []string{"car", "education", "home_improvement", "debt_consolidation", "business"}
)

// Generate returns n applicants. The label column never has missing cells.
func (g *CreditGenerator) Generate(n int) *table.Table {
	labels := make([]string, n)
	age := make([]float64, n)
	income := make([]float64, n)
	score := make([]float64, n)
	loan := make([]float64, n)
	home := make([]string, n)
	purpose := make([]string, n)

	for i := 0; i < n; i++ {
		a := clamp(math.Round(38+g.rng.NormFloat64()*11), 18, 80)
		inc := round2(math.Exp(10.8 + g.rng.NormFloat64()*0.45))
		if g.rng.Float64() < g.config.OutlierRate {
			inc = round2(inc * (8 + g.rng.Float64()*12))
		}
		s := clamp(math.Round(680+g.rng.NormFloat64()*70), 300, 850)
		amount := round2(inc * (0.1 + g.rng.Float64()*0.6))

		// Logistic link: low scores and heavy loans default more often.
		base := math.Log(g.config.DefaultRate / (1 - g.config.DefaultRate))
		logit := base - (s-680)/45 + (amount/inc-0.4)*2.5
		labels[i] = "0"
		if g.rng.Float64() < 1/(1+math.Exp(-logit)) {
			labels[i] = "1"
		}

		age[i] = g.maybeMissing(a)
		income[i] = g.maybeMissing(inc)
		score[i] = g.maybeMissing(s)
		loan[i] = amount
		home[i] = homeOwnership[g.rng.Intn(len(homeOwnership))]
		if g.rng.Float64() < g.config.MissingRate {
			home[i] = ""
		}
		purpose[i] = loanPurposes[g.rng.Intn(len(loanPurposes))]
	}

	return table.MustNew(
		table.NewCategoricalColumn(table.LabelColumn, labels),
		table.NewNumericColumn("age", age),
		table.NewNumericColumn("income", income),
		table.NewNumericColumn("credit_score", score),
		table.NewNumericColumn("loan_amount", loan),
		table.NewCategoricalColumn("home_ownership", home),
		table.NewCategoricalColumn("loan_purpose", purpose),
	)
}

// Predictions returns n (y_true, y_pred, y_proba) triples from a noisy
// scorer, for exercising the metrics reporter end to end
func (g *CreditGenerator) Predictions(n int) (yTrue, yPred []int, yProba []float64) {
	yTrue = make([]int, n)
	yPred = make([]int, n)
	yProba = make([]float64, n)
	for i := 0; i < n; i++ {
		switch {
		case i < 2:
			// Both classes are needed for ROC-AUC.
			yTrue[i] = i
		case g.rng.Float64() < g.config.DefaultRate:
			yTrue[i] = 1
		}
		p := clamp(0.25+0.5*float64(yTrue[i])+g.rng.NormFloat64()*0.2, 0, 1)
		yProba[i] = round2(p)
		if yProba[i] >= 0.5 {
			yPred[i] = 1
		}
	}
	return yTrue, yPred, yProba
}

// PredictionsTable wraps Predictions as a y_true/y_pred/y_proba table
func (g *CreditGenerator) PredictionsTable(n int) *table.Table {
	yTrue, yPred, yProba := g.Predictions(n)
	truth := make([]float64, n)
	pred := make([]float64, n)
	for i := range yTrue {
		truth[i] = float64(yTrue[i])
		pred[i] = float64(yPred[i])
	}
	return table.MustNew(
		table.NewNumericColumn("y_true", truth),
		table.NewNumericColumn("y_pred", pred),
		table.NewNumericColumn("y_proba", yProba),
	)
}

func (g *CreditGenerator) maybeMissing(v float64) float64 {
	if g.rng.Float64() < g.config.MissingRate {
		return math.NaN()
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return f
}
