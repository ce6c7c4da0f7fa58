// Package validation checks loaded tables against a required column set.
package validation

import (
	"strings"

	"creditrisk/domain/table"
	"creditrisk/internal/logging"
)

// Validator reports which required columns a table lacks
type Validator struct {
	logger logging.Logger
}

// NewValidator creates a validator that reports through logger
func NewValidator(logger logging.Logger) *Validator {
	return &Validator{logger: logging.OrNop(logger)}
}

// Validate returns whether every required column is present, and the
// missing names in the order they appear in required. It never fails:
// an incomplete table is a negative result, not an error.
func (v *Validator) Validate(t *table.Table, required []string) (bool, []string) {
	missing := MissingColumns(t, required)
	if len(missing) > 0 {
		v.logger.Warn("Missing columns: [%s]", strings.Join(missing, ", "))
		return false, missing
	}
	v.logger.Info("Schema validation passed")
	return true, missing
}

// MissingColumns lists the required names t does not have. A nil table
// lacks everything.
func MissingColumns(t *table.Table, required []string) []string {
	missing := []string{}
	for _, name := range required {
		if t == nil || !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
