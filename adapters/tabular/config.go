package tabular

import (
	"creditrisk/adapters/datareadiness/coercer"
	"creditrisk/domain/table"
)

// ReaderConfig holds configuration for reading tabular files
type ReaderConfig struct {
	Schema         table.Schema           `json:"schema"`
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
	Sheet          string                 `json:"sheet"`        // xlsx only; empty means the first sheet
	RecordsPath    string                 `json:"records_path"` // json only; gjson path to the records array
}

// DefaultReaderConfig returns the credit risk schema with default coercion rules
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Schema:         table.CreditRiskSchema(),
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
