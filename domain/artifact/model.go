// Package artifact describes trained-model artifacts persisted next to
// pipeline runs.
package artifact

import (
	"fmt"
	"sort"
	"time"

	"creditrisk/domain/core"
	"creditrisk/domain/metrics"
)

// ModelArtifact is a model description stored in a language-neutral
// format: the features it consumes, its numeric parameters and the
// metrics it scored
type ModelArtifact struct {
	ID         core.ArtifactID    `json:"id"`
	Name       string             `json:"name"`
	Kind       string             `json:"kind"` // e.g. logistic_regression
	RunID      core.RunID         `json:"run_id,omitempty"`
	Features   []string           `json:"features"`
	Parameters map[string]float64 `json:"parameters"`
	Metrics    *metrics.Bundle    `json:"metrics,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// NewModelArtifact creates an artifact with a fresh ID
func NewModelArtifact(name, kind string, features []string, parameters map[string]float64) *ModelArtifact {
	if parameters == nil {
		parameters = map[string]float64{}
	}
	return &ModelArtifact{
		ID:         core.NewArtifactID(),
		Name:       name,
		Kind:       kind,
		Features:   features,
		Parameters: parameters,
		CreatedAt:  time.Now().UTC(),
	}
}

// Validate checks the artifact is complete enough to store
func (a *ModelArtifact) Validate() error {
	if core.ID(a.ID).IsEmpty() {
		return fmt.Errorf("artifact id cannot be empty")
	}
	if a.Name == "" {
		return fmt.Errorf("artifact name cannot be empty")
	}
	if a.Kind == "" {
		return fmt.Errorf("artifact kind cannot be empty")
	}
	return nil
}

// ParameterNames returns the parameter keys in sorted order
func (a *ModelArtifact) ParameterNames() []string {
	names := make([]string, 0, len(a.Parameters))
	for name := range a.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
