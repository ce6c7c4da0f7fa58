package app

import (
	"context"

	"creditrisk/domain/core"
	"creditrisk/domain/metrics"
	"creditrisk/domain/run"

	"github.com/stretchr/testify/mock"
)

// MockRunRepository is a mock for the run ledger
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Save(ctx context.Context, record *run.Record) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockRunRepository) Get(ctx context.Context, id core.RunID) (*run.Record, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*run.Record)
	return record, args.Error(1)
}

func (m *MockRunRepository) List(ctx context.Context, limit int) ([]*run.Record, error) {
	args := m.Called(ctx, limit)
	records, _ := args.Get(0).([]*run.Record)
	return records, args.Error(1)
}

func (m *MockRunRepository) AttachMetrics(ctx context.Context, id core.RunID, bundle metrics.Bundle) error {
	return m.Called(ctx, id, bundle).Error(0)
}
