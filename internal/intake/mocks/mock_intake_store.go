package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/revops/intake-service/internal/intake/model"
)

// MockIntakeStore is a mock implementation of IntakeStore
type MockIntakeStore struct {
	mock.Mock
}

func (m *MockIntakeStore) Insert(ctx context.Context, rec *model.IntakeRequest) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

func (m *MockIntakeStore) List(ctx context.Context, filter model.ListFilter) ([]model.IntakeRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.IntakeRequest), args.Error(1)
}

func (m *MockIntakeStore) GetByID(ctx context.Context, id string) (*model.IntakeRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IntakeRequest), args.Error(1)
}

func (m *MockIntakeStore) UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, status, updatedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockIntakeStore) SetJiraKey(ctx context.Context, id, key string) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

func (m *MockIntakeStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockIntakeStore) ExportAll(ctx context.Context) ([]model.IntakeRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.IntakeRequest), args.Error(1)
}

func (m *MockIntakeStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
