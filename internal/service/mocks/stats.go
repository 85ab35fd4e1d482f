package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/gradebook/internal/grades"
)

// MockStatsQuerier is a mock implementation of the StatsQuerier interface
// for testing the transport layers.
type MockStatsQuerier struct {
	GetClassAveragesFunc     func(ctx context.Context, learnerID int64) ([]grades.ClassAverage, error)
	GetOverallAverageFunc    func(ctx context.Context, learnerID int64) (grades.LearnerAverage, error)
	GetWeightedCompositeFunc func(ctx context.Context, learnerID int64, classID *int64) (grades.WeightedScore, error)
	GetCohortStatsFunc       func(ctx context.Context, classID *int64) (grades.CohortStats, error)
}

func (m *MockStatsQuerier) GetClassAverages(ctx context.Context, learnerID int64) ([]grades.ClassAverage, error) {
	if m.GetClassAveragesFunc != nil {
		return m.GetClassAveragesFunc(ctx, learnerID)
	}
	return nil, errors.New("GetClassAveragesFunc not implemented")
}

func (m *MockStatsQuerier) GetOverallAverage(ctx context.Context, learnerID int64) (grades.LearnerAverage, error) {
	if m.GetOverallAverageFunc != nil {
		return m.GetOverallAverageFunc(ctx, learnerID)
	}
	return grades.LearnerAverage{}, errors.New("GetOverallAverageFunc not implemented")
}

func (m *MockStatsQuerier) GetWeightedComposite(ctx context.Context, learnerID int64, classID *int64) (grades.WeightedScore, error) {
	if m.GetWeightedCompositeFunc != nil {
		return m.GetWeightedCompositeFunc(ctx, learnerID, classID)
	}
	return grades.WeightedScore{}, errors.New("GetWeightedCompositeFunc not implemented")
}

func (m *MockStatsQuerier) GetCohortStats(ctx context.Context, classID *int64) (grades.CohortStats, error) {
	if m.GetCohortStatsFunc != nil {
		return m.GetCohortStatsFunc(ctx, classID)
	}
	return grades.CohortStats{}, errors.New("GetCohortStatsFunc not implemented")
}

// MockCacher is a mock implementation of the cache interface.
// It uses function-based mocking for flexibility.
type MockCacher struct {
	GetFunc    func(ctx context.Context, key string, dest any) error
	SetFunc    func(ctx context.Context, key string, value any, expiration time.Duration) error
	DeleteFunc func(ctx context.Context, keys ...string) error
	CloseFunc  func() error
}

func (m *MockCacher) Get(ctx context.Context, key string, dest any) error {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, dest)
	}
	return errors.New("cache miss")
}

func (m *MockCacher) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	return nil
}

func (m *MockCacher) Delete(ctx context.Context, keys ...string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, keys...)
	}
	return nil
}

func (m *MockCacher) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
