package mocks

import (
	"context"
	"errors"

	"github.com/godilite/gradebook/internal/grades"
)

// MockRecordService mirrors RecordService for transport tests.
type MockRecordService struct {
	CreateFunc          func(ctx context.Context, learnerID, classID int64, scores []grades.ScoreEntry) (grades.GradeRecord, error)
	GetFunc             func(ctx context.Context, id string) (grades.GradeRecord, error)
	ListFunc            func(ctx context.Context, filter grades.Filter) ([]grades.GradeRecord, error)
	AddScoreFunc        func(ctx context.Context, id string, entry grades.ScoreEntry) (grades.GradeRecord, error)
	RemoveScoreFunc     func(ctx context.Context, id string, entry grades.ScoreEntry) (grades.GradeRecord, error)
	DeleteFunc          func(ctx context.Context, id string) (grades.GradeRecord, error)
	DeleteByLearnerFunc func(ctx context.Context, learnerID int64) (int64, error)
	DeleteByClassFunc   func(ctx context.Context, classID int64) (int64, error)
}

var errNotMocked = errors.New("not implemented")

func (m *MockRecordService) Create(ctx context.Context, learnerID, classID int64, scores []grades.ScoreEntry) (grades.GradeRecord, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, learnerID, classID, scores)
	}
	return grades.GradeRecord{}, errNotMocked
}

func (m *MockRecordService) Get(ctx context.Context, id string) (grades.GradeRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return grades.GradeRecord{}, errNotMocked
}

func (m *MockRecordService) List(ctx context.Context, filter grades.Filter) ([]grades.GradeRecord, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, errNotMocked
}

func (m *MockRecordService) AddScore(ctx context.Context, id string, entry grades.ScoreEntry) (grades.GradeRecord, error) {
	if m.AddScoreFunc != nil {
		return m.AddScoreFunc(ctx, id, entry)
	}
	return grades.GradeRecord{}, errNotMocked
}

func (m *MockRecordService) RemoveScore(ctx context.Context, id string, entry grades.ScoreEntry) (grades.GradeRecord, error) {
	if m.RemoveScoreFunc != nil {
		return m.RemoveScoreFunc(ctx, id, entry)
	}
	return grades.GradeRecord{}, errNotMocked
}

func (m *MockRecordService) Delete(ctx context.Context, id string) (grades.GradeRecord, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return grades.GradeRecord{}, errNotMocked
}

func (m *MockRecordService) DeleteByLearner(ctx context.Context, learnerID int64) (int64, error) {
	if m.DeleteByLearnerFunc != nil {
		return m.DeleteByLearnerFunc(ctx, learnerID)
	}
	return 0, errNotMocked
}

func (m *MockRecordService) DeleteByClass(ctx context.Context, classID int64) (int64, error) {
	if m.DeleteByClassFunc != nil {
		return m.DeleteByClassFunc(ctx, classID)
	}
	return 0, errNotMocked
}
