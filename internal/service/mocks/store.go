package mocks

import (
	"context"
	"errors"

	"github.com/godilite/gradebook/internal/grades"
)

// MockRecordStore is a mock implementation of the RecordStore interface
// for testing the service layer.
type MockRecordStore struct {
	FetchRecordsFunc  func(ctx context.Context, filter grades.Filter) ([]grades.GradeRecord, error)
	GetRecordFunc     func(ctx context.Context, id string) (grades.GradeRecord, error)
	CreateRecordFunc  func(ctx context.Context, rec grades.GradeRecord) error
	AppendScoreFunc   func(ctx context.Context, id string, entry grades.ScoreEntry) (grades.GradeRecord, error)
	RemoveScoreFunc   func(ctx context.Context, id string, entry grades.ScoreEntry) (grades.GradeRecord, error)
	DeleteRecordFunc  func(ctx context.Context, id string) (grades.GradeRecord, error)
	DeleteRecordsFunc func(ctx context.Context, filter grades.Filter) ([]grades.GradeRecord, error)
}

func (m *MockRecordStore) FetchRecords(ctx context.Context, filter grades.Filter) ([]grades.GradeRecord, error) {
	if m.FetchRecordsFunc != nil {
		return m.FetchRecordsFunc(ctx, filter)
	}
	return nil, errors.New("FetchRecordsFunc not implemented")
}

func (m *MockRecordStore) GetRecord(ctx context.Context, id string) (grades.GradeRecord, error) {
	if m.GetRecordFunc != nil {
		return m.GetRecordFunc(ctx, id)
	}
	return grades.GradeRecord{}, errors.New("GetRecordFunc not implemented")
}

func (m *MockRecordStore) CreateRecord(ctx context.Context, rec grades.GradeRecord) error {
	if m.CreateRecordFunc != nil {
		return m.CreateRecordFunc(ctx, rec)
	}
	return errors.New("CreateRecordFunc not implemented")
}

func (m *MockRecordStore) AppendScore(ctx context.Context, id string, entry grades.ScoreEntry) (grades.GradeRecord, error) {
	if m.AppendScoreFunc != nil {
		return m.AppendScoreFunc(ctx, id, entry)
	}
	return grades.GradeRecord{}, errors.New("AppendScoreFunc not implemented")
}

func (m *MockRecordStore) RemoveScore(ctx context.Context, id string, entry grades.ScoreEntry) (grades.GradeRecord, error) {
	if m.RemoveScoreFunc != nil {
		return m.RemoveScoreFunc(ctx, id, entry)
	}
	return grades.GradeRecord{}, errors.New("RemoveScoreFunc not implemented")
}

func (m *MockRecordStore) DeleteRecord(ctx context.Context, id string) (grades.GradeRecord, error) {
	if m.DeleteRecordFunc != nil {
		return m.DeleteRecordFunc(ctx, id)
	}
	return grades.GradeRecord{}, errors.New("DeleteRecordFunc not implemented")
}

func (m *MockRecordStore) DeleteRecords(ctx context.Context, filter grades.Filter) ([]grades.GradeRecord, error) {
	if m.DeleteRecordsFunc != nil {
		return m.DeleteRecordsFunc(ctx, filter)
	}
	return nil, errors.New("DeleteRecordsFunc not implemented")
}

// MockInvalidator records every Invalidate call.
type MockInvalidator struct {
	Calls [][2]int64
}

func (m *MockInvalidator) Invalidate(_ context.Context, learnerID, classID int64) {
	m.Calls = append(m.Calls, [2]int64{learnerID, classID})
}
