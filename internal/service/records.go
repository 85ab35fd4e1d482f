package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/godilite/gradebook/internal/grades"
	"github.com/godilite/gradebook/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordService creates, reads and edits grade records. Every mutation
// invalidates the cached statistics it can affect.
type RecordService struct {
	storage     RecordStore
	invalidator Invalidator
	logger      *zap.Logger
	newID       func() string
}

// NewRecordService creates a RecordService. invalidator may be nil.
func NewRecordService(storage RecordStore, invalidator Invalidator, logger *zap.Logger) *RecordService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService{
		storage:     storage,
		invalidator: invalidator,
		logger:      logger,
		newID:       uuid.NewString,
	}
}

func storeError(op string, err error) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}

func (s *RecordService) invalidate(ctx context.Context, records ...grades.GradeRecord) {
	if s.invalidator == nil {
		return
	}
	for _, r := range records {
		s.invalidator.Invalidate(ctx, r.LearnerID, r.ClassID)
	}
}

// Create stores a new record under a fresh id.
func (s *RecordService) Create(ctx context.Context, learnerID, classID int64, scores []grades.ScoreEntry) (grades.GradeRecord, error) {
	if scores == nil {
		scores = []grades.ScoreEntry{}
	}
	rec := grades.GradeRecord{
		ID:        s.newID(),
		LearnerID: learnerID,
		ClassID:   classID,
		Scores:    scores,
	}
	if err := s.storage.CreateRecord(ctx, rec); err != nil {
		return grades.GradeRecord{}, storeError("create", err)
	}

	s.logger.Info("grade record created",
		zap.String("id", rec.ID),
		zap.Int64("learner_id", learnerID),
		zap.Int64("class_id", classID),
		zap.Int("scores", len(scores)))
	s.invalidate(ctx, rec)
	return rec, nil
}

func (s *RecordService) Get(ctx context.Context, id string) (grades.GradeRecord, error) {
	rec, err := s.storage.GetRecord(ctx, id)
	if err != nil {
		return grades.GradeRecord{}, storeError("get", err)
	}
	return rec, nil
}

// List returns the records matching filter. No match is an empty list.
func (s *RecordService) List(ctx context.Context, filter grades.Filter) ([]grades.GradeRecord, error) {
	records, err := s.storage.FetchRecords(ctx, filter)
	if err != nil {
		return nil, storeError("list", err)
	}
	if records == nil {
		records = []grades.GradeRecord{}
	}
	return records, nil
}

func (s *RecordService) AddScore(ctx context.Context, id string, entry grades.ScoreEntry) (grades.GradeRecord, error) {
	rec, err := s.storage.AppendScore(ctx, id, entry)
	if err != nil {
		return grades.GradeRecord{}, storeError("add score", err)
	}
	s.invalidate(ctx, rec)
	return rec, nil
}

// RemoveScore drops every entry equal to entry from the record.
func (s *RecordService) RemoveScore(ctx context.Context, id string, entry grades.ScoreEntry) (grades.GradeRecord, error) {
	rec, err := s.storage.RemoveScore(ctx, id, entry)
	if err != nil {
		return grades.GradeRecord{}, storeError("remove score", err)
	}
	s.invalidate(ctx, rec)
	return rec, nil
}

func (s *RecordService) Delete(ctx context.Context, id string) (grades.GradeRecord, error) {
	rec, err := s.storage.DeleteRecord(ctx, id)
	if err != nil {
		return grades.GradeRecord{}, storeError("delete", err)
	}
	s.logger.Info("grade record deleted", zap.String("id", id))
	s.invalidate(ctx, rec)
	return rec, nil
}

func (s *RecordService) DeleteByLearner(ctx context.Context, learnerID int64) (int64, error) {
	return s.deleteMatching(ctx, grades.Filter{LearnerID: &learnerID})
}

func (s *RecordService) DeleteByClass(ctx context.Context, classID int64) (int64, error) {
	return s.deleteMatching(ctx, grades.Filter{ClassID: &classID})
}

// deleteMatching invalidates the cache entries of exactly the records the
// store reports as removed.
func (s *RecordService) deleteMatching(ctx context.Context, filter grades.Filter) (int64, error) {
	records, err := s.storage.DeleteRecords(ctx, filter)
	if err != nil {
		return 0, storeError("delete", err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	s.logger.Info("grade records deleted", zap.Int("count", len(records)))
	s.invalidate(ctx, records...)
	return int64(len(records)), nil
}
