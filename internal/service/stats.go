package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/gradebook/internal/grades"
	"github.com/godilite/gradebook/internal/stats"
	"go.uber.org/zap"
)

const (
	defaultFetchTimeout = 1 * time.Second
)

var (
	ErrNotFound       = errors.New("no grade records found")
	ErrStorageFailure = errors.New("storage failure")
)

// StatsService answers statistics queries by fetching records from the
// store and handing them to the aggregator.
type StatsService struct {
	storage      GradeStore
	logger       *zap.Logger
	fetchTimeout time.Duration
	observer     FetchObserver
}

type StatsOption func(*StatsService)

// WithFetchTimeout bounds every storage fetch. Non-positive values are ignored.
func WithFetchTimeout(d time.Duration) StatsOption {
	return func(s *StatsService) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

func WithFetchObserver(o FetchObserver) StatsOption {
	return func(s *StatsService) { s.observer = o }
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(storage GradeStore, logger *zap.Logger, opts ...StatsOption) *StatsService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &StatsService{
		storage:      storage,
		logger:       logger,
		fetchTimeout: defaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *StatsService) fetch(ctx context.Context, filter grades.Filter) ([]grades.GradeRecord, error) {
	dbCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	records, err := s.storage.FetchRecords(dbCtx, filter)
	if s.observer != nil {
		s.observer.ObserveFetch(time.Since(start), err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	return records, nil
}

// GetClassAverages returns the learner's mean score per class, ordered by class.
func (s *StatsService) GetClassAverages(ctx context.Context, learnerID int64) ([]grades.ClassAverage, error) {
	records, err := s.fetch(ctx, grades.Filter{LearnerID: &learnerID})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}

	out := stats.ClassAverages(records, learnerID)
	s.logger.Debug("computed class averages",
		zap.Int64("learner_id", learnerID),
		zap.Int("records", len(records)),
		zap.Int("classes", len(out)))
	return out, nil
}

// GetOverallAverage returns the mean of every score the learner holds.
func (s *StatsService) GetOverallAverage(ctx context.Context, learnerID int64) (grades.LearnerAverage, error) {
	records, err := s.fetch(ctx, grades.Filter{LearnerID: &learnerID})
	if err != nil {
		return grades.LearnerAverage{}, err
	}
	if len(records) == 0 {
		return grades.LearnerAverage{}, ErrNotFound
	}

	avg := stats.OverallAverage(records, learnerID)
	s.logger.Debug("computed overall average",
		zap.Int64("learner_id", learnerID),
		zap.Float64("average", avg))
	return grades.LearnerAverage{LearnerID: learnerID, OverallAverage: grades.Number(avg)}, nil
}

// GetWeightedComposite returns the learner's weighted composite, optionally
// restricted to one class.
func (s *StatsService) GetWeightedComposite(ctx context.Context, learnerID int64, classID *int64) (grades.WeightedScore, error) {
	records, err := s.fetch(ctx, grades.Filter{LearnerID: &learnerID, ClassID: classID})
	if err != nil {
		return grades.WeightedScore{}, err
	}
	if len(records) == 0 {
		return grades.WeightedScore{}, ErrNotFound
	}

	composite := stats.WeightedComposite(records, learnerID, classID)
	s.logger.Debug("computed weighted composite",
		zap.Int64("learner_id", learnerID),
		zap.Float64("composite", composite))
	return grades.WeightedScore{LearnerID: learnerID, ClassID: classID, Composite: grades.Number(composite)}, nil
}

// GetCohortStats returns pass-rate statistics over every learner, or over the
// learners of one class. An empty cohort is a valid zero result.
func (s *StatsService) GetCohortStats(ctx context.Context, classID *int64) (grades.CohortStats, error) {
	records, err := s.fetch(ctx, grades.Filter{ClassID: classID})
	if err != nil {
		return grades.CohortStats{}, err
	}

	result := stats.Cohort(records, classID)
	s.logger.Info("computed cohort stats",
		zap.String("scope", result.ScopeKey()),
		zap.Int("passing", result.PassingCount),
		zap.Int("total", result.TotalCount),
		zap.Float64("ratio", result.PassingRatio))
	return result, nil
}
