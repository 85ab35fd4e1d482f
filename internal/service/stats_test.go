package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/godilite/gradebook/internal/grades"
	"github.com/godilite/gradebook/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixture() []grades.GradeRecord {
	return []grades.GradeRecord{
		{
			ID:        "r1",
			LearnerID: 1,
			ClassID:   10,
			Scores: []grades.ScoreEntry{
				grades.NewScore(grades.KindExam, 80),
				grades.NewScore(grades.KindExam, 60),
				grades.NewScore(grades.KindQuiz, 90),
				grades.NewScore(grades.KindHomework, 100),
			},
		},
		{
			ID:        "r2",
			LearnerID: 1,
			ClassID:   20,
			Scores:    []grades.ScoreEntry{{Kind: grades.KindQuiz}},
		},
	}
}

type fetchRecorder struct {
	calls int
	errs  int
}

func (f *fetchRecorder) ObserveFetch(_ time.Duration, err error) {
	f.calls++
	if err != nil {
		f.errs++
	}
}

// TestNewStatsService tests the constructor
func TestNewStatsService(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{}
		logger := zap.NewNop()

		svc := NewStatsService(mockStore, logger, WithFetchTimeout(3*time.Second))

		assert.NotNil(t, svc)
		assert.Equal(t, mockStore, svc.storage)
		assert.Equal(t, logger, svc.logger)
		assert.Equal(t, 3*time.Second, svc.fetchTimeout)
	})

	t.Run("nil storage panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewStatsService(nil, zap.NewNop())
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		svc := NewStatsService(&mocks.MockRecordStore{}, nil, WithFetchTimeout(-1))

		assert.NotNil(t, svc.logger)
		assert.Equal(t, defaultFetchTimeout, svc.fetchTimeout)
	})
}

func TestGetClassAverages(t *testing.T) {
	ctx := context.Background()

	t.Run("successful calculation", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{
			FetchRecordsFunc: func(ctx context.Context, f grades.Filter) ([]grades.GradeRecord, error) {
				require.NotNil(t, f.LearnerID)
				assert.Equal(t, int64(1), *f.LearnerID)
				assert.Nil(t, f.ClassID)
				return fixture(), nil
			},
		}

		svc := NewStatsService(mockStore, zap.NewNop())
		got, err := svc.GetClassAverages(ctx, 1)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, int64(10), got[0].ClassID)
		assert.Equal(t, grades.Number(82.5), got[0].Average)
		assert.Equal(t, int64(20), got[1].ClassID)
		assert.True(t, math.IsNaN(got[1].Average.Float64()), "class without numeric scores is NaN, not an error")
	})

	t.Run("no records found", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{
			FetchRecordsFunc: func(ctx context.Context, f grades.Filter) ([]grades.GradeRecord, error) {
				return []grades.GradeRecord{}, nil
			},
		}

		svc := NewStatsService(mockStore, zap.NewNop())
		got, err := svc.GetClassAverages(ctx, 999)

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, got)
	})

	t.Run("storage failure", func(t *testing.T) {
		cause := errors.New("database connection failed")
		mockStore := &mocks.MockRecordStore{
			FetchRecordsFunc: func(ctx context.Context, f grades.Filter) ([]grades.GradeRecord, error) {
				return nil, cause
			},
		}

		svc := NewStatsService(mockStore, zap.NewNop())
		_, err := svc.GetClassAverages(ctx, 1)

		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "database connection failed")
	})
}

func TestGetOverallAverage(t *testing.T) {
	ctx := context.Background()

	t.Run("successful calculation", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{
			FetchRecordsFunc: func(ctx context.Context, f grades.Filter) ([]grades.GradeRecord, error) {
				return fixture(), nil
			},
		}

		got, err := NewStatsService(mockStore, zap.NewNop()).GetOverallAverage(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, int64(1), got.LearnerID)
		assert.Equal(t, grades.Number(82.5), got.OverallAverage)
	})

	t.Run("records without scores give NaN", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{
			FetchRecordsFunc: func(ctx context.Context, f grades.Filter) ([]grades.GradeRecord, error) {
				return []grades.GradeRecord{{ID: "x", LearnerID: 4, ClassID: 1}}, nil
			},
		}

		got, err := NewStatsService(mockStore, zap.NewNop()).GetOverallAverage(ctx, 4)

		require.NoError(t, err)
		assert.False(t, got.OverallAverage.Defined())
	})

	t.Run("no records found", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{
			FetchRecordsFunc: func(ctx context.Context, f grades.Filter) ([]grades.GradeRecord, error) {
				return nil, nil
			},
		}

		_, err := NewStatsService(mockStore, zap.NewNop()).GetOverallAverage(ctx, 4)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGetWeightedComposite(t *testing.T) {
	ctx := context.Background()

	t.Run("scenario composite", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{
			FetchRecordsFunc: func(ctx context.Context, f grades.Filter) ([]grades.GradeRecord, error) {
				require.NotNil(t, f.ClassID)
				assert.Equal(t, int64(10), *f.ClassID)
				assert.Equal(t, int64(1), *f.LearnerID)
				return fixture()[:1], nil
			},
		}

		got, err := NewStatsService(mockStore, zap.NewNop()).GetWeightedComposite(ctx, 1, grades.ID(10))

		require.NoError(t, err)
		assert.Equal(t, grades.Number(82), got.Composite)
		require.NotNil(t, got.ClassID)
		assert.Equal(t, int64(10), *got.ClassID)
	})

	t.Run("class filter matching nothing", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{
			FetchRecordsFunc: func(ctx context.Context, f grades.Filter) ([]grades.GradeRecord, error) {
				return nil, nil
			},
		}

		_, err := NewStatsService(mockStore, zap.NewNop()).GetWeightedComposite(ctx, 1, grades.ID(99))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGetCohortStats(t *testing.T) {
	ctx := context.Background()

	t.Run("global cohort", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{
			FetchRecordsFunc: func(ctx context.Context, f grades.Filter) ([]grades.GradeRecord, error) {
				assert.Nil(t, f.LearnerID)
				assert.Nil(t, f.ClassID)
				return append(fixture(), grades.GradeRecord{
					ID:        "r3",
					LearnerID: 2,
					ClassID:   10,
					Scores: []grades.ScoreEntry{
						grades.NewScore(grades.KindExam, 40),
						grades.NewScore(grades.KindQuiz, 40),
						grades.NewScore(grades.KindHomework, 40),
					},
				}), nil
			},
		}

		got, err := NewStatsService(mockStore, zap.NewNop()).GetCohortStats(ctx, nil)

		require.NoError(t, err)
		assert.Equal(t, grades.ScopeGlobal, got.Scope)
		assert.Equal(t, 1, got.PassingCount)
		assert.Equal(t, 2, got.TotalCount)
		assert.Equal(t, 50.0, got.PassingRatio)
	})

	t.Run("empty class is not an error", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{
			FetchRecordsFunc: func(ctx context.Context, f grades.Filter) ([]grades.GradeRecord, error) {
				return nil, nil
			},
		}

		got, err := NewStatsService(mockStore, zap.NewNop()).GetCohortStats(ctx, grades.ID(300))

		require.NoError(t, err)
		assert.Equal(t, 0, got.PassingCount)
		assert.Equal(t, 0, got.TotalCount)
		assert.Equal(t, 0.0, got.PassingRatio)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockStore := &mocks.MockRecordStore{
			FetchRecordsFunc: func(ctx context.Context, f grades.Filter) ([]grades.GradeRecord, error) {
				return nil, errors.New("query timeout")
			},
		}

		_, err := NewStatsService(mockStore, zap.NewNop()).GetCohortStats(ctx, nil)
		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

func TestFetchTimeout(t *testing.T) {
	recorder := &fetchRecorder{}
	mockStore := &mocks.MockRecordStore{
		FetchRecordsFunc: func(ctx context.Context, f grades.Filter) ([]grades.GradeRecord, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	svc := NewStatsService(mockStore, zap.NewNop(),
		WithFetchTimeout(10*time.Millisecond),
		WithFetchObserver(recorder))

	start := time.Now()
	_, err := svc.GetOverallAverage(context.Background(), 1)

	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, 1, recorder.errs)
}
