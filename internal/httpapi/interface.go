package httpapi

import (
	"context"

	"github.com/godilite/gradebook/internal/grades"
)

type StatsService interface {
	GetClassAverages(ctx context.Context, learnerID int64) ([]grades.ClassAverage, error)
	GetOverallAverage(ctx context.Context, learnerID int64) (grades.LearnerAverage, error)
	GetWeightedComposite(ctx context.Context, learnerID int64, classID *int64) (grades.WeightedScore, error)
	GetCohortStats(ctx context.Context, classID *int64) (grades.CohortStats, error)
}

type RecordService interface {
	Create(ctx context.Context, learnerID, classID int64, scores []grades.ScoreEntry) (grades.GradeRecord, error)
	Get(ctx context.Context, id string) (grades.GradeRecord, error)
	List(ctx context.Context, filter grades.Filter) ([]grades.GradeRecord, error)
	AddScore(ctx context.Context, id string, entry grades.ScoreEntry) (grades.GradeRecord, error)
	RemoveScore(ctx context.Context, id string, entry grades.ScoreEntry) (grades.GradeRecord, error)
	Delete(ctx context.Context, id string) (grades.GradeRecord, error)
	DeleteByLearner(ctx context.Context, learnerID int64) (int64, error)
	DeleteByClass(ctx context.Context, classID int64) (int64, error)
}
