package grpc

import (
	"context"

	"github.com/godilite/gradebook/internal/grades"
)

// StatsService is the read side the handlers serve. The caching decorator
// and the plain service both satisfy it.
type StatsService interface {
	GetClassAverages(ctx context.Context, learnerID int64) ([]grades.ClassAverage, error)
	GetOverallAverage(ctx context.Context, learnerID int64) (grades.LearnerAverage, error)
	GetWeightedComposite(ctx context.Context, learnerID int64, classID *int64) (grades.WeightedScore, error)
	GetCohortStats(ctx context.Context, classID *int64) (grades.CohortStats, error)
}
