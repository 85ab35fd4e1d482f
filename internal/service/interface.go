package service

import (
	"context"
	"time"

	"github.com/godilite/gradebook/internal/grades"
)

// GradeStore is the storage collaborator the query facade reads from.
type GradeStore interface {
	FetchRecords(ctx context.Context, filter grades.Filter) ([]grades.GradeRecord, error)
}

// RecordStore adds the record commands. Lookups by id return
// repository.ErrRecordNotFound when nothing matches.
type RecordStore interface {
	GradeStore
	GetRecord(ctx context.Context, id string) (grades.GradeRecord, error)
	CreateRecord(ctx context.Context, rec grades.GradeRecord) error
	AppendScore(ctx context.Context, id string, entry grades.ScoreEntry) (grades.GradeRecord, error)
	RemoveScore(ctx context.Context, id string, entry grades.ScoreEntry) (grades.GradeRecord, error)
	DeleteRecord(ctx context.Context, id string) (grades.GradeRecord, error)
	DeleteRecords(ctx context.Context, filter grades.Filter) ([]grades.GradeRecord, error)
}

// Invalidator drops cached statistics affected by a change to one
// learner's record in one class.
type Invalidator interface {
	Invalidate(ctx context.Context, learnerID, classID int64)
}

// FetchObserver is told how long each storage fetch took and whether it failed.
type FetchObserver interface {
	ObserveFetch(d time.Duration, err error)
}
