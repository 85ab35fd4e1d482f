package models

import (
	"database/sql"

	"github.com/godilite/gradebook/internal/grades"
)

// ScoreRow is one row of the records/scores left join. Kind is NULL for
// records without any score.
type ScoreRow struct {
	RecordID  string
	LearnerID int64
	ClassID   int64
	Kind      sql.NullString
	Score     sql.NullFloat64
}

// Entry converts the score columns, reporting false when the row carries no score.
func (r ScoreRow) Entry() (grades.ScoreEntry, bool) {
	if !r.Kind.Valid {
		return grades.ScoreEntry{}, false
	}
	e := grades.ScoreEntry{Kind: grades.ScoreKind(r.Kind.String)}
	if r.Score.Valid {
		v := r.Score.Float64
		e.Score = &v
	}
	return e, true
}

// NullScore maps an optional score onto a nullable column value.
func NullScore(score *float64) sql.NullFloat64 {
	if score == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *score, Valid: true}
}
