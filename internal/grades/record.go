package grades

import "math"

// ScoreKind classifies a single score entry.
type ScoreKind string

const (
	KindExam     ScoreKind = "exam"
	KindQuiz     ScoreKind = "quiz"
	KindHomework ScoreKind = "homework"
)

// Valid reports whether k is one of the known kinds.
func (k ScoreKind) Valid() bool {
	switch k {
	case KindExam, KindQuiz, KindHomework:
		return true
	}
	return false
}

// ScoreEntry is one typed score inside a GradeRecord. A nil Score means the
// value was missing at ingestion.
type ScoreEntry struct {
	Kind  ScoreKind `json:"type"`
	Score *float64  `json:"score"`
}

// NewScore builds an entry with a present score.
func NewScore(kind ScoreKind, score float64) ScoreEntry {
	return ScoreEntry{Kind: kind, Score: &score}
}

// Numeric returns the score and whether it takes part in averaging.
// Missing, NaN and infinite values do not.
func (e ScoreEntry) Numeric() (float64, bool) {
	if e.Score == nil {
		return 0, false
	}
	v := *e.Score
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Equal compares kind and score value, treating two missing scores as equal.
func (e ScoreEntry) Equal(other ScoreEntry) bool {
	if e.Kind != other.Kind {
		return false
	}
	if e.Score == nil || other.Score == nil {
		return e.Score == nil && other.Score == nil
	}
	return *e.Score == *other.Score
}

// GradeRecord holds the scores of one learner in one class.
type GradeRecord struct {
	ID        string       `json:"_id"`
	LearnerID int64        `json:"learner_id"`
	ClassID   int64        `json:"class_id"`
	Scores    []ScoreEntry `json:"scores"`
}

// Filter selects records by learner and/or class. Nil fields are not applied.
type Filter struct {
	LearnerID *int64
	ClassID   *int64
}

// Matches reports whether r satisfies every field set on f.
func (f Filter) Matches(r GradeRecord) bool {
	if f.LearnerID != nil && r.LearnerID != *f.LearnerID {
		return false
	}
	if f.ClassID != nil && r.ClassID != *f.ClassID {
		return false
	}
	return true
}

// ID returns a pointer to v, for building optional filter fields.
func ID(v int64) *int64 {
	return &v
}
