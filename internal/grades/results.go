package grades

import "strconv"

// ClassAverage is the mean of a learner's numeric scores within one class.
type ClassAverage struct {
	ClassID int64  `json:"class_id"`
	Average Number `json:"average"`
}

// LearnerAverage is the mean of every numeric score a learner holds.
type LearnerAverage struct {
	LearnerID      int64  `json:"learner_id"`
	OverallAverage Number `json:"overallAverage"`
}

// WeightedScore is a learner's composite, optionally scoped to one class.
type WeightedScore struct {
	LearnerID int64  `json:"learner_id"`
	ClassID   *int64 `json:"class_id,omitempty"`
	Composite Number `json:"composite"`
}

const (
	ScopeGlobal = "global"
	ScopeClass  = "class"
)

// CohortStats summarizes how many learners of a cohort pass.
type CohortStats struct {
	Scope        string  `json:"scope"`
	ClassID      *int64  `json:"class_id,omitempty"`
	PassingCount int     `json:"passing_count"`
	TotalCount   int     `json:"total_count"`
	PassingRatio float64 `json:"passing_ratio"`
}

// ScopeKey renders the scope as "global" or the class id.
func (c CohortStats) ScopeKey() string {
	if c.ClassID == nil {
		return ScopeGlobal
	}
	return strconv.FormatInt(*c.ClassID, 10)
}
