// Package stats computes learner averages, weighted composites and cohort
// pass rates over materialized grade records.
//
// Every function is pure: inputs are never mutated or retained, and empty
// groups resolve to NaN (averages) or zero (cohort ratio) instead of errors.
package stats

import (
	"math"
	"sort"

	"github.com/godilite/gradebook/internal/grades"
)

// Composite weights. They sum to 1.0.
const (
	ExamWeight     = 0.5
	QuizWeight     = 0.3
	HomeworkWeight = 0.2
)

// PassingThreshold is the composite a learner must strictly exceed to pass.
// Route comments in older clients mention 70; 50 is the enforced value.
const PassingThreshold = 50.0

// mean accumulates numeric scores. The zero value is an empty pool.
type mean struct {
	sum   float64
	count int
}

func (m *mean) add(e grades.ScoreEntry) {
	if v, ok := e.Numeric(); ok {
		m.sum += v
		m.count++
	}
}

// value divides without guarding, so an empty pool yields NaN.
func (m mean) value() float64 {
	if m.count == 0 {
		return math.NaN()
	}
	return m.sum / float64(m.count)
}

// PerClassAverages returns, for every class the learner has a record in, the
// mean of the learner's numeric scores in that class.
func PerClassAverages(records []grades.GradeRecord, learnerID int64) map[int64]float64 {
	pools := make(map[int64]*mean)
	for _, r := range records {
		if r.LearnerID != learnerID {
			continue
		}
		p, ok := pools[r.ClassID]
		if !ok {
			p = &mean{}
			pools[r.ClassID] = p
		}
		for _, e := range r.Scores {
			p.add(e)
		}
	}

	out := make(map[int64]float64, len(pools))
	for classID, p := range pools {
		out[classID] = p.value()
	}
	return out
}

// ClassAverages is PerClassAverages ordered by class id.
func ClassAverages(records []grades.GradeRecord, learnerID int64) []grades.ClassAverage {
	byClass := PerClassAverages(records, learnerID)

	out := make([]grades.ClassAverage, 0, len(byClass))
	for classID, avg := range byClass {
		out = append(out, grades.ClassAverage{ClassID: classID, Average: grades.Number(avg)})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ClassID < out[j].ClassID
	})
	return out
}

// OverallAverage is the mean of every numeric score the learner holds.
func OverallAverage(records []grades.GradeRecord, learnerID int64) float64 {
	var pool mean
	for _, r := range records {
		if r.LearnerID != learnerID {
			continue
		}
		for _, e := range r.Scores {
			pool.add(e)
		}
	}
	return pool.value()
}

// WeightedComposite blends the learner's exam, quiz and homework means.
// A non-nil classID restricts the records to that class first. Any empty
// bucket makes the composite NaN.
func WeightedComposite(records []grades.GradeRecord, learnerID int64, classID *int64) float64 {
	filter := grades.Filter{LearnerID: &learnerID, ClassID: classID}

	var exam, quiz, homework mean
	for _, r := range records {
		if !filter.Matches(r) {
			continue
		}
		for _, e := range r.Scores {
			switch e.Kind {
			case grades.KindExam:
				exam.add(e)
			case grades.KindQuiz:
				quiz.add(e)
			case grades.KindHomework:
				homework.add(e)
			}
		}
	}

	return ExamWeight*exam.value() + QuizWeight*quiz.value() + HomeworkWeight*homework.value()
}

// Cohort counts passing learners among the records, optionally restricted
// to one class. Every distinct learner counts towards the total, including
// learners without any scores.
func Cohort(records []grades.GradeRecord, classID *int64) grades.CohortStats {
	result := grades.CohortStats{Scope: grades.ScopeGlobal}
	if classID != nil {
		id := *classID
		result.Scope = grades.ScopeClass
		result.ClassID = &id
	}

	filter := grades.Filter{ClassID: classID}
	groups := make(map[int64][]grades.GradeRecord)
	for _, r := range records {
		if filter.Matches(r) {
			groups[r.LearnerID] = append(groups[r.LearnerID], r)
		}
	}

	for learnerID, group := range groups {
		result.TotalCount++
		// NaN compares false, so learners with an empty bucket never pass.
		if WeightedComposite(group, learnerID, nil) > PassingThreshold {
			result.PassingCount++
		}
	}

	if result.TotalCount > 0 {
		result.PassingRatio = 100 * float64(result.PassingCount) / float64(result.TotalCount)
	}
	return result
}
