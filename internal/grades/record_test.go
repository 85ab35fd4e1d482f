package grades

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreEntryNumeric(t *testing.T) {
	tests := []struct {
		name  string
		entry ScoreEntry
		want  float64
		ok    bool
	}{
		{"present", NewScore(KindExam, 72.5), 72.5, true},
		{"zero is numeric", NewScore(KindQuiz, 0), 0, true},
		{"missing", ScoreEntry{Kind: KindHomework}, 0, false},
		{"nan", NewScore(KindExam, math.NaN()), 0, false},
		{"inf", NewScore(KindExam, math.Inf(-1)), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.entry.Numeric()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreEntryEqual(t *testing.T) {
	assert.True(t, NewScore(KindExam, 50).Equal(NewScore(KindExam, 50)))
	assert.False(t, NewScore(KindExam, 50).Equal(NewScore(KindQuiz, 50)))
	assert.False(t, NewScore(KindExam, 50).Equal(NewScore(KindExam, 51)))
	assert.True(t, ScoreEntry{Kind: KindExam}.Equal(ScoreEntry{Kind: KindExam}))
	assert.False(t, ScoreEntry{Kind: KindExam}.Equal(NewScore(KindExam, 0)))
}

func TestScoreKindValid(t *testing.T) {
	assert.True(t, KindExam.Valid())
	assert.True(t, KindQuiz.Valid())
	assert.True(t, KindHomework.Valid())
	assert.False(t, ScoreKind("project").Valid())
	assert.False(t, ScoreKind("").Valid())
}

func TestFilterMatches(t *testing.T) {
	r := GradeRecord{LearnerID: 1, ClassID: 10}

	assert.True(t, Filter{}.Matches(r))
	assert.True(t, Filter{LearnerID: ID(1)}.Matches(r))
	assert.True(t, Filter{LearnerID: ID(1), ClassID: ID(10)}.Matches(r))
	assert.False(t, Filter{LearnerID: ID(1), ClassID: ID(11)}.Matches(r))
	assert.False(t, Filter{ClassID: ID(-1)}.Matches(r))
}

func TestGradeRecordJSON(t *testing.T) {
	raw := `{"_id":"abc","learner_id":3,"class_id":7,"scores":[{"type":"exam","score":88},{"type":"quiz"}]}`

	var r GradeRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	assert.Equal(t, "abc", r.ID)
	assert.Equal(t, int64(3), r.LearnerID)
	require.Len(t, r.Scores, 2)
	assert.Equal(t, KindExam, r.Scores[0].Kind)
	require.NotNil(t, r.Scores[0].Score)
	assert.Equal(t, 88.0, *r.Scores[0].Score)
	assert.Nil(t, r.Scores[1].Score)
}

func TestNumberJSON(t *testing.T) {
	t.Run("finite", func(t *testing.T) {
		b, err := json.Marshal(Number(66.5))
		require.NoError(t, err)
		assert.Equal(t, "66.5", string(b))
	})

	t.Run("nan and inf become null", func(t *testing.T) {
		b, err := json.Marshal(ClassAverage{ClassID: 1, Average: NaN()})
		require.NoError(t, err)
		assert.JSONEq(t, `{"class_id":1,"average":null}`, string(b))

		b, err = json.Marshal(Number(math.Inf(1)))
		require.NoError(t, err)
		assert.Equal(t, "null", string(b))
	})

	t.Run("null reads back as NaN", func(t *testing.T) {
		var avg ClassAverage
		require.NoError(t, json.Unmarshal([]byte(`{"class_id":1,"average":null}`), &avg))
		assert.True(t, math.IsNaN(avg.Average.Float64()))
		assert.False(t, avg.Average.Defined())
	})

	t.Run("number reads back", func(t *testing.T) {
		var n Number
		require.NoError(t, json.Unmarshal([]byte(`82`), &n))
		assert.Equal(t, Number(82), n)
	})

	t.Run("rejects strings", func(t *testing.T) {
		var n Number
		assert.Error(t, json.Unmarshal([]byte(`"82"`), &n))
	})
}

func TestCohortScopeKey(t *testing.T) {
	assert.Equal(t, "global", CohortStats{Scope: ScopeGlobal}.ScopeKey())
	assert.Equal(t, "12", CohortStats{Scope: ScopeClass, ClassID: ID(12)}.ScopeKey())
}
