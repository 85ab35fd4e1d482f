package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/godilite/gradebook/internal/grades"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	assert.Equal(t, DialectPostgres, DialectFor("pgx"))
	assert.Equal(t, DialectPostgres, DialectFor("postgres"))
	assert.Equal(t, DialectSQLite, DialectFor("sqlite3"))
	assert.Equal(t, DialectSQLite, DialectFor(""))
}

func TestRebind(t *testing.T) {
	pg := &GradeRepository{dialect: DialectPostgres}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))

	lite := &GradeRepository{dialect: DialectSQLite}
	assert.Equal(t, "a = ? AND b = ?", lite.rebind("a = ? AND b = ?"))
}

func TestWhereClause(t *testing.T) {
	where, args := whereClause(grades.Filter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = whereClause(grades.Filter{LearnerID: grades.ID(4), ClassID: grades.ID(9)})
	assert.Equal(t, " WHERE r.learner_id = ? AND r.class_id = ?", where)
	assert.Equal(t, []any{int64(4), int64(9)}, args)
}

func TestFetchRecords_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM grade_records AS r")).
		WithArgs(int64(1)).
		WillReturnError(errors.New("connection reset"))

	repo := NewGradeRepository(db, DialectPostgres)
	_, err = repo.FetchRecords(context.Background(), grades.Filter{LearnerID: grades.ID(1)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "query FetchRecords")
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchRecords_PostgresPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "learner_id", "class_id", "kind", "score"}).
		AddRow("r1", int64(1), int64(10), "exam", 80.0).
		AddRow("r1", int64(1), int64(10), "quiz", nil).
		AddRow("r2", int64(1), int64(11), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.learner_id = $1 AND r.class_id = $2")).
		WithArgs(int64(1), int64(10)).
		WillReturnRows(rows)

	repo := NewGradeRepository(db, DialectPostgres)
	records, err := repo.FetchRecords(context.Background(), grades.Filter{LearnerID: grades.ID(1), ClassID: grades.ID(10)})

	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Len(t, records[0].Scores, 2)
	assert.Nil(t, records[0].Scores[1].Score)
	assert.Empty(t, records[1].Scores)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRecord_RollsBackOnScoreFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grade_records")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grade_scores")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	repo := NewGradeRepository(db, DialectSQLite)
	err = repo.CreateRecord(context.Background(), grades.GradeRecord{
		ID:        "r1",
		LearnerID: 1,
		ClassID:   10,
		Scores:    []grades.ScoreEntry{grades.NewScore(grades.KindExam, 1)},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRecords_SelectsAndDeletesInOneTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT r.id, r.learner_id, r.class_id FROM grade_records AS r WHERE r.class_id = $1 ORDER BY r.id FOR UPDATE")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "learner_id", "class_id"}).
			AddRow("r1", int64(1), int64(10)).
			AddRow("r2", int64(2), int64(10)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM grade_scores WHERE record_id IN ($1, $2)")).
		WithArgs("r1", "r2").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM grade_records WHERE id IN ($1, $2)")).
		WithArgs("r1", "r2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	repo := NewGradeRepository(db, DialectPostgres)
	deleted, err := repo.DeleteRecords(context.Background(), grades.Filter{ClassID: grades.ID(10)})

	require.NoError(t, err)
	assert.Equal(t, []grades.GradeRecord{
		{ID: "r1", LearnerID: 1, ClassID: 10},
		{ID: "r2", LearnerID: 2, ClassID: 10},
	}, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRecords_NothingMatches(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM grade_records AS r WHERE r.learner_id = ?")).
		WithArgs(int64(-1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "learner_id", "class_id"}))
	mock.ExpectCommit()

	repo := NewGradeRepository(db, DialectSQLite)
	deleted, err := repo.DeleteRecords(context.Background(), grades.Filter{LearnerID: grades.ID(-1)})

	require.NoError(t, err)
	assert.Empty(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRecords_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM grade_records AS r")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "learner_id", "class_id"}).
			AddRow("r1", int64(1), int64(10)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM grade_scores")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM grade_records")).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	repo := NewGradeRepository(db, DialectSQLite)
	deleted, err := repo.DeleteRecords(context.Background(), grades.Filter{LearnerID: grades.ID(1)})

	require.Error(t, err)
	assert.Nil(t, deleted)
	assert.Contains(t, err.Error(), "lock timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}
