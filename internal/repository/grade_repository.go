package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/godilite/gradebook/internal/grades"
	"github.com/godilite/gradebook/internal/repository/models"
)

// ErrRecordNotFound is returned when an id does not match any grade record.
var ErrRecordNotFound = errors.New("grade record not found")

// Dialect selects the placeholder syntax of the underlying driver.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) Dialect {
	switch driver {
	case "pgx", "postgres", "postgresql":
		return DialectPostgres
	default:
		return DialectSQLite
	}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS grade_records (
		id TEXT PRIMARY KEY,
		learner_id BIGINT NOT NULL,
		class_id BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS grade_scores (
		record_id TEXT NOT NULL REFERENCES grade_records(id),
		position INTEGER NOT NULL,
		kind TEXT NOT NULL,
		score DOUBLE PRECISION
	)`,
	`CREATE INDEX IF NOT EXISTS idx_grade_records_class ON grade_records (class_id)`,
	`CREATE INDEX IF NOT EXISTS idx_grade_records_learner ON grade_records (learner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_grade_records_class_learner ON grade_records (class_id, learner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_grade_scores_record ON grade_scores (record_id, position)`,
}

type GradeRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewGradeRepository(db *sql.DB, dialect Dialect) *GradeRepository {
	return &GradeRepository{db: db, dialect: dialect}
}

// Migrate creates the tables and indexes if they do not exist yet.
func (s *GradeRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders into $n for Postgres.
func (s *GradeRepository) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func whereClause(f grades.Filter) (string, []any) {
	var conds []string
	var args []any
	if f.LearnerID != nil {
		conds = append(conds, "r.learner_id = ?")
		args = append(args, *f.LearnerID)
	}
	if f.ClassID != nil {
		conds = append(conds, "r.class_id = ?")
		args = append(args, *f.ClassID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// FetchRecords loads every record matching the filter with its scores in
// insertion order. Filter fields are AND-ed.
func (s *GradeRepository) FetchRecords(ctx context.Context, f grades.Filter) ([]grades.GradeRecord, error) {
	where, args := whereClause(f)
	query := `
		SELECT r.id, r.learner_id, r.class_id, sc.kind, sc.score
		FROM grade_records AS r
		LEFT JOIN grade_scores AS sc ON sc.record_id = r.id` + where + `
		ORDER BY r.learner_id, r.class_id, r.id, sc.position`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query FetchRecords: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("scan FetchRecords: %w", err)
	}
	return records, nil
}

func scanRecords(rows *sql.Rows) ([]grades.GradeRecord, error) {
	var records []grades.GradeRecord
	index := make(map[string]int)

	for rows.Next() {
		var row models.ScoreRow
		if err := rows.Scan(&row.RecordID, &row.LearnerID, &row.ClassID, &row.Kind, &row.Score); err != nil {
			return nil, err
		}

		i, ok := index[row.RecordID]
		if !ok {
			i = len(records)
			index[row.RecordID] = i
			records = append(records, grades.GradeRecord{
				ID:        row.RecordID,
				LearnerID: row.LearnerID,
				ClassID:   row.ClassID,
				Scores:    []grades.ScoreEntry{},
			})
		}
		if entry, ok := row.Entry(); ok {
			records[i].Scores = append(records[i].Scores, entry)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// GetRecord loads a single record by id.
func (s *GradeRepository) GetRecord(ctx context.Context, id string) (grades.GradeRecord, error) {
	return s.getRecord(ctx, s.db, id)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *GradeRepository) getRecord(ctx context.Context, q queryer, id string) (grades.GradeRecord, error) {
	query := `
		SELECT r.id, r.learner_id, r.class_id, sc.kind, sc.score
		FROM grade_records AS r
		LEFT JOIN grade_scores AS sc ON sc.record_id = r.id
		WHERE r.id = ?
		ORDER BY sc.position`

	rows, err := q.QueryContext(ctx, s.rebind(query), id)
	if err != nil {
		return grades.GradeRecord{}, fmt.Errorf("query GetRecord: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return grades.GradeRecord{}, fmt.Errorf("scan GetRecord: %w", err)
	}
	if len(records) == 0 {
		return grades.GradeRecord{}, ErrRecordNotFound
	}
	return records[0], nil
}

// CreateRecord inserts a record and its scores atomically.
func (s *GradeRepository) CreateRecord(ctx context.Context, rec grades.GradeRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			s.rebind(`INSERT INTO grade_records (id, learner_id, class_id) VALUES (?, ?, ?)`),
			rec.ID, rec.LearnerID, rec.ClassID)
		if err != nil {
			return fmt.Errorf("insert grade record: %w", err)
		}
		for i, e := range rec.Scores {
			if err := s.insertScore(ctx, tx, rec.ID, i, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GradeRepository) insertScore(ctx context.Context, tx *sql.Tx, recordID string, position int, e grades.ScoreEntry) error {
	_, err := tx.ExecContext(ctx,
		s.rebind(`INSERT INTO grade_scores (record_id, position, kind, score) VALUES (?, ?, ?, ?)`),
		recordID, position, string(e.Kind), models.NullScore(e.Score))
	if err != nil {
		return fmt.Errorf("insert grade score: %w", err)
	}
	return nil
}

// AppendScore adds one entry at the end of the record's scores.
func (s *GradeRepository) AppendScore(ctx context.Context, id string, e grades.ScoreEntry) (grades.GradeRecord, error) {
	var out grades.GradeRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rec, err := s.getRecord(ctx, tx, id)
		if err != nil {
			return err
		}

		var next sql.NullInt64
		err = tx.QueryRowContext(ctx,
			s.rebind(`SELECT MAX(position) FROM grade_scores WHERE record_id = ?`), id).Scan(&next)
		if err != nil {
			return fmt.Errorf("query next position: %w", err)
		}
		position := 0
		if next.Valid {
			position = int(next.Int64) + 1
		}

		if err := s.insertScore(ctx, tx, id, position, e); err != nil {
			return err
		}
		rec.Scores = append(rec.Scores, e)
		out = rec
		return nil
	})
	return out, err
}

// RemoveScore deletes every entry of the record equal to e in kind and score.
func (s *GradeRepository) RemoveScore(ctx context.Context, id string, e grades.ScoreEntry) (grades.GradeRecord, error) {
	var out grades.GradeRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.getRecord(ctx, tx, id); err != nil {
			return err
		}

		query := `DELETE FROM grade_scores WHERE record_id = ? AND kind = ? AND score IS NULL`
		args := []any{id, string(e.Kind)}
		if e.Score != nil {
			query = `DELETE FROM grade_scores WHERE record_id = ? AND kind = ? AND score = ?`
			args = append(args, *e.Score)
		}
		if _, err := tx.ExecContext(ctx, s.rebind(query), args...); err != nil {
			return fmt.Errorf("delete grade score: %w", err)
		}

		rec, err := s.getRecord(ctx, tx, id)
		if err != nil {
			return err
		}
		out = rec
		return nil
	})
	return out, err
}

// DeleteRecord removes a record and returns what was deleted.
func (s *GradeRepository) DeleteRecord(ctx context.Context, id string) (grades.GradeRecord, error) {
	var out grades.GradeRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rec, err := s.getRecord(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM grade_scores WHERE record_id = ?`), id); err != nil {
			return fmt.Errorf("delete grade scores: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM grade_records WHERE id = ?`), id); err != nil {
			return fmt.Errorf("delete grade record: %w", err)
		}
		out = rec
		return nil
	})
	return out, err
}

// deleteBatch bounds the ids bound into one IN list.
const deleteBatch = 500

// DeleteRecords removes every record matching the filter and returns the
// removed records without their scores. The matching set is read and deleted
// in one transaction, so records created concurrently are neither deleted nor
// reported. An empty filter is refused.
func (s *GradeRepository) DeleteRecords(ctx context.Context, f grades.Filter) ([]grades.GradeRecord, error) {
	where, args := whereClause(f)
	if where == "" {
		return nil, errors.New("delete records: empty filter")
	}

	query := `SELECT r.id, r.learner_id, r.class_id FROM grade_records AS r` + where + ` ORDER BY r.id`
	if s.dialect == DialectPostgres {
		query += ` FOR UPDATE`
	}

	var deleted []grades.GradeRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, s.rebind(query), args...)
		if err != nil {
			return fmt.Errorf("query records to delete: %w", err)
		}
		for rows.Next() {
			var rec grades.GradeRecord
			if err := rows.Scan(&rec.ID, &rec.LearnerID, &rec.ClassID); err != nil {
				rows.Close()
				return fmt.Errorf("scan record to delete: %w", err)
			}
			deleted = append(deleted, rec)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate records to delete: %w", err)
		}
		rows.Close()

		for start := 0; start < len(deleted); start += deleteBatch {
			batch := deleted[start:min(start+deleteBatch, len(deleted))]
			ids := make([]any, len(batch))
			for i, rec := range batch {
				ids[i] = rec.ID
			}
			in := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")

			if _, err := tx.ExecContext(ctx,
				s.rebind(`DELETE FROM grade_scores WHERE record_id IN (`+in+`)`), ids...); err != nil {
				return fmt.Errorf("delete grade scores: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				s.rebind(`DELETE FROM grade_records WHERE id IN (`+in+`)`), ids...); err != nil {
				return fmt.Errorf("delete grade records: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *GradeRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
