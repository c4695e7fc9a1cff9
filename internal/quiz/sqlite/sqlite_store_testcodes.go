package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

type testCodeRow struct {
	TestCode      string `db:"test_code"`
	Subject       string `db:"subject"`
	Topic         string `db:"topic"`
	Chapter       string `db:"chapter"`
	Difficulty    string `db:"difficulty"`
	IsActive      bool   `db:"is_active"`
	CreatedAtUnix int64  `db:"created_at_unix"`
}

func (r testCodeRow) toTestCode() quiz.TestCode {
	return quiz.TestCode{
		TestCode:   r.TestCode,
		Subject:    r.Subject,
		Topic:      r.Topic,
		Chapter:    r.Chapter,
		Difficulty: r.Difficulty,
		IsActive:   r.IsActive,
		CreatedAt:  time.Unix(0, r.CreatedAtUnix).UTC(),
	}
}

const selectTestCode = `SELECT test_code, subject, topic, chapter, difficulty, is_active, created_at_unix FROM test_codes`

func (s *SQLiteStore) FindByCode(ctx context.Context, code string) (quiz.TestCode, error) {
	return s.findTestCode(ctx, selectTestCode+` WHERE test_code = ? ORDER BY row_id LIMIT 1`, code)
}

func (s *SQLiteStore) FindActiveByCode(ctx context.Context, code string) (quiz.TestCode, error) {
	return s.findTestCode(ctx, selectTestCode+` WHERE test_code = ? AND is_active = 1 ORDER BY row_id LIMIT 1`, code)
}

func (s *SQLiteStore) findTestCode(ctx context.Context, query string, args ...any) (quiz.TestCode, error) {
	var row testCodeRow
	if err := sqlx.GetContext(ctx, s.q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.TestCode{}, quiz.ErrNotFound
		}
		return quiz.TestCode{}, err
	}
	return row.toTestCode(), nil
}

func (s *SQLiteStore) Create(ctx context.Context, testCode quiz.TestCode) error {
	if testCode.CreatedAt.IsZero() {
		testCode.CreatedAt = time.Now().UTC()
	}

	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO test_codes (test_code, subject, topic, chapter, difficulty, is_active, created_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		testCode.TestCode,
		testCode.Subject,
		testCode.Topic,
		testCode.Chapter,
		testCode.Difficulty,
		testCode.IsActive,
		testCode.CreatedAt.UnixNano(),
	)
	return err
}

func (s *SQLiteStore) SetActive(ctx context.Context, code string, active bool) error {
	result, err := s.q.ExecContext(ctx, `UPDATE test_codes SET is_active = ? WHERE test_code = ?`, active, code)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return quiz.ErrNotFound
	}
	return nil
}
