package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

type scoreRow struct {
	ID             string  `db:"id"`
	TestCode       string  `db:"test_code"`
	UserID         string  `db:"user_id"`
	Score          int     `db:"score"`
	TotalQuestions int     `db:"total_questions"`
	TimeTaken      float64 `db:"time_taken"`
	TimestampUnix  int64   `db:"timestamp_unix"`
	Rank           int     `db:"rank"`
}

func (r scoreRow) toScore() quiz.TestScore {
	return quiz.TestScore{
		ID:             r.ID,
		TestCode:       r.TestCode,
		UserID:         r.UserID,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		TimeTaken:      r.TimeTaken,
		Timestamp:      time.Unix(0, r.TimestampUnix).UTC(),
		Rank:           r.Rank,
	}
}

const selectScore = `SELECT id, test_code, user_id, score, total_questions, time_taken, timestamp_unix, rank FROM test_scores`

func (s *SQLiteStore) FindOne(ctx context.Context, testCode, userID string) (quiz.TestScore, error) {
	var row scoreRow
	err := sqlx.GetContext(ctx, s.q, &row, selectScore+` WHERE test_code = ? AND user_id = ?`, testCode, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.TestScore{}, quiz.ErrNotFound
		}
		return quiz.TestScore{}, err
	}
	return row.toScore(), nil
}

func (s *SQLiteStore) FindAllByTestCode(ctx context.Context, testCode string) ([]quiz.TestScore, error) {
	// id keeps the order of exact ties stable between reads.
	return s.selectScores(ctx, selectScore+` WHERE test_code = ? ORDER BY score DESC, time_taken ASC, id ASC`, testCode)
}

func (s *SQLiteStore) FindAllByUser(ctx context.Context, userID string) ([]quiz.TestScore, error) {
	return s.selectScores(ctx, selectScore+` WHERE user_id = ? ORDER BY timestamp_unix DESC, id ASC`, userID)
}

func (s *SQLiteStore) selectScores(ctx context.Context, query string, args ...any) ([]quiz.TestScore, error) {
	var rows []scoreRow
	if err := sqlx.SelectContext(ctx, s.q, &rows, query, args...); err != nil {
		return nil, err
	}

	scores := make([]quiz.TestScore, 0, len(rows))
	for _, row := range rows {
		scores = append(scores, row.toScore())
	}
	return scores, nil
}

// Insert relies on the (test_code, user_id) unique key: a second record for
// the same pair is ignored and reported as quiz.ErrDuplicateScore.
func (s *SQLiteStore) Insert(ctx context.Context, record *quiz.TestScore) error {
	result, err := s.q.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO test_scores (id, test_code, user_id, score, total_questions, time_taken, timestamp_unix, rank)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.TestCode,
		record.UserID,
		record.Score,
		record.TotalQuestions,
		record.TimeTaken,
		record.Timestamp.UnixNano(),
		record.Rank,
	)
	if err != nil {
		return err
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if inserted == 0 {
		return quiz.ErrDuplicateScore
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, record quiz.TestScore) error {
	result, err := s.q.ExecContext(
		ctx,
		`UPDATE test_scores
		 SET score = ?, total_questions = ?, time_taken = ?, timestamp_unix = ?
		 WHERE id = ?`,
		record.Score,
		record.TotalQuestions,
		record.TimeTaken,
		record.Timestamp.UnixNano(),
		record.ID,
	)
	return expectOneRow(result, err)
}

func (s *SQLiteStore) UpdateRank(ctx context.Context, id string, rank int) error {
	result, err := s.q.ExecContext(ctx, `UPDATE test_scores SET rank = ? WHERE id = ?`, rank, id)
	return expectOneRow(result, err)
}

func expectOneRow(result sql.Result, err error) error {
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
