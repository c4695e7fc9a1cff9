package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Storage keeps the test registry, the scores and the user directory in
// PostgreSQL. Queries run against q, which is the pool or an open transaction.
type Storage struct {
	pool *pgxpool.Pool
	q    querier
}

func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &Storage{pool: pool, q: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) Close() {
	s.pool.Close()
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS test_codes (
			id BIGSERIAL PRIMARY KEY,
			test_code TEXT NOT NULL,
			subject TEXT NOT NULL,
			topic TEXT NOT NULL,
			chapter TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_test_codes_code ON test_codes (test_code, id)`,
		`CREATE TABLE IF NOT EXISTS test_scores (
			id TEXT PRIMARY KEY,
			test_code TEXT NOT NULL,
			user_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			total_questions INTEGER NOT NULL,
			time_taken DOUBLE PRECISION NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			rank INTEGER NOT NULL DEFAULT 0,
			UNIQUE (test_code, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_test_scores_ranking ON test_scores (test_code, score DESC, time_taken ASC)`,
		`CREATE INDEX IF NOT EXISTS idx_test_scores_user ON test_scores (user_id, timestamp DESC)`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT ''
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// RunInTx runs fn inside one transaction so the best-score upsert and the
// rank rewrite of a submission commit together.
func (s *Storage) RunInTx(ctx context.Context, fn func(ctx context.Context, scores quiz.ScoreRepository) error) error {
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		return fn(ctx, &Storage{pool: s.pool, q: tx})
	})
}

// Test registry

const selectTestCode = `
	SELECT test_code, subject, topic, chapter, difficulty, is_active, created_at
	FROM test_codes
`

func (s *Storage) FindByCode(ctx context.Context, code string) (quiz.TestCode, error) {
	return s.findTestCode(ctx, selectTestCode+`WHERE test_code = $1 ORDER BY id LIMIT 1`, code)
}

func (s *Storage) FindActiveByCode(ctx context.Context, code string) (quiz.TestCode, error) {
	return s.findTestCode(ctx, selectTestCode+`WHERE test_code = $1 AND is_active ORDER BY id LIMIT 1`, code)
}

func (s *Storage) findTestCode(ctx context.Context, query string, args ...interface{}) (quiz.TestCode, error) {
	var tc quiz.TestCode
	err := s.q.QueryRow(ctx, query, args...).Scan(
		&tc.TestCode, &tc.Subject, &tc.Topic, &tc.Chapter, &tc.Difficulty, &tc.IsActive, &tc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return quiz.TestCode{}, quiz.ErrNotFound
		}
		return quiz.TestCode{}, err
	}
	tc.CreatedAt = tc.CreatedAt.UTC()
	return tc, nil
}

func (s *Storage) Create(ctx context.Context, tc quiz.TestCode) error {
	if tc.CreatedAt.IsZero() {
		tc.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO test_codes (test_code, subject, topic, chapter, difficulty, is_active, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id
	`

	var id int64
	return s.q.QueryRow(ctx, query, tc.TestCode, tc.Subject, tc.Topic, tc.Chapter, tc.Difficulty, tc.IsActive, tc.CreatedAt).Scan(&id)
}

func (s *Storage) SetActive(ctx context.Context, code string, active bool) error {
	query := `
	WITH updated AS (
		UPDATE test_codes SET is_active = $1 WHERE test_code = $2 RETURNING 1
	)
	SELECT count(*) FROM updated
	`

	var updated int64
	if err := s.q.QueryRow(ctx, query, active, code).Scan(&updated); err != nil {
		return err
	}
	if updated == 0 {
		return quiz.ErrNotFound
	}
	return nil
}

// Scores

const selectScore = `
	SELECT id, test_code, user_id, score, total_questions, time_taken, timestamp, rank
	FROM test_scores
`

func scanScore(row pgx.Row) (quiz.TestScore, error) {
	var ts quiz.TestScore
	err := row.Scan(&ts.ID, &ts.TestCode, &ts.UserID, &ts.Score, &ts.TotalQuestions, &ts.TimeTaken, &ts.Timestamp, &ts.Rank)
	ts.Timestamp = ts.Timestamp.UTC()
	return ts, err
}

func (s *Storage) FindOne(ctx context.Context, testCode, userID string) (quiz.TestScore, error) {
	ts, err := scanScore(s.q.QueryRow(ctx, selectScore+`WHERE test_code = $1 AND user_id = $2`, testCode, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return quiz.TestScore{}, quiz.ErrNotFound
		}
		return quiz.TestScore{}, err
	}
	return ts, nil
}

func (s *Storage) FindAllByTestCode(ctx context.Context, testCode string) ([]quiz.TestScore, error) {
	return s.queryScores(ctx, selectScore+`WHERE test_code = $1 ORDER BY score DESC, time_taken ASC, id ASC`, testCode)
}

func (s *Storage) FindAllByUser(ctx context.Context, userID string) ([]quiz.TestScore, error) {
	return s.queryScores(ctx, selectScore+`WHERE user_id = $1 ORDER BY timestamp DESC, id ASC`, userID)
}

func (s *Storage) queryScores(ctx context.Context, query string, args ...interface{}) ([]quiz.TestScore, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]quiz.TestScore, 0)
	for rows.Next() {
		ts, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, ts)
	}
	return scores, rows.Err()
}

// Insert reports quiz.ErrDuplicateScore when the (test_code, user_id) pair
// already has a record.
func (s *Storage) Insert(ctx context.Context, record *quiz.TestScore) error {
	query := `
	INSERT INTO test_scores (id, test_code, user_id, score, total_questions, time_taken, timestamp, rank)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (test_code, user_id) DO NOTHING
	RETURNING id
	`

	var id string
	err := s.q.QueryRow(ctx, query,
		record.ID, record.TestCode, record.UserID, record.Score,
		record.TotalQuestions, record.TimeTaken, record.Timestamp, record.Rank,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return quiz.ErrDuplicateScore
	}
	return err
}

func (s *Storage) Update(ctx context.Context, record quiz.TestScore) error {
	query := `
	UPDATE test_scores
	SET score = $1, total_questions = $2, time_taken = $3, timestamp = $4
	WHERE id = $5
	RETURNING id
	`
	return s.updateOne(ctx, query, record.Score, record.TotalQuestions, record.TimeTaken, record.Timestamp, record.ID)
}

func (s *Storage) UpdateRank(ctx context.Context, id string, rank int) error {
	return s.updateOne(ctx, `UPDATE test_scores SET rank = $1 WHERE id = $2 RETURNING id`, rank, id)
}

func (s *Storage) updateOne(ctx context.Context, query string, args ...interface{}) error {
	var id string
	err := s.q.QueryRow(ctx, query, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return quiz.ErrNotFound
	}
	return err
}

// Users

func (s *Storage) LookupUsers(ctx context.Context, userIDs []string) (map[string]quiz.UserInfo, error) {
	users := make(map[string]quiz.UserInfo, len(userIDs))
	if len(userIDs) == 0 {
		return users, nil
	}

	rows, err := s.q.Query(ctx, `SELECT id, username, email FROM users WHERE id = ANY($1)`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u quiz.UserInfo
		if err := rows.Scan(&u.UserID, &u.Username, &u.Email); err != nil {
			return nil, err
		}
		users[u.UserID] = u
	}
	return users, rows.Err()
}

// AddUser upserts a user directory entry.
func (s *Storage) AddUser(ctx context.Context, u quiz.UserInfo) error {
	query := `
	INSERT INTO users (id, username, email) VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, email = EXCLUDED.email
	RETURNING id
	`
	var id string
	return s.q.QueryRow(ctx, query, u.UserID, u.Username, u.Email).Scan(&id)
}
