package sqlite

import (
	"context"
)

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS test_codes (
			row_id INTEGER PRIMARY KEY AUTOINCREMENT,
			test_code TEXT NOT NULL,
			subject TEXT NOT NULL,
			topic TEXT NOT NULL,
			chapter TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS test_scores (
			id TEXT PRIMARY KEY,
			test_code TEXT NOT NULL,
			user_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			total_questions INTEGER NOT NULL,
			time_taken REAL NOT NULL,
			timestamp_unix INTEGER NOT NULL,
			rank INTEGER NOT NULL DEFAULT 0,
			UNIQUE (test_code, user_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_test_codes_code ON test_codes(test_code, row_id);`,
		`CREATE INDEX IF NOT EXISTS idx_test_scores_ranking ON test_scores(test_code, score DESC, time_taken ASC);`,
		`CREATE INDEX IF NOT EXISTS idx_test_scores_user ON test_scores(user_id, timestamp_unix DESC);`,
	}

	for _, stmt := range statements {
		if _, err := s.q.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
