package sqlite

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

// SQLiteStore implements the test registry and the score store on one
// SQLite database. Statements run against q, which is either the database or
// an open transaction.
type SQLiteStore struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "quiz.db"
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db, q: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RunInTx runs fn inside one transaction so the best-score upsert and the
// rank rewrite of a submission commit together.
func (s *SQLiteStore) RunInTx(ctx context.Context, fn func(ctx context.Context, scores quiz.ScoreRepository) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(ctx, &SQLiteStore{db: s.db, q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}
