package backend

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Air-cyber/quiz-backend/internal/config"
	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenSQLite(t *testing.T) {
	cfg := config.Config{Store: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "quiz.db")}

	b, err := Open(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	assert.Nil(t, b.Users)
	assert.Empty(t, b.ServiceOptions())

	svc := quiz.NewService(b.TestCodes, b.Scores, b.ServiceOptions()...)
	registered, err := svc.RegisterTestCode(context.Background(), quiz.TestCode{Subject: "Science", Topic: "Physics", Chapter: "Motion", Difficulty: "easy"})
	require.NoError(t, err)

	got, err := b.TestCodes.FindActiveByCode(context.Background(), registered.TestCode)
	require.NoError(t, err)
	assert.Equal(t, "Motion", got.Chapter)
}

func TestOpenMemoryProvidesUserDirectory(t *testing.T) {
	b, err := Open(context.Background(), config.Config{Store: config.StoreMemory}, discardLogger())
	require.NoError(t, err)

	assert.NotNil(t, b.Users)
	assert.Len(t, b.ServiceOptions(), 1)
	assert.NoError(t, b.Close())
}

func TestOpenUnknownStore(t *testing.T) {
	_, err := Open(context.Background(), config.Config{Store: "redis"}, discardLogger())
	assert.Error(t, err)
}
