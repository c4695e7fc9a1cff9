package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
		_ = os.Remove(path)
		_ = os.Remove(path + "-journal")
	})
	return store
}

func seedTestCode(t *testing.T, store *SQLiteStore, code string, active bool) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), quiz.TestCode{
		TestCode:   code,
		Subject:    "Mathematics",
		Topic:      "Algebra",
		Chapter:    "Linear Equations",
		Difficulty: "easy",
		IsActive:   active,
		CreatedAt:  time.Unix(1700000000, 0).UTC(),
	}))
}

func TestSQLiteStoreTestCodeLookups(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	seedTestCode(t, store, "MATH7", true)
	seedTestCode(t, store, "OLD1", false)

	got, err := store.FindByCode(ctx, "MATH7")
	require.NoError(t, err)
	assert.Equal(t, "Linear Equations", got.Chapter)
	assert.True(t, got.IsActive)
	assert.True(t, got.CreatedAt.Equal(time.Unix(1700000000, 0)))

	_, err = store.FindByCode(ctx, "OLD1")
	require.NoError(t, err)
	_, err = store.FindActiveByCode(ctx, "OLD1")
	assert.ErrorIs(t, err, quiz.ErrNotFound)
	_, err = store.FindByCode(ctx, "NOPE")
	assert.ErrorIs(t, err, quiz.ErrNotFound)

	require.NoError(t, store.SetActive(ctx, "OLD1", true))
	_, err = store.FindActiveByCode(ctx, "OLD1")
	require.NoError(t, err)
	assert.ErrorIs(t, store.SetActive(ctx, "NOPE", true), quiz.ErrNotFound)
}

func TestSQLiteStoreFindByCodeReturnsFirstMatch(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	seedTestCode(t, store, "DUP", false)
	require.NoError(t, store.Create(ctx, quiz.TestCode{TestCode: "DUP", Subject: "Science", Topic: "Physics", Chapter: "Light", Difficulty: "hard", IsActive: true}))

	first, err := store.FindByCode(ctx, "DUP")
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", first.Subject)

	active, err := store.FindActiveByCode(ctx, "DUP")
	require.NoError(t, err)
	assert.Equal(t, "Science", active.Subject)
}

func TestSQLiteStoreScoreLifecycle(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	at := time.Unix(1700000100, 500).UTC()
	record := quiz.TestScore{
		ID:             "s1",
		TestCode:       "MATH7",
		UserID:         "u1",
		Score:          7,
		TotalQuestions: 10,
		TimeTaken:      42.5,
		Timestamp:      at,
	}
	require.NoError(t, store.Insert(ctx, &record))

	duplicate := record
	duplicate.ID = "s2"
	assert.ErrorIs(t, store.Insert(ctx, &duplicate), quiz.ErrDuplicateScore)

	got, err := store.FindOne(ctx, "MATH7", "u1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, 42.5, got.TimeTaken)
	assert.True(t, got.Timestamp.Equal(at))
	assert.Zero(t, got.Rank)

	got.Score = 9
	got.TimeTaken = 30
	require.NoError(t, store.Update(ctx, got))
	require.NoError(t, store.UpdateRank(ctx, "s1", 4))

	got, err = store.FindOne(ctx, "MATH7", "u1")
	require.NoError(t, err)
	assert.Equal(t, 9, got.Score)
	assert.Equal(t, 30.0, got.TimeTaken)
	assert.Equal(t, 4, got.Rank)

	assert.ErrorIs(t, store.UpdateRank(ctx, "missing", 1), quiz.ErrNotFound)
	_, err = store.FindOne(ctx, "MATH7", "u2")
	assert.ErrorIs(t, err, quiz.ErrNotFound)
}

func TestSQLiteStoreOrdering(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	base := time.Unix(1700000000, 0).UTC()
	rows := []quiz.TestScore{
		{ID: "a", TestCode: "T", UserID: "ua", Score: 90, TotalQuestions: 100, TimeTaken: 30, Timestamp: base},
		{ID: "b", TestCode: "T", UserID: "ub", Score: 90, TotalQuestions: 100, TimeTaken: 20, Timestamp: base.Add(time.Minute)},
		{ID: "c", TestCode: "T", UserID: "uc", Score: 80, TotalQuestions: 100, TimeTaken: 10, Timestamp: base},
		{ID: "d", TestCode: "OTHER", UserID: "ua", Score: 1, TotalQuestions: 5, TimeTaken: 10, Timestamp: base.Add(time.Hour)},
	}
	for idx := range rows {
		require.NoError(t, store.Insert(ctx, &rows[idx]), "insert %s", rows[idx].ID)
	}

	byTest, err := store.FindAllByTestCode(ctx, "T")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, scoreIDs(byTest))

	byUser, err := store.FindAllByUser(ctx, "ua")
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a"}, scoreIDs(byUser))
}

func TestSQLiteStoreRunInTxRollsBack(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.RunInTx(ctx, func(ctx context.Context, scores quiz.ScoreRepository) error {
		record := quiz.TestScore{ID: "s1", TestCode: "T", UserID: "u1", Score: 1, TotalQuestions: 1, TimeTaken: 1, Timestamp: time.Now()}
		if err := scores.Insert(ctx, &record); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.FindOne(ctx, "T", "u1")
	assert.ErrorIs(t, err, quiz.ErrNotFound, "insert should be rolled back")
}

func TestSQLiteStoreWithService(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	seedTestCode(t, store, "MATH7", true)

	svc := quiz.NewService(store, store)
	for _, submission := range []quiz.SubmitScoreInput{
		{TestCode: "MATH7", UserID: "a", Score: 90, TotalQuestions: 100, TimeTaken: 30},
		{TestCode: "MATH7", UserID: "b", Score: 90, TotalQuestions: 100, TimeTaken: 20},
		{TestCode: "MATH7", UserID: "c", Score: 80, TotalQuestions: 100, TimeTaken: 10},
		{TestCode: "MATH7", UserID: "d", Score: 80, TotalQuestions: 100, TimeTaken: 10},
		{TestCode: "MATH7", UserID: "a", Score: 85, TotalQuestions: 100, TimeTaken: 5},
	} {
		_, err := svc.SubmitScore(ctx, submission)
		require.NoError(t, err, "submit %+v", submission)
	}

	want := map[string]int{"b": 1, "a": 2, "c": 3, "d": 3}
	for userID, rank := range want {
		record, err := store.FindOne(ctx, "MATH7", userID)
		require.NoError(t, err)
		assert.Equal(t, rank, record.Rank, "stored rank of %s", userID)
	}

	board, err := svc.GetLeaderboard(ctx, "MATH7")
	require.NoError(t, err)
	for _, entry := range board.Entries {
		assert.Equal(t, want[entry.UserID], entry.Rank, "leaderboard rank of %s", entry.UserID)
	}
}

func TestSQLiteStoreKeepsRegisteredCodeAsGiven(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	svc := quiz.NewService(store, store)
	_, err := svc.RegisterTestCode(ctx, quiz.TestCode{TestCode: "math7", Subject: "Mathematics", Topic: "Algebra", Chapter: "Polynomials", Difficulty: "easy"})
	require.NoError(t, err)

	_, err = svc.SubmitScore(ctx, quiz.SubmitScoreInput{TestCode: "math7", UserID: "u1", Score: 4, TotalQuestions: 5, TimeTaken: 9})
	require.NoError(t, err)

	board, err := svc.GetLeaderboard(ctx, "math7")
	require.NoError(t, err)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, 1, board.Entries[0].Rank)
}

func scoreIDs(scores []quiz.TestScore) []string {
	ids := make([]string, 0, len(scores))
	for _, score := range scores {
		ids = append(ids, score.ID)
	}
	return ids
}
