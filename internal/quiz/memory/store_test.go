package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

func TestStoreTestCodes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, quiz.TestCode{TestCode: "DUP", Subject: "first"}))
	require.NoError(t, s.Create(ctx, quiz.TestCode{TestCode: "DUP", Subject: "second", IsActive: true}))

	got, err := s.FindByCode(ctx, "DUP")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Subject)

	got, err = s.FindActiveByCode(ctx, "DUP")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Subject)

	require.NoError(t, s.SetActive(ctx, "DUP", false))
	_, err = s.FindActiveByCode(ctx, "DUP")
	assert.ErrorIs(t, err, quiz.ErrNotFound)
	assert.ErrorIs(t, s.SetActive(ctx, "NOPE", true), quiz.ErrNotFound)
}

func TestStoreScores(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, record := range []quiz.TestScore{
		{ID: "c", TestCode: "T", UserID: "u3", Score: 80, TimeTaken: 10, Timestamp: base},
		{ID: "b", TestCode: "T", UserID: "u2", Score: 90, TimeTaken: 20, Timestamp: base},
		{ID: "a", TestCode: "T", UserID: "u1", Score: 90, TimeTaken: 20, Timestamp: base},
		{ID: "d", TestCode: "X", UserID: "u1", Score: 1, TimeTaken: 1, Timestamp: base.Add(time.Hour)},
	} {
		record := record
		require.NoError(t, s.Insert(ctx, &record))
	}

	dup := quiz.TestScore{ID: "z", TestCode: "T", UserID: "u1"}
	assert.ErrorIs(t, s.Insert(ctx, &dup), quiz.ErrDuplicateScore)

	all, err := s.FindAllByTestCode(ctx, "T")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})

	byUser, err := s.FindAllByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a"}, []string{byUser[0].ID, byUser[1].ID})

	require.NoError(t, s.UpdateRank(ctx, "c", 3))
	got, err := s.FindOne(ctx, "T", "u3")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Rank)

	assert.ErrorIs(t, s.Update(ctx, quiz.TestScore{ID: "missing"}), quiz.ErrNotFound)
	assert.ErrorIs(t, s.UpdateRank(ctx, "missing", 1), quiz.ErrNotFound)
}

func TestStoreLookupUsers(t *testing.T) {
	s := NewStore()
	s.AddUser(quiz.UserInfo{UserID: "u1", Username: "asha"})

	users, err := s.LookupUsers(context.Background(), []string{"u1", "u2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]quiz.UserInfo{"u1": {UserID: "u1", Username: "asha"}}, users)
}

func TestConcurrentSubmissionsKeepOneRecordPerUser(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, quiz.TestCode{TestCode: "T", IsActive: true}))
	svc := quiz.NewService(s, s)

	var wg sync.WaitGroup
	for idx := 0; idx < 20; idx++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := svc.SubmitScore(ctx, quiz.SubmitScoreInput{
				TestCode:       "T",
				UserID:         fmt.Sprintf("u%d", idx%4),
				Score:          idx,
				TotalQuestions: 100,
				TimeTaken:      10,
			})
			assert.NoError(t, err)
		}(idx)
	}
	wg.Wait()

	all, err := s.FindAllByTestCode(ctx, "T")
	require.NoError(t, err)
	require.Len(t, all, 4)
	for _, record := range all {
		var best int
		fmt.Sscanf(record.UserID, "u%d", &best)
		for best+4 < 20 {
			best += 4
		}
		assert.Equal(t, best, record.Score, "user %s keeps the best score", record.UserID)
	}
}
