package quiz

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(userID string, points int, timeTaken float64) TestScore {
	return TestScore{ID: "id-" + userID, UserID: userID, Score: points, TimeTaken: timeTaken}
}

func TestRankScoresCompetitionRanking(t *testing.T) {
	scores := []TestScore{
		score("a", 90, 30),
		score("b", 90, 20),
		score("c", 80, 10),
		score("d", 80, 10),
		score("e", 70, 50),
	}

	RankScores(scores)

	got := make(map[string]int, len(scores))
	for _, s := range scores {
		got[s.UserID] = s.Rank
	}
	assert.Equal(t, map[string]int{"b": 1, "a": 2, "c": 3, "d": 3, "e": 5}, got)
	assert.Equal(t, "b", scores[0].UserID)
	assert.Equal(t, "e", scores[4].UserID)
}

func TestRankScoresEqualScoreDifferentTimeIsNotATie(t *testing.T) {
	scores := []TestScore{score("slow", 5, 40.5), score("fast", 5, 40.25)}

	RankScores(scores)

	assert.Equal(t, "fast", scores[0].UserID)
	assert.Equal(t, 1, scores[0].Rank)
	assert.Equal(t, 2, scores[1].Rank)
}

func TestRankScoresEmpty(t *testing.T) {
	var scores []TestScore
	RankScores(scores)
	assert.Empty(t, scores)
}

func TestRankScoresOverwritesStaleRanks(t *testing.T) {
	scores := []TestScore{score("a", 1, 10), score("b", 2, 10)}
	scores[0].Rank = 1
	scores[1].Rank = 7

	RankScores(scores)

	assert.Equal(t, "b", scores[0].UserID)
	assert.Equal(t, 1, scores[0].Rank)
	assert.Equal(t, 2, scores[1].Rank)
}

func TestRankScoresProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := rng.Intn(30)
		scores := make([]TestScore, n)
		for idx := range scores {
			scores[idx] = TestScore{
				ID:        string(rune('a' + idx)),
				Score:     rng.Intn(5),
				TimeTaken: float64(1 + rng.Intn(4)),
			}
		}

		RankScores(scores)

		for idx := range scores {
			require.GreaterOrEqual(t, scores[idx].Rank, 1)
			if idx == 0 {
				require.Equal(t, 1, scores[idx].Rank)
				continue
			}
			prev, cur := scores[idx-1], scores[idx]
			require.False(t, scoreBefore(cur, prev), "round %d: records out of order at %d", round, idx)
			require.GreaterOrEqual(t, cur.Rank, prev.Rank)
			if sameResult(prev, cur) {
				require.Equal(t, prev.Rank, cur.Rank)
			} else {
				require.Equal(t, idx+1, cur.Rank)
			}
		}
	}
}

func TestImproves(t *testing.T) {
	stored := TestScore{Score: 7, TimeTaken: 30}

	assert.True(t, improves(SubmitScoreInput{Score: 8, TimeTaken: 90}, stored))
	assert.True(t, improves(SubmitScoreInput{Score: 7, TimeTaken: 29}, stored))
	assert.False(t, improves(SubmitScoreInput{Score: 7, TimeTaken: 30}, stored))
	assert.False(t, improves(SubmitScoreInput{Score: 7, TimeTaken: 31}, stored))
	assert.False(t, improves(SubmitScoreInput{Score: 6, TimeTaken: 1}, stored))
}
