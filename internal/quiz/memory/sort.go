package memory

import (
	"sort"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

func sortByID(scores []quiz.TestScore) {
	sort.Slice(scores, func(i, j int) bool {
		return scores[i].ID < scores[j].ID
	})
}

func sortByTimestampDesc(scores []quiz.TestScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if !scores[i].Timestamp.Equal(scores[j].Timestamp) {
			return scores[i].Timestamp.After(scores[j].Timestamp)
		}
		return scores[i].ID < scores[j].ID
	})
}
