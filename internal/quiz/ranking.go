package quiz

import "sort"

// SortScores orders records best first: higher score, then lower time taken.
// The sort is stable so exact duplicates keep their input order.
func SortScores(scores []TestScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scoreBefore(scores[i], scores[j])
	})
}

// RankScores sorts scores in place and assigns competition ranks ("1224"):
// a record tied with its predecessor on both score and time taken shares its
// rank, any other record is ranked by its 1-based position.
func RankScores(scores []TestScore) {
	SortScores(scores)
	for idx := range scores {
		if idx > 0 && sameResult(scores[idx], scores[idx-1]) {
			scores[idx].Rank = scores[idx-1].Rank
			continue
		}
		scores[idx].Rank = idx + 1
	}
}

func scoreBefore(a, b TestScore) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.TimeTaken < b.TimeTaken
}

func sameResult(a, b TestScore) bool {
	return a.Score == b.Score && a.TimeTaken == b.TimeTaken
}

// improves reports whether candidate beats the stored record.
func improves(candidate SubmitScoreInput, stored TestScore) bool {
	if candidate.Score != stored.Score {
		return candidate.Score > stored.Score
	}
	return candidate.TimeTaken < stored.TimeTaken
}
