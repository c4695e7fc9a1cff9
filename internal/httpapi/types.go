package httpapi

import "github.com/Air-cyber/quiz-backend/internal/quiz"

type generateQuizRequest struct {
	TestCode     string `json:"testCode"`
	Subject      string `json:"subject"`
	Topic        string `json:"topic"`
	Chapter      string `json:"chapter"`
	Difficulty   string `json:"difficulty"`
	Level        string `json:"level"`
	NumQuestions int    `json:"numQuestions"`
}

type generateQuizResponse struct {
	TestInfo  *quiz.TestInfo      `json:"testInfo"`
	Questions []quiz.QuizQuestion `json:"questions"`
}

// Pointers tell a missing field apart from an explicit zero.
type submitScoreRequest struct {
	TestCode       string   `json:"testCode"`
	Score          *int     `json:"score"`
	TotalQuestions *int     `json:"totalQuestions"`
	TimeTaken      *float64 `json:"timeTaken"`
}

type scoreResult struct {
	quiz.TestScore
	User *quiz.UserInfo `json:"user,omitempty"`
}

type submitScoreResponse struct {
	Message           string      `json:"message"`
	Result            scoreResult `json:"result"`
	Rank              int         `json:"rank"`
	TotalParticipants int         `json:"totalParticipants"`
	Improved          bool        `json:"improved"`
}

type topicsResponse struct {
	Topics []string `json:"topics"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}
