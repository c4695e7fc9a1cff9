package quiz

import "time"

// TestCode is a shared quiz definition that several users can take and be
// ranked against each other.
type TestCode struct {
	TestCode   string    `json:"testCode" bson:"testCode" db:"test_code"`
	Subject    string    `json:"subject" bson:"subject" db:"subject"`
	Topic      string    `json:"topic" bson:"topic" db:"topic"`
	Chapter    string    `json:"chapter" bson:"chapter" db:"chapter"`
	Difficulty string    `json:"difficulty" bson:"difficulty" db:"difficulty"`
	IsActive   bool      `json:"isActive" bson:"isActive" db:"is_active"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt" db:"created_at"`
}

// Info returns the public metadata of the test.
func (t TestCode) Info() TestInfo {
	return TestInfo{
		TestCode:   t.TestCode,
		Subject:    t.Subject,
		Topic:      t.Topic,
		Chapter:    t.Chapter,
		Difficulty: t.Difficulty,
	}
}

type TestInfo struct {
	TestCode   string `json:"testCode,omitempty"`
	Subject    string `json:"subject"`
	Topic      string `json:"topic"`
	Chapter    string `json:"chapter"`
	Difficulty string `json:"difficulty"`
}

// TestScore is the best submission of one user for one test code.
// Rank is zero until the first ranking pass after insertion.
type TestScore struct {
	ID             string    `json:"id" bson:"_id,omitempty" db:"id"`
	TestCode       string    `json:"testCode" bson:"testCode" db:"test_code"`
	UserID         string    `json:"userId" bson:"userId" db:"user_id"`
	Score          int       `json:"score" bson:"score" db:"score"`
	TotalQuestions int       `json:"totalQuestions" bson:"totalQuestions" db:"total_questions"`
	TimeTaken      float64   `json:"timeTaken" bson:"timeTaken" db:"time_taken"`
	Timestamp      time.Time `json:"timestamp" bson:"timestamp" db:"timestamp"`
	Rank           int       `json:"rank" bson:"rank" db:"rank"`
}

type UserInfo struct {
	UserID   string `json:"_id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

type LeaderboardEntry struct {
	TestScore
	User *UserInfo `json:"user,omitempty"`
}

type Leaderboard struct {
	TestInfo TestInfo           `json:"testInfo"`
	Entries  []LeaderboardEntry `json:"leaderboard"`
}

type UserScore struct {
	TestScore
	TestDetails *TestInfo `json:"testDetails"`
}

type SubmitScoreInput struct {
	TestCode       string
	UserID         string
	Score          int
	TotalQuestions int
	TimeTaken      float64
}

type SubmitResult struct {
	Record            TestScore
	User              *UserInfo
	Rank              int
	TotalParticipants int
	// Created is set for the first submission of a user, Improved whenever the
	// stored record changed.
	Created  bool
	Improved bool
}

type GenerateQuizParams struct {
	TestCode     string
	Subject      string
	Topic        string
	Chapter      string
	Difficulty   string
	Level        string
	NumQuestions int
}

type QuizResult struct {
	TestInfo  *TestInfo
	Questions []QuizQuestion
}
