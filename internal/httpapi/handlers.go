package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

func (a *API) HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, messageResponse{Message: "Quiz App API is running"})
}

func (a *API) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleGenerateQuiz answers with the bare question array for direct
// parameters and with {testInfo, questions} when a test code was used.
func (a *API) HandleGenerateQuiz(c *gin.Context) {
	if a.generator == nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "quiz generator unavailable"})
		return
	}

	var request generateQuizRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	result, err := a.generator.GenerateQuiz(c.Request.Context(), quiz.GenerateQuizParams{
		TestCode:     request.TestCode,
		Subject:      request.Subject,
		Topic:        request.Topic,
		Chapter:      request.Chapter,
		Difficulty:   request.Difficulty,
		Level:        request.Level,
		NumQuestions: request.NumQuestions,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if result.TestInfo == nil {
		c.JSON(http.StatusOK, result.Questions)
		return
	}
	c.JSON(http.StatusOK, generateQuizResponse{
		TestInfo:  result.TestInfo,
		Questions: result.Questions,
	})
}

func (a *API) HandleSubmitScore(c *gin.Context) {
	if a.service == nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "quiz service unavailable"})
		return
	}

	var request submitScoreRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if request.Score == nil || request.TotalQuestions == nil || request.TimeTaken == nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "score, totalQuestions and timeTaken are required"})
		return
	}

	result, err := a.service.SubmitScore(c.Request.Context(), quiz.SubmitScoreInput{
		TestCode:       request.TestCode,
		UserID:         currentUserID(c),
		Score:          *request.Score,
		TotalQuestions: *request.TotalQuestions,
		TimeTaken:      *request.TimeTaken,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submitScoreResponse{
		Message:           "Test score saved successfully",
		Result:            scoreResult{TestScore: result.Record, User: result.User},
		Rank:              result.Rank,
		TotalParticipants: result.TotalParticipants,
		Improved:          result.Improved,
	})
}

func (a *API) HandleUserScores(c *gin.Context) {
	if a.service == nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "quiz service unavailable"})
		return
	}

	scores, err := a.service.GetUserScores(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, scores)
}

func (a *API) HandleLeaderboard(c *gin.Context) {
	if a.service == nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "quiz service unavailable"})
		return
	}

	board, err := a.service.GetLeaderboard(c.Request.Context(), c.Param("testCode"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (a *API) HandleTopics(c *gin.Context) {
	topics, err := quiz.TopicsBySubject(strings.TrimSpace(c.Param("subject")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, topicsResponse{Topics: topics})
}
