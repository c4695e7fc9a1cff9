package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

func writeServiceError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, quiz.ErrValidation):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, quiz.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, quiz.ErrUpstreamAuth):
		c.JSON(http.StatusForbidden, errorResponse{Error: "Invalid or expired API key. Please check your API key configuration."})
	case errors.Is(err, quiz.ErrParse):
		c.JSON(http.StatusBadGateway, errorResponse{Error: "Invalid JSON response from upstream"})
	case errors.Is(err, quiz.ErrUpstream):
		c.JSON(http.StatusBadGateway, errorResponse{Error: "quiz generation failed"})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
