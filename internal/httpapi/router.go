package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	JWTSecret   string
	CORSOrigins []string
}

// NewRouter mounts the quiz API. Everything under /api/quiz requires a bearer
// token carrying the caller's userId.
func NewRouter(api *API, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(api.log))

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", api.HandleRoot)
	r.GET("/healthz", api.HandleHealth)

	quizRoutes := r.Group("/api/quiz", requireUser([]byte(cfg.JWTSecret)))
	quizRoutes.POST("/generate", api.HandleGenerateQuiz)
	quizRoutes.POST("/scores", api.HandleSubmitScore)
	quizRoutes.GET("/scores", api.HandleUserScores)
	quizRoutes.GET("/leaderboard/:testCode", api.HandleLeaderboard)
	quizRoutes.GET("/topics/:subject", api.HandleTopics)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, errorResponse{Error: "route not found"})
	})

	return r
}
