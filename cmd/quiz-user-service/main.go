package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/Air-cyber/quiz-backend/internal/userclient"
)

func main() {
	token := pflag.String("token", os.Getenv("QUIZ_TOKEN"), "bearer token for the quiz service (required)")
	server := pflag.String("server", "http://127.0.0.1:5000", "quiz service base URL")
	limit := pflag.Int("leaderboard-limit", 10, "default number of leaderboard rows")
	timeout := pflag.Duration("timeout", 90*time.Second, "HTTP timeout")
	pflag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "error: --token is required")
		os.Exit(1)
	}

	err := userclient.Run(context.Background(), os.Stdin, os.Stdout, userclient.Config{
		Token:            *token,
		ServerURL:        *server,
		LeaderboardLimit: *limit,
		HTTPTimeout:      *timeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
