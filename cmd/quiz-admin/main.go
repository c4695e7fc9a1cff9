package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Air-cyber/quiz-backend/internal/cli"
	"github.com/Air-cyber/quiz-backend/internal/config"
	"github.com/Air-cyber/quiz-backend/internal/lib/slogcustom"
	"github.com/Air-cyber/quiz-backend/internal/quiz"
	"github.com/Air-cyber/quiz-backend/internal/quiz/backend"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Store flags are read from the environment only; the arguments belong
	// to the admin command.
	cfg, err := config.Load(nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	log := slogcustom.NewLogger(os.Stderr, "warn", cfg.LogFormat)
	ctx := context.Background()

	store, err := backend.Open(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer store.Close()

	opts := append(store.ServiceOptions(), quiz.WithLogger(log))
	deps := cli.Deps{
		Service:   quiz.NewService(store.TestCodes, store.Scores, opts...),
		JWTSecret: []byte(cfg.JWTSecret),
	}

	if err := cli.Run(ctx, os.Args[1:], os.Stdout, deps); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if cli.IsUsageError(err) {
			return 2
		}
		return 1
	}
	return 0
}
