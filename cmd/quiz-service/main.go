package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Air-cyber/quiz-backend/internal/completion/gemini"
	"github.com/Air-cyber/quiz-backend/internal/completion/openai"
	"github.com/Air-cyber/quiz-backend/internal/config"
	"github.com/Air-cyber/quiz-backend/internal/event"
	"github.com/Air-cyber/quiz-backend/internal/httpapi"
	"github.com/Air-cyber/quiz-backend/internal/lib/slogcustom"
	"github.com/Air-cyber/quiz-backend/internal/quiz"
	"github.com/Air-cyber/quiz-backend/internal/quiz/backend"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("quiz-service stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := slogcustom.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := backend.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := append(store.ServiceOptions(), quiz.WithLogger(log))
	if cfg.RabbitMQURI != "" {
		publisher, err := event.NewPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange, log)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer publisher.Close()
		opts = append(opts, quiz.WithEventPublisher(publisher))
	}

	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create %s completer: %w", cfg.CompletionProvider, err)
	}

	service := quiz.NewService(store.TestCodes, store.Scores, opts...)
	generator := quiz.NewGenerator(store.TestCodes, completer, log)

	server := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.NewRouter(httpapi.NewAPI(service, generator, log), httpapi.RouterConfig{
			JWTSecret:   cfg.JWTSecret,
			CORSOrigins: cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("quiz-service listening", slog.String("addr", cfg.Addr), slog.String("store", store.Name))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func newCompleter(ctx context.Context, cfg config.Config) (quiz.Completer, error) {
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	if cfg.CompletionProvider == config.ProviderOpenAI {
		return openai.NewClient(httpClient, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	}
	client, err := gemini.NewClient(ctx, httpClient, cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	return client, nil
}
