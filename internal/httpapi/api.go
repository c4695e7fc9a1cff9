package httpapi

import (
	"log/slog"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

type API struct {
	service   *quiz.Service
	generator *quiz.Generator
	log       *slog.Logger
}

func NewAPI(service *quiz.Service, generator *quiz.Generator, log *slog.Logger) *API {
	if log == nil {
		log = slog.Default()
	}
	return &API{
		service:   service,
		generator: generator,
		log:       log,
	}
}
