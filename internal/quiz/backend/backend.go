// Package backend opens the storage selected in the configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Air-cyber/quiz-backend/internal/config"
	"github.com/Air-cyber/quiz-backend/internal/quiz"
	"github.com/Air-cyber/quiz-backend/internal/quiz/memory"
	"github.com/Air-cyber/quiz-backend/internal/quiz/mongostore"
	"github.com/Air-cyber/quiz-backend/internal/quiz/postgres"
	"github.com/Air-cyber/quiz-backend/internal/quiz/sqlite"
)

// Backend bundles the repositories of one store. Users is nil when the store
// keeps no user documents.
type Backend struct {
	Name      string
	TestCodes quiz.TestCodeRepository
	Scores    quiz.ScoreRepository
	Users     quiz.UserDirectory

	close func() error
}

// Open connects to the store named by cfg.Store.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (*Backend, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		store, err := sqlite.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		log.Info("using sqlite store", slog.String("path", cfg.SQLitePath))
		return &Backend{Name: cfg.Store, TestCodes: store, Scores: store, close: store.Close}, nil

	case config.StoreMongo:
		client, store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		log.Info("using mongo store", slog.String("database", cfg.MongoDatabase))
		return &Backend{
			Name:      cfg.Store,
			TestCodes: store,
			Scores:    store,
			Users:     store,
			close:     func() error { return client.Disconnect(context.Background()) },
		}, nil

	case config.StorePostgres:
		store, err := postgres.NewStorage(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info("using postgres store")
		return &Backend{
			Name:      cfg.Store,
			TestCodes: store,
			Scores:    store,
			Users:     store,
			close:     func() error { store.Close(); return nil },
		}, nil

	case config.StoreMemory:
		store := memory.NewStore()
		log.Warn("using in-memory store, data is lost on restart")
		return &Backend{Name: cfg.Store, TestCodes: store, Scores: store, Users: store}, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// ServiceOptions returns the options that attach the store's user directory.
func (b *Backend) ServiceOptions() []quiz.Option {
	if b.Users == nil {
		return nil
	}
	return []quiz.Option{quiz.WithUserDirectory(b.Users)}
}

func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}
