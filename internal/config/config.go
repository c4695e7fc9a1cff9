package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	StoreSQLite   = "sqlite"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Addr  string
	Store string

	SQLitePath    string
	MongoURI      string
	MongoDatabase string
	PostgresDSN   string

	CompletionProvider string
	GeminiAPIKey       string
	GeminiBaseURL      string
	GeminiModel        string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	UpstreamTimeout    time.Duration

	JWTSecret   string
	CORSOrigins []string

	RabbitMQURI      string
	RabbitMQExchange string

	LogLevel  string
	LogFormat string
	GinMode   string
}

// Load reads a .env file when present, then the environment, then the
// command line flags in args, later sources winning.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := fromEnv()

	fs := pflag.NewFlagSet("quiz-service", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "storage backend: sqlite, mongo, postgres or memory")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database file")
	fs.StringVar(&cfg.CompletionProvider, "provider", cfg.CompletionProvider, "completion provider: gemini or openai")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromEnv() Config {
	return Config{
		Addr:  getEnvOrDefault("ADDR", ":5000"),
		Store: strings.ToLower(getEnvOrDefault("STORE", StoreSQLite)),

		SQLitePath:    getEnvOrDefault("SQLITE_PATH", "quiz.db"),
		MongoURI:      getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnvOrDefault("MONGO_DATABASE", "quiz_app"),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),

		CompletionProvider: strings.ToLower(getEnvOrDefault("COMPLETION_PROVIDER", ProviderGemini)),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:      os.Getenv("GEMINI_BASE_URL"),
		GeminiModel:        os.Getenv("GEMINI_MODEL"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:        os.Getenv("OPENAI_MODEL"),
		UpstreamTimeout:    parseDuration(os.Getenv("UPSTREAM_TIMEOUT"), 60*time.Second),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: splitList(getEnvOrDefault("CORS_ORIGINS", "http://localhost:3000")),

		RabbitMQURI:      os.Getenv("RABBITMQ_URI"),
		RabbitMQExchange: getEnvOrDefault("RABBITMQ_EXCHANGE", "quiz.events"),

		LogLevel:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "text")),
		GinMode:   getEnvOrDefault("GIN_MODE", "release"),
	}
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreMongo, StoreMemory:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}

	switch c.CompletionProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown completion provider %q", c.CompletionProvider)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// CompletionAPIKey returns the key of the selected provider.
func (c Config) CompletionAPIKey() string {
	if c.CompletionProvider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

func getEnvOrDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// parseDuration accepts Go durations ("90s") or a plain number of seconds.
func parseDuration(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
