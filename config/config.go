package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/N3z3d/FortniteProject-sub000/storage"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds the application settings.
type Config struct {
	DatabaseURL     string
	StoreDriver     string
	JWTSecretKey    string
	ServerPort      int
	LogLevel        slog.Level
	AllowedOrigins  []string
	NotifyQueueSize int
	R2              storage.CloudflareR2Config
}

// Load reads the configuration from the environment, after loading an
// optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, which has the os.LookupEnv contract.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		DatabaseURL:  get("DATABASE_URL"),
		StoreDriver:  strings.ToLower(get("STORE_DRIVER")),
		JWTSecretKey: get("JWT_SECRET_KEY"),
		R2: storage.CloudflareR2Config{
			AccountID:       get("R2_ACCOUNT_ID"),
			AccessKeyID:     get("R2_ACCESS_KEY_ID"),
			SecretAccessKey: get("R2_SECRET_ACCESS_KEY"),
			BucketName:      get("R2_BUCKET_NAME"),
			PublicBaseURL:   get("R2_PUBLIC_BASE_URL"),
		},
	}

	if cfg.StoreDriver == "" {
		cfg.StoreDriver = StoreDriverPostgres
	}
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, cfg.StoreDriver)
	}

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := get("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if level := get("LOG_LEVEL"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
		}
	}

	for _, origin := range strings.Split(get("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	cfg.NotifyQueueSize = 256
	if sizeStr := get("NOTIFY_QUEUE_SIZE"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("NOTIFY_QUEUE_SIZE must be a positive integer, got %q", sizeStr)
		}
		cfg.NotifyQueueSize = size
	}

	return cfg, nil
}
