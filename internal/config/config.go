package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr              string
	StoreAPIURL       string
	StoreAPITimeout   time.Duration
	StoreAPIRetries   int
	StoreAPIRetryWait time.Duration
	MongoURI          string
	MongoDatabase     string
	Timeout           time.Duration
	SearchCollection  string
	PingCollection    string
	SessionSecret     []byte
	SessionIssuer     string
	SessionTTL        time.Duration
	SessionSecure     bool
	CacheTTL          time.Duration
	CacheMaxCost      int64
	AllowedOrigins    []string
	LogLevel          zapcore.Level
	ServerLog         *zap.SugaredLogger
}

// Load reads environment variables and returns a fully populated Config.
func Load() Config {
	cfg, err := Parse(os.Getenv)
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}
	cfg.ServerLog = NewLogger(cfg.LogLevel)
	cfg.ServerLog.Infof("loaded config: addr=%q storeAPI=%q mongoDB=%q cacheTTL=%s sessionTTL=%s",
		cfg.Addr, cfg.StoreAPIURL, cfg.MongoDatabase, cfg.CacheTTL, cfg.SessionTTL)
	return cfg
}

// Parse builds a Config from getenv without touching the process environment.
func Parse(getenv func(string) string) (Config, error) {
	env := envReader{getenv: getenv}

	secret := strings.TrimSpace(getenv("SESSION_SECRET"))
	if secret == "" {
		return Config{}, errors.New("SESSION_SECRET must be configured")
	}

	level, err := zapcore.ParseLevel(env.orDefault("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg := Config{
		Addr:              env.orDefault("HTTP_ADDR", ":8080"),
		StoreAPIURL:       strings.TrimRight(env.orDefault("STORE_API_URL", "http://store-api:4000/graphql"), "/"),
		StoreAPITimeout:   env.duration("STORE_API_TIMEOUT", 5*time.Second),
		StoreAPIRetries:   env.integer("STORE_API_RETRIES", 2),
		StoreAPIRetryWait: env.duration("STORE_API_RETRY_DELAY", 200*time.Millisecond),
		MongoURI:          env.orDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:     env.orDefault("MONGO_DB", "store-directory"),
		Timeout:           env.duration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		SearchCollection:  env.orDefault("SEARCH_COLLECTION", "menu_item_searches"),
		PingCollection:    env.orDefault("PING_COLLECTION", "pings"),
		SessionSecret:     []byte(secret),
		SessionIssuer:     env.orDefault("SESSION_ISSUER", "store-directory"),
		SessionTTL:        env.duration("SESSION_TTL", 30*time.Minute),
		SessionSecure:     strings.EqualFold(strings.TrimSpace(getenv("SESSION_COOKIE_SECURE")), "true"),
		CacheTTL:          env.duration("CACHE_TTL", time.Minute),
		CacheMaxCost:      int64(env.integer("CACHE_MAX_COST", 1<<24)),
		AllowedOrigins:    env.list("API_ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:          level,
	}
	if cfg.StoreAPIRetries < 1 {
		cfg.StoreAPIRetries = 1
	}
	return cfg, nil
}

// NewLogger builds the JSON logger used across the service.
func NewLogger(level zapcore.Level) *zap.SugaredLogger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core, zap.AddCaller()).Sugar().With("service", "store-directory-api")
}

type envReader struct {
	getenv func(string) string
}

func (e envReader) orDefault(key, fallback string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (e envReader) duration(key string, fallback time.Duration) time.Duration {
	if raw := strings.TrimSpace(e.getenv(key)); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func (e envReader) integer(key string, fallback int) int {
	if raw := strings.TrimSpace(e.getenv(key)); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	return fallback
}

func (e envReader) list(key string, fallback []string) []string {
	raw := strings.TrimSpace(e.getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
