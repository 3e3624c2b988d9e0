package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mraditya/leaguesim/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"

	ProviderLocal    = "local"
	ProviderLMStudio = "lmstudio"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string

	DBPath        string
	ResetDB       bool
	WorldSeed     uint64
	WorkerCount   int
	SnapshotEvery int64
	StrictReplay  bool

	CacheEnabled bool
	CacheTTL     time.Duration

	LLMProvider             string
	LLMBaseURL              string
	LLMModel                string
	LLMTemperature          float64
	LLMMaxTokens            int
	LLMTimeout              time.Duration
	LLMCircuitEnabled       bool
	LLMCircuitFailureCount  int
	LLMCircuitOpenTimeout   time.Duration
	LLMCircuitHalfOpenMaxRq int

	SoftStateTimeout time.Duration
	LogLevel         logging.Level
}

func Load() (Config, error) {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("HTTP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("HTTP_WRITE_TIMEOUT", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_WRITE_TIMEOUT: %w", err)
	}

	resetDB, err := strconv.ParseBool(getEnv("RESET_DB", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RESET_DB: %w", err)
	}

	worldSeed, err := strconv.ParseUint(getEnv("WORLD_SEED", "42"), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse WORLD_SEED: %w", err)
	}

	workerCount, err := getEnvAsInt("WORKER_COUNT", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse WORKER_COUNT: %w", err)
	}
	if workerCount < 1 {
		return Config{}, fmt.Errorf("WORKER_COUNT must be >= 1")
	}

	snapshotEvery, err := getEnvAsInt("SNAPSHOT_EVERY", 2000)
	if err != nil {
		return Config{}, fmt.Errorf("parse SNAPSHOT_EVERY: %w", err)
	}
	if snapshotEvery < 1 {
		return Config{}, fmt.Errorf("SNAPSHOT_EVERY must be >= 1")
	}

	strictReplay, err := strconv.ParseBool(getEnv("STRICT_REPLAY", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STRICT_REPLAY: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	llmProvider, err := parseLLMProvider(getEnv("LLM_PROVIDER", ProviderLocal))
	if err != nil {
		return Config{}, err
	}
	llmBaseURL := strings.TrimSpace(getEnv("LLM_BASE_URL", "http://localhost:1234"))
	if llmProvider == ProviderLMStudio && llmBaseURL == "" {
		return Config{}, fmt.Errorf("LLM_BASE_URL is required when LLM_PROVIDER=%s", ProviderLMStudio)
	}
	llmTemperature, err := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.7"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse LLM_TEMPERATURE: %w", err)
	}
	if llmTemperature < 0 || llmTemperature > 2 {
		return Config{}, fmt.Errorf("LLM_TEMPERATURE must be in [0,2]")
	}
	llmMaxTokens, err := getEnvAsInt("LLM_MAX_TOKENS", 1024)
	if err != nil {
		return Config{}, fmt.Errorf("parse LLM_MAX_TOKENS: %w", err)
	}
	if llmMaxTokens < 1 {
		return Config{}, fmt.Errorf("LLM_MAX_TOKENS must be >= 1")
	}
	llmTimeout, err := time.ParseDuration(getEnv("LLM_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LLM_TIMEOUT: %w", err)
	}
	if llmTimeout <= 0 {
		return Config{}, fmt.Errorf("LLM_TIMEOUT must be > 0")
	}

	llmCircuitEnabled, err := strconv.ParseBool(getEnv("LLM_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LLM_CIRCUIT_ENABLED: %w", err)
	}
	llmCircuitFailureCount, err := getEnvAsInt("LLM_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse LLM_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	llmCircuitOpenTimeout, err := time.ParseDuration(getEnv("LLM_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LLM_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	llmCircuitHalfOpenMaxRq, err := getEnvAsInt("LLM_CIRCUIT_HALF_OPEN_MAX_REQUESTS", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse LLM_CIRCUIT_HALF_OPEN_MAX_REQUESTS: %w", err)
	}

	softStateTimeout, err := time.ParseDuration(getEnv("SOFT_STATE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SOFT_STATE_TIMEOUT: %w", err)
	}
	if softStateTimeout <= 0 {
		return Config{}, fmt.Errorf("SOFT_STATE_TIMEOUT must be > 0")
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("SERVICE_NAME", "leaguesim"),
		ServiceVersion:     getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		DBPath:        getEnv("DB_PATH", "leaguesim.db"),
		ResetDB:       resetDB,
		WorldSeed:     worldSeed,
		WorkerCount:   workerCount,
		SnapshotEvery: int64(snapshotEvery),
		StrictReplay:  strictReplay,

		CacheEnabled: cacheEnabled,
		CacheTTL:     cacheTTL,

		LLMProvider:             llmProvider,
		LLMBaseURL:              llmBaseURL,
		LLMModel:                getEnv("LLM_MODEL", "local-model"),
		LLMTemperature:          llmTemperature,
		LLMMaxTokens:            llmMaxTokens,
		LLMTimeout:              llmTimeout,
		LLMCircuitEnabled:       llmCircuitEnabled,
		LLMCircuitFailureCount:  llmCircuitFailureCount,
		LLMCircuitOpenTimeout:   llmCircuitOpenTimeout,
		LLMCircuitHalfOpenMaxRq: llmCircuitHalfOpenMaxRq,

		SoftStateTimeout: softStateTimeout,
		LogLevel:         parseLogLevel(getEnv("LOG_LEVEL", "info")),
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLLMProvider(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case ProviderLocal, ProviderLMStudio:
		return value, nil
	default:
		return "", fmt.Errorf("invalid LLM_PROVIDER %q: valid values are %s, %s", v, ProviderLocal, ProviderLMStudio)
	}
}
