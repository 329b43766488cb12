package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server. Env "development" turns on CORS debug logging.
	Port string
	Env  string

	// Model provider: "gemini" or "groq". A provider without an API key
	// leaves the service on its deterministic fallbacks.
	LLMProvider string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int

	// Groq (OpenAI-compatible)
	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	ModelTimeoutSeconds int

	// Uploads
	UploadDir            string
	UploadMaxBytes       int64
	PDFExtractionEnabled bool

	// Session store: "memory" | "redis" | "postgres" | "sqlite"
	SessionStore     string
	RedisURL         string
	DatabaseURL      string
	PostgresMaxConns int
	PostgresMinConns int
	SQLitePath       string

	// Live updates: "local" delivers only to sockets on this instance,
	// "redis" fans out through pub/sub.
	WSFanout string

	// Online search: "static" | "scrape" | "none"
	SearchProvider       string
	SearchURL            string
	SearchTimeoutSeconds int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "5000"),
		Env:                  getEnvOrDefault("ENV", "development"),
		LLMProvider:          strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "gemini")),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		GroqAPIKey:           getEnvOrDefault("GROQ_API_KEY", ""),
		GroqBaseURL:          getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:            getEnvOrDefault("GROQ_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
		ModelTimeoutSeconds:  getEnvAsIntOrDefault("MODEL_TIMEOUT_SECONDS", 60),
		UploadDir:            getEnvOrDefault("UPLOAD_DIR", "./uploads"),
		UploadMaxBytes:       int64(getEnvAsIntOrDefault("UPLOAD_MAX_BYTES", 10*1024*1024)),
		PDFExtractionEnabled: getEnvAsBoolOrDefault("PDF_EXTRACTION_ENABLED", false),
		SessionStore:         strings.ToLower(getEnvOrDefault("SESSION_STORE", "memory")),
		PostgresMaxConns:     getEnvAsIntOrDefault("PG_MAX_CONNS", 10),
		PostgresMinConns:     getEnvAsIntOrDefault("PG_MIN_CONNS", 1),
		SQLitePath:           getEnvOrDefault("SQLITE_PATH", "./data/sessions.db"),
		WSFanout:             strings.ToLower(getEnvOrDefault("WS_FANOUT", "local")),
		SearchProvider:       strings.ToLower(getEnvOrDefault("SEARCH_PROVIDER", "static")),
		SearchURL:            getEnvOrDefault("SEARCH_URL", "https://www.google.com/search"),
		SearchTimeoutSeconds: getEnvAsIntOrDefault("SEARCH_TIMEOUT_SECONDS", 10),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "*"),
	}

	if cfg.SessionStore == "redis" || cfg.WSFanout == "redis" {
		cfg.RedisURL = mustGetEnv("REDIS_URL")
	}
	if cfg.SessionStore == "postgres" {
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	}

	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// AIEnabled reports whether the selected provider has credentials.
func (c *Config) AIEnabled() bool {
	switch c.LLMProvider {
	case "groq":
		return c.GroqAPIKey != ""
	default:
		return c.GeminiAPIKey != ""
	}
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
