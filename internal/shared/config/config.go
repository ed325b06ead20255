package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ai-resume-saas/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	PublicBaseURL   string

	ResumeStore     string
	DatabaseURL     string
	DBPool          DBPool
	MongoURI        string
	MongoDatabase   string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	S3PublicBaseURL string
	SSEKMSKeyID     string

	LLMProvider string
	LLMModel    string
	LLMBaseURL  string
	LLMAPIKey   string
	LLMTimeout  time.Duration
	LLMMaxRPS   float64

	RateLimitBackend string
	RedisURL         string
	RateLimitWindow  time.Duration
	RateLimitMax     int

	EnrichWorkers         int
	EnrichTimeout         time.Duration
	AnalyzeBudget         time.Duration
	AnalyzeRetryMalformed bool

	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
}

// DBPool overrides Postgres pool defaults. Zero values keep the defaults.
type DBPool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience. Existing env wins.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	resumeStore := normalizeResumeStore(getEnv("RESUME_STORE", ""), dbURL, os.Getenv("MONGODB_URI"))

	if env == "production" && resumeStore == "memory" {
		telemetry.Warn("config.memory_store_in_production", map[string]any{"key": "RESUME_STORE"})
	}

	provider := normalizeProvider(getEnv("LLM_PROVIDER", "perplexity"))

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		ResumeStore:     resumeStore,
		DatabaseURL:     dbURL,
		DBPool: DBPool{
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 0),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 0),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 0),
			ConnMaxIdleTime: getDuration("DB_CONN_MAX_IDLE_TIME", 0),
			PingTimeout:     getDuration("DB_PING_TIMEOUT", 0),
		},
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "ai-resume-saas"),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		LLMProvider: provider,
		LLMModel:    getEnv("LLM_MODEL", defaultModel(provider)),
		LLMBaseURL:  getEnv("LLM_BASE_URL", defaultBaseURL(provider)),
		LLMAPIKey:   firstEnv("LLM_API_KEY", "PERPLEXITY_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY"),
		LLMTimeout:  getDuration("LLM_TIMEOUT", 25*time.Second),
		LLMMaxRPS:   getFloat("LLM_MAX_RPS", 0),

		RateLimitBackend: strings.ToLower(getEnv("RATE_LIMIT_BACKEND", "memory")),
		RedisURL:         getEnv("REDIS_URL", ""),
		RateLimitWindow:  getDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitMax:     getInt("RATE_LIMIT_MAX", 5),

		EnrichWorkers:         getInt("ENRICH_WORKERS", 3),
		EnrichTimeout:         getDuration("ENRICH_TIMEOUT", 15*time.Second),
		AnalyzeBudget:         getDuration("ANALYZE_BUDGET", 55*time.Second),
		AnalyzeRetryMalformed: getBool("ANALYZE_RETRY_MALFORMED", false),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),
	}
}

// IsDevLike reports whether env tolerates in-memory fallbacks.
func IsDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_value", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 {
		telemetry.Warn("config.invalid_value", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return val
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_value", map[string]any{"key": key, "value": raw, "default": def.String()})
		return def
	}
	return val
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

// normalizeResumeStore picks the explicit store, else infers one from the
// configured connection strings.
func normalizeResumeStore(raw, dbURL, mongoURI string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "mongo", "mongodb":
		return "mongo"
	case "postgres", "pg":
		return "postgres"
	case "memory":
		return "memory"
	}
	switch {
	case strings.TrimSpace(mongoURI) != "":
		return "mongo"
	case strings.TrimSpace(dbURL) != "":
		return "postgres"
	default:
		return "memory"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "gemini", "google":
		return "gemini"
	default:
		return "perplexity"
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "gemini":
		return "gemini-2.0-flash"
	default:
		return "sonar-pro"
	}
}

func defaultBaseURL(provider string) string {
	switch provider {
	case "openai":
		return "https://api.openai.com/v1/"
	case "gemini":
		return ""
	default:
		return "https://api.perplexity.ai/"
	}
}
