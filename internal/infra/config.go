package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv         string
	Port           string
	DatabaseURL    string
	RedisURL       string
	StoragePath    string
	StorageBaseURL string
	MetricsAddr    string

	StrategyProvider string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	OpenAIOrg        string
	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiImageModel string

	BackgroundProvider string
	RenderBackends     []string
	ChromePath         string
	OutputFormat       string
	WebPQuality        int

	HeadlineMaxChars         int
	FallbackHeadlineMaxChars int

	StrategyTimeout   time.Duration
	BackgroundTimeout time.Duration
	RenderTimeout     time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	RateLimitBurst   int
	AllowedOrigins   []string

	WorkerPollInterval time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:                   getEnv("APP_ENV", "development"),
		Port:                     port,
		DatabaseURL:              strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:                 strings.TrimSpace(os.Getenv("REDIS_URL")),
		StoragePath:              getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:           getEnv("STORAGE_BASE_URL", fmt.Sprintf("http://localhost:%s/static", port)),
		MetricsAddr:              getEnv("METRICS_ADDR", ":9090"),
		StrategyProvider:         strings.ToLower(getEnv("STRATEGY_PROVIDER", "openai")),
		OpenAIAPIKey:             strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:              getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:            getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:                os.Getenv("OPENAI_ORG"),
		GeminiAPIKey:             strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiTextModel:          getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiImageModel:         getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		BackgroundProvider:       strings.ToLower(getEnv("BACKGROUND_PROVIDER", "gemini")),
		RenderBackends:           getEnvList("RENDER_BACKENDS", []string{"browser", "canvas"}),
		ChromePath:               os.Getenv("CHROME_PATH"),
		OutputFormat:             strings.ToLower(getEnv("OUTPUT_FORMAT", "png")),
		WebPQuality:              getEnvInt("WEBP_QUALITY", 90),
		HeadlineMaxChars:         getEnvInt("HEADLINE_MAX_CHARS", 120),
		FallbackHeadlineMaxChars: getEnvInt("FALLBACK_HEADLINE_MAX_CHARS", 50),
		StrategyTimeout:          time.Second * time.Duration(getEnvInt("STRATEGY_TIMEOUT_SECONDS", 15)),
		BackgroundTimeout:        time.Second * time.Duration(getEnvInt("BACKGROUND_TIMEOUT_SECONDS", 120)),
		RenderTimeout:            time.Second * time.Duration(getEnvInt("RENDER_TIMEOUT_SECONDS", 30)),
		HTTPReadTimeout:          time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:         time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:          time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:          getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		RateLimitBurst:           getEnvInt("RATE_LIMIT_BURST", 5),
		AllowedOrigins:           getEnvList("CORS_ALLOWED_ORIGINS", nil),
		WorkerPollInterval:       time.Second * time.Duration(getEnvInt("WORKER_POLL_SECONDS", 2)),
	}

	switch cfg.StrategyProvider {
	case "openai", "gemini", "static":
	default:
		return nil, fmt.Errorf("STRATEGY_PROVIDER %q is not supported", cfg.StrategyProvider)
	}
	switch cfg.BackgroundProvider {
	case "gemini", "synthetic":
	default:
		return nil, fmt.Errorf("BACKGROUND_PROVIDER %q is not supported", cfg.BackgroundProvider)
	}
	switch cfg.OutputFormat {
	case "png", "webp":
	default:
		return nil, fmt.Errorf("OUTPUT_FORMAT %q is not supported", cfg.OutputFormat)
	}
	if cfg.HeadlineMaxChars <= 0 {
		return nil, fmt.Errorf("HEADLINE_MAX_CHARS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
