package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBConn    string
	LogLevel  string
	JWTSecret string

	// AI-SQL fallback
	AnthropicAPIKey string
	AnthropicModel  string
	SQLGenEnabled   bool
	SQLGenTimeout   time.Duration
	SQLGenMaxTokens int64

	// Alerting
	AlertConfigPath string
	SMTPHost        string
	SMTPPort        string
	SMTPUsername    string
	SMTPPassword    string
	SenderEmail     string
	SlackWebhookURL string
	PagerWebhookURL string

	// Monitoring
	MonitorSchedule  string
	OverdueThreshold int

	// Benchmark rates feed
	RatesURL      string
	RatesCacheTTL time.Duration
}

// NewConfig loads configuration from environment variables. A .env file in the
// working directory is loaded first if present.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		DBConn:    getEnv("DB_CONN", "host=localhost port=5432 user=finwell password=finwell dbname=finwell sslmode=disable"),
		LogLevel:  getEnv("LOG_LEVEL", "INFO"),
		JWTSecret: getEnv("JWT_SECRET", "secret"),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		SQLGenEnabled:   getEnvBool("SQLGEN_ENABLED", true),
		SQLGenTimeout:   getEnvDuration("SQLGEN_TIMEOUT", 20*time.Second),
		SQLGenMaxTokens: int64(getEnvInt("SQLGEN_MAX_TOKENS", 1024)),

		AlertConfigPath: getEnv("ALERT_CONFIG_PATH", "alerts.yaml"),
		SMTPHost:        getEnv("SMTP_HOST", "localhost"),
		SMTPPort:        getEnv("SMTP_PORT", "587"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SenderEmail:     getEnv("SENDER_EMAIL", "alerts@finwell.local"),
		SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		PagerWebhookURL: getEnv("PAGER_WEBHOOK_URL", ""),

		MonitorSchedule:  getEnv("MONITOR_SCHEDULE", "@every 1h"),
		OverdueThreshold: getEnvInt("OVERDUE_THRESHOLD", 25),

		RatesURL:      getEnv("RATES_URL", ""),
		RatesCacheTTL: getEnvDuration("RATES_CACHE_TTL", 6*time.Hour),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.SQLGenEnabled && cfg.AnthropicAPIKey == "" {
		// The fallback is optional; disable it instead of failing startup.
		cfg.SQLGenEnabled = false
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}
