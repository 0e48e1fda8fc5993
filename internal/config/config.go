// File: internal/config/config.go
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort        string
	Environment       string
	JWTSecretKey      string
	CORSAllowedOrigin string
	LogLevel          string

	DBDriver string
	DBDSN    string

	HistoryWindow       int
	ToolTimeout         time.Duration
	RequestTimeout      time.Duration
	ConfirmDestructive  bool
	SimilarityThreshold float64

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
	LLMTimeout time.Duration

	ChatRatePerSecond float64
	ChatRateBurst     int
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("CORS_ALLOWED_ORIGIN", "")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "taskmate.db")

	v.SetDefault("HISTORY_WINDOW", 10)
	v.SetDefault("TOOL_TIMEOUT", "10s")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("CONFIRM_DESTRUCTIVE", true)
	v.SetDefault("SIMILARITY_THRESHOLD", 0.7)

	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_BASE_URL", "")
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_TIMEOUT", "5s")

	v.SetDefault("CHAT_RATE_PER_SECOND", 2.0)
	v.SetDefault("CHAT_RATE_BURST", 10)
}

// Load reads configuration from environment variables or .env file.
func Load() (*Config, error) {
	if !strings.EqualFold(os.Getenv("ENV"), "production") {
		if err := godotenv.Load(); err != nil {
			log.Debug().Msg("No .env file found; continuing with environment variables")
		}
	}
	return FromViper(viper.New())
}

// FromViper builds a Config from v after installing defaults and
// environment binding.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		ServerPort:        v.GetString("SERVER_PORT"),
		Environment:       v.GetString("ENV"),
		JWTSecretKey:      v.GetString("JWT_SECRET_KEY"),
		CORSAllowedOrigin: v.GetString("CORS_ALLOWED_ORIGIN"),
		LogLevel:          v.GetString("LOG_LEVEL"),

		DBDriver: strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:    v.GetString("DB_DSN"),

		HistoryWindow:       v.GetInt("HISTORY_WINDOW"),
		ToolTimeout:         v.GetDuration("TOOL_TIMEOUT"),
		RequestTimeout:      v.GetDuration("REQUEST_TIMEOUT"),
		ConfirmDestructive:  v.GetBool("CONFIRM_DESTRUCTIVE"),
		SimilarityThreshold: v.GetFloat64("SIMILARITY_THRESHOLD"),

		LLMAPIKey:  v.GetString("LLM_API_KEY"),
		LLMBaseURL: v.GetString("LLM_BASE_URL"),
		LLMModel:   v.GetString("LLM_MODEL"),
		LLMTimeout: v.GetDuration("LLM_TIMEOUT"),

		ChatRatePerSecond: v.GetFloat64("CHAT_RATE_PER_SECOND"),
		ChatRateBurst:     v.GetInt("CHAT_RATE_BURST"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var problems []string
	if c.IsProduction() && c.JWTSecretKey == "" {
		problems = append(problems, "JWT_SECRET_KEY is required in production")
	}
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		problems = append(problems, "DB_DRIVER must be sqlite or postgres")
	}
	if c.DBDSN == "" {
		problems = append(problems, "DB_DSN is required")
	}
	if c.HistoryWindow < 1 {
		problems = append(problems, "HISTORY_WINDOW must be at least 1")
	}
	if c.ToolTimeout <= 0 || c.RequestTimeout <= 0 {
		problems = append(problems, "TOOL_TIMEOUT and REQUEST_TIMEOUT must be positive")
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		problems = append(problems, "SIMILARITY_THRESHOLD must be in (0, 1]")
	}
	if c.ChatRatePerSecond <= 0 || c.ChatRateBurst < 1 {
		problems = append(problems, "CHAT_RATE_PER_SECOND and CHAT_RATE_BURST must be positive")
	}
	if len(problems) > 0 {
		return errors.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
