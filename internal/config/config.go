package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/garage-bot/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration, replaces pricing and assistant backends
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	TelegramCfg  TelegramConfig          `envPrefix:"TELEGRAM_"`
	PricingCfg   PricingConnectorConfig  `envPrefix:"PRICING_"`
	DocumentCfg  DocumentConnectorConfig `envPrefix:"DOCUMENT_"`
	AssistantCfg AssistantConfig         `envPrefix:"ASSISTANT_"`
	SessionCfg   SessionConfig           `envPrefix:"SESSION_"`
	FlowCfg      FlowConfig              `envPrefix:"FLOW_"`
	HTTPCfg      HTTPServerConfig        `envPrefix:"HTTP_"`
	CallbackCfg  CallbackConnectorConfig `envPrefix:"CALLBACK_"`
	SummaryCfg   SummaryConfig           `envPrefix:"SUMMARY_"`

	// Shown when the user asks for a manager
	ManagerContact string `env:"MANAGER_CONTACT" envDefault:"Напишите нам, и менеджер свяжется с вами в рабочее время."`

	// Environment (set from flag, not from env var)
	Environment string
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	WebhookURL         string `env:"WEBHOOK_URL"`
	UseWebhook         bool   `env:"USE_WEBHOOK" envDefault:"false"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	MaxConcurrentUsers int    `env:"MAX_CONCURRENT_USERS" envDefault:"64"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"90s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"90s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// PricingConnectorConfig configures the spreadsheet pricing engine
type PricingConnectorConfig struct {
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// DocumentConnectorConfig configures downloads of generated quote documents
type DocumentConnectorConfig struct {
	RequestTimeout time.Duration        `env:"TIMEOUT" envDefault:"40s"`
	MaxSize        int64                `env:"MAX_SIZE" envDefault:"20971520"` // 20 MiB
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// CallbackConnectorConfig configures quote event delivery, disabled when SERVICE_URL is empty
type CallbackConnectorConfig struct {
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// AssistantConfig configures the free-form language model backend
type AssistantConfig struct {
	APIKey       string        `env:"API_KEY"`
	BaseURL      string        `env:"BASE_URL"`
	Model        string        `env:"MODEL" envDefault:"gpt-4.1-mini"`
	Temperature  float32       `env:"TEMPERATURE" envDefault:"0.4"`
	MaxTokens    int           `env:"MAX_TOKENS" envDefault:"800"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ContextTurns int           `env:"CONTEXT_TURNS" envDefault:"10"`
	HistoryLimit int           `env:"HISTORY_LIMIT" envDefault:"20"`
	PromptFile   string        `env:"PROMPT_FILE"`
}

// SessionConfig controls in-memory session lifetime
type SessionConfig struct {
	FlowTTL         time.Duration `env:"FLOW_TTL" envDefault:"6h"`
	AssistantTTL    time.Duration `env:"ASSISTANT_TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

// FlowConfig selects the slot table used for the pricing dialog
type FlowConfig struct {
	Variant     string `env:"VARIANT" envDefault:"garage"`
	VariantsDir string `env:"VARIANTS_DIR"`
}

// SummaryConfig configures the answer summary export of the CLI.
// SUMMARY_FONT_PATH is read by the PDF formatter itself.
type SummaryConfig struct {
	UnidocLicenseKey string `env:"UNIDOC_LICENSE_KEY"` // required for .docx
}

// HTTPServerConfig configures the ops server (health, webhook)
type HTTPServerConfig struct {
	Addr    string `env:"ADDR" envDefault:":8080"`
	Enabled bool   `env:"ENABLED" envDefault:"false"`
}

// LoadConfig reads .env.<environment> if present and parses the process environment
func LoadConfig(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	cfg.Environment = environment

	return cfg, nil
}

// Parse reads configuration from the process environment and validates it
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	// Pricing credentials are fatal at startup
	if !cfg.EnableMocks {
		if cfg.PricingCfg.Url == "" {
			errors = append(errors, "PRICING_SERVICE_URL is required")
		}
		if cfg.PricingCfg.Token == "" {
			errors = append(errors, "PRICING_TOKEN is required")
		}
	}

	if cfg.TelegramCfg.UseWebhook {
		if cfg.TelegramCfg.WebhookURL == "" {
			errors = append(errors, "TELEGRAM_WEBHOOK_URL is required when TELEGRAM_USE_WEBHOOK is set")
		}
		if !cfg.HTTPCfg.Enabled {
			errors = append(errors, "HTTP_ENABLED must be set when TELEGRAM_USE_WEBHOOK is set")
		}
	}

	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.MaxConcurrentUsers < 1 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_MAX_CONCURRENT_USERS must be positive, got %d", cfg.TelegramCfg.MaxConcurrentUsers))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if cfg.AssistantCfg.ContextTurns < 1 {
		errors = append(errors, fmt.Sprintf("ASSISTANT_CONTEXT_TURNS must be positive, got %d", cfg.AssistantCfg.ContextTurns))
	}

	if cfg.AssistantCfg.HistoryLimit < cfg.AssistantCfg.ContextTurns {
		errors = append(errors, fmt.Sprintf("ASSISTANT_HISTORY_LIMIT (%d) must not be less than ASSISTANT_CONTEXT_TURNS (%d)",
			cfg.AssistantCfg.HistoryLimit, cfg.AssistantCfg.ContextTurns))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// ValidateBot checks the credentials needed to run the chat bot
func (c *Config) ValidateBot() error {
	var errors []string

	if c.TelegramCfg.BotToken == "" {
		errors = append(errors, "TELEGRAM_BOT_TOKEN is required")
	}
	if !c.EnableMocks && c.AssistantCfg.APIKey == "" {
		errors = append(errors, "ASSISTANT_API_KEY is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development", "":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
