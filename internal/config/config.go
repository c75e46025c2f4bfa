package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/mockmate/interview-runtime/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Session runtime configuration
	SessionCfg SessionConfig `envPrefix:"SESSION_"`

	// External service configurations
	EvaluatorConnectorCfg EvaluatorConnectorConfig `envPrefix:"EVALUATOR_"`
	ResultsConnectorCfg   ResultsConnectorConfig   `envPrefix:"RESULTS_"`
	NavigatorConnectorCfg NavigatorConnectorConfig `envPrefix:"NAVIGATOR_"`
	MediaConnectorCfg     MediaConnectorConfig     `envPrefix:"MEDIA_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// SessionConfig holds the per-session runtime knobs
type SessionConfig struct {
	QuestionTime          time.Duration `env:"QUESTION_TIME" envDefault:"120s"`
	FeedbackRedirectDelay time.Duration `env:"FEEDBACK_REDIRECT_DELAY" envDefault:"3s"`
	IdleTTL               time.Duration `env:"IDLE_TTL" envDefault:"30m"`
	MaxActiveSessions     int           `env:"MAX_ACTIVE_SESSIONS" envDefault:"256"`
}

type EvaluatorConnectorConfig struct {
	HTTPClientConfig
	StartEndpoint    string               `env:"START_ENDPOINT" envDefault:"/interview/start"`
	EvaluateEndpoint string               `env:"EVALUATE_ENDPOINT" envDefault:"/interview/evaluate"`
	DomainsEndpoint  string               `env:"DOMAINS_ENDPOINT" envDefault:"/interview/domains"`
	Retry            pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type ResultsConnectorConfig struct {
	HTTPClientConfig
	SaveEndpoint string               `env:"SAVE_ENDPOINT" envDefault:"/results"`
	Retry        pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type NavigatorConnectorConfig struct {
	HTTPClientConfig
	NavigateEndpoint string `env:"NAVIGATE_ENDPOINT" envDefault:"/navigate"`
	ReportPath       string `env:"REPORT_PATH" envDefault:"/report"`
}

type MediaConnectorConfig struct {
	HTTPClientConfig
	OpenEndpoint  string `env:"OPEN_ENDPOINT" envDefault:"/streams"`
	FrameEndpoint string `env:"FRAME_ENDPOINT" envDefault:"/streams/%s/frame"`
	ChunkEndpoint string `env:"CHUNK_ENDPOINT" envDefault:"/streams/%s/chunk"`
	CloseEndpoint string `env:"CLOSE_ENDPOINT" envDefault:"/streams/%s"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"10s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.SessionCfg.QuestionTime < time.Second || cfg.SessionCfg.QuestionTime > time.Hour {
		errors = append(errors, fmt.Sprintf("SESSION_QUESTION_TIME must be between 1s and 1h, got %s", cfg.SessionCfg.QuestionTime))
	}

	if cfg.SessionCfg.FeedbackRedirectDelay < 0 || cfg.SessionCfg.FeedbackRedirectDelay > time.Minute {
		errors = append(errors, fmt.Sprintf("SESSION_FEEDBACK_REDIRECT_DELAY must be between 0 and 1m, got %s", cfg.SessionCfg.FeedbackRedirectDelay))
	}

	if cfg.SessionCfg.IdleTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("SESSION_IDLE_TTL must be at least 1m, got %s", cfg.SessionCfg.IdleTTL))
	}

	if cfg.SessionCfg.MaxActiveSessions < 1 || cfg.SessionCfg.MaxActiveSessions > 10000 {
		errors = append(errors, fmt.Sprintf("SESSION_MAX_ACTIVE_SESSIONS must be between 1 and 10000, got %d", cfg.SessionCfg.MaxActiveSessions))
	}

	if !cfg.EnableMocks {
		if cfg.EvaluatorConnectorCfg.Url == "" {
			errors = append(errors, "EVALUATOR_SERVICE_URL is required when mocks are disabled")
		}
		if cfg.ResultsConnectorCfg.Url == "" {
			errors = append(errors, "RESULTS_SERVICE_URL is required when mocks are disabled")
		}
		if cfg.MediaConnectorCfg.Url == "" {
			errors = append(errors, "MEDIA_SERVICE_URL is required when mocks are disabled")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", errors[0])
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
