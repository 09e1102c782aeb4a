package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/phuslu/log"
	"gopkg.in/yaml.v3"
)

type Database struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite pgx postgres"`
	DSN    string `yaml:"dsn" validate:"required"`
}

type Analyst struct {
	Provider       string `yaml:"provider" validate:"omitempty,oneof=none anthropic gemini"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gte=0"`
}

func (a Analyst) Timeout() time.Duration { return time.Duration(a.TimeoutSeconds) * time.Second }

type Logging struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

type Config struct {
	ListenAddr   string   `yaml:"listen_addr" validate:"required"`
	Database     Database `yaml:"database"`
	Analyst      Analyst  `yaml:"analyst"`
	Log          Logging  `yaml:"log"`
	OTLPEndpoint string   `yaml:"otlp_endpoint"`
	ChromePath   string   `yaml:"chrome_path"`

	// Secrets come from the environment only.
	AnthropicAPIKey string `yaml:"-"`
	GeminiAPIKey    string `yaml:"-"`
}

func Default() Config {
	return Config{
		ListenAddr: ":8080",
		Database:   Database{Driver: "sqlite", DSN: "negotiator.db"},
		Analyst:    Analyst{TimeoutSeconds: 45},
		Log:        Logging{Level: "info", Format: "text"},
	}
}

// Load reads .env (if present), then the optional YAML file at path, then environment
// overrides.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Analyst.Provider == "" {
		cfg.Analyst.Provider = "none"
		if cfg.AnthropicAPIKey != "" {
			cfg.Analyst.Provider = "anthropic"
		}
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString("NEGOTIATOR_LISTEN_ADDR", &cfg.ListenAddr)
	setString("NEGOTIATOR_DB_DRIVER", &cfg.Database.Driver)
	setString("NEGOTIATOR_DB_DSN", &cfg.Database.DSN)
	setString("NEGOTIATOR_ANALYST", &cfg.Analyst.Provider)
	setString("NEGOTIATOR_ANALYST_MODEL", &cfg.Analyst.Model)
	setString("NEGOTIATOR_LOG_LEVEL", &cfg.Log.Level)
	setString("NEGOTIATOR_LOG_FORMAT", &cfg.Log.Format)
	setString("NEGOTIATOR_CHROME_PATH", &cfg.ChromePath)
	setString("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.OTLPEndpoint)
	setString("ANTHROPIC_API_KEY", &cfg.AnthropicAPIKey)
	setString("GEMINI_API_KEY", &cfg.GeminiAPIKey)
	if v := strings.TrimSpace(os.Getenv("NEGOTIATOR_ANALYST_TIMEOUT_SECONDS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NEGOTIATOR_ANALYST_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Analyst.TimeoutSeconds = n
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	cfg.Analyst.Provider = strings.ToLower(cfg.Analyst.Provider)
	return nil
}

// ConfigureLogging replaces the global logger.
func ConfigureLogging(level, format string) {
	logger := log.Logger{
		Level:      log.ParseLevel(level),
		TimeFormat: time.RFC3339,
	}
	if format == "json" {
		logger.Writer = &log.IOWriter{Writer: os.Stderr}
	} else {
		logger.Writer = &log.ConsoleWriter{Writer: os.Stderr, ColorOutput: false, QuoteString: true}
	}
	log.DefaultLogger = logger
}
