// Package config loads annad's runtime configuration from environment
// variables (optionally via a .env file in development), with
// sensible defaults so a fresh checkout runs with no configuration at
// all beyond an LLM API key.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Env is the environment name (development, staging, production).
	Env string

	// Port is the HTTP server port.
	Port string

	// LLM configures both the Junior and Senior tier transports.
	LLM LLMConfig

	// Budget holds the per-request resource ceilings loaded from
	// ANNA_BUDGET_*; see BudgetConfig for which of them are read.
	Budget BudgetConfig

	// StorageRoot is the directory facts, skills, and episodes are
	// persisted under.
	StorageRoot string

	// OTel configures distributed tracing.
	OTel OTelConfig
}

// LLMConfig configures one chat transport. Anna uses two instances of
// this shape: one for the Junior tier, one for the Senior tier, which
// may point at different providers/models/budgets entirely.
type LLMConfig struct {
	Provider string // "openai" or "anthropic"
	APIKey   string
	BaseURL  string
	Model    string
}

// BudgetConfig holds per-request resource ceilings loaded from the
// environment. Only MaxJuniorIterations is read: cmd/annad passes it to
// the orchestrator as its Junior loop cap. The other fields are loaded
// but no component reads them; the budget tracker runs on
// budget.DefaultConfig().
type BudgetConfig struct {
	MaxJuniorIterations int
	MaxProbesPerRequest int
	MaxSeniorEscalations int
	MaxWallClockSeconds int
	MaxPromptTokens      int
}

// OTelConfig configures the OTLP trace exporter.
type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// Enabled reports whether tracing should be set up at all.
func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

// Load reads configuration from the environment, loading a .env file
// first if present (development convenience; missing file is not an
// error).
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("ANNA_ENV", "development"),
		Port: getEnv("ANNA_PORT", "7717"),
		LLM: LLMConfig{
			Provider: getEnv("ANNA_LLM_PROVIDER", "openai"),
			APIKey:   getEnv("ANNA_LLM_API_KEY", ""),
			BaseURL:  getEnv("ANNA_LLM_BASE_URL", ""),
			Model:    getEnv("ANNA_LLM_MODEL", ""),
		},
		Budget: BudgetConfig{
			MaxJuniorIterations:  getEnvInt("ANNA_BUDGET_MAX_JUNIOR_ITERATIONS", 8),
			MaxProbesPerRequest:  getEnvInt("ANNA_BUDGET_MAX_PROBES", 12),
			MaxSeniorEscalations: getEnvInt("ANNA_BUDGET_MAX_SENIOR_ESCALATIONS", 3),
			MaxWallClockSeconds:  getEnvInt("ANNA_BUDGET_MAX_WALL_CLOCK_SECONDS", 45),
			MaxPromptTokens:      getEnvInt("ANNA_BUDGET_MAX_PROMPT_TOKENS", 16000),
		},
		StorageRoot: getEnv("ANNA_STORAGE_ROOT", defaultStorageRoot()),
		OTel: OTelConfig{
			Endpoint:       getEnv("ANNA_OTEL_ENDPOINT", ""),
			Headers:        getEnv("ANNA_OTEL_HEADERS", ""),
			ServiceName:    getEnv("ANNA_OTEL_SERVICE_NAME", "annad"),
			ServiceVersion: getEnv("ANNA_OTEL_SERVICE_VERSION", "dev"),
		},
	}
}

// defaultStorageRoot implements spec.md §3/§6's "root-or-user
// directory chosen by effective UID": running as root roots facts,
// skills, episodes, backups, and persona state under the system-wide
// /var/lib/anna, so the daemon's state survives regardless of which
// user invokes annactl; any other effective UID falls back to the XDG
// data dir (persisted application state, not XDG_STATE_HOME's
// log/history-style data), with a dotdir under the user's home if
// XDG_DATA_HOME is unset.
func defaultStorageRoot() string {
	if os.Geteuid() == 0 {
		return "/var/lib/anna"
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "anna")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".anna"
	}
	return filepath.Join(home, ".local", "share", "anna")
}

// IsProduction returns true if running in production environment.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment returns true if running in development environment.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

// SeniorLLM derives the Senior tier's LLMConfig by layering
// ANNA_SENIOR_* overrides over the base LLM config, so a deployment
// can point Junior at a cheap local model and Senior at a stronger
// hosted one without duplicating every setting.
func (c Config) SeniorLLM() LLMConfig {
	senior := c.LLM
	if v := getEnv("ANNA_SENIOR_LLM_PROVIDER", ""); v != "" {
		senior.Provider = v
	}
	if v := getEnv("ANNA_SENIOR_LLM_API_KEY", ""); v != "" {
		senior.APIKey = v
	}
	if v := getEnv("ANNA_SENIOR_LLM_BASE_URL", ""); v != "" {
		senior.BaseURL = v
	}
	if v := getEnv("ANNA_SENIOR_LLM_MODEL", ""); v != "" {
		senior.Model = v
	}
	return senior
}
