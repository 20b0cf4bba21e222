package config

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for mochi-sync.
// It is constructed once at startup and passed by reference into the
// API client and the grading client; nothing reads the environment
// after Load returns.
type Config struct {
	// Mochi API key, required for every command. Presented as HTTP
	// basic auth (key as username, empty password) on each request.
	APIKey string `env:"MOCHI_API_KEY"`

	// OpenRouter API key, required only for the grade and rewrite
	// commands.
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`

	// Endpoint overrides, primarily for tests.
	BaseURL       string `env:"MOCHI_BASE_URL" envDefault:"https://app.mochi.cards/api"`
	OpenRouterURL string `env:"OPENROUTER_URL" envDefault:"https://openrouter.ai/api/v1/chat/completions"`

	// Model used for grading and rewriting.
	Model string `env:"MOCHI_SYNC_MODEL" envDefault:"google/gemini-2.5-flash"`

	// Request timeouts. LLM calls get a longer budget than card API
	// calls because a batch completion can take a while.
	HTTPTimeout time.Duration `env:"MOCHI_HTTP_TIMEOUT" envDefault:"30s"`
	LLMTimeout  time.Duration `env:"MOCHI_LLM_TIMEOUT" envDefault:"60s"`

	// Environment controls log format.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("MOCHI_API_KEY is required (set it in the environment or a .env file)")
	}

	return nil
}

// RequireOpenRouter checks the grading credential. Only the grade and
// rewrite commands call this; sync commands work without it.
func (c *Config) RequireOpenRouter() error {
	if c.OpenRouterAPIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required for LLM commands (set it in the environment or a .env file)")
	}

	return nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
