// Package config loads assistant-engine configuration from YAML files and
// AE_-prefixed environment variables, with sane defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for the assistant engine.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Invoker InvokerConfig `yaml:"invoker"`
	Session SessionConfig `yaml:"session"`
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds REST surface configuration.
type ServerConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	EnableCORS   bool          `yaml:"enable_cors"`
}

// LLMConfig holds settings for the planner/extractor/oracle chat model.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai, deepseek, azure
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	APIVersion  string  `yaml:"api_version"`
	Temperature float32 `yaml:"temperature"`
}

// InvokerConfig selects and configures the capability invoker backend.
type InvokerConfig struct {
	// Backend is one of memory, http, mcp, script.
	Backend string `yaml:"backend"`

	// Endpoint is the bridge URL for the http and mcp backends.
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds a single capability invocation.
	Timeout time.Duration `yaml:"timeout"`

	// ScriptDir holds *.js capability implementations for the script
	// backend.
	ScriptDir string `yaml:"script_dir"`
}

// SessionConfig bounds the per-session dedup ledger and confirmation set.
type SessionConfig struct {
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// EngineConfig tunes orchestration behavior.
type EngineConfig struct {
	// MaxParallel bounds concurrent task fan-out for parallel plans.
	MaxParallel int `yaml:"max_parallel"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			EnableCORS:   true,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
		},
		Invoker: InvokerConfig{
			Backend: "memory",
			Timeout: 30 * time.Second,
		},
		Session: SessionConfig{
			TTL:             30 * time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
		Engine: EngineConfig{
			MaxParallel: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// non-empty), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from AE_* environment variables.
func (c *Config) applyEnv() {
	envString(&c.Server.Address, "AE_SERVER_ADDRESS")
	envString(&c.LLM.Provider, "AE_LLM_PROVIDER")
	envString(&c.LLM.Model, "AE_LLM_MODEL")
	envString(&c.LLM.APIKey, "AE_LLM_API_KEY")
	envString(&c.LLM.BaseURL, "AE_LLM_BASE_URL")
	envString(&c.Invoker.Backend, "AE_INVOKER_BACKEND")
	envString(&c.Invoker.Endpoint, "AE_INVOKER_ENDPOINT")
	envString(&c.Invoker.ScriptDir, "AE_INVOKER_SCRIPT_DIR")
	envString(&c.Logging.Level, "AE_LOG_LEVEL")
	envDuration(&c.Session.TTL, "AE_SESSION_TTL")
	envDuration(&c.Invoker.Timeout, "AE_INVOKER_TIMEOUT")
	envInt(&c.Engine.MaxParallel, "AE_ENGINE_MAX_PARALLEL")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Invoker.Backend {
	case "memory", "http", "mcp", "script":
	default:
		return fmt.Errorf("unknown invoker backend: %q", c.Invoker.Backend)
	}
	if (c.Invoker.Backend == "http" || c.Invoker.Backend == "mcp") && c.Invoker.Endpoint == "" {
		return fmt.Errorf("invoker backend %q requires an endpoint", c.Invoker.Backend)
	}
	if c.Invoker.Backend == "script" && c.Invoker.ScriptDir == "" {
		return fmt.Errorf("invoker backend script requires script_dir")
	}
	if c.Engine.MaxParallel <= 0 {
		return fmt.Errorf("engine.max_parallel must be positive, got %d", c.Engine.MaxParallel)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	return nil
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func envInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
