package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	AI        AIConfig
	Synthesis SynthesisConfig `yaml:"synthesis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
// An empty URL keeps questions in memory.
type DatabaseConfig struct {
	URL      string
	MaxConns int32
}

// RedisConfig holds Redis connection settings. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds the secret used to validate caller tokens.
type JWTConfig struct {
	Secret string
}

// AIConfig selects the text-generation backend. Provider "" or "none" runs in fallback mode.
type AIConfig struct {
	Provider          string
	Model             string
	GeminiAPIKey      string
	OllamaBaseURL     string
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterSiteURL string
	OpenRouterAppName string
	Timeout           time.Duration
}

// SynthesisConfig tunes clustering and output size.
type SynthesisConfig struct {
	ClusterThreshold float64 `yaml:"cluster_threshold"`
	MinQuestions     int     `yaml:"min_questions"`
	MaxQuestions     int     `yaml:"max_questions"`
}

// RateLimitConfig configures question submission limiting.
type RateLimitConfig struct {
	Mode    string        `yaml:"mode"` // counter, redis or off
	Ceiling int           `yaml:"ceiling"`
	Window  time.Duration `yaml:"window"`
}

// Enabled reports whether an AI backend is configured.
func (c AIConfig) Enabled() bool {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	return p != "" && p != "none"
}

// Load reads configuration from environment, with optional .env file and YAML overlay.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-me-in-production"),
		},
		AI: AIConfig{
			Provider:          getEnv("AI_PROVIDER", "none"),
			Model:             getEnv("AI_MODEL", ""),
			GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
			OpenRouterSiteURL: getEnv("OPENROUTER_SITE_URL", ""),
			OpenRouterAppName: getEnv("OPENROUTER_APP_NAME", ""),
			Timeout:           time.Duration(getEnvInt("SYNTHESIS_GENERATION_TIMEOUT_SEC", 20)) * time.Second,
		},
		Synthesis: SynthesisConfig{
			ClusterThreshold: getEnvFloat("SYNTHESIS_CLUSTER_THRESHOLD", 0.7),
			MinQuestions:     3,
			MaxQuestions:     5,
		},
		RateLimit: RateLimitConfig{
			Mode:    getEnv("RATE_LIMIT_MODE", "counter"),
			Ceiling: getEnvInt("RATE_LIMIT_CEILING", 30),
			Window:  time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SEC", 60)) * time.Second,
		},
	}

	if err := applyFile(cfg, getEnv("CONFIG_FILE", "config.yaml")); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fileOverlay is the subset of settings that may come from the YAML file.
type fileOverlay struct {
	Synthesis *SynthesisConfig `yaml:"synthesis"`
	RateLimit *RateLimitConfig `yaml:"rate_limit"`
}

// applyFile overlays YAML settings onto cfg. A missing file is not an error.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	overlay := fileOverlay{Synthesis: &cfg.Synthesis, RateLimit: &cfg.RateLimit}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	s := c.Synthesis
	if s.ClusterThreshold <= 0 || s.ClusterThreshold >= 1 {
		return fmt.Errorf("synthesis cluster threshold must be in (0,1), got %v", s.ClusterThreshold)
	}
	if s.MinQuestions < 1 || s.MaxQuestions < s.MinQuestions {
		return fmt.Errorf("synthesis question bounds invalid: min=%d max=%d", s.MinQuestions, s.MaxQuestions)
	}
	switch c.RateLimit.Mode {
	case "counter", "redis", "off":
	default:
		return fmt.Errorf("unknown rate limit mode %q", c.RateLimit.Mode)
	}
	if c.RateLimit.Mode == "redis" && c.Redis.Addr == "" {
		return errors.New("rate limit mode redis requires REDIS_ADDR")
	}
	return nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
