// Package config centralizes environment-based configuration with defaults
// and validation. A .env file in the working directory is honored when
// present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the serve and chat commands need.
type Config struct {
	// HTTP settings
	ListenAddr string

	// Session persistence. Redis is used when RedisAddr is set; otherwise
	// sessions live in process memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
	SessionTTL    time.Duration
	LockTTL       time.Duration

	// Language model settings. Classification runs keyword-only when the key
	// is empty.
	OpenAIKey  string
	ChatModel  string
	LLMTimeout time.Duration
	MaxRetries int

	// Knowledge base override; empty means the embedded defaults.
	KBPath string

	// Incident tracking code prefix, two letters.
	CodePrefix string

	// Conversation settings
	NodeTimeout time.Duration

	LogLevel string
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:    getEnv("MOSTRADOR_ADDR", ":8080"),
		RedisAddr:     os.Getenv("MOSTRADOR_REDIS_ADDR"),
		RedisPassword: os.Getenv("MOSTRADOR_REDIS_PASSWORD"),
		RedisDB:       getEnvInt("MOSTRADOR_REDIS_DB", 0),
		KeyPrefix:     getEnv("MOSTRADOR_KEY_PREFIX", "mostrador:session:"),
		SessionTTL:    getEnvDuration("MOSTRADOR_SESSION_TTL", 24*time.Hour),
		LockTTL:       getEnvDuration("MOSTRADOR_LOCK_TTL", 30*time.Second),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		ChatModel:     getEnv("MOSTRADOR_OPENAI_MODEL", "gpt-4o-mini"),
		LLMTimeout:    getEnvDuration("MOSTRADOR_LLM_TIMEOUT", 30*time.Second),
		MaxRetries:    getEnvInt("MOSTRADOR_LLM_MAX_RETRIES", 2),
		KBPath:        os.Getenv("MOSTRADOR_KB_PATH"),
		CodePrefix:    getEnv("MOSTRADOR_CODE_PREFIX", "ER"),
		NodeTimeout:   getEnvDuration("MOSTRADOR_NODE_TIMEOUT", 45*time.Second),
		LogLevel:      getEnv("MOSTRADOR_LOG_LEVEL", "info"),
	}

	return cfg, cfg.Validate()
}

// Validate rejects values that would misbehave at runtime.
func (c *Config) Validate() error {
	if len(c.CodePrefix) != 2 {
		return fmt.Errorf("MOSTRADOR_CODE_PREFIX must be two letters, got %q", c.CodePrefix)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("MOSTRADOR_SESSION_TTL must not be negative, got %s", c.SessionTTL)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("MOSTRADOR_LOCK_TTL must be positive, got %s", c.LockTTL)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("MOSTRADOR_LLM_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("MOSTRADOR_LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

// UseRedis reports whether sessions should be persisted in Redis.
func (c *Config) UseRedis() bool {
	return c.RedisAddr != ""
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
