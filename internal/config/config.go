// Package config reads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted in LLM_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port        string
	FrontendURL string

	LLMProvider      string
	LLMTimeout       time.Duration
	SummaryThreshold int

	GeminiAPIKey string
	GeminiModel  string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	SessionSecret string
	SessionSecure bool
	DatabaseURL   string

	DiscordWebhookURL string

	R2 R2Config
}

// R2Config holds the optional Cloudflare R2 archive settings.
type R2Config struct {
	AccountID       string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
}

// Enabled reports whether every R2 setting is present.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.PublicURL != ""
}

// Load reads a .env file when one exists and returns the environment config.
func Load() Config {
	log.Println("Attempting to load .env file...")
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Println("WARN: .env file not found. Relying on system environment variables.")
		} else {
			log.Printf("WARN: Error loading .env file: %v", err)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment.
func FromEnv() Config {
	return Config{
		Port:        envOr("PORT", "8080"),
		FrontendURL: envOr("FRONTEND_URL", "http://localhost:5173"),

		LLMProvider:      strings.ToLower(envOr("LLM_PROVIDER", ProviderGemini)),
		LLMTimeout:       envDuration("LLM_TIMEOUT", 0),
		SummaryThreshold: envInt("SUMMARY_THRESHOLD", 2000),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOr("GEMINI_MODEL", "gemini-2.0-flash"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   envOr("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionSecure: envBool("SESSION_SECURE", false),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),

		R2: R2Config{
			AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
			Bucket:          os.Getenv("R2_BUCKET_NAME"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			PublicURL:       os.Getenv("R2_PUBLIC_URL"),
		},
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (want %q or %q)", c.LLMProvider, ProviderGemini, ProviderOpenAI)
	}
	if c.SummaryThreshold <= 0 {
		return fmt.Errorf("SUMMARY_THRESHOLD must be positive, got %d", c.SummaryThreshold)
	}
	if c.LLMTimeout < 0 {
		return fmt.Errorf("LLM_TIMEOUT must not be negative, got %s", c.LLMTimeout)
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: Ignoring invalid %s=%q: %v", k, v, err)
		return def
	}
	return n
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

// envDuration accepts Go durations ("30s") or a bare number of seconds.
func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARN: Ignoring invalid %s=%q: %v", k, v, err)
		return def
	}
	return d
}
