package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/clipsense/ai/core/llm"
)

// ErrMissingAPIKey is returned by EnsureCredentials when the provider needs a key and none is set.
var ErrMissingAPIKey = errors.New("LLM API key is not configured")

// Profile is the runtime configuration of the enhancer.
type Profile struct {
	// LLM configuration (OpenAI-compatible protocol, plus Gemini)
	LLMProvider    string // openai, gemini, deepseek, siliconflow, openrouter, ollama
	LLMAPIKey      string
	LLMBaseURL     string // optional, has default per provider
	LLMModel       string // optional, has default per provider
	LLMTimeout     int    // request timeout in seconds (default: 60)
	LLMMaxTokens   int
	LLMTemperature float64 // 0 is honored (default: 0.7)

	// Pipeline tuning
	CacheCapacity   int
	CacheTTLMinutes int
	MaxAttempts     int
	RateLimit       float64 // provider requests per second, 0 disables
	RateBurst       int

	// Storage and files
	Mode           string // dev, prod
	Data           string // data directory, holds the history database
	ConfigDir      string // templates and catalog overrides (default: Data)
	CatalogFile    string // catalog override file relative to ConfigDir
	Driver         string
	DSN            string
	HistoryEnabled bool

	LogLevel  string
	LogFormat string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvOrDefaultFloat returns environment variable value as float64 or default value.
func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvOrDefaultBool returns environment variable value as bool or default value.
func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// FromEnv loads configuration from CLIPSENSE_* environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = strings.ToLower(getEnvOrDefault("CLIPSENSE_LLM_PROVIDER", "openai"))
	p.LLMAPIKey = getEnvOrDefault("CLIPSENSE_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("CLIPSENSE_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("CLIPSENSE_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("CLIPSENSE_LLM_TIMEOUT_SECONDS", 60)
	p.LLMMaxTokens = getEnvOrDefaultInt("CLIPSENSE_LLM_MAX_TOKENS", 2048)
	p.LLMTemperature = getEnvOrDefaultFloat("CLIPSENSE_LLM_TEMPERATURE", 0.7)

	p.CacheCapacity = getEnvOrDefaultInt("CLIPSENSE_CACHE_CAPACITY", 100)
	p.CacheTTLMinutes = getEnvOrDefaultInt("CLIPSENSE_CACHE_TTL_MINUTES", 60)
	p.MaxAttempts = getEnvOrDefaultInt("CLIPSENSE_MAX_ATTEMPTS", 3)
	p.RateLimit = getEnvOrDefaultFloat("CLIPSENSE_RATE_LIMIT", 0)
	p.RateBurst = getEnvOrDefaultInt("CLIPSENSE_RATE_BURST", 1)

	p.Mode = getEnvOrDefault("CLIPSENSE_MODE", "dev")
	p.Data = getEnvOrDefault("CLIPSENSE_DATA", "")
	p.ConfigDir = getEnvOrDefault("CLIPSENSE_CONFIG_DIR", "")
	p.CatalogFile = getEnvOrDefault("CLIPSENSE_CATALOG_FILE", "catalog.yaml")
	p.Driver = getEnvOrDefault("CLIPSENSE_DRIVER", "sqlite")
	p.DSN = getEnvOrDefault("CLIPSENSE_DSN", "")
	p.HistoryEnabled = getEnvOrDefaultBool("CLIPSENSE_HISTORY", true)

	p.LogLevel = getEnvOrDefault("CLIPSENSE_LOG_LEVEL", "warn")
	p.LogFormat = getEnvOrDefault("CLIPSENSE_LOG_FORMAT", "text")
}

// ApplyProviderDefaults fills the base URL and model from the provider table when unset.
func (p *Profile) ApplyProviderDefaults() {
	defaults, ok := llm.LookupDefaults(p.LLMProvider)
	if !ok {
		return
	}
	if p.LLMBaseURL == "" {
		p.LLMBaseURL = defaults.BaseURL
	}
	if p.LLMModel == "" {
		p.LLMModel = defaults.Model
	}
}

// EnsureCredentials reports ErrMissingAPIKey when the provider needs a key and none is set.
// Local ollama endpoints run without one.
func (p *Profile) EnsureCredentials() error {
	if p.LLMProvider == "ollama" || strings.TrimSpace(p.LLMAPIKey) != "" {
		return nil
	}
	return errors.Wrapf(ErrMissingAPIKey, "provider %s: set CLIPSENSE_LLM_API_KEY", p.LLMProvider)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func defaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve user config dir")
	}
	dir := filepath.Join(base, "clipsense")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		slog.Error("failed to create data directory", slog.String("data", dir), slog.String("error", err.Error()))
		return "", errors.Wrapf(err, "failed to create data folder %s", dir)
	}
	return dir, nil
}

// Validate normalizes the profile, applies provider defaults and resolves the data directory
// and history DSN.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	p.LLMProvider = strings.ToLower(strings.TrimSpace(p.LLMProvider))
	if p.LLMProvider == "" {
		p.LLMProvider = "openai"
	}
	if _, ok := llm.LookupDefaults(p.LLMProvider); !ok && p.LLMBaseURL == "" {
		return errors.Errorf("unknown LLM provider %q: set CLIPSENSE_LLM_BASE_URL for OpenAI-compatible endpoints", p.LLMProvider)
	}
	p.ApplyProviderDefaults()
	if p.LLMModel == "" {
		return errors.Errorf("LLM model is required for provider %q", p.LLMProvider)
	}

	if p.LLMTimeout <= 0 {
		p.LLMTimeout = 60
	}
	if p.LLMTemperature < 0 || p.LLMTemperature > 2 {
		return errors.Errorf("LLM temperature must be within [0, 2]: %v", p.LLMTemperature)
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.CacheCapacity <= 0 {
		p.CacheCapacity = 100
	}
	if p.CacheTTLMinutes <= 0 {
		p.CacheTTLMinutes = 60
	}
	if p.RateLimit < 0 {
		return errors.Errorf("rate limit cannot be negative: %v", p.RateLimit)
	}
	if p.RateBurst <= 0 {
		p.RateBurst = 1
	}

	var err error
	if p.Data == "" {
		p.Data, err = defaultDataDir()
	} else {
		p.Data, err = checkDataDir(p.Data)
	}
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	if p.ConfigDir == "" {
		p.ConfigDir = p.Data
	}

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" {
		return errors.Errorf("unsupported history driver %q", p.Driver)
	}
	if p.DSN == "" {
		p.DSN = filepath.Join(p.Data, fmt.Sprintf("clipsense_%s.db", p.Mode))
	}

	return nil
}
