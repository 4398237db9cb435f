// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml (optional), merges config.<APP_ENVIRONMENT>.yaml
// on top and applies environment overrides. A missing OpenAI key is not an
// error: drafts then degrade to the fallback.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	// server.port can be set as SERVER_PORT, rate_limit.backend as RATE_LIMIT_BACKEND
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	applyDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found walking from the working directory
// towards the module root. Existing environment variables are not replaced.
func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// applyDefaults registers every key so AutomaticEnv can resolve it even when
// no config file is present.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "support-copilot")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.mode", "")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", 15000)
	v.SetDefault("server.write_timeout", 60000)
	v.SetDefault("server.shutdown_timeout", 10000)
	v.SetDefault("server.body_limit", "1M")
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("web.host", "0.0.0.0")
	v.SetDefault("web.port", 3000)
	v.SetDefault("web.api_base", "")
	v.SetDefault("web.proxy_timeout", 45000)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4.1-mini")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.temperature", 0.2)
	v.SetDefault("openai.max_tokens", 0)
	v.SetDefault("openai.timeout", 30000)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.backend", RateLimitBackendMemory)
	v.SetDefault("rate_limit.requests_per_minute", 60)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("rate_limit.key_prefix", "copilot:ratelimit")

	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// applyEnvOverrides maps the conventional unprefixed variable names onto the
// config tree. They win over file values.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		cfg.OpenAI.APIKey = val
	}
	if val := os.Getenv("OPENAI_MODEL"); val != "" {
		cfg.OpenAI.Model = val
	}
	if val := os.Getenv("OPENAI_BASE_URL"); val != "" {
		cfg.OpenAI.BaseURL = val
	}
	if val := os.Getenv("HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}
	if val := os.Getenv("WEB_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Web.Port = port
		}
	}
	if val := os.Getenv("API_BASE"); val != "" {
		cfg.Web.APIBase = val
	}
	if val := os.Getenv("REDIS_ADDRESS"); val != "" {
		cfg.Database.Redis.Address = val
	}
	if val := os.Getenv("COPILOT_MODE"); val != "" {
		cfg.App.Mode = val
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if err := validatePort("server.port", cfg.Server.Port); err != nil {
		return err
	}
	if err := validatePort("web.port", cfg.Web.Port); err != nil {
		return err
	}

	if _, err := cfg.Server.TrustedNetworks(); err != nil {
		return fmt.Errorf("server.trusted_proxies: %w", err)
	}

	if cfg.OpenAI.Model == "" {
		return fmt.Errorf("openai.model is required")
	}
	if cfg.OpenAI.Temperature < 0 || cfg.OpenAI.Temperature > 1 {
		return fmt.Errorf("openai.temperature must be between 0 and 1, got %v", cfg.OpenAI.Temperature)
	}
	if cfg.OpenAI.Timeout <= 0 {
		return fmt.Errorf("openai.timeout must be positive")
	}

	if cfg.Web.APIBase != "" {
		u, err := url.Parse(cfg.Web.APIBase)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("web.api_base must be an absolute URL, got %q", cfg.Web.APIBase)
		}
	}

	if cfg.RateLimit.Enabled {
		switch cfg.RateLimit.Backend {
		case RateLimitBackendMemory:
		case RateLimitBackendRedis:
			if cfg.Database.Redis.Address == "" {
				return fmt.Errorf("database.redis.address is required for the redis rate limit backend")
			}
		default:
			return fmt.Errorf("rate_limit.backend must be %q or %q, got %q",
				RateLimitBackendMemory, RateLimitBackendRedis, cfg.RateLimit.Backend)
		}
		if cfg.RateLimit.RequestsPerMinute <= 0 {
			return fmt.Errorf("rate_limit.requests_per_minute must be positive")
		}
		if cfg.RateLimit.Burst < 0 {
			return fmt.Errorf("rate_limit.burst must not be negative")
		}
	}

	return nil
}

func validatePort(key string, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", key, port)
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
