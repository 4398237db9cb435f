package generation

import "time"

const (
	DefaultModel       = "gpt-4.1-mini"
	DefaultTemperature = 0.2
	DefaultTimeout     = 30 * time.Second
)

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Mode        string
}

func LoadConfig() *Config {
	return &Config{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
}

// Configured reports whether a provider credential is present.
func (c *Config) Configured() bool {
	return c != nil && c.APIKey != ""
}

func (c *Config) temperature() float64 {
	switch {
	case c.Temperature < 0:
		return 0
	case c.Temperature > 1:
		return 1
	default:
		return c.Temperature
	}
}
