package generation

import (
	"os"
	"strings"
)

const (
	// EnvCopilotMode is the environment variable name for mode selection.
	EnvCopilotMode = "COPILOT_MODE"
	// ModeMock selects the offline generator.
	ModeMock = "MOCK"
)

// NewGenerator returns a MockGenerator when mock mode is set in config or in
// COPILOT_MODE, otherwise an OpenAIGenerator. A missing API key is not an
// error here; each call then fails with not_configured.
func NewGenerator(config *Config, log Logger) Generator {
	mode := config.Mode
	if mode == "" {
		mode = os.Getenv(EnvCopilotMode)
	}

	if strings.EqualFold(mode, ModeMock) {
		log.Info("mock mode detected, using mock generator", map[string]interface{}{
			"mode": ModeMock,
		})
		return NewMockGenerator()
	}

	if !config.Configured() {
		log.Warn("OPENAI_API_KEY not set, drafts will use the fallback", nil)
	}
	return NewOpenAIGenerator(config, log)
}
