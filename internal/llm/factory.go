package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates the configured provider. An empty provider name
// returns nil: scripts then come from the template writer alone.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	case "api":
		if config.API == nil {
			return nil, fmt.Errorf("LLM provider api needs the ClarifAI API, which is not used in demo mode")
		}
		return NewAPIProvider(config.API), nil
	case "", "template":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama, api)", config.Provider)
	}
}
