package llm

import (
	"TrendPress/internal/config"
	"TrendPress/internal/ports"
)

// New selects the configured generation backend. A nil result means no backend is
// configured and every generation call degrades to fallback content.
func New(cfg config.BackendConfig) ports.Backend {
	if cfg.APIKey == "" {
		return nil
	}
	switch cfg.Provider {
	case config.ProviderClaude:
		return NewClaudeClient(cfg)
	default:
		return NewChatGPTClient(cfg)
	}
}
