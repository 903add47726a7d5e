package llm

import (
	"log/slog"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/config"
)

// NewLLMClient creates an LLM client for the configuration. Without an API key,
// or with LAUNCHPAD_MODE=MOCK, it returns a MockClient.
func NewLLMClient(cfg *config.Config) LLMClient {
	if cfg.MockLLM() {
		slog.Warn("LLM running in mock mode", "reason", mockReason(cfg))
		return NewMockClient()
	}

	return NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout)
}

func mockReason(cfg *config.Config) string {
	if cfg.Mode == config.ModeMock {
		return "LAUNCHPAD_MODE=MOCK"
	}
	return "LLM_API_KEY not set"
}
