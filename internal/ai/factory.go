package ai

import (
	"fmt"

	"github.com/lucasverdier/reelforge/internal/ai/gemini"
	"github.com/lucasverdier/reelforge/internal/ai/mock"
	"github.com/lucasverdier/reelforge/internal/config"
	"github.com/lucasverdier/reelforge/pkg/models"
)

// NewProvider constructs the appropriate AI provider based on config.
// Called once at server startup.
func NewProvider(cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewProvider(cfg.Gemini), nil
	case "mock":
		return mock.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of gemini, mock", cfg.Provider)
	}
}
