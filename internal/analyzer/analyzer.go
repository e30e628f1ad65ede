// Package analyzer sends code chunks to a language model for security
// review and returns the model's free-form findings.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harrison/secrev/internal/budget"
	"github.com/harrison/secrev/internal/claude"
	"github.com/harrison/secrev/internal/config"
)

var (
	// ErrBlocked is returned when the provider refused to generate content
	ErrBlocked = errors.New("content generation blocked")
	// ErrEmptyResponse is returned when the provider produced no text
	ErrEmptyResponse = errors.New("received an empty response")
)

// Analyzer reviews one chunk of file content. displayPath names the chunk
// in the prompt, e.g. "app/main.py (Chunk 2/3)".
type Analyzer interface {
	Analyze(ctx context.Context, displayPath, content string) (string, error)
}

// Func adapts a plain function to the Analyzer interface
type Func func(ctx context.Context, displayPath, content string) (string, error)

// Analyze calls f
func (f Func) Analyze(ctx context.Context, displayPath, content string) (string, error) {
	return f(ctx, displayPath, content)
}

// New builds the analyzer for the configured provider. apiKey is only used
// by the gemini provider.
func New(cfg config.AnalysisConfig, apiKey string, logger budget.WaiterLogger) (Analyzer, error) {
	switch cfg.Provider {
	case "gemini":
		if apiKey == "" {
			return nil, config.ErrMissingAPIKey
		}
		g := NewGemini(cfg.Endpoint, cfg.Model, apiKey)
		g.Temperature = cfg.Temperature
		g.Timeout = cfg.Timeout
		g.Logger = logger
		return g, nil
	case "claude":
		inv := claude.NewInvoker(cfg.Model)
		if cfg.ClaudePath != "" {
			inv.ClaudePath = cfg.ClaudePath
		}
		inv.Timeout = cfg.Timeout
		inv.Logger = logger
		return NewClaude(inv), nil
	default:
		return nil, fmt.Errorf("unknown analysis provider %q", cfg.Provider)
	}
}

// rateLimitWaiter is shared by the backends that retry after a 429
func rateLimitWaiter(maxWait, buffer time.Duration, logger budget.WaiterLogger) *budget.RateLimitWaiter {
	return budget.NewRateLimitWaiter(maxWait, 15*time.Second, buffer, logger)
}
