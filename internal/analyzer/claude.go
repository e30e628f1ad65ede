package analyzer

import (
	"context"
	"strings"

	"github.com/harrison/secrev/internal/claude"
)

// Claude reviews chunks through the Claude CLI
type Claude struct {
	Invoker *claude.Invoker
}

// NewClaude wraps inv
func NewClaude(inv *claude.Invoker) *Claude {
	return &Claude{Invoker: inv}
}

// Analyze sends the rendered prompt to the CLI and returns its result text
func (c *Claude) Analyze(ctx context.Context, displayPath, content string) (string, error) {
	prompt, err := BuildPrompt(displayPath, content)
	if err != nil {
		return "", err
	}
	resp, err := c.Invoker.Invoke(ctx, claude.Request{Prompt: prompt})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Content, nil
}
