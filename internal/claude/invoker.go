// Package claude runs prompts through the Claude CLI in non-interactive mode.
package claude

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/harrison/secrev/internal/budget"
)

// ErrEmptyPrompt is returned when a request carries no prompt
var ErrEmptyPrompt = errors.New("prompt is required")

// Invoker is a reusable client for the Claude CLI.
// Create once, use many times. Safe for concurrent use.
type Invoker struct {
	// ClaudePath is the CLI binary. Defaults to "claude" (found in PATH).
	ClaudePath string

	// Model is passed with --model when set
	Model string

	// Timeout bounds a single invocation. Zero means no timeout beyond ctx.
	Timeout time.Duration

	// SystemPrompt is sent with --system-prompt when set
	SystemPrompt string

	// Logger receives rate limit countdown updates. Can be nil.
	Logger budget.WaiterLogger

	// MaxRateLimitWait is the longest reset wait accepted before giving up
	MaxRateLimitWait time.Duration
}

// Request holds per-invocation input
type Request struct {
	Prompt string
}

// Response holds the output of one invocation
type Response struct {
	// RawOutput is the CLI output as captured
	RawOutput []byte
	// Content is the response text extracted from RawOutput
	Content string
	// SessionID is the CLI session identifier, when reported
	SessionID string
}

// NewInvoker creates an Invoker with default settings
func NewInvoker(model string) *Invoker {
	return &Invoker{
		ClaudePath:       "claude",
		Model:            model,
		MaxRateLimitWait: 15 * time.Minute,
	}
}

// Invoke runs the CLI once, and on a rate limit waits for the reset and
// retries once
func (inv *Invoker) Invoke(ctx context.Context, req Request) (*Response, error) {
	if req.Prompt == "" {
		return nil, ErrEmptyPrompt
	}

	resp, err := inv.invokeWithTimeout(ctx, req)
	if err == nil {
		return resp, nil
	}

	info := budget.ParseRateLimitFromOutput(err.Error())
	if info == nil {
		return nil, err
	}
	waiter := budget.NewRateLimitWaiter(inv.MaxRateLimitWait, 15*time.Second, 5*time.Second, inv.Logger)
	if !waiter.ShouldWait(info) {
		return nil, fmt.Errorf("rate limit reset in %s exceeds wait limit: %w", info.TimeUntilReset().Round(time.Second), err)
	}
	if waitErr := waiter.WaitForReset(ctx, info); waitErr != nil {
		return nil, waitErr
	}
	return inv.invokeWithTimeout(ctx, req)
}

func (inv *Invoker) invokeWithTimeout(ctx context.Context, req Request) (*Response, error) {
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}
	return inv.invoke(ctx, req)
}

// Args returns the CLI arguments for req
func (inv *Invoker) Args(req Request) []string {
	args := []string{}
	if inv.SystemPrompt != "" {
		args = append(args, "--system-prompt", inv.SystemPrompt)
	}
	args = append(args, "-p", req.Prompt)
	args = append(args, "--output-format", "json")
	if inv.Model != "" {
		args = append(args, "--model", inv.Model)
	}
	// Disable hooks for automation
	args = append(args, "--settings", `{"disableAllHooks": true}`)
	return args
}

func (inv *Invoker) invoke(ctx context.Context, req Request) (*Response, error) {
	claudePath := inv.ClaudePath
	if claudePath == "" {
		claudePath = "claude"
	}

	cmd := exec.CommandContext(ctx, claudePath, inv.Args(req)...)
	SetCleanEnv(cmd)
	cmd.WaitDelay = 2 * time.Second

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("claude invocation failed: %w (output: %s)", err, truncate(string(output), 500))
	}

	content, sessionID, err := ParseResponse(output)
	if err != nil {
		return nil, err
	}
	return &Response{RawOutput: output, Content: content, SessionID: sessionID}, nil
}
