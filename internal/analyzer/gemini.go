package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harrison/secrev/internal/budget"
	"github.com/hashicorp/go-cleanhttp"
)

// maxErrorBody caps how much of an error response is kept in messages
const maxErrorBody = 2048

// Gemini calls the Gemini generateContent REST endpoint
type Gemini struct {
	Endpoint    string
	Model       string
	APIKey      string
	Temperature float64

	// Timeout bounds a single request. Zero means no timeout beyond ctx.
	Timeout time.Duration

	Client *http.Client

	// Logger receives rate limit countdown updates. Can be nil.
	Logger budget.WaiterLogger

	// MaxRateLimitWait is the longest reset wait accepted before giving up
	MaxRateLimitWait time.Duration

	// RateLimitBuffer is added to every rate limit wait
	RateLimitBuffer time.Duration
}

// NewGemini creates a Gemini client with a pooled cleanhttp transport
func NewGemini(endpoint, model, apiKey string) *Gemini {
	return &Gemini{
		Endpoint:         strings.TrimRight(endpoint, "/"),
		Model:            model,
		APIKey:           apiKey,
		Temperature:      0.2,
		Client:           cleanhttp.DefaultPooledClient(),
		MaxRateLimitWait: 5 * time.Minute,
		RateLimitBuffer:  2 * time.Second,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason        string `json:"blockReason"`
		BlockReasonMessage string `json:"blockReasonMessage"`
	} `json:"promptFeedback"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Analyze sends the chunk for review. A 429 response is waited out once
// if the reset is within MaxRateLimitWait.
func (g *Gemini) Analyze(ctx context.Context, displayPath, content string) (string, error) {
	prompt, err := BuildPrompt(displayPath, content)
	if err != nil {
		return "", err
	}

	text, limit, err := g.generate(ctx, prompt)
	if limit == nil {
		return text, err
	}

	waiter := rateLimitWaiter(g.MaxRateLimitWait, g.RateLimitBuffer, g.Logger)
	if !waiter.ShouldWait(limit) {
		return "", fmt.Errorf("rate limited: reset in %v exceeds wait limit %v", limit.TimeUntilReset().Round(time.Second), g.MaxRateLimitWait)
	}
	if err := waiter.WaitForReset(ctx, limit); err != nil {
		return "", fmt.Errorf("rate limit wait interrupted: %w", err)
	}

	text, limit, err = g.generate(ctx, prompt)
	if limit != nil {
		return "", fmt.Errorf("still rate limited after waiting: %w", err)
	}
	return text, err
}

// generate performs one request. A non-nil RateLimitInfo means the call was
// rejected with 429.
func (g *Gemini) generate(ctx context.Context, prompt string) (string, *budget.RateLimitInfo, error) {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	}
	reqBody.GenerationConfig.Temperature = g.Temperature
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url(), bytes.NewReader(payload))
	if err != nil {
		return "", nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = cleanhttp.DefaultClient()
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("API returned %s: %s", resp.Status, errorMessage(body))
		return "", budget.FromResponse(resp.StatusCode, resp.Header, string(body)), err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return parsed.text()
}

func (g *Gemini) url() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.Endpoint, url.PathEscape(g.Model), url.QueryEscape(g.APIKey))
}

func (r *geminiResponse) text() (string, *budget.RateLimitInfo, error) {
	var b strings.Builder
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
		if b.Len() > 0 {
			return b.String(), nil, nil
		}
	}

	if fb := r.PromptFeedback; fb != nil && fb.BlockReason != "" {
		reason := fb.BlockReasonMessage
		if reason == "" {
			reason = fb.BlockReason
		}
		return "", nil, fmt.Errorf("%w. Reason: %s", ErrBlocked, reason)
	}
	return "", nil, ErrEmptyResponse
}

// errorMessage extracts the message of a Gemini error body, falling back to
// the raw body
func errorMessage(body []byte) string {
	var e geminiError
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
