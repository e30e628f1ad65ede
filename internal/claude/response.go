package claude

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// cliResult is the subset of the CLI's --output-format json payload we use
type cliResult struct {
	Type      string `json:"type"`
	Result    string `json:"result"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error"`
	Error     string `json:"error"`
	SessionID string `json:"session_id"`
}

// ParseResponse extracts the response text and session ID from CLI output.
// JSON output is read from its result or content field; output that carries
// no JSON object is returned as plain text.
func ParseResponse(raw []byte) (string, string, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", "", nil
	}

	var res cliResult
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		extracted := ExtractJSON(text)
		if extracted == "" || json.Unmarshal([]byte(extracted), &res) != nil {
			return text, "", nil
		}
	}

	if res.IsError {
		msg := res.Error
		if msg == "" {
			msg = res.Result
		}
		return "", res.SessionID, fmt.Errorf("claude reported an error: %s", msg)
	}
	if res.Error != "" && res.Result == "" && res.Content == "" {
		return "", res.SessionID, errors.New("claude reported an error: " + res.Error)
	}

	content := res.Result
	if content == "" {
		content = res.Content
	}
	return content, res.SessionID, nil
}

// ExtractJSON returns the substring between the first '{' and the last '}',
// or "" when there is none
func ExtractJSON(content string) string {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return ""
}

// truncate returns s truncated to maxLen bytes with "..." suffix if needed
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
