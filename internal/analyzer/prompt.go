package analyzer

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed security_review.tmpl
var securityReviewTemplate string

var promptTemplate = template.Must(template.New("security_review").Parse(securityReviewTemplate))

type promptData struct {
	Path string
	Code string
}

// BuildPrompt renders the security review prompt for one chunk
func BuildPrompt(displayPath, content string) (string, error) {
	var b strings.Builder
	if err := promptTemplate.Execute(&b, promptData{Path: displayPath, Code: content}); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return b.String(), nil
}
