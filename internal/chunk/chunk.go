// Package chunk splits file content into size-bounded windows for analysis.
package chunk

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Split cuts content into contiguous, non-overlapping windows of exactly
// size characters (Unicode code points); the final window may be shorter.
// A size <= 0 disables chunking and returns content as a single chunk.
// Concatenating the result reproduces content exactly.
func Split(content string, size int) []string {
	if size <= 0 {
		return []string{content}
	}

	chunks := make([]string, 0, utf8.RuneCountInString(content)/size+1)
	start, count := 0, 0
	for i := range content {
		if count == size {
			chunks = append(chunks, content[start:i])
			start, count = i, 0
		}
		count++
	}
	if start < len(content) {
		chunks = append(chunks, content[start:])
	}
	return chunks
}

// Len returns the length of s in characters, the unit budgets are measured in
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// IsBlank reports whether s is empty or whitespace only
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// DisplayPath labels a chunk for the analysis prompt. Single-chunk files
// use the plain relative path.
func DisplayPath(relPath string, index, total int) string {
	if total <= 1 {
		return relPath
	}
	return fmt.Sprintf("%s (Chunk %d/%d)", relPath, index+1, total)
}
