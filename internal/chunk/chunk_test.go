package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		content string
		size    int
		want    []string
	}{
		{"exact multiple", "abcdef", 3, []string{"abc", "def"}},
		{"short final chunk", "abcdefg", 3, []string{"abc", "def", "g"}},
		{"smaller than size", "ab", 10, []string{"ab"}},
		{"empty content", "", 5, []string{}},
		{"chunking disabled", "abcdef", 0, []string{"abcdef"}},
		{"negative size disables", "abc", -1, []string{"abc"}},
		{"multibyte runes", "héllo wörld", 4, []string{"héll", "o wö", "rld"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.content, tt.size))
		})
	}
}

func TestSplitProperties(t *testing.T) {
	content := strings.Repeat("ä1b2c3", 1234)
	for _, size := range []int{1, 7, 100, 4096, len(content) * 2} {
		chunks := Split(content, size)

		assert.Equal(t, content, strings.Join(chunks, ""), "size %d: concatenation", size)

		n := Len(content)
		wantCount := (n + size - 1) / size
		require.Len(t, chunks, wantCount, "size %d: chunk count", size)

		for i, c := range chunks {
			if i < len(chunks)-1 {
				assert.Equal(t, size, Len(c), "size %d: chunk %d length", size, i)
			} else {
				assert.LessOrEqual(t, Len(c), size)
				assert.Positive(t, Len(c))
			}
		}
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" \n\t "))
	assert.False(t, IsBlank(" x "))
}

func TestDisplayPath(t *testing.T) {
	assert.Equal(t, "src/a.py", DisplayPath("src/a.py", 0, 1))
	assert.Equal(t, "src/a.py (Chunk 2/3)", DisplayPath("src/a.py", 1, 3))
}
