package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/secrev/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedCache creates a cache database at dbPath holding the given entries
func seedCache(t *testing.T, dbPath string, entries ...cache.Entry) {
	t.Helper()
	store, err := cache.NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
	for _, e := range entries {
		require.NoError(t, store.Put(context.Background(), e))
	}
}

func TestCacheStats(t *testing.T) {
	t.Run("no cache yet", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "cache.db")

		out, _, err := executeCommand(t, "", "cache", "stats", "--db-path", dbPath)
		require.NoError(t, err)
		assert.Contains(t, out, "No analysis cache found at: "+dbPath)
		assert.NoFileExists(t, dbPath)
	})

	t.Run("populated", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "cache.db")
		seedCache(t, dbPath,
			cache.Entry{Key: cache.Key("gemini", "m", "a.py", "a"), Provider: "gemini", Model: "m", Response: "r1"},
			cache.Entry{Key: cache.Key("gemini", "m", "b.py", "b"), Provider: "gemini", Model: "m", Response: "r2"},
			cache.Entry{Key: cache.Key("claude", "sonnet", "a.py", "a"), Provider: "claude", Model: "sonnet", Response: "r3"},
		)

		out, _, err := executeCommand(t, "", "cache", "stats", "--db-path", dbPath)
		require.NoError(t, err)
		assert.Contains(t, out, "=== Analysis Cache ===")
		assert.Contains(t, out, "Database: "+dbPath)
		assert.Contains(t, out, "Schema version: 1")
		assert.Contains(t, out, "Entries: 3")
		assert.Contains(t, out, "Hits: 0")
		assert.Contains(t, out, "  claude: 1\n  gemini: 2")
	})
}

func TestCacheClear(t *testing.T) {
	entries := []cache.Entry{
		{Key: cache.Key("gemini", "m", "a.py", "a"), Provider: "gemini", Model: "m", Response: "r1"},
		{Key: cache.Key("gemini", "m", "b.py", "b"), Provider: "gemini", Model: "m", Response: "r2"},
	}

	tests := []struct {
		name        string
		stdin       string
		args        []string
		wantOut     string
		wantEntries int
	}{
		{"confirmed", "y\n", nil, "Deleted 2 entries.", 0},
		{"declined", "n\n", nil, "Operation cancelled.", 2},
		{"no input", "", nil, "Operation cancelled.", 2},
		{"skip prompt", "", []string{"--yes"}, "Deleted 2 entries.", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := filepath.Join(t.TempDir(), "cache.db")
			seedCache(t, dbPath, entries...)

			args := append([]string{"cache", "clear", "--db-path", dbPath}, tt.args...)
			out, _, err := executeCommand(t, tt.stdin, args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantOut)
			if tt.args == nil {
				assert.Contains(t, out, "WARNING: This will delete ALL cached analysis responses")
			}

			store, err := cache.NewStore(dbPath)
			require.NoError(t, err)
			defer store.Close()
			stats, err := store.Stats(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantEntries, stats.Entries)
		})
	}
}

func TestCacheClearMissing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	out, _, err := executeCommand(t, "y\n", "cache", "clear", "--db-path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No analysis cache found at: "+dbPath)
}

func TestConfirmAction(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		if got := confirmAction(strings.NewReader(tt.input), &out); got != tt.want {
			t.Errorf("confirmAction(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Continue? [y/N]: ") {
			t.Errorf("confirmAction(%q) did not prompt", tt.input)
		}
	}
}
