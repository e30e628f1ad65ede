package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/harrison/secrev/internal/cache"
	"github.com/spf13/cobra"
)

// NewCacheCommand creates the 'secrev cache' parent command
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the analysis response cache",
		Long: `Commands for the SQLite cache used by 'secrev scan --cache'.

The cache stores one analysis response per chunk, keyed by provider, model
and chunk content. It lives in $SECREV_HOME/cache.db unless cache.path is
configured.`,
	}

	cmd.PersistentFlags().String("db-path", "", "Path to the cache database (default: from config)")
	cmd.PersistentFlags().String("config", "", "Path to config file (default: .secrev/config.yaml)")

	cmd.AddCommand(newCacheStatsCommand())
	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE:  runCacheStats,
	}
}

func newCacheClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached response",
		Args:  cobra.NoArgs,
		RunE:  runCacheClear,
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// cacheDBPath resolves --db-path or the configured cache location
func cacheDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db-path"); p != "" {
		return p, nil
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	p, err := cfg.GetCacheDBPath()
	if err != nil {
		return "", fmt.Errorf("failed to resolve cache path: %w", err)
	}
	return p, nil
}

// openExistingCache opens the cache at dbPath, or returns nil when no cache
// has been created yet
func openExistingCache(dbPath string) (*cache.Store, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, nil
	}
	store, err := cache.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analysis cache: %w", err)
	}
	return store, nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()
	dbPath, err := cacheDBPath(cmd)
	if err != nil {
		return err
	}

	store, err := openExistingCache(dbPath)
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Fprintf(output, "No analysis cache found at: %s\n", dbPath)
		return nil
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("get statistics: %w", err)
	}

	header := color.New(color.Bold)
	header.Fprintln(output, "=== Analysis Cache ===")
	fmt.Fprintf(output, "Database: %s\n", dbPath)
	if version, err := store.GetLatestVersion(); err == nil {
		fmt.Fprintf(output, "Schema version: %d\n", version)
	}
	if info, err := os.Stat(dbPath); err == nil {
		fmt.Fprintf(output, "Size: %s\n", humanize.Bytes(uint64(info.Size())))
	}
	fmt.Fprintf(output, "Entries: %s\n", humanize.Comma(int64(stats.Entries)))
	fmt.Fprintf(output, "Hits: %s\n", humanize.Comma(int64(stats.Hits)))

	if len(stats.Providers) > 0 {
		providers := make([]string, 0, len(stats.Providers))
		for p := range stats.Providers {
			providers = append(providers, p)
		}
		sort.Strings(providers)
		fmt.Fprintln(output, "By provider:")
		for _, p := range providers {
			fmt.Fprintf(output, "  %s: %d\n", p, stats.Providers[p])
		}
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()
	dbPath, err := cacheDBPath(cmd)
	if err != nil {
		return err
	}

	store, err := openExistingCache(dbPath)
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Fprintf(output, "No analysis cache found at: %s\n", dbPath)
		return nil
	}
	defer store.Close()

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		fmt.Fprintf(output, "WARNING: This will delete ALL cached analysis responses in %s.\n", dbPath)
		if !confirmAction(cmd.InOrStdin(), output) {
			fmt.Fprintln(output, "Operation cancelled.")
			return nil
		}
	}

	n, err := store.Clear(cmd.Context())
	if err != nil {
		return err
	}
	entryText := "entry"
	if n != 1 {
		entryText = "entries"
	}
	fmt.Fprintf(output, "Deleted %d %s.\n", n, entryText)
	return nil
}

// confirmAction prompts for a yes/no answer on in
func confirmAction(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "Continue? [y/N]: ")
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}
