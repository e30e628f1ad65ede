package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/harrison/secrev/internal/config"
	"github.com/harrison/secrev/internal/fileutil"
	"github.com/spf13/cobra"
)

// NewDiscoverCommand creates the 'secrev discover' command
func NewDiscoverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List the files a scan would consider, without analyzing them",
		Long: `Discover walks the directory with the same include and exclude rules as
scan and prints the candidate files. Nothing is sent for analysis.`,
		Example: `  secrev discover -d ./myapp
  secrev discover -d ./myapp --include-extensions .go,.sql --exclude-files vendor`,
		Args: cobra.NoArgs,
		RunE: runDiscover,
	}

	addFilterFlags(cmd)
	return cmd
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.MergeWithFlags(config.FlagOverrides{IncludeExtensions: includeOverride(cmd)})

	dir, _ := cmd.Flags().GetString("directory")
	root, err := fileutil.ResolveRoot(dir)
	if err != nil {
		return fmt.Errorf("directory not found: %s: %w", dir, err)
	}

	out := cmd.OutOrStdout()
	files, err := discover(out, root, discoverOptions(cmd, cfg))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "[*] No files found to scan based on the criteria.")
		return nil
	}

	var total int64
	fmt.Fprintf(out, "\nFound %d files matching current criteria:\n", len(files))
	for i, f := range files {
		size := "?"
		if info, err := os.Stat(f.AbsPath); err == nil {
			total += info.Size()
			size = humanize.Bytes(uint64(info.Size()))
		}
		fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, f.RelPath, size)
	}
	fmt.Fprintf(out, "\n[*] %d candidate file(s), %s in total.\n", len(files), humanize.Bytes(uint64(total)))
	return nil
}

// discover runs discovery and prints the effective rule sets the way a scan
// announces them
func discover(out io.Writer, root string, opts fileutil.DiscoverOptions) ([]fileutil.CandidateFile, error) {
	fmt.Fprintf(out, "[*] Starting file discovery in: %s\n", root)
	files, rules, err := fileutil.Discover(root, opts)
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}
	fmt.Fprintf(out, "    Including extensions/names: %s\n", setString(rules.Include))
	fmt.Fprintf(out, "    Excluding extensions: %s\n", setString(rules.ExcludeExtensions))
	fmt.Fprintf(out, "    Excluding names/patterns: %s\n", setString(rules.ExcludePatterns))
	fmt.Fprintf(out, "[*] Discovered %d potentially relevant files initially.\n", len(files))
	return files, nil
}

func setString(set map[string]bool) string {
	items := make([]string, 0, len(set))
	for item := range set {
		items = append(items, item)
	}
	sort.Strings(items)
	return "{" + strings.Join(items, ", ") + "}"
}
