package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/secrev/internal/analyzer"
	"github.com/harrison/secrev/internal/cache"
	"github.com/harrison/secrev/internal/config"
	"github.com/harrison/secrev/internal/display"
	"github.com/harrison/secrev/internal/fileutil"
	"github.com/harrison/secrev/internal/logger"
	"github.com/harrison/secrev/internal/report"
	"github.com/harrison/secrev/internal/review"
	"github.com/harrison/secrev/internal/scan"
	"github.com/spf13/cobra"
)

// NewScanCommand creates the 'secrev scan' command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Review a codebase for security vulnerabilities",
		Long: `Scan discovers relevant files under a directory, lets you review the
selection interactively, then sends each file in chunks to the analysis
provider and writes the findings to timestamped reports.

The gemini provider needs an API key: --api-key, SECREV_API_KEY or
GOOGLE_API_KEY (environment or a .env file in the working directory).
The claude provider uses the local Claude CLI instead.`,
		Example: `  # Interactive review, default Gemini model
  secrev scan -d ./myapp

  # Non-interactive, custom report name, no character limit
  secrev scan -d ./myapp -y -o myapp_review --max-total-chars 0

  # Use the Claude CLI and cache responses between runs
  secrev scan -d ./myapp --provider claude -m sonnet --cache`,
		Args: cobra.NoArgs,
		RunE: runScan,
	}

	addFilterFlags(cmd)
	cmd.Flags().StringP("model", "m", config.DefaultModel, "Model name for the analysis provider")
	cmd.Flags().StringP("api-key", "k", "", "Google API key (overrides environment and .env)")
	cmd.Flags().String("provider", config.DefaultProvider, "Analysis provider: gemini or claude")
	cmd.Flags().StringP("output-file-base", "o", "",
		fmt.Sprintf("Base name for the report files (default: %s)", config.DefaultReportBaseName))
	cmd.Flags().String("reports-dir", config.DefaultReportsDir, "Directory to save report files")
	cmd.Flags().Int("chunk-size", config.DefaultChunkSize, "Max characters per code chunk sent for analysis")
	cmd.Flags().Int("max-total-chars", config.DefaultMaxTotalChars,
		"Safety limit on total characters processed, 0 for no limit")
	cmd.Flags().BoolP("yes", "y", false, "Skip the interactive file review")
	cmd.Flags().Bool("html", false, "Also write an HTML report")
	cmd.Flags().Bool("cache", false, "Reuse cached analysis responses for unchanged chunks")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for scan log files (default: .secrev/logs)")
	cmd.Flags().Bool("verbose", false, "Show detailed progress (same as --log-level debug)")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cfg.MergeWithFlags(config.FlagOverrides{
		Provider:          stringFlag(cmd, "provider"),
		Model:             stringFlag(cmd, "model"),
		ChunkSize:         intFlag(cmd, "chunk-size"),
		MaxTotalChars:     intFlag(cmd, "max-total-chars"),
		SkipReview:        boolFlag(cmd, "yes"),
		IncludeExtensions: includeOverride(cmd),
		ReportsDir:        stringFlag(cmd, "reports-dir"),
		ReportBaseName:    stringFlag(cmd, "output-file-base"),
		HTML:              boolFlag(cmd, "html"),
		Cache:             boolFlag(cmd, "cache"),
		LogLevel:          stringFlag(cmd, "log-level"),
		LogDir:            stringFlag(cmd, "log-dir"),
	})
	cfg.ResolveModel()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dir, _ := cmd.Flags().GetString("directory")
	root, err := fileutil.ResolveRoot(dir)
	if err != nil {
		return fmt.Errorf("directory not found: %s: %w", dir, err)
	}

	var apiKey string
	if cfg.Analysis.Provider == "gemini" {
		flagKey, _ := cmd.Flags().GetString("api-key")
		apiKey, err = config.LoadAPIKey(flagKey, ".")
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	log := &multiLogger{loggers: []scanLogger{logger.NewConsoleLogger(out, cfg.LogLevel)}}
	var fileLog *logger.FileLogger
	if cfg.LogDir != "" {
		fileLog, err = logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLog.Close()
		log.loggers = append(log.loggers, fileLog)
	}

	a, err := analyzer.New(cfg.Analysis, apiKey, log)
	if err != nil {
		return fmt.Errorf("failed to configure analysis provider: %w", err)
	}
	var cached *analyzer.Cached
	if cfg.Cache.Enabled {
		dbPath, err := cfg.GetCacheDBPath()
		if err != nil {
			return fmt.Errorf("failed to resolve cache path: %w", err)
		}
		store, err := cache.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open analysis cache: %w", err)
		}
		defer store.Close()
		cached = analyzer.NewCached(a, store, cfg.Analysis.Provider, cfg.Analysis.Model, log)
		a = cached
	}

	fmt.Fprintf(out, "[*] Using LLM Model: %s\n", cfg.Analysis.Model)

	files, err := discover(out, root, discoverOptions(cmd, cfg))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "[*] No files initially found to scan based on the criteria. Exiting.")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Scan.SkipReview {
		fmt.Fprintf(out, "[*] Skipping interactive review. Proceeding with all %d initially discovered files.\n", len(files))
	} else {
		res, err := review.Run(ctx, files, bufio.NewReader(cmd.InOrStdin()), out)
		if err != nil {
			return err
		}
		if res.Outcome == review.Cancelled {
			return nil
		}
		files = res.Files
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "[*] No files selected for analysis after review. Exiting.")
		return nil
	}

	scanID := uuid.NewString()
	session := scan.NewSession(scanID, root, a, cfg.Scan.ChunkSize, cfg.Scan.MaxTotalChars, log)
	session.Provider = cfg.Analysis.Provider
	session.Model = cfg.Analysis.Model

	result, runErr := session.Run(ctx, files)
	if runErr != nil {
		fmt.Fprintln(out, "\n[*] Scan aborted by user (Ctrl+C). Writing a report of the findings so far.")
	}
	if len(result.Unreached) > 0 {
		display.WarnUnreachedFiles(cfg.Scan.MaxTotalChars, result.Unreached).Display(errOut)
	}

	rep := report.Build(result.Findings, time.Now(), scanID)
	report.PrintSummary(out, rep)

	writer := &report.Writer{
		Dir:      cfg.Report.Dir,
		BaseName: report.BaseNameFrom(cfg.Report.BaseName, config.DefaultReportBaseName),
		HTML:     cfg.Report.HTML,
	}
	paths, err := writer.Write(context.WithoutCancel(ctx), rep)
	printReportPaths(out, paths)
	if err != nil {
		log.LogError(err.Error())
		display.WarnReportWrite(err, nil).Display(errOut)
	}

	fmt.Fprintf(out, "\n[*] Secrev scan complete. Total characters processed: %d\n", result.Summary.CharsProcessed)
	if cached != nil {
		hits, misses := cached.Counts()
		log.LogInfo(fmt.Sprintf("Analysis cache: %d hit(s), %d miss(es)", hits, misses))
	}
	if fileLog != nil {
		fmt.Fprintf(out, "Logs written to: %s\n", fileLog.Path())
	}
	return nil
}

func printReportPaths(out io.Writer, paths report.Paths) {
	for _, p := range []struct{ label, path string }{
		{"Markdown", paths.Markdown},
		{"Text", paths.Text},
		{"HTML", paths.HTML},
	} {
		if p.path == "" {
			continue
		}
		abs, err := filepath.Abs(p.path)
		if err != nil {
			abs = p.path
		}
		fmt.Fprintf(out, "[*] %s report saved to: %s\n", p.label, abs)
	}
}
