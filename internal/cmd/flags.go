package cmd

import (
	"fmt"

	"github.com/harrison/secrev/internal/config"
	"github.com/harrison/secrev/internal/fileutil"
	"github.com/spf13/cobra"
)

// addFilterFlags registers the directory and file selection flags shared by
// scan and discover
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("directory", "d", "", "Path to the codebase directory to scan")
	cmd.Flags().StringSlice("include-extensions", nil,
		"Comma-separated file extensions/names to include (e.g. .py,.js,Dockerfile).\nReplaces the built-in set.")
	cmd.Flags().StringSlice("exclude-extensions", nil,
		"Comma-separated file extensions to exclude. Adds to the built-in set.")
	cmd.Flags().StringSlice("exclude-files", nil,
		"Comma-separated file or directory names to exclude. Adds to the built-in set.")
	cmd.Flags().String("config", "", "Path to config file (default: .secrev/config.yaml)")
	_ = cmd.MarkFlagRequired("directory")
}

// loadConfig reads --config, or .secrev/config.yaml in the working directory
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// discoverOptions layers the exclusion flags onto the configured filters.
// The include flag has already been merged into cfg.
func discoverOptions(cmd *cobra.Command, cfg *config.Config) fileutil.DiscoverOptions {
	excludeExt, _ := cmd.Flags().GetStringSlice("exclude-extensions")
	excludeFiles, _ := cmd.Flags().GetStringSlice("exclude-files")
	return fileutil.DiscoverOptions{
		Defaults: fileutil.RuleDefaults{
			IncludeExtensions: cfg.Filters.IncludeExtensions,
			ExcludeExtensions: cfg.Filters.ExcludeExtensions,
			ExcludePatterns:   cfg.Filters.ExcludePatterns,
		},
		ExcludeExtensions: excludeExt,
		ExcludePatterns:   excludeFiles,
	}
}

// includeOverride returns the normalized --include-extensions value, or nil
// when the flag is unset or holds no usable entry
func includeOverride(cmd *cobra.Command) []string {
	if !cmd.Flags().Changed("include-extensions") {
		return nil
	}
	include, _ := cmd.Flags().GetStringSlice("include-extensions")
	normalized := fileutil.NormalizeExtensions(include)
	if len(normalized) == 0 {
		return nil
	}
	return normalized
}

func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func intFlag(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func boolFlag(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}
