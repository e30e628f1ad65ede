package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for secrev
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrev",
		Short: "AI-assisted code security review",
		Long: `Secrev walks a codebase, lets you review which files to include,
and sends the selected code to a language model for a security review.

Findings are collected into timestamped Markdown and text reports. They are
potential vulnerabilities and require human verification.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewDiscoverCommand())
	cmd.AddCommand(NewCacheCommand())

	return cmd
}
