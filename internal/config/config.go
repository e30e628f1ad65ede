package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values carried over from the original secrev tool.
const (
	DefaultProvider       = "gemini"
	DefaultModel          = "gemini-1.5-flash-latest"
	DefaultClaudeModel    = "sonnet"
	DefaultEndpoint       = "https://generativelanguage.googleapis.com"
	DefaultChunkSize      = 200000
	DefaultMaxTotalChars  = 5000000
	DefaultReportsDir     = "secrev_reports"
	DefaultReportBaseName = "secrev_scan"
)

// DefaultIncludeExtensions is the relevant-file set used when the caller
// supplies no explicit include list. Entries without a leading dot match
// whole basenames (e.g. "dockerfile").
var DefaultIncludeExtensions = []string{
	".py", ".js", ".ts", ".java", ".c", ".cpp", ".h", ".hpp", ".cs", ".go", ".rb", ".php",
	".html", ".htm", ".css", ".scss", ".less",
	".json", ".yaml", ".yml", ".xml", ".ini", ".toml", ".env",
	".sh", ".bash", ".ps1",
	".sql", ".md", ".txt",
	".dockerfile", "dockerfile", ".tf", ".hcl",
}

// DefaultExcludeExtensions lists binary, media, archive and document
// extensions that are never scanned.
var DefaultExcludeExtensions = []string{
	".pyc", ".pyo", ".o", ".so", ".dll", ".exe",
	".log", ".tmp", ".bak", ".swp",
	".ds_store",
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp",
	".mp3", ".wav", ".aac", ".flac", ".ogg",
	".mp4", ".mov", ".avi", ".mkv", ".webm",
	".zip", ".tar", ".gz", ".rar", ".7z",
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
}

// DefaultExcludePatterns lists file and directory names that are skipped
// wherever they appear under the scan root.
var DefaultExcludePatterns = []string{
	".gitignore", "license", "node_modules", "venv", ".venv", "dist", "build",
	"__pycache__", ".git", ".svn", ".hg",
	"package-lock.json", "yarn.lock", "composer.lock", "gemfile.lock", "pipfile.lock",
}

// AnalysisConfig configures the analysis collaborator
type AnalysisConfig struct {
	// Provider selects the backend: "gemini" (REST API) or "claude" (Claude CLI)
	Provider string `yaml:"provider"`

	// Model is the model identifier passed to the backend
	Model string `yaml:"model"`

	// Endpoint is the base URL of the Gemini API
	Endpoint string `yaml:"endpoint"`

	// Temperature is the sampling temperature for generation
	Temperature float64 `yaml:"temperature"`

	// Timeout bounds a single analysis call (0 = no timeout)
	Timeout time.Duration `yaml:"-"`

	// ClaudePath is the claude binary used by the claude provider
	ClaudePath string `yaml:"claude_path"`
}

// ScanConfig holds chunking and budget settings
type ScanConfig struct {
	// ChunkSize is the maximum characters per chunk (<= 0 disables chunking)
	ChunkSize int `yaml:"chunk_size"`

	// MaxTotalChars caps the characters sent for analysis per scan (0 = unlimited)
	MaxTotalChars int `yaml:"max_total_chars"`

	// SkipReview skips the interactive file review
	SkipReview bool `yaml:"skip_review"`
}

// FilterConfig holds the built-in include/exclude sets. Values set here
// replace the defaults; CLI exclusions are added on top.
type FilterConfig struct {
	IncludeExtensions []string `yaml:"include_extensions"`
	ExcludeExtensions []string `yaml:"exclude_extensions"`
	ExcludePatterns   []string `yaml:"exclude_patterns"`
}

// ReportConfig configures report artifacts
type ReportConfig struct {
	// Dir is the directory receiving report files
	Dir string `yaml:"dir"`

	// BaseName prefixes the timestamped report file names
	BaseName string `yaml:"base_name"`

	// HTML additionally writes an HTML rendering of the Markdown report
	HTML bool `yaml:"html"`
}

// CacheConfig configures the analysis response cache
type CacheConfig struct {
	// Enabled turns on the SQLite response cache
	Enabled bool `yaml:"enabled"`

	// Path is the cache database path (empty = $SECREV_HOME/cache.db)
	Path string `yaml:"path"`
}

// Config represents secrev configuration options
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Scan     ScanConfig     `yaml:"scan"`
	Filters  FilterConfig   `yaml:"filters"`
	Report   ReportConfig   `yaml:"report"`
	Cache    CacheConfig    `yaml:"cache"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written (empty = no file log)
	LogDir string `yaml:"log_dir"`
}

// DefaultConfig returns a Config with the stock secrev settings
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Provider:    DefaultProvider,
			Model:       DefaultModel,
			Endpoint:    DefaultEndpoint,
			Temperature: 0.2,
			Timeout:     5 * time.Minute,
			ClaudePath:  "claude",
		},
		Scan: ScanConfig{
			ChunkSize:     DefaultChunkSize,
			MaxTotalChars: DefaultMaxTotalChars,
		},
		Filters: FilterConfig{
			IncludeExtensions: append([]string(nil), DefaultIncludeExtensions...),
			ExcludeExtensions: append([]string(nil), DefaultExcludeExtensions...),
			ExcludePatterns:   append([]string(nil), DefaultExcludePatterns...),
		},
		Report: ReportConfig{
			Dir:      DefaultReportsDir,
			BaseName: DefaultReportBaseName,
		},
		LogLevel: "info",
		LogDir:   filepath.Join(".secrev", "logs"),
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are strings in YAML; everything else decodes directly
	type yamlAnalysis struct {
		AnalysisConfig `yaml:",inline"`
		Timeout        string `yaml:"timeout"`
	}
	type yamlConfig struct {
		Analysis yamlAnalysis `yaml:"analysis"`
		Scan     ScanConfig   `yaml:"scan"`
		Filters  FilterConfig `yaml:"filters"`
		Report   ReportConfig `yaml:"report"`
		Cache    CacheConfig  `yaml:"cache"`
		LogLevel string       `yaml:"log_level"`
		LogDir   string       `yaml:"log_dir"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Presence map: zero is meaningful for several scan/report fields
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	a := yamlCfg.Analysis
	if a.Provider != "" {
		cfg.Analysis.Provider = a.Provider
	}
	if a.Model != "" {
		cfg.Analysis.Model = a.Model
	}
	if a.Endpoint != "" {
		cfg.Analysis.Endpoint = a.Endpoint
	}
	if a.ClaudePath != "" {
		cfg.Analysis.ClaudePath = a.ClaudePath
	}
	if a.Timeout != "" {
		timeout, err := time.ParseDuration(a.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid analysis.timeout format %q: %w", a.Timeout, err)
		}
		cfg.Analysis.Timeout = timeout
	}
	if has(rawMap, "analysis", "temperature") {
		cfg.Analysis.Temperature = a.Temperature
	}

	if has(rawMap, "scan", "chunk_size") {
		cfg.Scan.ChunkSize = yamlCfg.Scan.ChunkSize
	}
	if has(rawMap, "scan", "max_total_chars") {
		cfg.Scan.MaxTotalChars = yamlCfg.Scan.MaxTotalChars
	}
	if has(rawMap, "scan", "skip_review") {
		cfg.Scan.SkipReview = yamlCfg.Scan.SkipReview
	}

	if has(rawMap, "filters", "include_extensions") {
		cfg.Filters.IncludeExtensions = yamlCfg.Filters.IncludeExtensions
	}
	if has(rawMap, "filters", "exclude_extensions") {
		cfg.Filters.ExcludeExtensions = yamlCfg.Filters.ExcludeExtensions
	}
	if has(rawMap, "filters", "exclude_patterns") {
		cfg.Filters.ExcludePatterns = yamlCfg.Filters.ExcludePatterns
	}

	if yamlCfg.Report.Dir != "" {
		cfg.Report.Dir = yamlCfg.Report.Dir
	}
	if yamlCfg.Report.BaseName != "" {
		cfg.Report.BaseName = yamlCfg.Report.BaseName
	}
	if has(rawMap, "report", "html") {
		cfg.Report.HTML = yamlCfg.Report.HTML
	}

	if has(rawMap, "cache", "enabled") {
		cfg.Cache.Enabled = yamlCfg.Cache.Enabled
	}
	if yamlCfg.Cache.Path != "" {
		cfg.Cache.Path = yamlCfg.Cache.Path
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if _, exists := rawMap["log_dir"]; exists {
		// Explicitly set log_dir, even if empty string (disables file logging)
		cfg.LogDir = yamlCfg.LogDir
	}

	return cfg, nil
}

// has reports whether rawMap[section][key] was present in the YAML document
func has(rawMap map[string]interface{}, section, key string) bool {
	sec, ok := rawMap[section].(map[string]interface{})
	if !ok {
		return false
	}
	_, exists := sec[key]
	return exists
}

// LoadConfigFromDir loads configuration from .secrev/config.yaml in the specified directory.
// If the directory or file doesn't exist, returns default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".secrev", "config.yaml")
	return LoadConfig(configPath)
}

// FlagOverrides carries CLI flag values. Nil fields were not set on the
// command line and leave the configuration untouched.
type FlagOverrides struct {
	Provider          *string
	Model             *string
	ChunkSize         *int
	MaxTotalChars     *int
	SkipReview        *bool
	IncludeExtensions []string
	ReportsDir        *string
	ReportBaseName    *string
	HTML              *bool
	Cache             *bool
	LogLevel          *string
	LogDir            *string
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
// A non-empty include list replaces the configured include set.
func (c *Config) MergeWithFlags(f FlagOverrides) {
	if f.Provider != nil {
		c.Analysis.Provider = *f.Provider
	}
	if f.Model != nil {
		c.Analysis.Model = *f.Model
	}
	if f.ChunkSize != nil {
		c.Scan.ChunkSize = *f.ChunkSize
	}
	if f.MaxTotalChars != nil {
		c.Scan.MaxTotalChars = *f.MaxTotalChars
	}
	if f.SkipReview != nil {
		c.Scan.SkipReview = *f.SkipReview
	}
	if len(f.IncludeExtensions) > 0 {
		c.Filters.IncludeExtensions = f.IncludeExtensions
	}
	if f.ReportsDir != nil {
		c.Report.Dir = *f.ReportsDir
	}
	if f.ReportBaseName != nil {
		c.Report.BaseName = *f.ReportBaseName
	}
	if f.HTML != nil {
		c.Report.HTML = *f.HTML
	}
	if f.Cache != nil {
		c.Cache.Enabled = *f.Cache
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
}

// ResolveModel replaces the stock Gemini model with DefaultClaudeModel when
// the claude provider is selected without an explicit model
func (c *Config) ResolveModel() {
	if c.Analysis.Provider == "claude" && c.Analysis.Model == DefaultModel {
		c.Analysis.Model = DefaultClaudeModel
	}
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	switch c.Analysis.Provider {
	case "gemini", "claude":
	default:
		return fmt.Errorf("invalid analysis.provider %q, must be one of: gemini, claude", c.Analysis.Provider)
	}

	if c.Analysis.Model == "" {
		return fmt.Errorf("analysis.model cannot be empty")
	}

	if c.Analysis.Provider == "gemini" && c.Analysis.Endpoint == "" {
		return fmt.Errorf("analysis.endpoint cannot be empty for the gemini provider")
	}

	if c.Analysis.Temperature < 0 || c.Analysis.Temperature > 2 {
		return fmt.Errorf("analysis.temperature must be between 0 and 2, got %v", c.Analysis.Temperature)
	}

	// Timeout can be 0 (no timeout) or positive, negative is invalid
	if c.Analysis.Timeout < 0 {
		return fmt.Errorf("analysis.timeout must be >= 0, got %v", c.Analysis.Timeout)
	}

	if c.Scan.MaxTotalChars < 0 {
		return fmt.Errorf("scan.max_total_chars must be >= 0, got %d", c.Scan.MaxTotalChars)
	}

	if c.Report.Dir == "" {
		return fmt.Errorf("report.dir cannot be empty")
	}
	if c.Report.BaseName == "" {
		return fmt.Errorf("report.base_name cannot be empty")
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	return nil
}
