package fileutil

import (
	"path/filepath"
	"strings"
)

// Rules is the layered include/exclude rule set applied during discovery.
// Exclusion always wins over inclusion.
type Rules struct {
	// Include holds normalized extensions and lowercased basenames that
	// qualify a file for scanning
	Include map[string]bool
	// ExcludeExtensions holds normalized extensions that are never scanned
	ExcludeExtensions map[string]bool
	// ExcludePatterns holds lowercased names matched against the basename
	// and every directory segment below the scan root
	ExcludePatterns map[string]bool
}

// RuleDefaults carries the built-in sets the caller's overrides layer onto
type RuleDefaults struct {
	IncludeExtensions []string
	ExcludeExtensions []string
	ExcludePatterns   []string
}

// NewRules builds the effective rule set.
// A non-empty includeOverride replaces the default include set; extra
// exclusions are added to the defaults.
func NewRules(defaults RuleDefaults, includeOverride, extraExcludeExtensions, extraExcludePatterns []string) *Rules {
	include := toSet(NormalizeExtensions(includeOverride))
	if len(include) == 0 {
		include = toSet(normalizeDefaults(defaults.IncludeExtensions))
	}

	excludeExt := toSet(normalizeDefaults(defaults.ExcludeExtensions))
	for _, ext := range NormalizeExtensions(extraExcludeExtensions) {
		excludeExt[ext] = true
	}

	excludePat := toSet(NormalizePatterns(defaults.ExcludePatterns))
	for _, p := range NormalizePatterns(extraExcludePatterns) {
		excludePat[p] = true
	}

	return &Rules{
		Include:           include,
		ExcludeExtensions: excludeExt,
		ExcludePatterns:   excludePat,
	}
}

// NormalizeExtensions trims whitespace and leading dots, lowercases, and
// prefixes a single dot. Empty tokens are dropped; duplicates are kept once.
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.TrimLeft(strings.TrimSpace(e), ".")
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		norm := "." + strings.ToLower(e)
		if !seen[norm] {
			seen[norm] = true
			out = append(out, norm)
		}
	}
	return out
}

// NormalizePatterns trims whitespace and surrounding slashes and lowercases.
// Empty tokens are dropped.
func NormalizePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p == "" {
			continue
		}
		out = append(out, strings.ToLower(p))
	}
	return out
}

// normalizeDefaults lowercases built-in entries without forcing a dot, so
// bare basenames such as "dockerfile" survive as basename matches.
func normalizeDefaults(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// ShouldPruneDir reports whether traversal must not descend into a
// directory with the given name.
func (r *Rules) ShouldPruneDir(name string) bool {
	return r.ExcludePatterns[strings.ToLower(name)]
}

// IsExcluded reports whether a file is rejected by the exclusion rules.
// relPath is the file path relative to the scan root.
func (r *Rules) IsExcluded(relPath string) bool {
	base := filepath.Base(relPath)
	if r.ExcludeExtensions[strings.ToLower(filepath.Ext(base))] {
		return true
	}
	if r.ExcludePatterns[strings.ToLower(base)] {
		return true
	}

	dir := filepath.Dir(relPath)
	if dir == "." {
		return false
	}
	for _, segment := range strings.Split(filepath.ToSlash(dir), "/") {
		if r.ExcludePatterns[strings.ToLower(segment)] {
			return true
		}
	}
	return false
}

// IsIncluded reports whether a non-excluded file qualifies by extension or basename.
func (r *Rules) IsIncluded(relPath string) bool {
	base := filepath.Base(relPath)
	return r.Include[strings.ToLower(filepath.Ext(base))] || r.Include[strings.ToLower(base)]
}

// Accept combines both checks: not excluded and included.
func (r *Rules) Accept(relPath string) bool {
	return !r.IsExcluded(relPath) && r.IsIncluded(relPath)
}
