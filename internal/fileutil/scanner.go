package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotDirectory is returned when the scan root is not a directory
var ErrNotDirectory = errors.New("path is not a directory")

// CandidateFile is a file that passed discovery's include/exclude rules.
// It is immutable once created.
type CandidateFile struct {
	// AbsPath is the absolute path of the file
	AbsPath string
	// RelPath is the path relative to the scan root
	RelPath string
	// Ext is the lowercased extension including the leading dot
	Ext string
	// Base is the lowercased basename
	Base string
}

// NewCandidateFile builds a CandidateFile for absPath under root
func NewCandidateFile(root, absPath string) (CandidateFile, error) {
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return CandidateFile{}, fmt.Errorf("failed to resolve path %s relative to %s: %w", absPath, root, err)
	}
	base := filepath.Base(absPath)
	return CandidateFile{
		AbsPath: absPath,
		RelPath: rel,
		Ext:     strings.ToLower(filepath.Ext(base)),
		Base:    strings.ToLower(base),
	}, nil
}

// DiscoverOptions configures discovery
type DiscoverOptions struct {
	// Defaults are the built-in sets the overrides below layer onto
	Defaults RuleDefaults
	// IncludeExtensions replaces the default include set when non-empty
	IncludeExtensions []string
	// ExcludeExtensions is added to the default excluded extensions
	ExcludeExtensions []string
	// ExcludePatterns is added to the default excluded names
	ExcludePatterns []string
}

// ResolveRoot returns the absolute form of dir after checking it is a directory
func ResolveRoot(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory %s: %w", dir, err)
	}
	return abs, nil
}

// Discover walks root top-down and returns the candidate files in traversal
// order. Excluded directories are pruned before descending. Any error while
// reading the tree aborts the walk.
func Discover(root string, opts DiscoverOptions) ([]CandidateFile, *Rules, error) {
	absRoot, err := ResolveRoot(root)
	if err != nil {
		return nil, nil, err
	}

	rules := NewRules(opts.Defaults, opts.IncludeExtensions, opts.ExcludeExtensions, opts.ExcludePatterns)
	files, err := Walk(absRoot, rules)
	if err != nil {
		return nil, nil, err
	}
	return files, rules, nil
}

// Walk applies rules to the tree under absRoot
func Walk(absRoot string, rules *Rules) ([]CandidateFile, error) {
	files := make([]CandidateFile, 0)

	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing %s: %w", path, err)
		}

		// The root itself is never pruned
		if path == absRoot {
			return nil
		}

		if d.IsDir() {
			if rules.ShouldPruneDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		candidate, err := NewCandidateFile(absRoot, path)
		if err != nil {
			return err
		}
		if rules.Accept(candidate.RelPath) {
			files = append(files, candidate)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return files, nil
}
