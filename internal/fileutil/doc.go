// Package fileutil discovers the files a scan will consider.
//
// Discovery walks the scan root top-down with filepath.WalkDir and applies a
// layered rule set:
//
//   - Excluded extensions (binaries, media, archives, documents) are rejected.
//   - Excluded names are matched against the basename and against every
//     directory segment between the root and the file.
//   - Directories whose name is excluded are pruned before descending, so
//     dependency caches such as node_modules cost a single stat.
//   - Files that survive exclusion must match the include set by extension
//     or by basename (e.g. "dockerfile").
//
// An explicit include list replaces the built-in include set; explicit
// exclusions are always added to the built-in ones. Exclusion wins.
//
// Results keep the traversal order. Any error reading the tree aborts the
// scan.
//
// # Usage
//
//	files, rules, err := fileutil.Discover("/path/to/repo", fileutil.DiscoverOptions{
//	    Defaults: fileutil.RuleDefaults{
//	        IncludeExtensions: cfg.Filters.IncludeExtensions,
//	        ExcludeExtensions: cfg.Filters.ExcludeExtensions,
//	        ExcludePatterns:   cfg.Filters.ExcludePatterns,
//	    },
//	    ExcludePatterns: []string{"vendor"},
//	})
//
// ReadText loads a candidate's content, substituting undecodable bytes.
package fileutil
