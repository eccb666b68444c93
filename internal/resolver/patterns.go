// Package resolver expands file-set selection rules into concrete object keys.
package resolver

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/buildforge/s3task/tasktypes"
)

// PatternMatcher handles include/exclude pattern matching for file-sets.
type PatternMatcher struct{}

// NewPatternMatcher creates a new pattern matcher.
func NewPatternMatcher() *PatternMatcher {
	return &PatternMatcher{}
}

// ShouldInclude determines if a relative path is selected by the patterns.
// Excludes take precedence; an empty include list selects everything.
func (pm *PatternMatcher) ShouldInclude(relPath string, includes, excludes []string) bool {
	// Pattern matching always works on slash-separated paths
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range excludes {
		if pm.matchesPattern(relPath, pattern) {
			return false
		}
	}

	if len(includes) > 0 {
		for _, pattern := range includes {
			if pm.matchesPattern(relPath, pattern) {
				return true
			}
		}
		return false
	}

	return true
}

// matchesPattern checks if a path matches a glob pattern.
// It supports basic glob patterns like *, **, and ?.
func (pm *PatternMatcher) matchesPattern(path, pattern string) bool {
	// Directory patterns (trailing /) select everything under the directory
	if strings.HasSuffix(pattern, "/") {
		pattern = strings.TrimSuffix(pattern, "/")
		return strings.HasPrefix(path+"/", pattern+"/") || path == pattern
	}

	if strings.Contains(pattern, "**") {
		return pm.matchesGlobPattern(path, pattern)
	}

	match, err := filepath.Match(pattern, path)
	if err != nil {
		// Invalid patterns never match
		return false
	}

	return match
}

// matchesGlobPattern handles patterns with a single ** (recursive wildcard).
func (pm *PatternMatcher) matchesGlobPattern(path, pattern string) bool {
	parts := strings.Split(pattern, "**")

	if len(parts) == 1 {
		match, _ := filepath.Match(pattern, path)
		return match
	}

	if len(parts) == 2 {
		prefix := parts[0]
		suffix := parts[1]

		if !strings.HasPrefix(path, prefix) {
			return false
		}

		if suffix == "" {
			return true
		}

		return strings.HasSuffix(path, suffix)
	}

	// Multiple ** segments are not supported
	return false
}

// ValidateFileSet reports the first syntactically invalid pattern in a
// file-set's includes or excludes, or nil when all patterns are usable.
func (pm *PatternMatcher) ValidateFileSet(set tasktypes.FileSet) error {
	if errs := pm.ValidatePatterns(set.Includes); len(errs) > 0 {
		return errs[0]
	}
	if errs := pm.ValidatePatterns(set.Excludes); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ValidatePatterns validates that the given patterns are syntactically correct.
func (pm *PatternMatcher) ValidatePatterns(patterns []string) []error {
	var errs []error

	for i, pattern := range patterns {
		if strings.Count(pattern, "**") > 1 {
			continue
		}

		// Match against a dummy path to surface syntax errors
		_, err := filepath.Match(pattern, "dummy")
		if err != nil {
			errs = append(errs, &PatternError{
				Pattern: pattern,
				Index:   i,
				Err:     err,
			})
		}
	}

	return errs
}

// PatternError represents an error with a pattern.
type PatternError struct {
	Pattern string
	Index   int
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern at index %d '%s': %v", e.Index, e.Pattern, e.Err)
}
