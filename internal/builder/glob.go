package builder

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandGlob expands a glob pattern relative to baseDir, supporting ** for
// recursive matching. Only regular files are returned, as paths relative to
// baseDir; a matched directory contributes every file below it.
func ExpandGlob(baseDir, pattern string) ([]string, error) {
	var results []string

	addTree := func(root string) {
		filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			if rel, err := filepath.Rel(baseDir, path); err == nil {
				results = append(results, rel)
			}
			return nil
		})
	}

	pattern = filepath.FromSlash(pattern)

	if strings.Contains(pattern, "**") {
		parts := strings.SplitN(pattern, "**", 2)
		prefix := strings.TrimSuffix(parts[0], string(filepath.Separator))
		suffix := strings.TrimPrefix(parts[1], string(filepath.Separator))

		startDir := baseDir
		if prefix != "" {
			startDir = filepath.Join(baseDir, prefix)
		}
		if _, err := os.Stat(startDir); err != nil {
			return nil, nil
		}

		err := filepath.Walk(startDir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil // Skip unreadable entries
			}
			if info.IsDir() {
				return nil
			}

			if suffix != "" {
				matched, _ := filepath.Match(suffix, info.Name())
				if !matched {
					// Try matching against the path below the ** point
					relFromStart, _ := filepath.Rel(startDir, path)
					matched, _ = filepath.Match(suffix, relFromStart)
				}
				if !matched {
					return nil
				}
			}

			if rel, err := filepath.Rel(baseDir, path); err == nil {
				results = append(results, rel)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return results, nil
	}

	matches, err := filepath.Glob(filepath.Join(baseDir, pattern))
	if err != nil {
		return nil, err
	}

	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if info.IsDir() {
			addTree(match)
			continue
		}
		if rel, err := filepath.Rel(baseDir, match); err == nil {
			results = append(results, rel)
		}
	}

	return results, nil
}

// containsGlobChars checks if a pattern contains glob special characters
func containsGlobChars(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// IsExcluded checks if a path matches any of the exclude patterns
func IsExcluded(path string, excludes []string) bool {
	for _, pattern := range excludes {
		if matchPattern(path, pattern) {
			return true
		}
	}
	return false
}

// matchPattern checks if a path matches a pattern (supports * and **)
func matchPattern(path, pattern string) bool {
	path = filepath.ToSlash(path)
	pattern = filepath.ToSlash(pattern)

	if strings.Contains(pattern, "**") {
		parts := strings.SplitN(pattern, "**", 2)
		prefix := strings.TrimSuffix(parts[0], "/")
		suffix := strings.TrimPrefix(parts[1], "/")

		if prefix != "" && !strings.HasPrefix(path, prefix+"/") {
			matched, _ := filepath.Match(prefix+"/*", path)
			if !matched {
				return false
			}
		}

		if suffix == "" {
			return true
		}
		if matched, _ := filepath.Match(suffix, filepath.Base(path)); matched {
			return true
		}
		return strings.HasSuffix(path, "/"+suffix) || path == suffix
	}

	if matched, _ := filepath.Match(pattern, path); matched {
		return true
	}

	// A directory pattern excludes everything below it
	if !containsGlobChars(pattern) && strings.HasPrefix(path, strings.TrimSuffix(pattern, "/")+"/") {
		return true
	}

	// Patterns without a slash also match the file name alone
	if !strings.Contains(pattern, "/") {
		matched, _ := filepath.Match(pattern, filepath.Base(path))
		return matched
	}
	return false
}

// ExpandIncludes expands all include patterns and returns unique file paths
// that match none of the excludes, in pattern order.
func ExpandIncludes(baseDir string, includes []string, excludes []string) ([]string, error) {
	seen := make(map[string]bool)
	var results []string

	for _, pattern := range includes {
		expanded, err := ExpandGlob(baseDir, pattern)
		if err != nil {
			return nil, err
		}

		for _, path := range expanded {
			if IsExcluded(path, excludes) || seen[path] {
				continue
			}
			seen[path] = true
			results = append(results, path)
		}
	}

	return results, nil
}
