// Package security provides filesystem path validation for export outputs.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateExportPath checks that an output file path stays inside the given
// base directory and carries one of the allowed extensions. It guards the map
// export endpoints against path traversal in user-supplied filenames.
func ValidateExportPath(path, baseDir string, allowedExts ...string) error {
	if path == "" {
		return fmt.Errorf("empty export path")
	}

	cleanPath := filepath.Clean(path)
	if len(allowedExts) > 0 {
		ext := filepath.Ext(cleanPath)
		ok := false
		for _, allowed := range allowedExts {
			if ext == allowed {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("export extension %q not allowed (want one of %v)", ext, allowedExts)
		}
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve export path: %w", err)
	}
	absBase, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}

	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return fmt.Errorf("failed to relate export path to base directory: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("export path %q escapes base directory %q", path, baseDir)
	}
	return nil
}
