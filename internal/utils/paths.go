package utils

import (
	"path/filepath"
	"strings"
	"time"
)

// exportTimeLayout is dd-mm-YYYY_HH-MM-SS.
const exportTimeLayout = "02-01-2006_15-04-05"

// ResolvePaths resolves a list of paths relative to a base directory.
// Absolute paths are returned unchanged, relative paths are resolved
// relative to the base directory.
func ResolvePaths(paths []string, baseDir string) []string {
	if len(paths) == 0 {
		return nil
	}

	resolved := make([]string, 0, len(paths))
	for _, path := range paths {
		if filepath.IsAbs(path) || baseDir == "" {
			resolved = append(resolved, path)
		} else {
			resolved = append(resolved, filepath.Join(baseDir, path))
		}
	}
	return resolved
}

// ExportFileName names a batch export after its elements and start time,
// e.g. FeNiCo_17-10-2026_14-03-59.xlsx.
func ExportFileName(symbols []string, at time.Time, ext string) string {
	name := strings.Join(symbols, "")
	if name == "" {
		name = "alloys"
	}
	return name + "_" + at.Format(exportTimeLayout) + ext
}
