package pilet

import (
	"fmt"
	"os"
	"path/filepath"
)

// cacheDirs are the per-project build cache locations invalidated after an
// upgrade so stale artifacts are not reused against the new base package.
var cacheDirs = []string{
	filepath.Join("node_modules", ".cache"),
	".piletctl-cache",
}

// ClearCache removes the build caches of a pilet project. Missing directories
// are not an error.
func ClearCache(root string) error {
	for _, dir := range cacheDirs {
		path := filepath.Join(root, dir)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("clearing cache %s: %w", path, err)
		}
	}
	return nil
}
