package npm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveCurrent decides the reference and effective version for upgrading a
// base package. sourceName is the package as recorded in the manifest,
// currentVersion its recorded version, requestedVersion the upgrade target,
// and requestedIsLocal whether the target is itself a local file.
//
// The returned Resolution.Version is empty when the package manager should
// decide (registry tags, git refs). Notices are advisory and must be emitted
// by the caller; the decision itself is pure.
func ResolveCurrent(sourceName, currentVersion, requestedVersion string, requestedIsLocal bool) (Resolution, []Notice) {
	if requestedIsLocal {
		// The path becomes both the reference and the recorded version.
		return Resolution{
			Reference: Combine(requestedVersion, currentVersion, SourceFile),
			Version:   requestedVersion,
		}, nil
	}

	var notices []Notice
	if strings.HasPrefix(currentVersion, "file:") {
		notices = append(notices, Notice{
			Level: NoticeWarn,
			Message: fmt.Sprintf(
				"%s was previously installed from a local file, but no file was given for this upgrade; falling back to the registry",
				sourceName),
		})
	}

	return Resolution{
		Reference: Combine(sourceName, requestedVersion, SourceRegistry),
	}, notices
}

// IsLocalPackage reports whether a requested version string denotes a local
// package. Detection is shape based: an explicit file: prefix, a relative or
// absolute path form, or an existing path on disk.
func IsLocalPackage(baseDir, version string) bool {
	if version == "" {
		return false
	}
	if strings.HasPrefix(version, "file:") {
		return true
	}
	if strings.HasPrefix(version, ".") || strings.HasPrefix(version, "/") || filepath.IsAbs(version) {
		return true
	}
	if looksLikePath(version) {
		if _, err := os.Stat(filepath.Join(baseDir, version)); err == nil {
			return true
		}
	}
	return false
}
