package npm

import (
	"os"
	"path/filepath"
	"strings"
)

// Parse classifies a raw package reference string into a Specifier.
// Every input maps to exactly one source type; Parse never fails.
//
// Classification order, first match wins:
//  1. filesystem path (absolute, starting with "." or "/", or existing on disk)
//  2. git URL (git+ssh://, git+https://, ssh://, https://...git)
//  3. registry name, optionally with an @version suffix
func Parse(baseDir, raw string) Specifier {
	raw = strings.TrimSpace(raw)

	if isFilePath(baseDir, raw) {
		name := raw
		if !filepath.IsAbs(name) {
			name = filepath.Join(baseDir, name)
		}
		return Specifier{
			Name:    name,
			Version: "latest",
			Source:  SourceFile,
		}
	}

	if isGitURL(raw) {
		return Specifier{
			Name:    normalizeGitURL(raw),
			Version: "latest",
			Source:  SourceGit,
		}
	}

	name, version, hadVersion := splitRegistrySpec(raw)
	if version == "" {
		version = "latest"
	}
	return Specifier{
		Name:       name,
		Version:    version,
		HadVersion: hadVersion,
		Source:     SourceRegistry,
	}
}

// isFilePath reports whether the string denotes a local filesystem reference.
func isFilePath(baseDir, s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, ".") || strings.HasPrefix(s, "/") || filepath.IsAbs(s) {
		return true
	}
	// A bare name can still be a path if it exists on disk.
	if _, err := os.Stat(filepath.Join(baseDir, s)); err == nil && looksLikePath(s) {
		return true
	}
	return false
}

// looksLikePath filters bare registry names out of the on-disk probe.
// Registry names never contain path separators outside a scope, and a
// scoped name's slash follows the @scope marker.
func looksLikePath(s string) bool {
	if strings.HasPrefix(s, "@") {
		return false
	}
	return strings.ContainsRune(s, os.PathSeparator) || strings.Contains(s, "/") ||
		strings.HasSuffix(s, ".tgz") || strings.HasSuffix(s, ".tar.gz")
}

// isGitURL reports whether the string matches a VCS URL shape.
func isGitURL(s string) bool {
	if strings.HasPrefix(s, "git+ssh://") || strings.HasPrefix(s, "git+https://") ||
		strings.HasPrefix(s, "git+http://") || strings.HasPrefix(s, "git://") {
		return true
	}
	if strings.HasPrefix(s, "ssh://") || strings.HasPrefix(s, "git@") {
		return true
	}
	if (strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")) &&
		strings.HasSuffix(s, ".git") {
		return true
	}
	return false
}

// normalizeGitURL prefixes git+ when absent so every git source carries the
// same canonical git+<scheme>:// form.
func normalizeGitURL(s string) string {
	if strings.HasPrefix(s, "git+") {
		return s
	}
	if strings.HasPrefix(s, "git@") {
		// scp-like syntax: git@host:user/repo.git
		s = "ssh://" + strings.Replace(s, ":", "/", 1)
	}
	if strings.HasPrefix(s, "git://") {
		return s
	}
	return "git+" + s
}

// splitRegistrySpec splits a registry spec at the last version separator.
// The leading @ of a scoped name (@scope/name) is never a separator, and a
// trailing @ with nothing after it carries no version.
func splitRegistrySpec(raw string) (name, version string, hadVersion bool) {
	search := raw
	offset := 0
	if strings.HasPrefix(raw, "@") {
		search = raw[1:]
		offset = 1
	}
	if idx := strings.LastIndex(search, "@"); idx >= 0 {
		version = search[idx+1:]
		return raw[:offset+idx], version, version != ""
	}
	return raw, "", false
}
