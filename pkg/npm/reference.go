package npm

// Combine builds the canonical command-line reference for a package.
// Registry references carry an explicit version, defaulting to "latest".
// File and git references are identified by path or URL alone, so the
// version component is omitted.
func Combine(name, version string, source SourceType) string {
	switch source {
	case SourceFile, SourceGit:
		return name
	default:
		if version == "" {
			version = "latest"
		}
		return name + "@" + version
	}
}
