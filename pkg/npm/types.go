// Package npm provides package specifier parsing, reference building, and
// npm/yarn/pnpm client abstractions for pilet projects.
package npm

// SourceType classifies where a package reference points.
type SourceType string

const (
	// SourceRegistry represents packages resolved through the npm registry.
	SourceRegistry SourceType = "registry"
	// SourceFile represents local tarballs or directories.
	SourceFile SourceType = "file"
	// SourceGit represents git repository URLs.
	SourceGit SourceType = "git"
)

// Specifier is a parsed package reference.
type Specifier struct {
	// Name is the package name, or an absolute filesystem path for file sources,
	// or a normalized git+<scheme>:// URL for git sources.
	Name string
	// Version is the requested version; "latest" when the input carried none.
	Version string
	// HadVersion reports whether the raw input contained an explicit version suffix.
	HadVersion bool
	// Source is the detected source type.
	Source SourceType
}

// Resolution is the outcome of resolving an upgrade target against the
// currently installed base package.
type Resolution struct {
	// Reference is the canonical string to hand to the package manager.
	Reference string
	// Version is the version to record back into the manifest. Empty means
	// the package manager decides (e.g., registry tags and git refs).
	Version string
}

// NoticeLevel grades resolver notices.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarn
)

// Notice is an advisory message produced by a pure decision function.
// Callers are responsible for emitting them.
type Notice struct {
	Level   NoticeLevel
	Message string
}
