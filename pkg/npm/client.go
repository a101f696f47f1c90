package npm

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
)

// Client abstracts the npm-compatible package manager used for a pilet project.
type Client interface {
	// Name returns the short identifier ("npm", "yarn", "pnpm").
	Name() string

	// DisplayName returns a human-readable name.
	DisplayName() string

	// IsAvailable returns true if the client binary is installed.
	IsAvailable() bool

	// InstallPackage installs a single package reference as a dev dependency
	// without writing the project lockfile.
	InstallPackage(ctx context.Context, dir, reference string) error

	// InstallDependencies performs a full dependency install for the project.
	InstallDependencies(ctx context.Context, dir string) error
}

// Lockfile names used for client detection.
const (
	lockfileNpm  = "package-lock.json"
	lockfileYarn = "yarn.lock"
	lockfilePnpm = "pnpm-lock.yaml"

	workspaceFilePnpm = "pnpm-workspace.yaml"
)

// DetectClient picks the client for a project directory by lockfile shape,
// walking up to a workspace root when one exists. preferred (an explicit
// flag) overrides detection; fallback (a configured default) applies only
// when no lockfile decides, before the first available binary.
func DetectClient(dir, preferred, fallback string, clients []Client) Client {
	byName := make(map[string]Client, len(clients))
	for _, c := range clients {
		byName[c.Name()] = c
	}

	if preferred != "" {
		if c, ok := byName[preferred]; ok {
			return c
		}
	}

	root := projectRoot(dir)
	switch {
	case fileExists(filepath.Join(root, lockfilePnpm)):
		if c, ok := byName["pnpm"]; ok {
			return c
		}
	case fileExists(filepath.Join(root, lockfileYarn)):
		if c, ok := byName["yarn"]; ok {
			return c
		}
	case fileExists(filepath.Join(root, lockfileNpm)):
		if c, ok := byName["npm"]; ok {
			return c
		}
	}

	if fallback != "" {
		if c, ok := byName[fallback]; ok {
			return c
		}
	}

	for _, c := range clients {
		if c.IsAvailable() {
			return c
		}
	}
	if c, ok := byName["npm"]; ok {
		return c
	}
	return nil
}

// projectRoot walks up from dir to the nearest monorepo workspace root.
// Only existence is detected; workspace graph resolution stays with the
// package manager.
func projectRoot(dir string) string {
	current := dir
	for {
		if isWorkspaceRoot(current) {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}

// isWorkspaceRoot reports whether dir declares a monorepo workspace.
func isWorkspaceRoot(dir string) bool {
	if fileExists(filepath.Join(dir, workspaceFilePnpm)) {
		return true
	}
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return false
	}
	return hasWorkspacesField(data)
}

// hasWorkspacesField reports whether a package.json declares workspaces.
func hasWorkspacesField(data []byte) bool {
	var probe struct {
		Workspaces json.RawMessage `json:"workspaces"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return len(probe.Workspaces) > 0 && string(probe.Workspaces) != "null"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func binaryAvailable(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}
