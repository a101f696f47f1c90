package pilet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Hooks are the optional lifecycle scripts a base package declares for the
// pilets built against it.
type Hooks struct {
	PreUpgrade  string
	PostUpgrade string
}

// BaseMeta is the pilets section of a base package's own package.json: the
// template files it provides and the lifecycle hooks it declares.
type BaseMeta struct {
	Files       []FileSpec `json:"files,omitempty"`
	PreUpgrade  string     `json:"preUpgrade,omitempty"`
	PostUpgrade string     `json:"postUpgrade,omitempty"`
}

// Hooks returns the declared lifecycle hooks.
func (b *BaseMeta) Hooks() Hooks {
	if b == nil {
		return Hooks{}
	}
	return Hooks{PreUpgrade: b.PreUpgrade, PostUpgrade: b.PostUpgrade}
}

// BaseDir returns the install directory of the base package inside a pilet.
func BaseDir(root, baseName string) string {
	return filepath.Join(root, "node_modules", baseName)
}

// ReadBaseMeta reads the pilets section of the installed base package.
// A missing package or a package without the section yields nil, not an error.
func ReadBaseMeta(root, baseName string) (*BaseMeta, error) {
	path := filepath.Join(BaseDir(root, baseName), "package.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading base package metadata: %w", err)
	}

	var probe struct {
		Pilets *BaseMeta `json:"pilets"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parsing base package metadata: %w", err)
	}
	return probe.Pilets, nil
}
