// Package pilet models pilet projects and orchestrates base package upgrades.
package pilet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const manifestFileName = "package.json"

// Manifest is a pilet's package.json. Fields the tool does not understand are
// preserved verbatim across load/save cycles.
type Manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Scripts         map[string]string `json:"scripts,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	Piral           *PiralSection     `json:"piral,omitempty"`

	extra map[string]json.RawMessage
}

// PiralSection declares the base package a pilet is built against and the
// template-managed files it receives from it.
type PiralSection struct {
	Name  string     `json:"name"`
	Files []FileSpec `json:"files,omitempty"`
}

// FileSpec describes one template-managed file or directory. In JSON it is
// either a plain string or an object {"from": ..., "to": ..., "deep": ...}.
type FileSpec struct {
	From string
	To   string
	Deep bool
}

// Target returns the destination path relative to the pilet root.
func (f FileSpec) Target() string {
	if f.To != "" {
		return f.To
	}
	return f.From
}

// UnmarshalJSON accepts both the string and the object form.
func (f *FileSpec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FileSpec{From: s}
		return nil
	}

	var obj struct {
		From string `json:"from"`
		To   string `json:"to"`
		Deep bool   `json:"deep"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid file entry: %w", err)
	}
	*f = FileSpec{From: obj.From, To: obj.To, Deep: obj.Deep}
	return nil
}

// MarshalJSON emits the compact string form when possible.
func (f FileSpec) MarshalJSON() ([]byte, error) {
	if f.To == "" && !f.Deep {
		return json.Marshal(f.From)
	}
	return json.Marshal(struct {
		From string `json:"from"`
		To   string `json:"to,omitempty"`
		Deep bool   `json:"deep,omitempty"`
	}{f.From, f.To, f.Deep})
}

// manifestKeys are the fields the typed view owns; everything else goes
// through untouched.
var manifestKeys = []string{"name", "version", "scripts", "dependencies", "devDependencies", "piral"}

// UnmarshalJSON decodes the typed fields and keeps the remainder raw.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	type alias Manifest
	var typed alias
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	*m = Manifest(typed)

	for _, key := range manifestKeys {
		delete(raw, key)
	}
	m.extra = raw
	return nil
}

// MarshalJSON merges the typed fields back over the preserved remainder.
func (m Manifest) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m.extra)+len(manifestKeys))
	for k, v := range m.extra {
		out[k] = v
	}

	set := func(key string, value any) error {
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		out[key] = data
		return nil
	}

	if err := set("name", m.Name); err != nil {
		return nil, err
	}
	if err := set("version", m.Version); err != nil {
		return nil, err
	}
	if len(m.Scripts) > 0 {
		if err := set("scripts", m.Scripts); err != nil {
			return nil, err
		}
	}
	if len(m.Dependencies) > 0 {
		if err := set("dependencies", m.Dependencies); err != nil {
			return nil, err
		}
	}
	if len(m.DevDependencies) > 0 {
		if err := set("devDependencies", m.DevDependencies); err != nil {
			return nil, err
		}
	}
	if m.Piral != nil {
		if err := set("piral", m.Piral); err != nil {
			return nil, err
		}
	}

	return json.Marshal(out)
}

// LoadManifest reads the package.json in dir.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

// SaveManifest writes the package.json in dir atomically.
func SaveManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, manifestFileName)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp manifest: %w", err)
	}
	return nil
}

// HasManifest reports whether dir contains a package.json.
func HasManifest(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, manifestFileName))
	return err == nil && !info.IsDir()
}
