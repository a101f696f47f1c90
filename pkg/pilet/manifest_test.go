package pilet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{
		"name": "my-pilet",
		"version": "1.0.0",
		"devDependencies": {"app-shell": "1.2.0"},
		"piral": {"name": "app-shell", "files": ["tsconfig.json", {"from": "scaffold", "to": "src", "deep": true}]}
	}`)

	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatalf("LoadManifest() error: %v", err)
	}

	if m.Name != "my-pilet" {
		t.Errorf("Name = %q, want my-pilet", m.Name)
	}
	if m.DevDependencies["app-shell"] != "1.2.0" {
		t.Errorf("devDependencies = %v", m.DevDependencies)
	}
	if m.Piral == nil || m.Piral.Name != "app-shell" {
		t.Fatalf("Piral = %+v", m.Piral)
	}
	if len(m.Piral.Files) != 2 {
		t.Fatalf("Files = %+v", m.Piral.Files)
	}
	if m.Piral.Files[0].From != "tsconfig.json" || m.Piral.Files[0].Target() != "tsconfig.json" {
		t.Errorf("plain file entry parsed wrong: %+v", m.Piral.Files[0])
	}
	if m.Piral.Files[1].From != "scaffold" || m.Piral.Files[1].To != "src" || !m.Piral.Files[1].Deep {
		t.Errorf("object file entry parsed wrong: %+v", m.Piral.Files[1])
	}
}

func TestLoadManifestMissing(t *testing.T) {
	if _, err := LoadManifest(t.TempDir()); err == nil {
		t.Error("expected error for missing package.json")
	}
}

func TestSaveManifestPreservesUnknownFields(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{
		"name": "my-pilet",
		"version": "1.0.0",
		"main": "dist/index.js",
		"peerDependencies": {"react": "^18.0.0"},
		"piral": {"name": "app-shell"}
	}`)

	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}

	if m.DevDependencies == nil {
		m.DevDependencies = make(map[string]string)
	}
	m.DevDependencies["app-shell"] = "2.0.0"

	if err := SaveManifest(dir, m); err != nil {
		t.Fatalf("SaveManifest() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["main"]; !ok {
		t.Error("unknown field 'main' was dropped on save")
	}
	if _, ok := raw["peerDependencies"]; !ok {
		t.Error("unknown field 'peerDependencies' was dropped on save")
	}
	if !strings.Contains(string(data), `"app-shell": "2.0.0"`) {
		t.Error("patched devDependency missing from saved manifest")
	}
}

func TestFileSpecMarshalRoundTrip(t *testing.T) {
	specs := []FileSpec{
		{From: "tsconfig.json"},
		{From: "scaffold", To: "src", Deep: true},
	}

	data, err := json.Marshal(specs)
	if err != nil {
		t.Fatal(err)
	}

	// Plain entries stay strings.
	if !strings.Contains(string(data), `"tsconfig.json"`) || strings.Contains(string(data), `{"from":"tsconfig.json"`) {
		t.Errorf("plain entry should serialize as a string: %s", data)
	}

	var back []FileSpec
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 || back[0] != specs[0] || back[1] != specs[1] {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestReadBaseMeta(t *testing.T) {
	root := t.TempDir()
	baseDir := BaseDir(root, "app-shell")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{
		"name": "app-shell",
		"version": "2.0.0",
		"pilets": {
			"files": ["tsconfig.json"],
			"preUpgrade": "echo pre",
			"postUpgrade": "echo post"
		}
	}`
	if err := os.WriteFile(filepath.Join(baseDir, "package.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	meta, err := ReadBaseMeta(root, "app-shell")
	if err != nil {
		t.Fatalf("ReadBaseMeta() error: %v", err)
	}
	if meta == nil {
		t.Fatal("ReadBaseMeta() returned nil")
	}

	hooks := meta.Hooks()
	if hooks.PreUpgrade != "echo pre" || hooks.PostUpgrade != "echo post" {
		t.Errorf("Hooks = %+v", hooks)
	}
	if len(meta.Files) != 1 || meta.Files[0].From != "tsconfig.json" {
		t.Errorf("Files = %+v", meta.Files)
	}
}

func TestReadBaseMetaMissingPackage(t *testing.T) {
	meta, err := ReadBaseMeta(t.TempDir(), "app-shell")
	if err != nil {
		t.Fatalf("missing base package should not error: %v", err)
	}
	if meta != nil {
		t.Errorf("meta = %+v, want nil", meta)
	}

	// A nil meta still yields empty hooks.
	if h := meta.Hooks(); h.PreUpgrade != "" || h.PostUpgrade != "" {
		t.Errorf("Hooks on nil meta = %+v", h)
	}
}
