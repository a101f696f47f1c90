package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"piletctl/pkg/pilet"
)

type stubResolver struct {
	asked  []string
	answer []string
}

func (r *stubResolver) ResolveConflicts(files []string) ([]string, error) {
	r.asked = files
	return r.answer, nil
}

type recordingReporter struct {
	warnings []string
}

func (r *recordingReporter) Info(format string, args ...any) {}

func (r *recordingReporter) Warn(format string, args ...any) {
	r.warnings = append(r.warnings, format)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestSnapshotHashesFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tsconfig.json"), "{}")

	r := NewReconciler(nil, nil, &recordingReporter{})
	snap, err := r.Snapshot(root, []pilet.FileSpec{
		{From: "tsconfig.json"},
		{From: "missing.json"},
	})
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}

	if _, ok := snap["tsconfig.json"]; !ok {
		t.Error("tsconfig.json should be snapshotted")
	}
	if _, ok := snap["missing.json"]; ok {
		t.Error("absent files must not appear in the snapshot")
	}
}

func TestSnapshotWalksDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "mocks", "server.js"), "a")
	writeFile(t, filepath.Join(root, "mocks", "deep", "data.json"), "b")

	r := NewReconciler(nil, nil, &recordingReporter{})
	snap, err := r.Snapshot(root, []pilet.FileSpec{{From: "mocks", Deep: true}})
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}

	for _, key := range []string{"mocks/server.js", "mocks/deep/data.json"} {
		if _, ok := snap[key]; !ok {
			t.Errorf("missing snapshot entry %q, got %v", key, snap)
		}
	}
}

func TestSnapshotCarriesForwardPersistedHashes(t *testing.T) {
	root := t.TempDir()
	store := openTestStore(t)

	// A previous run managed and snapshotted tsconfig.json.
	writeFile(t, filepath.Join(root, "tsconfig.json"), "shipped")
	r := NewReconciler(nil, store, &recordingReporter{})
	if _, err := r.Snapshot(root, []pilet.FileSpec{{From: "tsconfig.json"}}); err != nil {
		t.Fatal(err)
	}

	// This run's base package no longer lists it, but the persisted hash
	// still identifies the file as untouched.
	snap, err := r.Snapshot(root, []pilet.FileSpec{{From: ".eslintrc"}})
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if _, ok := snap["tsconfig.json"]; !ok {
		t.Errorf("persisted hash should carry forward, snap = %v", snap)
	}

	record, err := store.Latest(root)
	if err != nil {
		t.Fatal(err)
	}
	if record == nil {
		t.Fatal("expected a persisted record")
	}
	if _, ok := record.Files["tsconfig.json"]; ok {
		t.Error("the persisted record must hold only this run's hashes")
	}
}

func TestReconcilePromptUsesPersistedSnapshot(t *testing.T) {
	root := t.TempDir()
	source := t.TempDir()
	store := openTestStore(t)

	// First upgrade snapshotted the file the user never modified afterwards.
	writeFile(t, filepath.Join(root, "tsconfig.json"), "shipped")
	first := NewReconciler(&stubResolver{}, store, &recordingReporter{})
	if _, err := first.Snapshot(root, []pilet.FileSpec{{From: "tsconfig.json"}}); err != nil {
		t.Fatal(err)
	}

	// The next upgrade manages a different set, so its own snapshot misses
	// the file; the store closes the gap.
	writeFile(t, filepath.Join(source, "tsconfig.json"), "new")
	resolver := &stubResolver{}
	second := NewReconciler(resolver, store, &recordingReporter{})
	snap, err := second.Snapshot(root, []pilet.FileSpec{{From: ".eslintrc"}})
	if err != nil {
		t.Fatal(err)
	}

	err = second.Reconcile(context.Background(), root, source,
		[]pilet.FileSpec{{From: "tsconfig.json"}}, pilet.OverwritePrompt, snap)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	if got := readFile(t, filepath.Join(root, "tsconfig.json")); got != "new" {
		t.Errorf("content = %q, want new", got)
	}
	if len(resolver.asked) != 0 {
		t.Errorf("untouched file should not be prompted, asked %v", resolver.asked)
	}
}

func TestReconcileCopiesNewFiles(t *testing.T) {
	root := t.TempDir()
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "tsconfig.json"), "new")

	r := NewReconciler(&stubResolver{}, nil, &recordingReporter{})
	err := r.Reconcile(context.Background(), root, source,
		[]pilet.FileSpec{{From: "tsconfig.json"}}, pilet.OverwriteNo, nil)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	if got := readFile(t, filepath.Join(root, "tsconfig.json")); got != "new" {
		t.Errorf("content = %q, want new", got)
	}
}

func TestReconcileRenamesTarget(t *testing.T) {
	root := t.TempDir()
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "tsconfig.base.json"), "base")

	r := NewReconciler(&stubResolver{}, nil, &recordingReporter{})
	err := r.Reconcile(context.Background(), root, source,
		[]pilet.FileSpec{{From: "tsconfig.base.json", To: "tsconfig.json"}},
		pilet.OverwriteNo, nil)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	if got := readFile(t, filepath.Join(root, "tsconfig.json")); got != "base" {
		t.Errorf("content = %q, want base", got)
	}
}

func TestReconcileDeepDirectory(t *testing.T) {
	root := t.TempDir()
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "mocks", "server.js"), "srv")
	writeFile(t, filepath.Join(source, "mocks", "data", "users.json"), "[]")

	r := NewReconciler(&stubResolver{}, nil, &recordingReporter{})
	err := r.Reconcile(context.Background(), root, source,
		[]pilet.FileSpec{{From: "mocks", Deep: true}}, pilet.OverwriteNo, nil)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	if got := readFile(t, filepath.Join(root, "mocks", "server.js")); got != "srv" {
		t.Errorf("server.js = %q", got)
	}
	if got := readFile(t, filepath.Join(root, "mocks", "data", "users.json")); got != "[]" {
		t.Errorf("users.json = %q", got)
	}
}

func TestReconcileShallowDirectorySkipped(t *testing.T) {
	root := t.TempDir()
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "mocks", "server.js"), "srv")

	r := NewReconciler(&stubResolver{}, nil, &recordingReporter{})
	err := r.Reconcile(context.Background(), root, source,
		[]pilet.FileSpec{{From: "mocks"}}, pilet.OverwriteNo, nil)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "mocks")); !os.IsNotExist(err) {
		t.Error("directory entries without deep must not be copied")
	}
}

func TestReconcilePolicyNoKeepsModifiedFile(t *testing.T) {
	root := t.TempDir()
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "tsconfig.json"), "new")
	writeFile(t, filepath.Join(root, "tsconfig.json"), "edited by user")

	reporter := &recordingReporter{}
	r := NewReconciler(&stubResolver{}, nil, reporter)
	err := r.Reconcile(context.Background(), root, source,
		[]pilet.FileSpec{{From: "tsconfig.json"}}, pilet.OverwriteNo, nil)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	if got := readFile(t, filepath.Join(root, "tsconfig.json")); got != "edited by user" {
		t.Errorf("content = %q, want the user's version kept", got)
	}
	if len(reporter.warnings) == 0 {
		t.Error("keeping a modified file should be reported")
	}
}

func TestReconcilePolicyYesOverwrites(t *testing.T) {
	root := t.TempDir()
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "tsconfig.json"), "new")
	writeFile(t, filepath.Join(root, "tsconfig.json"), "edited by user")

	r := NewReconciler(&stubResolver{}, nil, &recordingReporter{})
	err := r.Reconcile(context.Background(), root, source,
		[]pilet.FileSpec{{From: "tsconfig.json"}}, pilet.OverwriteYes, nil)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	if got := readFile(t, filepath.Join(root, "tsconfig.json")); got != "new" {
		t.Errorf("content = %q, want new", got)
	}
}

func TestReconcilePromptOverwritesUntouchedSilently(t *testing.T) {
	root := t.TempDir()
	source := t.TempDir()
	writeFile(t, filepath.Join(root, "tsconfig.json"), "original")

	r := NewReconciler(&stubResolver{}, nil, &recordingReporter{})
	snap, err := r.Snapshot(root, []pilet.FileSpec{{From: "tsconfig.json"}})
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(source, "tsconfig.json"), "new")

	resolver := &stubResolver{}
	r = NewReconciler(resolver, nil, &recordingReporter{})
	err = r.Reconcile(context.Background(), root, source,
		[]pilet.FileSpec{{From: "tsconfig.json"}}, pilet.OverwritePrompt, snap)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	if got := readFile(t, filepath.Join(root, "tsconfig.json")); got != "new" {
		t.Errorf("content = %q, want new", got)
	}
	if len(resolver.asked) != 0 {
		t.Errorf("untouched file should not be prompted, asked %v", resolver.asked)
	}
}

func TestReconcilePromptAsksForModifiedFile(t *testing.T) {
	root := t.TempDir()
	source := t.TempDir()
	writeFile(t, filepath.Join(root, "tsconfig.json"), "original")

	r := NewReconciler(&stubResolver{}, nil, &recordingReporter{})
	snap, err := r.Snapshot(root, []pilet.FileSpec{{From: "tsconfig.json"}})
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(root, "tsconfig.json"), "edited by user")
	writeFile(t, filepath.Join(source, "tsconfig.json"), "new")

	resolver := &stubResolver{answer: []string{"tsconfig.json"}}
	r = NewReconciler(resolver, nil, &recordingReporter{})
	err = r.Reconcile(context.Background(), root, source,
		[]pilet.FileSpec{{From: "tsconfig.json"}}, pilet.OverwritePrompt, snap)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	if len(resolver.asked) != 1 || resolver.asked[0] != "tsconfig.json" {
		t.Errorf("asked = %v, want [tsconfig.json]", resolver.asked)
	}
	if got := readFile(t, filepath.Join(root, "tsconfig.json")); got != "new" {
		t.Errorf("content = %q, want new after the user chose overwrite", got)
	}
}

func TestReconcilePromptKeepsDeclinedFile(t *testing.T) {
	root := t.TempDir()
	source := t.TempDir()
	writeFile(t, filepath.Join(root, "tsconfig.json"), "edited by user")
	writeFile(t, filepath.Join(source, "tsconfig.json"), "new")

	reporter := &recordingReporter{}
	resolver := &stubResolver{answer: nil}
	r := NewReconciler(resolver, nil, reporter)
	err := r.Reconcile(context.Background(), root, source,
		[]pilet.FileSpec{{From: "tsconfig.json"}}, pilet.OverwritePrompt, nil)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	if got := readFile(t, filepath.Join(root, "tsconfig.json")); got != "edited by user" {
		t.Errorf("content = %q, want the user's version kept", got)
	}
	if len(reporter.warnings) == 0 {
		t.Error("declined overwrite should be reported")
	}
}

func TestReconcileIdenticalContentIsSkipped(t *testing.T) {
	root := t.TempDir()
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "tsconfig.json"), "same")
	writeFile(t, filepath.Join(root, "tsconfig.json"), "same")

	reporter := &recordingReporter{}
	r := NewReconciler(&stubResolver{}, nil, reporter)
	err := r.Reconcile(context.Background(), root, source,
		[]pilet.FileSpec{{From: "tsconfig.json"}}, pilet.OverwriteNo, nil)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	if len(reporter.warnings) != 0 {
		t.Errorf("identical files should not warn, got %v", reporter.warnings)
	}
}
