// Package scaffold reconciles template-managed files between a base package
// and a pilet project, with overwrite-conflict detection against pre-install
// snapshots.
package scaffold

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"piletctl/pkg/pilet"
)

// ConflictResolver decides which user-modified files may be overwritten.
// The CLI backs this with an interactive prompt or picker.
type ConflictResolver interface {
	// ResolveConflicts receives the diverged file paths (relative to the pilet
	// root) and returns the subset to overwrite.
	ResolveConflicts(files []string) ([]string, error)
}

// Reconciler implements pilet.Reconciler by copying files from the base
// package install directory into the project.
type Reconciler struct {
	resolver ConflictResolver
	store    *SnapshotStore
	reporter pilet.Reporter
}

// NewReconciler creates a reconciler. store may be nil to skip snapshot
// persistence; resolver is only consulted under the prompt policy.
func NewReconciler(resolver ConflictResolver, store *SnapshotStore, reporter pilet.Reporter) *Reconciler {
	return &Reconciler{
		resolver: resolver,
		store:    store,
		reporter: reporter,
	}
}

// Snapshot hashes the current content of the managed files and persists the
// result when a store is configured. Hashes from the previous persisted run
// are carried forward for files outside the current managed set, so a file
// the new base package starts managing can still be recognized as untouched.
func (r *Reconciler) Snapshot(root string, files []pilet.FileSpec) (pilet.FileSnapshot, error) {
	var prior pilet.FileSnapshot
	if r.store != nil {
		if record, err := r.store.Latest(root); err == nil && record != nil {
			prior = record.Files
		}
	}

	snap := make(pilet.FileSnapshot)

	for _, spec := range files {
		target := filepath.Join(root, spec.Target())
		info, err := os.Stat(target)
		if err != nil {
			continue // not present yet, nothing to snapshot
		}

		if info.IsDir() {
			err := filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() {
					return err
				}
				rel, relErr := filepath.Rel(root, path)
				if relErr != nil {
					return relErr
				}
				hash, hashErr := hashFile(path)
				if hashErr != nil {
					return hashErr
				}
				snap[filepath.ToSlash(rel)] = hash
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("snapshotting %s: %w", target, err)
			}
			continue
		}

		hash, err := hashFile(target)
		if err != nil {
			return nil, fmt.Errorf("snapshotting %s: %w", target, err)
		}
		snap[filepath.ToSlash(spec.Target())] = hash
	}

	if r.store != nil {
		if err := r.store.Save(root, snap); err != nil {
			return nil, err
		}
	}

	// The persisted record holds only current hashes; the merged view is for
	// this run's overwrite decisions.
	for rel, hash := range prior {
		if _, ok := snap[rel]; !ok {
			snap[rel] = hash
		}
	}
	return snap, nil
}

// Reconcile copies the template files into the project, honoring the
// overwrite policy against the pre-install snapshot.
func (r *Reconciler) Reconcile(ctx context.Context, root, sourceDir string, files []pilet.FileSpec, policy pilet.ForceOverwrite, snap pilet.FileSnapshot) error {
	plan, err := buildPlan(root, sourceDir, files)
	if err != nil {
		return err
	}

	var conflicts []copyItem
	for _, item := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}

		action, err := decide(item, policy, snap)
		if err != nil {
			return err
		}

		switch action {
		case actionWrite:
			if err := copyFile(item.source, item.dest); err != nil {
				return err
			}
		case actionSkip:
			// identical content, nothing to do
		case actionKeep:
			r.reporter.Warn("Keeping modified file %s (policy: %s)", item.rel, policy)
		case actionAsk:
			conflicts = append(conflicts, item)
		}
	}

	if len(conflicts) == 0 {
		return nil
	}

	names := make([]string, len(conflicts))
	byRel := make(map[string]copyItem, len(conflicts))
	for i, item := range conflicts {
		names[i] = item.rel
		byRel[item.rel] = item
	}

	chosen, err := r.resolver.ResolveConflicts(names)
	if err != nil {
		return fmt.Errorf("resolving file conflicts: %w", err)
	}
	for _, rel := range chosen {
		item, ok := byRel[rel]
		if !ok {
			continue
		}
		if err := copyFile(item.source, item.dest); err != nil {
			return err
		}
	}
	for _, rel := range names {
		if !contains(chosen, rel) {
			r.reporter.Warn("Keeping modified file %s", rel)
		}
	}
	return nil
}

type copyAction int

const (
	actionWrite copyAction = iota
	actionSkip
	actionKeep
	actionAsk
)

// copyItem is one concrete source-to-destination file pair.
type copyItem struct {
	rel    string // destination path relative to the pilet root
	source string
	dest   string
}

// buildPlan expands the file specs into concrete file pairs, walking deep
// entries recursively.
func buildPlan(root, sourceDir string, files []pilet.FileSpec) ([]copyItem, error) {
	var plan []copyItem

	for _, spec := range files {
		source := filepath.Join(sourceDir, spec.From)
		info, err := os.Stat(source)
		if err != nil {
			// The base package stopped shipping this file; nothing to copy.
			continue
		}

		if info.IsDir() {
			if !spec.Deep {
				continue
			}
			err := filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() {
					return err
				}
				inner, relErr := filepath.Rel(source, path)
				if relErr != nil {
					return relErr
				}
				rel := filepath.ToSlash(filepath.Join(spec.Target(), inner))
				plan = append(plan, copyItem{
					rel:    rel,
					source: path,
					dest:   filepath.Join(root, spec.Target(), inner),
				})
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walking %s: %w", source, err)
			}
			continue
		}

		plan = append(plan, copyItem{
			rel:    filepath.ToSlash(spec.Target()),
			source: source,
			dest:   filepath.Join(root, spec.Target()),
		})
	}

	return plan, nil
}

// decide picks the action for one file pair. Files the user never touched
// (destination still matches the snapshot) are overwritten silently even
// under the prompt policy.
func decide(item copyItem, policy pilet.ForceOverwrite, snap pilet.FileSnapshot) (copyAction, error) {
	if _, err := os.Stat(item.dest); err != nil {
		return actionWrite, nil
	}

	sourceHash, err := hashFile(item.source)
	if err != nil {
		return actionSkip, err
	}
	destHash, err := hashFile(item.dest)
	if err != nil {
		return actionSkip, err
	}
	if sourceHash == destHash {
		return actionSkip, nil
	}

	switch policy {
	case pilet.OverwriteYes:
		return actionWrite, nil
	case pilet.OverwritePrompt:
		original, known := snap[item.rel]
		if known && destHash == original {
			return actionWrite, nil
		}
		return actionAsk, nil
	default:
		return actionKeep, nil
	}
}

// copyFile copies source to dest, creating parent directories as needed.
func copyFile(source, dest string) error {
	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("reading %s: %w", source, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// hashFile returns the hex sha256 of a file's content.
func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
