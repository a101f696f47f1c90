package pilet

import (
	"context"
	"fmt"
	"os"
	"strings"

	"piletctl/pkg/npm"
)

// ForceOverwrite governs whether template-managed files that diverged from
// their original content are replaced during reconciliation.
type ForceOverwrite int

const (
	// OverwriteNo keeps diverged files untouched.
	OverwriteNo ForceOverwrite = iota
	// OverwritePrompt asks for each file the user has modified.
	OverwritePrompt
	// OverwriteYes replaces diverged files without asking.
	OverwriteYes
)

// String returns the CLI spelling of the policy.
func (f ForceOverwrite) String() string {
	switch f {
	case OverwritePrompt:
		return "prompt"
	case OverwriteYes:
		return "yes"
	default:
		return "no"
	}
}

// ParseForceOverwrite parses the CLI spelling of an overwrite policy.
func ParseForceOverwrite(s string) (ForceOverwrite, error) {
	switch s {
	case "no", "never", "":
		return OverwriteNo, nil
	case "prompt":
		return OverwritePrompt, nil
	case "yes", "always":
		return OverwriteYes, nil
	}
	return OverwriteNo, fmt.Errorf("invalid force-overwrite policy %q (expected no, prompt, or yes)", s)
}

// FileSnapshot maps template-managed file paths (relative to the pilet root)
// to content hashes captured before installation.
type FileSnapshot map[string]string

// Reconciler reconciles template-managed files against a freshly installed
// base package.
type Reconciler interface {
	// Snapshot captures the current content hashes of the managed files.
	Snapshot(root string, files []FileSpec) (FileSnapshot, error)

	// Reconcile copies template files from the base package install directory
	// into the pilet, honoring the overwrite policy against the snapshot.
	Reconcile(ctx context.Context, root, sourceDir string, files []FileSpec, policy ForceOverwrite, snap FileSnapshot) error
}

// ScriptRunner executes lifecycle hook scripts.
type ScriptRunner interface {
	RunScript(ctx context.Context, dir, script string) error
}

// Reporter emits progress and advisory messages. Decision logic never prints;
// it hands notices to the orchestrator, which reports them here.
type Reporter interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
}

// UpgradeContext carries the state of one upgrade invocation. It is owned
// exclusively by the orchestrator for the duration of the run.
type UpgradeContext struct {
	Root             string
	BaseName         string
	CurrentVersion   string
	RequestedVersion string
	IsLocal          bool
	IsLinked         bool
	Reference        string
	// PackageVersion is recorded into devDependencies after install. Empty
	// means the package manager already wrote the resolved version.
	PackageVersion string
}

// Options configure one upgrade invocation.
type Options struct {
	// Root is the pilet project directory.
	Root string
	// Version is the requested target: a tag, a semver range, a local path,
	// or empty for "latest".
	Version string
	// ForceOverwrite is the reconciliation policy for diverged files.
	ForceOverwrite ForceOverwrite
}

// Orchestrator sequences the upgrade of a pilet's base package. Stages run
// strictly in order; the first failure is terminal and nothing is rolled back.
type Orchestrator struct {
	client     npm.Client
	reconciler Reconciler
	scripts    ScriptRunner
	reporter   Reporter
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(client npm.Client, reconciler Reconciler, scripts ScriptRunner, reporter Reporter) *Orchestrator {
	return &Orchestrator{
		client:     client,
		reconciler: reconciler,
		scripts:    scripts,
		reporter:   reporter,
	}
}

// Upgrade runs the full upgrade sequence:
// validate target, read manifest, resolve reference, verify file sources,
// pre-upgrade hook, install, patch manifest and reconcile files, reinstall
// dependencies, post-upgrade hook, clear caches.
func (o *Orchestrator) Upgrade(ctx context.Context, opts Options) error {
	uctx, err := o.prepare(opts)
	if err != nil {
		return err
	}

	// Hooks and template files come from the currently installed base package.
	meta, err := ReadBaseMeta(uctx.Root, uctx.BaseName)
	if err != nil {
		return err
	}

	if hook := meta.Hooks().PreUpgrade; hook != "" {
		o.reporter.Info("Running pre-upgrade hook")
		if err := o.scripts.RunScript(ctx, uctx.Root, hook); err != nil {
			return fmt.Errorf("pre-upgrade hook failed: %w", err)
		}
	}

	snap, err := o.snapshotFiles(uctx, meta)
	if err != nil {
		return err
	}

	o.reporter.Info("Installing %s", uctx.Reference)
	if err := o.client.InstallPackage(ctx, uctx.Root, uctx.Reference); err != nil {
		return fmt.Errorf("installing %s: %w", uctx.Reference, err)
	}

	if err := o.patchAndReconcile(ctx, uctx, opts.ForceOverwrite, snap); err != nil {
		return err
	}

	o.reporter.Info("Reinstalling dependencies")
	if err := o.client.InstallDependencies(ctx, uctx.Root); err != nil {
		return fmt.Errorf("reinstalling dependencies: %w", err)
	}

	// The new base package may declare a different post-upgrade hook.
	newMeta, err := ReadBaseMeta(uctx.Root, uctx.BaseName)
	if err != nil {
		return err
	}
	if hook := newMeta.Hooks().PostUpgrade; hook != "" {
		o.reporter.Info("Running post-upgrade hook")
		if err := o.scripts.RunScript(ctx, uctx.Root, hook); err != nil {
			return fmt.Errorf("post-upgrade hook failed: %w", err)
		}
	}

	if err := ClearCache(uctx.Root); err != nil {
		return err
	}

	return nil
}

// prepare runs the side-effect-free stages: target validation, manifest
// reading, reference resolution, and file-existence verification.
func (o *Orchestrator) prepare(opts Options) (*UpgradeContext, error) {
	info, err := os.Stat(opts.Root)
	if err != nil || !info.IsDir() || !HasManifest(opts.Root) {
		return nil, fmt.Errorf("%w: %s", ErrNotAPilet, opts.Root)
	}

	manifest, err := LoadManifest(opts.Root)
	if err != nil {
		return nil, err
	}
	if manifest.Piral == nil || manifest.Piral.Name == "" {
		return nil, ErrNoPiralSection
	}

	uctx := &UpgradeContext{
		Root:             opts.Root,
		BaseName:         manifest.Piral.Name,
		RequestedVersion: opts.Version,
	}
	if uctx.RequestedVersion == "" {
		uctx.RequestedVersion = "latest"
	}
	uctx.CurrentVersion = manifest.DevDependencies[uctx.BaseName]
	uctx.IsLinked = strings.HasPrefix(uctx.CurrentVersion, "link:")
	uctx.IsLocal = npm.IsLocalPackage(uctx.Root, uctx.RequestedVersion)

	if uctx.IsLinked {
		o.reporter.Warn("%s is linked for local development; the link will be replaced by the installed package", uctx.BaseName)
	}

	resolution, notices := npm.ResolveCurrent(uctx.BaseName, uctx.CurrentVersion, uctx.RequestedVersion, uctx.IsLocal)
	for _, n := range notices {
		if n.Level == npm.NoticeWarn {
			o.reporter.Warn("%s", n.Message)
		} else {
			o.reporter.Info("%s", n.Message)
		}
	}
	uctx.Reference = resolution.Reference
	uctx.PackageVersion = resolution.Version

	if uctx.IsLocal {
		spec := npm.Parse(uctx.Root, uctx.RequestedVersion)
		if _, err := os.Stat(spec.Name); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingFileReference, spec.Name)
		}
	}

	return uctx, nil
}

// snapshotFiles captures the managed files before installation so diverged
// files can be detected during reconciliation.
func (o *Orchestrator) snapshotFiles(uctx *UpgradeContext, meta *BaseMeta) (FileSnapshot, error) {
	files := o.managedFiles(uctx.Root, meta)
	if len(files) == 0 {
		return nil, nil
	}
	snap, err := o.reconciler.Snapshot(uctx.Root, files)
	if err != nil {
		return nil, fmt.Errorf("capturing file snapshot: %w", err)
	}
	return snap, nil
}

// patchAndReconcile records the new base package version in the manifest and
// reconciles the template-managed files from the freshly installed package.
func (o *Orchestrator) patchAndReconcile(ctx context.Context, uctx *UpgradeContext, policy ForceOverwrite, snap FileSnapshot) error {
	// The package manager rewrote package.json during install; re-read it.
	manifest, err := LoadManifest(uctx.Root)
	if err != nil {
		return err
	}
	if uctx.PackageVersion != "" {
		if manifest.DevDependencies == nil {
			manifest.DevDependencies = make(map[string]string)
		}
		manifest.DevDependencies[uctx.BaseName] = uctx.PackageVersion
		if err := SaveManifest(uctx.Root, manifest); err != nil {
			return err
		}
	}

	newMeta, err := ReadBaseMeta(uctx.Root, uctx.BaseName)
	if err != nil {
		return err
	}
	files := o.managedFiles(uctx.Root, newMeta)
	if len(files) == 0 {
		return nil
	}

	o.reporter.Info("Reconciling %d template file(s)", len(files))
	sourceDir := BaseDir(uctx.Root, uctx.BaseName)
	if err := o.reconciler.Reconcile(ctx, uctx.Root, sourceDir, files, policy, snap); err != nil {
		return fmt.Errorf("reconciling template files: %w", err)
	}
	return nil
}

// managedFiles returns the template file list, preferring the pilet's own
// declaration over the base package's.
func (o *Orchestrator) managedFiles(root string, meta *BaseMeta) []FileSpec {
	manifest, err := LoadManifest(root)
	if err == nil && manifest.Piral != nil && len(manifest.Piral.Files) > 0 {
		return manifest.Piral.Files
	}
	if meta != nil {
		return meta.Files
	}
	return nil
}
