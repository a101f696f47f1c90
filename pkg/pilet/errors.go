package pilet

import "errors"

var (
	// ErrNotAPilet is returned when the target directory has no package.json.
	ErrNotAPilet = errors.New("target directory is not a pilet project (no package.json found)")

	// ErrNoPiralSection is returned when the manifest lacks a piral section,
	// so there is no base package to upgrade.
	ErrNoPiralSection = errors.New("package.json has no piral section; nothing to upgrade")

	// ErrMissingFileReference is returned when a resolved local package file
	// does not exist on disk.
	ErrMissingFileReference = errors.New("local package file does not exist")
)
