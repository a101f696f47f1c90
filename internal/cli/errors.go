package cli

import "errors"

var (
	// ErrNoClient is returned when no package manager client is available.
	ErrNoClient = errors.New("no npm-compatible package manager found; install npm, yarn, or pnpm")

	// ErrAborted is returned when the user aborts an operation.
	ErrAborted = errors.New("operation aborted by user")
)
