//go:build !windows

package executor

import (
	"context"
	"os/exec"
)

// shellCommand builds a command that runs a script line through the shell.
func shellCommand(ctx context.Context, script string) *exec.Cmd {
	return exec.CommandContext(ctx, "sh", "-c", script)
}
