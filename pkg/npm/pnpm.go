package npm

import (
	"context"
	"fmt"

	"piletctl/internal/executor"
)

// PnpmClient wraps the pnpm CLI.
type PnpmClient struct {
	baseClient
}

// NewPnpm creates a pnpm client backed by the given executor.
func NewPnpm(exec *executor.Executor) *PnpmClient {
	return &PnpmClient{
		baseClient: newBaseClient("pnpm", "pnpm", "pnpm", exec),
	}
}

// InstallPackage adds a reference as a dev dependency without writing
// pnpm-lock.yaml.
func (c *PnpmClient) InstallPackage(ctx context.Context, dir, reference string) error {
	if err := c.exec.Run(ctx, dir, c.binary, "add", reference, "--save-dev", "--config.lockfile=false"); err != nil {
		return fmt.Errorf("pnpm add %s: %w", reference, err)
	}
	return nil
}

// InstallDependencies runs a full pnpm install for the project.
func (c *PnpmClient) InstallDependencies(ctx context.Context, dir string) error {
	if err := c.exec.Run(ctx, dir, c.binary, "install"); err != nil {
		return fmt.Errorf("pnpm install: %w", err)
	}
	return nil
}
