package npm

import (
	"context"
	"fmt"

	"piletctl/internal/executor"
)

// YarnClient wraps the yarn CLI.
type YarnClient struct {
	baseClient
}

// NewYarn creates a yarn client backed by the given executor.
func NewYarn(exec *executor.Executor) *YarnClient {
	return &YarnClient{
		baseClient: newBaseClient("yarn", "Yarn", "yarn", exec),
	}
}

// InstallPackage adds a reference as a dev dependency without writing yarn.lock.
func (c *YarnClient) InstallPackage(ctx context.Context, dir, reference string) error {
	if err := c.exec.Run(ctx, dir, c.binary, "add", reference, "--dev", "--no-lockfile"); err != nil {
		return fmt.Errorf("yarn add %s: %w", reference, err)
	}
	return nil
}

// InstallDependencies runs a full yarn install for the project.
func (c *YarnClient) InstallDependencies(ctx context.Context, dir string) error {
	if err := c.exec.Run(ctx, dir, c.binary, "install"); err != nil {
		return fmt.Errorf("yarn install: %w", err)
	}
	return nil
}
