package npm

import (
	"context"
	"fmt"

	"piletctl/internal/executor"
)

// NpmClient wraps the npm CLI.
type NpmClient struct {
	baseClient
}

// NewNpm creates an npm client backed by the given executor.
func NewNpm(exec *executor.Executor) *NpmClient {
	return &NpmClient{
		baseClient: newBaseClient("npm", "npm", "npm", exec),
	}
}

// InstallPackage installs a reference as a dev dependency without touching
// the lockfile.
func (c *NpmClient) InstallPackage(ctx context.Context, dir, reference string) error {
	if err := c.exec.Run(ctx, dir, c.binary, "install", reference, "--save-dev", "--no-package-lock"); err != nil {
		return fmt.Errorf("npm install %s: %w", reference, err)
	}
	return nil
}

// InstallDependencies runs a full npm install for the project.
func (c *NpmClient) InstallDependencies(ctx context.Context, dir string) error {
	if err := c.exec.Run(ctx, dir, c.binary, "install"); err != nil {
		return fmt.Errorf("npm install: %w", err)
	}
	return nil
}
