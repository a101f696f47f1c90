package npm

import "piletctl/internal/executor"

// baseClient provides common state for all npm-compatible clients.
type baseClient struct {
	name        string
	displayName string
	binary      string
	exec        *executor.Executor
}

func newBaseClient(name, displayName, binary string, exec *executor.Executor) baseClient {
	if exec == nil {
		exec = executor.New(false, false)
	}
	return baseClient{
		name:        name,
		displayName: displayName,
		binary:      binary,
		exec:        exec,
	}
}

// Name returns the short identifier for this client.
func (b *baseClient) Name() string {
	return b.name
}

// DisplayName returns the human-readable name.
func (b *baseClient) DisplayName() string {
	return b.displayName
}

// IsAvailable returns true if the client binary is installed.
func (b *baseClient) IsAvailable() bool {
	return binaryAvailable(b.binary)
}
