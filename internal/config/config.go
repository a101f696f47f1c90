// Package config loads and saves piletctl configuration.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the complete piletctl configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Output  OutputConfig  `toml:"output"`
	Upgrade UpgradeConfig `toml:"upgrade"`
}

// GeneralConfig contains general settings.
type GeneralConfig struct {
	// NpmClient forces a package manager client ("npm", "yarn", "pnpm").
	// Empty means detect from the project's lockfile.
	NpmClient string `toml:"npm_client"`

	// AutoConfirm skips confirmation prompts when true (like -y flag).
	AutoConfirm bool `toml:"auto_confirm"`

	// DryRun shows what would happen without executing when true.
	DryRun bool `toml:"dry_run"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	// Color enables colored output (respects NO_COLOR env var).
	Color bool `toml:"color"`

	// Unicode enables unicode symbols in output.
	Unicode bool `toml:"unicode"`

	// Verbose enables detailed output.
	Verbose bool `toml:"verbose"`
}

// UpgradeConfig contains upgrade defaults.
type UpgradeConfig struct {
	// ForceOverwrite is the default overwrite policy for template files
	// ("no", "prompt", "yes").
	ForceOverwrite string `toml:"force_overwrite"`

	// KeepSnapshots enables persisting pre-upgrade file snapshots.
	KeepSnapshots bool `toml:"keep_snapshots"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			NpmClient:   "",
			AutoConfirm: false,
			DryRun:      false,
		},
		Output: OutputConfig{
			Color:   true,
			Unicode: true,
			Verbose: false,
		},
		Upgrade: UpgradeConfig{
			ForceOverwrite: "no",
			KeepSnapshots:  true,
		},
	}
}

// Load loads the configuration from the default path.
// If the config file doesn't exist, it returns the default configuration.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the configuration from a specific path.
// If the config file doesn't exist, it returns the default configuration.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

// ShouldUseColor returns whether colored output should be used,
// respecting the NO_COLOR environment variable.
func (c *Config) ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return c.Output.Color
}
