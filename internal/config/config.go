package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	booterrors "github.com/pipeboot/pipeboot/internal/errors"
)

// Config holds version pins, paths, and endpoints for a bootstrap run.
// Every field has a compiled-in default; a YAML file overrides per key.
type Config struct {
	PythonVersion string `yaml:"python_version"`
	PoetryVersion string `yaml:"poetry_version"`
	MakeVersion   string `yaml:"make_version"`

	VenvPath     string `yaml:"venv_path"`
	EnvFile      string `yaml:"env_file"`
	MakefileDir  string `yaml:"makefile_dir"`
	ShellProfile string `yaml:"shell_profile"`

	IMDSEndpoint string `yaml:"imds_endpoint"`
	SearchQuery  string `yaml:"search_query"`

	// RequiredEnvKeys are reported (not enforced) at the .env review pause.
	RequiredEnvKeys []string `yaml:"required_env_keys"`
}

// DefaultIMDSEndpoint is the Azure instance-metadata location query.
const DefaultIMDSEndpoint = "http://169.254.169.254/metadata/instance/compute/location?api-version=2021-02-01&format=text"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		PythonVersion: "3.10",
		PoetryVersion: "1.5.1",
		MakeVersion:   "4.3",
		VenvPath:      "~/venv",
		EnvFile:       ".env",
		MakefileDir:   ".",
		ShellProfile:  "~/.bashrc",
		IMDSEndpoint:  DefaultIMDSEndpoint,
		SearchQuery:   "What is the latest financial news about Tesla?",
		RequiredEnvKeys: []string{
			"ALPACA_API_KEY",
			"ALPACA_API_SECRET",
			"QDRANT_URL",
			"QDRANT_API_KEY",
		},
	}
}

// LoadFile reads a YAML config file over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Load(data)
}

// Load parses config YAML bytes over the defaults.
func Load(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the pins and paths a run depends on are set.
func (c *Config) Validate() error {
	missing := ""
	switch {
	case c.PythonVersion == "":
		missing = "python_version"
	case c.PoetryVersion == "":
		missing = "poetry_version"
	case c.MakeVersion == "":
		missing = "make_version"
	case c.VenvPath == "":
		missing = "venv_path"
	case c.EnvFile == "":
		missing = "env_file"
	case c.SearchQuery == "":
		missing = "search_query"
	}
	if missing != "" {
		return &booterrors.RunError{
			Type:    booterrors.ConfigError,
			Message: fmt.Sprintf("config field %q must not be empty", missing),
		}
	}
	return nil
}

// ExpandedVenvPath resolves a leading ~/ in the venv path.
func (c *Config) ExpandedVenvPath() string {
	return expandHome(c.VenvPath)
}

// ExpandedShellProfile resolves a leading ~/ in the shell profile path.
func (c *Config) ExpandedShellProfile() string {
	return expandHome(c.ShellProfile)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
