// Package config loads and validates sumlower.yaml, the project file that
// names the sources to lower, where the rendering goes, and which engine
// versions the project accepts.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	semver "github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level sumlower.yaml configuration.
type Config struct {
	// Inputs lists the source files to lower, relative to the config file.
	Inputs []string `yaml:"inputs"`

	// Output is the path the lowered rendering is written to. Defaults to
	// DefaultOutputFile. "-" writes to stdout.
	Output string `yaml:"output,omitempty"`

	// Watch keeps the process alive and re-runs the lowering whenever an
	// input changes. The -watch flag overrides it.
	Watch bool `yaml:"watch,omitempty"`

	// Requires is a semver constraint the running engine version must
	// satisfy (e.g. ">= 0.4, < 1.0").
	Requires string `yaml:"requires,omitempty"`

	dir string
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse parses raw config data. path is used for error messages only.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) validate(path string) error {
	if len(c.Inputs) == 0 {
		return fmt.Errorf("%s: no inputs defined", path)
	}
	for i, in := range c.Inputs {
		if in == "" {
			return fmt.Errorf("%s: inputs[%d]: path is required", path, i)
		}
		if !isSourceFile(in) {
			return fmt.Errorf("%s: inputs[%d] (%s): unrecognized extension, want one of %s",
				path, i, in, strings.Join(SourceFileExtensions, ", "))
		}
	}
	if c.Requires != "" {
		constraint, err := semver.NewConstraint(c.Requires)
		if err != nil {
			return fmt.Errorf("%s: requires: invalid constraint %q: %w", path, c.Requires, err)
		}
		engine := semver.MustParse(EngineVersion)
		if !constraint.Check(engine) {
			return fmt.Errorf("%s: requires %q, running engine is %s", path, c.Requires, EngineVersion)
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Output == "" {
		c.Output = DefaultOutputFile
	}
}

// InputPaths returns the input files resolved against the config file's
// directory.
func (c *Config) InputPaths() []string {
	paths := make([]string, len(c.Inputs))
	for i, in := range c.Inputs {
		if filepath.IsAbs(in) || c.dir == "" {
			paths[i] = in
			continue
		}
		paths[i] = filepath.Join(c.dir, in)
	}
	return paths
}

// OutputPath returns the output file resolved against the config file's
// directory; "-" passes through untouched.
func (c *Config) OutputPath() string {
	if c.Output == "-" || filepath.IsAbs(c.Output) || c.dir == "" {
		return c.Output
	}
	return filepath.Join(c.dir, c.Output)
}

func isSourceFile(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
