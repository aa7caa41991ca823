// Package config loads the package manifest (drft.yaml) that
// internal/state's path resolver walks ancestor directories to find: the
// file marking a directory as a package root, and carrying the handful of
// settings a stack needs before it can build its own Stack value in code.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the typed form of drft.yaml: a stack name and the default
// provider list a stack loader should wire up unless the caller overrides
// it. Providers themselves are still constructed and configured in Go
// code; this only names which ones a given package expects by default.
type Manifest struct {
	Stack     string            `yaml:"stack"`
	Providers []string          `yaml:"providers"`
	Settings  map[string]string `yaml:"settings"`
}

// Load reads and parses a drft.yaml file at path.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &m, nil
}
