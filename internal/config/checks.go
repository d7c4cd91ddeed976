// Package config provides configuration management for the host monitor.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"hostmon/internal/model"
)

// LoadChecks reads check definitions from the specified YAML file.
// An empty path returns the built-in definitions for the four resource checks.
func LoadChecks(checksPath string) ([]*model.CheckDefinition, error) {
	if checksPath == "" {
		return model.DefaultChecks(), nil
	}

	// Check if file exists
	if _, err := os.Stat(checksPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("checks file not found: %s", checksPath)
	}

	// Read file content
	data, err := os.ReadFile(checksPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read checks file: %w", err)
	}

	// Parse YAML
	var cfg model.ChecksConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse checks file: %w", err)
	}

	if len(cfg.Checks) == 0 {
		return nil, fmt.Errorf("no checks defined in file: %s", checksPath)
	}

	// Validate each check definition
	known := map[string]bool{
		model.CheckCPU:    true,
		model.CheckMemory: true,
		model.CheckLoad:   true,
		model.CheckDisk:   true,
	}
	seen := make(map[string]bool, len(cfg.Checks))
	for i, c := range cfg.Checks {
		if c.Name == "" {
			return nil, fmt.Errorf("check at index %d has no name", i)
		}
		if !known[c.Name] {
			return nil, fmt.Errorf("unknown check %q (valid: cpu, memory, load, disk)", c.Name)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate check %q", c.Name)
		}
		seen[c.Name] = true
	}

	return cfg.Checks, nil
}

// CountEnabledChecks returns the count of enabled checks.
func CountEnabledChecks(checks []*model.CheckDefinition) int {
	count := 0
	for _, c := range checks {
		if c.IsEnabled() {
			count++
		}
	}
	return count
}
