// Package config loads the engine's tunable constants — the values
// §4.4 and §9 ask implementations to fix and document rather than
// scatter through the codebase as literals.
package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds every constant the CFG Similarity and Matcher
// components need beyond what a caller passes explicitly (threshold,
// ratio, regex).
type Config struct {
	// Alpha weights structural vs content similarity (§4.4). Default 0.4.
	Alpha float64 `yaml:"alpha"`
	// FingerprintSlack bounds the §4.3 prefilter.
	FingerprintSlack int `yaml:"fingerprint_slack"`
	// ExactMatchBudget is the |A|*|B| ceiling above which §4.4's
	// content component falls back to greedy bipartite matching.
	ExactMatchBudget int `yaml:"exact_match_budget"`
	// DefaultThreshold is used by the CLI when -t/--threshold is unset.
	DefaultThreshold float64 `yaml:"default_threshold"`
	// Workers bounds the errgroup concurrency used by package grapher.
	Workers int `yaml:"workers"`
}

// Default returns the engine constants documented in SPEC_FULL.md.
func Default() Config {
	return Config{
		Alpha:            0.4,
		FingerprintSlack: 1,
		ExactMatchBudget: 2500,
		DefaultThreshold: 0.0,
		Workers:          8,
	}
}

// Load reads a YAML configuration file, filling in any field the file
// omits with Default's value. A missing file is not an error: Load
// falls back to Default entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	overrides := Default()
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return cfg, err
	}
	return overrides, nil
}
