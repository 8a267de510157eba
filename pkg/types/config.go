// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// LocateConfig holds settings for single-text marker lookups.
type LocateConfig struct {
	// Marker is the token to search for (default "Helpful Answer:").
	Marker string `json:"marker" yaml:"marker"`
}

// ExtractionConfig holds settings for the batch extraction stage.
type ExtractionConfig struct {
	LocateConfig `yaml:",inline"`

	// FixturesDir is the directory holding fixture files (*.yaml, *.yml, *.txt).
	FixturesDir string `json:"fixtures_dir" yaml:"fixtures_dir"`

	// OutputDir is the base directory for results (contains extracted/, index/).
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// StoreConfig holds settings for the answer store.
type StoreConfig struct {
	// OutputDir is the base directory for results (contains extracted/, index/).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default warn).
	Level string `json:"level" yaml:"level"`
}

// Config groups the per-stage settings. The CLI assembles it from flat
// config keys (marker, fixtures_dir, output_dir, max_results, log_level).
type Config struct {
	Locate     LocateConfig
	Extraction ExtractionConfig
	Store      StoreConfig
	Log        LogConfig
}
