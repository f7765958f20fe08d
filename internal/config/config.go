// Package config holds the repair run configuration record.
//
// The pipeline takes an explicit configuration value; there is no
// process-wide state. The record is JSON-loadable so batch jobs can keep a
// config file next to their data roots, and the CLI overlays flag values on
// top of whatever the file provides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RepairConfig is the root configuration for a repair or sweep run. Fields
// omitted from the JSON file retain their default values, so partial configs
// are safe.
type RepairConfig struct {
	// Input roots
	RadianceRoot *string `json:"radiance_root,omitempty"`
	RCCMRoot     *string `json:"rccm_root,omitempty"`

	// Stage options
	Edge            *bool   `json:"edge,omitempty"`
	TestID          *string `json:"test_id,omitempty"`
	FirstLine       []int   `json:"first_line,omitempty"` // 9 entries; negative skips the camera
	LastLine        []int   `json:"last_line,omitempty"`
	Stage3MaxIter   *int    `json:"stage3_max_iterations,omitempty"`

	// Output destinations; empty disables the sink
	LogDir  *string `json:"log_dir,omitempty"`
	SaveDir *string `json:"save_dir,omitempty"`
	MapDir  *string `json:"map_dir,omitempty"`

	// DBPath is the sqlite database for sweep results and the save index.
	DBPath *string `json:"db_path,omitempty"`
}

const numCameras = 9

// Load reads a RepairConfig from a JSON file.
func Load(path string) (*RepairConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &RepairConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *RepairConfig) Validate() error {
	if c.FirstLine != nil && len(c.FirstLine) != numCameras {
		return fmt.Errorf("first_line must have %d entries, got %d", numCameras, len(c.FirstLine))
	}
	if c.LastLine != nil && len(c.LastLine) != numCameras {
		return fmt.Errorf("last_line must have %d entries, got %d", numCameras, len(c.LastLine))
	}
	for i, v := range c.FirstLine {
		if v > 127 {
			return fmt.Errorf("first_line[%d] = %d out of range 0..127", i, v)
		}
	}
	for i, v := range c.LastLine {
		if v > 127 {
			return fmt.Errorf("last_line[%d] = %d out of range 0..127", i, v)
		}
	}
	if c.Stage3MaxIter != nil && *c.Stage3MaxIter < 1 {
		return fmt.Errorf("stage3_max_iterations must be positive, got %d", *c.Stage3MaxIter)
	}
	return nil
}

// GetEdge returns the edge-extension setting or the default (disabled).
func (c *RepairConfig) GetEdge() bool {
	if c.Edge == nil {
		return false
	}
	return *c.Edge
}

// GetTestID returns the harness id or "" (harness disabled).
func (c *RepairConfig) GetTestID() string {
	if c.TestID == nil {
		return ""
	}
	return *c.TestID
}

// GetStage3MaxIter returns the Stage 3 iteration cap or 0 (package default).
func (c *RepairConfig) GetStage3MaxIter() int {
	if c.Stage3MaxIter == nil {
		return 0
	}
	return *c.Stage3MaxIter
}

// GetLine returns the nine-element line bound array, filling absent configs
// with the skip sentinel.
func GetLine(vals []int) [numCameras]int {
	var out [numCameras]int
	for i := range out {
		out[i] = -1
	}
	for i := 0; i < len(vals) && i < numCameras; i++ {
		out[i] = vals[i]
	}
	return out
}

// GetString returns *s or "".
func GetString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
