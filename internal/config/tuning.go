package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rtk-robotics/rover/internal/nav"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for tuning parameters.
// Every field is optional; Apply merges the set fields over the stock
// navigation defaults, so partial configs are safe.
type TuningConfig struct {
	// Map geometry
	MapWidth         *int     `json:"map_width,omitempty"`
	MapHeight        *int     `json:"map_height,omitempty"`
	ResolutionMeters *float64 `json:"resolution_meters,omitempty"`

	// Scan ingestion filter
	MinSampleQuality   *float64 `json:"min_sample_quality,omitempty"`
	MinScanRangeMeters *float64 `json:"min_scan_range_meters,omitempty"`
	MaxScanRangeMeters *float64 `json:"max_scan_range_meters,omitempty"`

	// Planning params
	SafetyMarginMeters *float64 `json:"safety_margin_meters,omitempty"`
	OccupiedThreshold  *float64 `json:"occupied_threshold,omitempty"`

	// Safety params
	MinObstacleDistanceMeters *float64 `json:"min_obstacle_distance_meters,omitempty"`
	FrontSectorDeg            *float64 `json:"front_sector_deg,omitempty"`

	// Path following params
	WaypointRadiusMeters *float64 `json:"waypoint_radius_meters,omitempty"`
	AngularGain          *float64 `json:"angular_gain,omitempty"`
	MaxAngularVelocity   *float64 `json:"max_angular_velocity,omitempty"`
	LinearGain           *float64 `json:"linear_gain,omitempty"`
	MaxLinearVelocity    *float64 `json:"max_linear_velocity,omitempty"`
	HeadingToleranceRad  *float64 `json:"heading_tolerance_rad,omitempty"`

	// Control loop params
	LoopInterval *string `json:"loop_interval,omitempty"` // duration string like "10ms"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. Apply provides fallback defaults for
	// any fields not specified in the JSON.
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid. Only the fields
// with constraints a merge cannot catch are checked here; the merged result
// still goes through the navigation stack's own validation.
func (c *TuningConfig) Validate() error {
	if c.OccupiedThreshold != nil {
		if *c.OccupiedThreshold <= 0 || *c.OccupiedThreshold > 1 {
			return fmt.Errorf("occupied_threshold must be in (0, 1], got %f", *c.OccupiedThreshold)
		}
	}

	if c.LoopInterval != nil && *c.LoopInterval != "" {
		if _, err := time.ParseDuration(*c.LoopInterval); err != nil {
			return fmt.Errorf("invalid loop_interval '%s': %w", *c.LoopInterval, err)
		}
	}

	if c.MapWidth != nil && *c.MapWidth <= 0 {
		return fmt.Errorf("map_width must be positive, got %d", *c.MapWidth)
	}
	if c.MapHeight != nil && *c.MapHeight <= 0 {
		return fmt.Errorf("map_height must be positive, got %d", *c.MapHeight)
	}

	return nil
}

// GetLoopInterval parses and returns the LoopInterval as a time.Duration.
func (c *TuningConfig) GetLoopInterval() time.Duration {
	if c.LoopInterval == nil || *c.LoopInterval == "" {
		return 10 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.LoopInterval)
	if err != nil {
		return 10 * time.Millisecond // default on parse error
	}
	return d
}

// Apply merges the set fields over base and returns the result.
func (c *TuningConfig) Apply(base nav.Config) nav.Config {
	if c.MapWidth != nil {
		base.MapWidth = *c.MapWidth
	}
	if c.MapHeight != nil {
		base.MapHeight = *c.MapHeight
	}
	if c.ResolutionMeters != nil {
		base.ResolutionMeters = *c.ResolutionMeters
	}
	if c.MinSampleQuality != nil {
		base.MinSampleQuality = *c.MinSampleQuality
	}
	if c.MinScanRangeMeters != nil {
		base.MinScanRangeMeters = *c.MinScanRangeMeters
	}
	if c.MaxScanRangeMeters != nil {
		base.MaxScanRangeMeters = *c.MaxScanRangeMeters
	}
	if c.SafetyMarginMeters != nil {
		base.SafetyMarginMeters = *c.SafetyMarginMeters
	}
	if c.OccupiedThreshold != nil {
		base.OccupiedThreshold = *c.OccupiedThreshold
	}
	if c.MinObstacleDistanceMeters != nil {
		base.MinObstacleDistanceMeters = *c.MinObstacleDistanceMeters
	}
	if c.FrontSectorDeg != nil {
		base.FrontSectorDeg = *c.FrontSectorDeg
	}
	if c.WaypointRadiusMeters != nil {
		base.WaypointRadiusMeters = *c.WaypointRadiusMeters
	}
	if c.AngularGain != nil {
		base.AngularGain = *c.AngularGain
	}
	if c.MaxAngularVelocity != nil {
		base.MaxAngularVelocity = *c.MaxAngularVelocity
	}
	if c.LinearGain != nil {
		base.LinearGain = *c.LinearGain
	}
	if c.MaxLinearVelocity != nil {
		base.MaxLinearVelocity = *c.MaxLinearVelocity
	}
	if c.HeadingToleranceRad != nil {
		base.HeadingToleranceRad = *c.HeadingToleranceRad
	}
	return base
}

// NavConfig returns the navigation configuration with this tuning applied
// over the stock defaults.
func (c *TuningConfig) NavConfig() nav.Config {
	return c.Apply(nav.DefaultConfig())
}
