package nav

import "fmt"

// Config carries every tunable of the navigation stack. It replaces the
// nested configuration dictionaries of earlier revisions with explicit typed
// fields validated once at construction.
type Config struct {
	// Map geometry.
	MapWidth         int     // cells along x
	MapHeight        int     // cells along y
	ResolutionMeters float64 // meters per cell

	// Scan ingestion filter.
	MinSampleQuality   float64
	MinScanRangeMeters float64
	MaxScanRangeMeters float64

	// Planning.
	SafetyMarginMeters float64 // inflation radius around obstacles
	OccupiedThreshold  float64 // occupancy above this blocks a cell

	// Safety.
	MinObstacleDistanceMeters float64 // forced stop below this range
	FrontSectorDeg            float64 // half-angle of the forward sector

	// Path following.
	WaypointRadiusMeters float64 // waypoint considered reached below this
	AngularGain          float64
	MaxAngularVelocity   float64
	LinearGain           float64
	MaxLinearVelocity    float64
	HeadingToleranceRad  float64 // no translation above this heading error
}

// DefaultConfig returns the stock tuning. Values match the deployed robot:
// a 100 m x 100 m map at 5 cm resolution with a 0.3 m planning margin.
func DefaultConfig() Config {
	return Config{
		MapWidth:         2000,
		MapHeight:        2000,
		ResolutionMeters: 0.05,

		MinSampleQuality:   10.0,
		MinScanRangeMeters: 0.1,
		MaxScanRangeMeters: 12.0,

		SafetyMarginMeters: 0.3,
		OccupiedThreshold:  0.7,

		MinObstacleDistanceMeters: 0.5,
		FrontSectorDeg:            30.0,

		WaypointRadiusMeters: 0.1,
		AngularGain:          2.0,
		MaxAngularVelocity:   1.0,
		LinearGain:           0.5,
		MaxLinearVelocity:    0.5,
		HeadingToleranceRad:  0.5,
	}
}

// Validate checks the configuration for construction-time errors. Invalid
// configuration is the only unrecoverable condition in this package; every
// tick-time problem degrades to "no command" instead.
func (c Config) Validate() error {
	if c.MapWidth <= 0 || c.MapHeight <= 0 {
		return fmt.Errorf("map dimensions must be positive, got %dx%d", c.MapWidth, c.MapHeight)
	}
	if c.ResolutionMeters <= 0 {
		return fmt.Errorf("map resolution must be positive, got %v", c.ResolutionMeters)
	}
	if c.SafetyMarginMeters < 0 {
		return fmt.Errorf("safety margin must be non-negative, got %v", c.SafetyMarginMeters)
	}
	if c.OccupiedThreshold <= 0 || c.OccupiedThreshold > 1 {
		return fmt.Errorf("occupied threshold must be in (0, 1], got %v", c.OccupiedThreshold)
	}
	if c.MinScanRangeMeters < 0 || c.MaxScanRangeMeters <= c.MinScanRangeMeters {
		return fmt.Errorf("scan range bounds invalid: min %v, max %v", c.MinScanRangeMeters, c.MaxScanRangeMeters)
	}
	if c.MinObstacleDistanceMeters <= 0 {
		return fmt.Errorf("minimum obstacle distance must be positive, got %v", c.MinObstacleDistanceMeters)
	}
	if c.FrontSectorDeg <= 0 || c.FrontSectorDeg > 180 {
		return fmt.Errorf("front sector must be in (0, 180] degrees, got %v", c.FrontSectorDeg)
	}
	if c.WaypointRadiusMeters <= 0 {
		return fmt.Errorf("waypoint radius must be positive, got %v", c.WaypointRadiusMeters)
	}
	if c.AngularGain <= 0 || c.LinearGain <= 0 {
		return fmt.Errorf("controller gains must be positive, got angular %v, linear %v", c.AngularGain, c.LinearGain)
	}
	if c.MaxAngularVelocity <= 0 || c.MaxLinearVelocity <= 0 {
		return fmt.Errorf("velocity limits must be positive, got angular %v, linear %v", c.MaxAngularVelocity, c.MaxLinearVelocity)
	}
	if c.HeadingToleranceRad <= 0 {
		return fmt.Errorf("heading tolerance must be positive, got %v", c.HeadingToleranceRad)
	}
	return nil
}
