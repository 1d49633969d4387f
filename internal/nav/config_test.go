package nav

import "testing"

// testConfig is a small-map tuning shared across the package tests so the
// planner searches finish quickly.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MapWidth = 40
	cfg.MapHeight = 40
	cfg.ResolutionMeters = 0.25
	return cfg
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
	if err := testConfig().Validate(); err != nil {
		t.Fatalf("test config failed validation: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero map width", func(c *Config) { c.MapWidth = 0 }},
		{"negative map height", func(c *Config) { c.MapHeight = -5 }},
		{"zero resolution", func(c *Config) { c.ResolutionMeters = 0 }},
		{"negative safety margin", func(c *Config) { c.SafetyMarginMeters = -0.1 }},
		{"threshold above one", func(c *Config) { c.OccupiedThreshold = 1.5 }},
		{"zero threshold", func(c *Config) { c.OccupiedThreshold = 0 }},
		{"inverted scan range", func(c *Config) { c.MinScanRangeMeters = 5; c.MaxScanRangeMeters = 1 }},
		{"zero obstacle distance", func(c *Config) { c.MinObstacleDistanceMeters = 0 }},
		{"oversized front sector", func(c *Config) { c.FrontSectorDeg = 200 }},
		{"zero waypoint radius", func(c *Config) { c.WaypointRadiusMeters = 0 }},
		{"zero angular gain", func(c *Config) { c.AngularGain = 0 }},
		{"zero velocity limit", func(c *Config) { c.MaxLinearVelocity = 0 }},
		{"zero heading tolerance", func(c *Config) { c.HeadingToleranceRad = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tc.name)
			}
		})
	}
}
