package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/rtk-robotics/rover/internal/nav"
)

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "map_width": 400,
  "map_height": 400,
  "resolution_meters": 0.1,
  "safety_margin_meters": 0.5,
  "loop_interval": "20ms"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.MapWidth == nil || *cfg.MapWidth != 400 {
		t.Errorf("Expected MapWidth 400, got %v", cfg.MapWidth)
	}
	if cfg.ResolutionMeters == nil || *cfg.ResolutionMeters != 0.1 {
		t.Errorf("Expected ResolutionMeters 0.1, got %v", cfg.ResolutionMeters)
	}
	if cfg.SafetyMarginMeters == nil || *cfg.SafetyMarginMeters != 0.5 {
		t.Errorf("Expected SafetyMarginMeters 0.5, got %v", cfg.SafetyMarginMeters)
	}
	if cfg.GetLoopInterval() != 20*time.Millisecond {
		t.Errorf("GetLoopInterval() = %v, want 20ms", cfg.GetLoopInterval())
	}
}

func TestLoadTuningConfigMissing(t *testing.T) {
	_, err := LoadTuningConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadTuningConfigInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_config.json")

	invalidJSON := `{
  "map_width": "invalid"
`
	if err := os.WriteFile(configPath, []byte(invalidJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TuningConfig
		wantErr bool
	}{
		{
			name:    "empty config is valid",
			cfg:     &TuningConfig{},
			wantErr: false,
		},
		{
			name: "invalid occupied threshold (zero)",
			cfg: &TuningConfig{
				OccupiedThreshold: ptrFloat64(0),
			},
			wantErr: true,
		},
		{
			name: "invalid occupied threshold (too high)",
			cfg: &TuningConfig{
				OccupiedThreshold: ptrFloat64(1.5),
			},
			wantErr: true,
		},
		{
			name: "invalid loop interval",
			cfg: &TuningConfig{
				LoopInterval: ptrString("invalid"),
			},
			wantErr: true,
		},
		{
			name: "negative map width",
			cfg: &TuningConfig{
				MapWidth: ptrInt(-1),
			},
			wantErr: true,
		},
		{
			name: "valid overrides",
			cfg: &TuningConfig{
				MapWidth:          ptrInt(400),
				OccupiedThreshold: ptrFloat64(0.8),
				LoopInterval:      ptrString("5ms"),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetLoopInterval(t *testing.T) {
	tests := []struct {
		name string
		cfg  *TuningConfig
		want time.Duration
	}{
		{
			name: "20 milliseconds",
			cfg: &TuningConfig{
				LoopInterval: ptrString("20ms"),
			},
			want: 20 * time.Millisecond,
		},
		{
			name: "1 second",
			cfg: &TuningConfig{
				LoopInterval: ptrString("1s"),
			},
			want: 1 * time.Second,
		},
		{
			name: "nil pointer returns default",
			cfg:  &TuningConfig{},
			want: 10 * time.Millisecond,
		},
		{
			name: "empty string returns default",
			cfg: &TuningConfig{
				LoopInterval: ptrString(""),
			},
			want: 10 * time.Millisecond,
		},
		{
			name: "invalid duration returns default",
			cfg: &TuningConfig{
				LoopInterval: ptrString("invalid"),
			},
			want: 10 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.GetLoopInterval()
			if got != tt.want {
				t.Errorf("GetLoopInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyPartial(t *testing.T) {
	// Partial config: only override the margin; everything else should keep
	// the stock navigation defaults.
	cfg := &TuningConfig{
		SafetyMarginMeters: ptrFloat64(0.6),
	}

	merged := cfg.NavConfig()
	defaults := nav.DefaultConfig()

	if merged.SafetyMarginMeters != 0.6 {
		t.Errorf("Expected overridden SafetyMarginMeters 0.6, got %f", merged.SafetyMarginMeters)
	}
	if merged.MapWidth != defaults.MapWidth {
		t.Errorf("Expected default MapWidth %d, got %d", defaults.MapWidth, merged.MapWidth)
	}
	if merged.OccupiedThreshold != defaults.OccupiedThreshold {
		t.Errorf("Expected default OccupiedThreshold %f, got %f", defaults.OccupiedThreshold, merged.OccupiedThreshold)
	}
	if merged.AngularGain != defaults.AngularGain {
		t.Errorf("Expected default AngularGain %f, got %f", defaults.AngularGain, merged.AngularGain)
	}

	if err := merged.Validate(); err != nil {
		t.Errorf("Merged config failed validation: %v", err)
	}
}

func TestApplyAllParams(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "all_params.json")

	allParamsJSON := `{
  "map_width": 800,
  "map_height": 600,
  "resolution_meters": 0.1,
  "min_sample_quality": 15,
  "min_scan_range_meters": 0.2,
  "max_scan_range_meters": 8.0,
  "safety_margin_meters": 0.4,
  "occupied_threshold": 0.8,
  "min_obstacle_distance_meters": 0.6,
  "front_sector_deg": 45,
  "waypoint_radius_meters": 0.15,
  "angular_gain": 1.5,
  "max_angular_velocity": 0.8,
  "linear_gain": 0.4,
  "max_linear_velocity": 0.3,
  "heading_tolerance_rad": 0.4,
  "loop_interval": "20ms"
}`
	if err := os.WriteFile(configPath, []byte(allParamsJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	merged := cfg.NavConfig()
	want := nav.Config{
		MapWidth:         800,
		MapHeight:        600,
		ResolutionMeters: 0.1,

		MinSampleQuality:   15,
		MinScanRangeMeters: 0.2,
		MaxScanRangeMeters: 8.0,

		SafetyMarginMeters: 0.4,
		OccupiedThreshold:  0.8,

		MinObstacleDistanceMeters: 0.6,
		FrontSectorDeg:            45,

		WaypointRadiusMeters: 0.15,
		AngularGain:          1.5,
		MaxAngularVelocity:   0.8,
		LinearGain:           0.4,
		MaxLinearVelocity:    0.3,
		HeadingToleranceRad:  0.4,
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Errorf("Merged config mismatch (-want +got):\n%s", diff)
	}

	if err := merged.Validate(); err != nil {
		t.Errorf("Merged config failed validation: %v", err)
	}
}

func TestLoadDefaultConfigFile(t *testing.T) {
	cfg, err := LoadTuningConfig("../../" + DefaultConfigPath)
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}
	merged := cfg.NavConfig()
	if err := merged.Validate(); err != nil {
		t.Errorf("Defaults failed navigation validation: %v", err)
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	_, err := LoadTuningConfig("/some/path/config.yaml")
	if err == nil {
		t.Error("Expected error for non-.json extension, got nil")
	}
}

func TestLoadTuningConfigRejectsLargeFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "large.json")

	// Create a file larger than 1MB
	largeData := make([]byte, 2*1024*1024) // 2MB
	if err := os.WriteFile(configPath, largeData, 0644); err != nil {
		t.Fatalf("Failed to write large file: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error for file size > 1MB, got nil")
	}
}
