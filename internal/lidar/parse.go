package lidar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rtk-robotics/rover/internal/nav"
	"github.com/rtk-robotics/rover/internal/units"
)

// ParseSample parses one firmware sample line of the form
// "quality,angle_deg,distance_mm" into a range sample with the distance
// converted to meters. Angles are reported in [0, 360) with 0 on the robot's
// forward axis.
func ParseSample(line string) (nav.RangeSample, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 3 {
		return nav.RangeSample{}, fmt.Errorf("malformed sample line %q: want 3 fields, got %d", line, len(parts))
	}

	quality, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nav.RangeSample{}, fmt.Errorf("malformed quality in %q: %w", line, err)
	}
	angle, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nav.RangeSample{}, fmt.Errorf("malformed angle in %q: %w", line, err)
	}
	distanceMM, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return nav.RangeSample{}, fmt.Errorf("malformed distance in %q: %w", line, err)
	}

	if angle < 0 || angle >= 360 {
		return nav.RangeSample{}, fmt.Errorf("angle %v out of range [0, 360) in %q", angle, line)
	}
	if distanceMM < 0 {
		return nav.RangeSample{}, fmt.Errorf("negative distance in %q", line)
	}

	return nav.RangeSample{
		Quality:  quality,
		AngleDeg: angle,
		Distance: units.MillimetersToMeters(distanceMM),
	}, nil
}
