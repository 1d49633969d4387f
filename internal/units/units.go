// Package units provides shared conversion helpers for angles and distances
// used across the sensor and navigation packages.
package units

import "math"

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// AngularDistanceDeg returns the wraparound-aware separation between two
// bearings in degrees. The result is always in [0, 180].
func AngularDistanceDeg(a, b float64) float64 {
	diff := math.Mod(math.Abs(a-b), 360.0)
	if diff > 180.0 {
		diff = 360.0 - diff
	}
	return diff
}

// MillimetersToMeters converts a range reading reported in millimeters.
func MillimetersToMeters(mm float64) float64 {
	return mm / 1000.0
}
