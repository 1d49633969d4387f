// Package nav implements the rover's navigation stack: a probabilistic
// occupancy map built from lidar range scans, A* path planning over the map,
// a proportional waypoint-following controller, and a safety monitor whose
// decisions override every other command source.
package nav

// Pose is a position and heading in the world frame (meters, radians).
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// RangeSample is a single robot-relative polar range measurement.
type RangeSample struct {
	Quality  float64 // signal quality reported by the sensor
	AngleDeg float64 // bearing in degrees, 0 = robot forward axis
	Distance float64 // meters
}

// Actuator axis names on the motor bus. The follower drives only the
// rotational axis; the arm joints are held at zero during navigation.
const (
	AxisBaseRotation = "base_rotation"
	AxisShoulder     = "shoulder"
	AxisElbow        = "elbow"
	AxisWrist        = "wrist"
)

// Command maps actuator axis names to velocity values. A nil Command means
// "no command this tick" (idle); a zero-valued Command is an explicit stop.
type Command map[string]float64

// ZeroCommand returns a command holding every axis at zero velocity.
func ZeroCommand() Command {
	return Command{
		AxisBaseRotation: 0,
		AxisShoulder:     0,
		AxisElbow:        0,
		AxisWrist:        0,
	}
}

// IsZero reports whether every axis in the command is zero.
func (c Command) IsZero() bool {
	for _, v := range c {
		if v != 0 {
			return false
		}
	}
	return true
}

// State is a snapshot of the navigation state machine.
type State struct {
	CurrentPose      Pose   `json:"current_pose"`
	TargetPose       Pose   `json:"target_pose"`
	Path             []Pose `json:"path"`
	Navigating       bool   `json:"navigating"`
	EmergencyStopped bool   `json:"emergency_stopped"`
}
