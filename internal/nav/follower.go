package nav

import "math"

// PathFollower converts the current pose and the next waypoint into a
// velocity command with simple proportional control. The policy is
// rotate-then-translate: translation is suppressed whenever the heading
// error is large.
type PathFollower struct {
	waypointRadius   float64
	angularGain      float64
	maxAngular       float64
	linearGain       float64
	maxLinear        float64
	headingTolerance float64
}

// NewPathFollower creates a follower with the configured gains and limits.
func NewPathFollower(cfg Config) *PathFollower {
	return &PathFollower{
		waypointRadius:   cfg.WaypointRadiusMeters,
		angularGain:      cfg.AngularGain,
		maxAngular:       cfg.MaxAngularVelocity,
		linearGain:       cfg.LinearGain,
		maxLinear:        cfg.MaxLinearVelocity,
		headingTolerance: cfg.HeadingToleranceRad,
	}
}

// velocity is the controller output before it is mapped onto actuator axes.
type velocity struct {
	Linear  float64
	Angular float64
}

// Step consumes the front of the path. A waypoint closer than the waypoint
// radius is popped; if that empties the path the robot has arrived and a
// zero command is emitted. Otherwise the command steers toward the inspected
// waypoint. The (possibly shortened) path is returned alongside the command;
// an empty returned path signals arrival to the caller.
func (f *PathFollower) Step(current Pose, path []Pose) (Command, []Pose) {
	if len(path) == 0 {
		return ZeroCommand(), path
	}

	next := path[0]
	distance := math.Hypot(next.X-current.X, next.Y-current.Y)

	if distance < f.waypointRadius {
		path = path[1:]
		if len(path) == 0 {
			return ZeroCommand(), path
		}
		// Keep steering toward the waypoint inspected this tick; the new
		// front is picked up next tick.
	}

	vel := f.steer(current, next, distance)

	// Only the rotational axis is driven in the current platform; the
	// computed linear velocity has no axis to land on and the arm joints
	// are held at zero. Deliberate simplification of the motion model.
	cmd := ZeroCommand()
	cmd[AxisBaseRotation] = vel.Angular
	return cmd, path
}

// steer computes the proportional control law toward the waypoint.
func (f *PathFollower) steer(current, waypoint Pose, distance float64) velocity {
	bearing := math.Atan2(waypoint.Y-current.Y, waypoint.X-current.X)
	headingErr := normalizeAngle(bearing - current.Theta)

	angular := clamp(headingErr*f.angularGain, -f.maxAngular, f.maxAngular)

	linear := 0.0
	if math.Abs(headingErr) <= f.headingTolerance {
		linear = clamp(distance*f.linearGain, 0, f.maxLinear)
	}
	return velocity{Linear: linear, Angular: angular}
}

// normalizeAngle folds an angle into (-pi, pi] by repeated 2*pi adjustment.
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
