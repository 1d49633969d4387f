package nav

import (
	"sync"

	"github.com/rtk-robotics/rover/internal/units"
)

// SafetyState is the emergency-stop state machine state.
type SafetyState string

const (
	// SafetyNormal allows motion commands through the priority chain.
	SafetyNormal SafetyState = "normal"
	// SafetyEmergencyStopped forces zero motion output unconditionally.
	SafetyEmergencyStopped SafetyState = "emergency_stopped"
)

// SafetyMonitor owns the emergency-stop state machine and the per-tick
// forward obstacle check. The obstacle check is evaluated every tick
// independently of the state machine and never transitions it.
type SafetyMonitor struct {
	mu    sync.Mutex
	state SafetyState

	frontSectorDeg      float64
	minObstacleDistance float64
}

// NewSafetyMonitor creates a monitor in the normal state.
func NewSafetyMonitor(cfg Config) *SafetyMonitor {
	return &SafetyMonitor{
		state:               SafetyNormal,
		frontSectorDeg:      cfg.FrontSectorDeg,
		minObstacleDistance: cfg.MinObstacleDistanceMeters,
	}
}

// State returns the current state.
func (m *SafetyMonitor) State() SafetyState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Stopped reports whether the emergency stop is active.
func (m *SafetyMonitor) Stopped() bool {
	return m.State() == SafetyEmergencyStopped
}

// EmergencyStop transitions to the stopped state. It succeeds
// unconditionally from any state.
func (m *SafetyMonitor) EmergencyStop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = SafetyEmergencyStopped
}

// Resume transitions back to normal. There is no precondition; the caller
// is responsible for ensuring it is safe to resume.
func (m *SafetyMonitor) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = SafetyNormal
}

// ObstacleAhead inspects a scan snapshot for samples within the forward
// sector (wraparound-aware angular distance from the 0 degree axis) and
// reports whether the closest one is inside the minimum obstacle distance.
// The returned distance is the sector minimum; it is meaningful only when
// the first return is true or at least one sample fell in the sector.
func (m *SafetyMonitor) ObstacleAhead(samples []RangeSample) (bool, float64) {
	closest := 0.0
	found := false
	for _, s := range samples {
		if units.AngularDistanceDeg(s.AngleDeg, 0) > m.frontSectorDeg {
			continue
		}
		if !found || s.Distance < closest {
			closest = s.Distance
			found = true
		}
	}
	if !found {
		return false, 0
	}
	return closest < m.minObstacleDistance, closest
}
