package nav

import (
	"sync"

	"github.com/rtk-robotics/rover/internal/monitoring"
)

// RangeSource is the range-sensing collaborator. Implementations publish
// whole scans atomically; ScanData returns a snapshot copy that the tick can
// read without tearing.
type RangeSource interface {
	// ScanData returns the latest complete scan, possibly empty.
	ScanData() []RangeSample

	// ObstaclesInDirection returns ascending distances to returns within
	// toleranceDeg of angleDeg (wraparound-aware).
	ObstaclesInDirection(angleDeg, toleranceDeg float64) []float64
}

// EventSink receives notable navigation events (target set, plan failure,
// arrival, obstacle stop, emergency transitions). Sinks must not block the
// control tick.
type EventSink interface {
	Event(kind, detail string)
}

// Navigation event kinds passed to the EventSink.
const (
	EventTargetSet     = "target_set"
	EventPlanFailed    = "plan_failed"
	EventArrived       = "arrived"
	EventObstacleStop  = "obstacle_stop"
	EventEmergencyStop = "emergency_stop"
	EventResume        = "resume"
)

// System orchestrates scan ingestion, planning, path following, and the
// safety override. One Update call is one control tick; the caller
// serialises ticks. All mutable state lives behind a single mutex so Map
// and State stay safe to call while ticking.
type System struct {
	cfg      Config
	grid     *Grid
	ingestor *ScanIngestor
	planner  *PathPlanner
	follower *PathFollower
	safety   *SafetyMonitor
	source   RangeSource
	events   EventSink

	mu         sync.Mutex
	current    Pose
	target     Pose
	path       []Pose
	navigating bool
}

// NewSystem validates cfg and builds the navigation stack around the given
// range source. A nil events sink disables event reporting.
func NewSystem(cfg Config, source RangeSource, events EventSink) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, err := NewGrid(cfg.MapWidth, cfg.MapHeight, cfg.ResolutionMeters)
	if err != nil {
		return nil, err
	}

	return &System{
		cfg:      cfg,
		grid:     grid,
		ingestor: NewScanIngestor(grid, cfg),
		planner:  NewPathPlanner(cfg),
		follower: NewPathFollower(cfg),
		safety:   NewSafetyMonitor(cfg),
		source:   source,
		events:   events,
	}, nil
}

func (s *System) event(kind, detail string) {
	if s.events != nil {
		s.events.Event(kind, detail)
	}
}

// SetTarget plans a path from the current pose to (x, y, theta) and starts
// navigating on success. On planning failure the system is left
// not-navigating, a warning is logged, and false is returned; no error is
// raised.
func (s *System) SetTarget(x, y, theta float64) bool {
	s.mu.Lock()
	start := s.current
	s.target = Pose{X: x, Y: y, Theta: theta}
	// Plan on a snapshot so the search never holds the grid lock.
	snapshot := s.grid.Snapshot()
	s.mu.Unlock()

	path := s.planner.Plan(snapshot, start, Pose{X: x, Y: y, Theta: theta})

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.safety.Stopped() {
		// An emergency stop landed while planning; discard the result.
		s.path = nil
		s.navigating = false
		return false
	}
	if len(path) == 0 {
		s.path = nil
		s.navigating = false
		monitoring.Logf("navigation: failed to plan path to target (%.2f, %.2f, %.2f)", x, y, theta)
		s.event(EventPlanFailed, "no path to target")
		return false
	}

	s.path = path
	s.navigating = true
	monitoring.Logf("navigation: path planned to target (%.2f, %.2f, %.2f), %d waypoints", x, y, theta, len(path))
	s.event(EventTargetSet, "path planned")
	return true
}

// Update runs one control tick and returns the velocity command for it, or
// nil when idle. Priority order: emergency stop, immediate obstacle, active
// path, idle.
func (s *System) Update() Command {
	if s.safety.Stopped() {
		s.mu.Lock()
		s.path = nil
		s.navigating = false
		s.mu.Unlock()
		return ZeroCommand()
	}

	// One snapshot feeds both ingestion and the obstacle check so the tick
	// sees a single consistent scan. Missing data skips both steps.
	scan := s.source.ScanData()
	if len(scan) > 0 {
		s.mu.Lock()
		s.ingestor.Ingest(scan)
		s.mu.Unlock()
	}

	if blocked, dist := s.safety.ObstacleAhead(scan); blocked {
		monitoring.Logf("navigation: immediate obstacle at %.2fm, stopping", dist)
		s.event(EventObstacleStop, "obstacle in front sector")
		return ZeroCommand()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.navigating || len(s.path) == 0 {
		return nil
	}

	cmd, path := s.follower.Step(s.current, s.path)
	s.path = path
	if len(path) == 0 {
		s.navigating = false
		monitoring.Logf("navigation: target reached")
		s.event(EventArrived, "target reached")
	}
	return cmd
}

// EmergencyStop activates the emergency state, clears the active path, and
// stops navigating. It always succeeds.
func (s *System) EmergencyStop() {
	// State transition and path clearing happen under one lock so no
	// observer sees a stopped system that still carries a path.
	s.mu.Lock()
	s.safety.EmergencyStop()
	s.path = nil
	s.navigating = false
	s.mu.Unlock()
	monitoring.Logf("navigation: emergency stop activated")
	s.event(EventEmergencyStop, "emergency stop")
}

// Resume leaves the emergency state. The caller decides when that is safe.
func (s *System) Resume() {
	s.safety.Resume()
	monitoring.Logf("navigation: resumed")
	s.event(EventResume, "resumed")
}

// Map returns a read-only deep copy of the occupancy grid, safe to call
// concurrently with ticking.
func (s *System) Map() *Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Snapshot()
}

// State returns a snapshot of the navigation state. The emergency invariant
// holds at every observable point: a stopped system is never navigating and
// carries no path.
func (s *System) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := make([]Pose, len(s.path))
	copy(path, s.path)
	return State{
		CurrentPose:      s.current,
		TargetPose:       s.target,
		Path:             path,
		Navigating:       s.navigating,
		EmergencyStopped: s.safety.Stopped(),
	}
}

// SetPose updates the tracked pose. The platform has no odometry feedback
// wired yet, so this is driven externally when a pose estimate exists.
func (s *System) SetPose(p Pose) {
	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
}
