package nav

import (
	"context"
	"time"

	"github.com/rtk-robotics/rover/internal/monitoring"
	"github.com/rtk-robotics/rover/internal/timeutil"
)

// MotionSink receives velocity commands. Execution is fire-and-forget from
// the loop's point of view; sink errors are logged, never fatal to the tick.
type MotionSink interface {
	Execute(cmd Command) error
}

// Loop drives the navigation system at a fixed rate and forwards each
// produced command to the motion sink. Each tick is a single synchronous
// Update call with no internal suspension points.
type Loop struct {
	sys    *System
	sink   MotionSink
	clock  timeutil.Clock
	period time.Duration
}

// NewLoop creates a control loop ticking at the given frequency.
func NewLoop(sys *System, sink MotionSink, clock timeutil.Clock, hz int) *Loop {
	if hz <= 0 {
		hz = 100
	}
	return &Loop{
		sys:    sys,
		sink:   sink,
		clock:  clock,
		period: time.Second / time.Duration(hz),
	}
}

// Run ticks until the context is cancelled, returning the context error.
func (l *Loop) Run(ctx context.Context) error {
	ticker := l.clock.NewTicker(l.period)
	defer ticker.Stop()

	monitoring.Logf("control loop: running at %v per tick", l.period)
	for {
		select {
		case <-ctx.Done():
			monitoring.Logf("control loop: shutting down")
			return ctx.Err()
		case <-ticker.C():
			l.Tick()
		}
	}
}

// Tick runs one control cycle: update navigation, hand any command to the
// motion sink.
func (l *Loop) Tick() {
	cmd := l.sys.Update()
	if cmd == nil {
		return
	}
	if err := l.sink.Execute(cmd); err != nil {
		monitoring.Logf("control loop: motion sink rejected command: %v", err)
	}
}
