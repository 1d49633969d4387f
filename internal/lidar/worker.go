// Package lidar drives the serial lidar scanner: it subscribes to the
// device's line stream, assembles per-revolution scans, and serves the latest
// complete scan to the navigation stack and the HTTP API.
package lidar

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rtk-robotics/rover/internal/monitoring"
	"github.com/rtk-robotics/rover/internal/nav"
	"github.com/rtk-robotics/rover/internal/serialmux"
	"github.com/rtk-robotics/rover/internal/units"
)

// Firmware commands understood by the scanner head.
const (
	cmdStartScan = "SCAN_START"
	cmdStopScan  = "SCAN_STOP"
)

// Worker consumes sample lines from the lidar mux and publishes whole
// revolutions. A revolution boundary is detected when the reported angle
// wraps back past zero. Readers always see the last complete revolution,
// never a partially assembled one.
type Worker struct {
	mux serialmux.Muxer

	mu          sync.Mutex
	latest      []nav.RangeSample // last complete revolution
	current     []nav.RangeSample // revolution being assembled
	lastAngle   float64
	samples     int64
	revolutions int64
	parseErrors int64
	updatedAt   time.Time
}

// NewWorker creates a worker reading from the given mux. Run must be called
// before ScanData returns anything.
func NewWorker(mux serialmux.Muxer) *Worker {
	return &Worker{mux: mux, lastAngle: -1}
}

// Run starts the scanner head and consumes lines until the context is
// cancelled. The scanner is told to stop on the way out so the motor spins
// down with the process.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.mux.SendCommand(cmdStartScan); err != nil {
		return err
	}
	defer func() {
		if err := w.mux.SendCommand(cmdStopScan); err != nil {
			monitoring.Logf("lidar: failed to stop scanner: %v", err)
		}
	}()

	id, lines := w.mux.Subscribe()
	defer w.mux.Unsubscribe(id)

	monitoring.Logf("lidar: worker running")
	for {
		select {
		case <-ctx.Done():
			monitoring.Logf("lidar: worker shutting down")
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				monitoring.Logf("lidar: line stream closed")
				return nil
			}
			w.ingestLine(line)
		}
	}
}

// ingestLine routes one bus line. Status and ack lines are logged and
// dropped; sample lines feed revolution assembly.
func (w *Worker) ingestLine(line string) {
	switch serialmux.ClassifyLine(line) {
	case serialmux.EventTypeScanSample:
		sample, err := ParseSample(line)
		if err != nil {
			w.mu.Lock()
			w.parseErrors++
			w.mu.Unlock()
			monitoring.Logf("lidar: %v", err)
			return
		}
		w.ingestSample(sample)
	case serialmux.EventTypeStatus:
		monitoring.Logf("lidar: device status: %s", line)
	case serialmux.EventTypeAck:
		// Command echo, nothing to do.
	default:
		w.mu.Lock()
		w.parseErrors++
		w.mu.Unlock()
	}
}

// ingestSample appends to the revolution in progress, publishing it when the
// angle wraps.
func (w *Worker) ingestSample(s nav.RangeSample) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.samples++
	if s.AngleDeg < w.lastAngle {
		// Wrapped past zero: the accumulated samples form one revolution.
		w.latest = w.current
		w.current = nil
		w.revolutions++
		w.updatedAt = time.Now()
	}
	w.current = append(w.current, s)
	w.lastAngle = s.AngleDeg
}

// ScanData returns a copy of the last complete revolution, possibly empty.
func (w *Worker) ScanData() []nav.RangeSample {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]nav.RangeSample, len(w.latest))
	copy(out, w.latest)
	return out
}

// ObstaclesInDirection returns the sorted distances of returns within
// toleranceDeg of angleDeg, wraparound-aware.
func (w *Worker) ObstaclesInDirection(angleDeg, toleranceDeg float64) []float64 {
	var distances []float64
	for _, s := range w.ScanData() {
		if units.AngularDistanceDeg(s.AngleDeg, angleDeg) <= toleranceDeg {
			distances = append(distances, s.Distance)
		}
	}
	sort.Float64s(distances)
	return distances
}

// ClosestObstacle returns the nearest return in the last revolution. The
// second result is false when no scan has completed yet.
func (w *Worker) ClosestObstacle() (nav.RangeSample, bool) {
	scan := w.ScanData()
	if len(scan) == 0 {
		return nav.RangeSample{}, false
	}
	closest := scan[0]
	for _, s := range scan[1:] {
		if s.Distance < closest.Distance {
			closest = s
		}
	}
	return closest, true
}

// IsPathClear reports whether no return between startAngle and endAngle lies
// closer than minDistance. Angle bounds are swapped if given in reverse.
func (w *Worker) IsPathClear(startAngle, endAngle, minDistance float64) bool {
	if startAngle > endAngle {
		startAngle, endAngle = endAngle, startAngle
	}
	for _, s := range w.ScanData() {
		if s.AngleDeg >= startAngle && s.AngleDeg <= endAngle && s.Distance < minDistance {
			return false
		}
	}
	return true
}
