// Package motor drives the actuator bus: it translates navigation velocity
// commands into the firmware's wire format and manages joint torque state.
package motor

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rtk-robotics/rover/internal/monitoring"
	"github.com/rtk-robotics/rover/internal/nav"
	"github.com/rtk-robotics/rover/internal/serialmux"
)

// Firmware commands understood by the motor controller.
const (
	cmdTorqueOn  = "TORQUE_ON"
	cmdTorqueOff = "TORQUE_OFF"
)

// velocityScale maps the controller's unit velocities onto the firmware's
// integer register range.
const velocityScale = 100

// CommandRecorder persists velocity frames written to the bus. Recording is
// best-effort; failures are logged and never block a command.
type CommandRecorder interface {
	RecordCommand(frame string) error
}

// Driver writes velocity frames to the motor bus. It implements the
// navigation loop's motion sink.
type Driver struct {
	mux serialmux.Muxer

	mu       sync.Mutex
	torque   bool
	lastCmd  nav.Command
	recorder CommandRecorder
}

// NewDriver creates a driver on the given bus. Torque is off until
// Initialize is called; Execute refuses to move torqueless joints.
func NewDriver(mux serialmux.Muxer) *Driver {
	return &Driver{mux: mux}
}

// SetRecorder installs a recorder that receives every frame written to the
// bus. A nil recorder disables recording.
func (d *Driver) SetRecorder(r CommandRecorder) {
	d.mu.Lock()
	d.recorder = r
	d.mu.Unlock()
}

func (d *Driver) record(frame string) {
	d.mu.Lock()
	r := d.recorder
	d.mu.Unlock()
	if r == nil {
		return
	}
	if err := r.RecordCommand(frame); err != nil {
		monitoring.Logf("motor: failed to record velocity frame: %v", err)
	}
}

// Initialize enables joint torque and zeroes every axis so the platform
// starts from a known state.
func (d *Driver) Initialize() error {
	if err := d.mux.SendCommand(cmdTorqueOn); err != nil {
		return fmt.Errorf("enable torque: %w", err)
	}
	d.mu.Lock()
	d.torque = true
	d.mu.Unlock()

	if err := d.StopAll(); err != nil {
		return err
	}
	monitoring.Logf("motor: torque enabled, axes zeroed")
	return nil
}

// Execute writes one velocity frame. Axis values are scaled to firmware
// integer units; axes absent from the command are sent as zero.
func (d *Driver) Execute(cmd nav.Command) error {
	d.mu.Lock()
	torque := d.torque
	d.mu.Unlock()
	if !torque {
		return fmt.Errorf("torque disabled, refusing to drive axes")
	}

	frame := encodeFrame(cmd)
	if err := d.mux.SendCommand(frame); err != nil {
		return fmt.Errorf("write velocity frame: %w", err)
	}
	d.record(frame)

	d.mu.Lock()
	d.lastCmd = cmd
	d.mu.Unlock()
	return nil
}

// SetVelocity writes a frame driving a single axis, every other axis held at
// zero.
func (d *Driver) SetVelocity(axis string, velocity float64) error {
	cmd := nav.ZeroCommand()
	if _, ok := cmd[axis]; !ok {
		return fmt.Errorf("unknown axis %q", axis)
	}
	cmd[axis] = velocity
	return d.Execute(cmd)
}

// StopAll writes an all-zero velocity frame. It works regardless of torque
// state so a stop can always be commanded.
func (d *Driver) StopAll() error {
	frame := encodeFrame(nav.ZeroCommand())
	if err := d.mux.SendCommand(frame); err != nil {
		return fmt.Errorf("write stop frame: %w", err)
	}
	d.record(frame)

	d.mu.Lock()
	d.lastCmd = nav.ZeroCommand()
	d.mu.Unlock()
	return nil
}

// Shutdown stops every axis and releases torque.
func (d *Driver) Shutdown() error {
	if err := d.StopAll(); err != nil {
		return err
	}
	if err := d.mux.SendCommand(cmdTorqueOff); err != nil {
		return fmt.Errorf("disable torque: %w", err)
	}
	d.mu.Lock()
	d.torque = false
	d.mu.Unlock()
	monitoring.Logf("motor: torque released")
	return nil
}

// LastCommand returns the most recent command written to the bus, or nil if
// none has been sent.
func (d *Driver) LastCommand() nav.Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastCmd == nil {
		return nil
	}
	out := make(nav.Command, len(d.lastCmd))
	for k, v := range d.lastCmd {
		out[k] = v
	}
	return out
}

// Status is the driver state reported by the HTTP API.
type Status struct {
	TorqueEnabled bool        `json:"torque_enabled"`
	LastCommand   nav.Command `json:"last_command,omitempty"`
}

// Status reports the torque state and the last command written to the bus.
func (d *Driver) Status() Status {
	return Status{
		TorqueEnabled: d.torqueEnabled(),
		LastCommand:   d.LastCommand(),
	}
}

func (d *Driver) torqueEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.torque
}

// encodeFrame renders a command as a single bus line, e.g.
// "V base_rotation=100 elbow=0 shoulder=0 wrist=0". Axes are emitted in
// sorted order so frames are byte-stable for a given command.
func encodeFrame(cmd nav.Command) string {
	axes := make([]string, 0, len(cmd))
	for axis := range cmd {
		axes = append(axes, axis)
	}
	sort.Strings(axes)

	var b strings.Builder
	b.WriteString("V")
	for _, axis := range axes {
		fmt.Fprintf(&b, " %s=%d", axis, int(cmd[axis]*velocityScale))
	}
	return b.String()
}
