// Package api serves the rover's HTTP control surface: navigation state,
// target submission, emergency stop, and map access.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rtk-robotics/rover/internal/httputil"
	"github.com/rtk-robotics/rover/internal/lidar"
	"github.com/rtk-robotics/rover/internal/monitor"
	"github.com/rtk-robotics/rover/internal/monitoring"
	"github.com/rtk-robotics/rover/internal/motor"
	"github.com/rtk-robotics/rover/internal/nav"
	"github.com/rtk-robotics/rover/internal/telemetry"
	"github.com/rtk-robotics/rover/internal/version"
)

// Server exposes the navigation stack over HTTP. Lidar, Motor, and Telemetry
// are optional; endpoints depending on them report service unavailable when
// absent.
type Server struct {
	Nav       *nav.System
	Lidar     *lidar.Worker
	Motor     *motor.Driver
	Telemetry *telemetry.DB

	plotter *monitor.GridPlotter
}

// NewServer creates a server around the given navigation system.
func NewServer(sys *nav.System, lw *lidar.Worker, drv *motor.Driver, db *telemetry.DB) *Server {
	return &Server{
		Nav:       sys,
		Lidar:     lw,
		Motor:     drv,
		Telemetry: db,
		plotter:   monitor.NewGridPlotter(),
	}
}

// AttachRoutes registers the API endpoints on mux.
func (s *Server) AttachRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/target", s.handleTarget)
	mux.HandleFunc("/api/emergency-stop", s.handleEmergencyStop)
	mux.HandleFunc("/api/resume", s.handleResume)
	mux.HandleFunc("/api/map", s.handleMap)
	mux.HandleFunc("/api/map.png", s.handleMapPNG)
	mux.HandleFunc("/api/targets", s.handleTargets)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/debug/map-chart", monitor.MapChartHandler(s.Nav))
}

// statusResponse is the /api/status payload.
type statusResponse struct {
	Version string        `json:"version"`
	Time    time.Time     `json:"time"`
	Nav     nav.State     `json:"nav"`
	Lidar   *lidar.Status `json:"lidar,omitempty"`
	Motor   *motor.Status `json:"motor,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	resp := statusResponse{
		Version: version.String(),
		Time:    time.Now(),
		Nav:     s.Nav.State(),
	}
	if s.Lidar != nil {
		st := s.Lidar.Status()
		resp.Lidar = &st
	}
	if s.Motor != nil {
		st := s.Motor.Status()
		resp.Motor = &st
	}
	httputil.WriteJSONOK(w, resp)
}

// targetRequest is the /api/target request body.
type targetRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid target body: %v", err))
		return
	}

	planned := s.Nav.SetTarget(req.X, req.Y, req.Theta)

	var targetID string
	if s.Telemetry != nil {
		id, err := s.Telemetry.RecordTarget(req.X, req.Y, req.Theta, planned)
		if err != nil {
			monitoring.Logf("api: failed to record target: %v", err)
		} else {
			targetID = id
		}
	}

	httputil.WriteJSONOK(w, map[string]any{
		"planned":   planned,
		"target_id": targetID,
	})
}

func (s *Server) handleEmergencyStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	s.Nav.EmergencyStop()
	httputil.WriteJSONOK(w, map[string]any{"emergency_stopped": true})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	s.Nav.Resume()
	httputil.WriteJSONOK(w, map[string]any{"emergency_stopped": false})
}

// mapResponse summarises the occupancy grid without shipping two thousand
// squared cells over the wire.
type mapResponse struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Resolution float64 `json:"resolution"`
	OriginX    float64 `json:"origin_x"`
	OriginY    float64 `json:"origin_y"`
	Occupied   int     `json:"occupied_cells"`
	Free       int     `json:"free_cells"`
	Unknown    int     `json:"unknown_cells"`
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	grid := s.Nav.Map()
	resp := mapResponse{
		Width:      grid.Width(),
		Height:     grid.Height(),
		Resolution: grid.Resolution(),
	}
	resp.OriginX, resp.OriginY = grid.Origin()
	for iy := 0; iy < grid.Height(); iy++ {
		for ix := 0; ix < grid.Width(); ix++ {
			switch occ := grid.OccupancyAt(ix, iy); {
			case occ >= nav.OccupancyOccupied:
				resp.Occupied++
			case occ == nav.OccupancyFree:
				resp.Free++
			default:
				resp.Unknown++
			}
		}
	}
	httputil.WriteJSONOK(w, resp)
}

func (s *Server) handleMapPNG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	tmp, err := os.MkdirTemp("", "rover-map")
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	defer os.RemoveAll(tmp)

	path := filepath.Join(tmp, "map.png")
	if err := s.plotter.RenderPNG(s.Nav.Map(), path); err != nil {
		httputil.WriteJSONError(w, http.StatusConflict, fmt.Sprintf("map not renderable: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.Telemetry == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "telemetry disabled")
		return
	}
	targets, err := s.Telemetry.Targets(50)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, targets)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.Telemetry == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "telemetry disabled")
		return
	}
	events, err := s.Telemetry.Events(100)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, events)
}
