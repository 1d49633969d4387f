// Package telemetry persists navigation activity — targets, events, velocity
// frames, and raw bus traffic — to a local sqlite database for post-run
// analysis.
package telemetry

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"

	"github.com/rtk-robotics/rover/internal/httputil"
	"github.com/rtk-robotics/rover/internal/monitoring"
	"github.com/rtk-robotics/rover/internal/serialmux"
)

type DB struct {
	*sql.DB
	path string
}

// NewDB opens (creating if needed) the telemetry database at path and brings
// the schema up to date. Use ":memory:" for an ephemeral database in tests.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// sqlite serialises writers; a single connection avoids lock churn from
	// the control loop and the HTTP API writing concurrently.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	db := &DB{DB: sqlDB, path: path}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// RecordTarget stores a requested navigation target and whether planning
// succeeded, returning the target's generated ID.
func (db *DB) RecordTarget(x, y, theta float64, planned bool) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		"INSERT INTO targets (id, x, y, theta, planned) VALUES (?, ?, ?, ?, ?)",
		id, x, y, theta, planned,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecordEvent stores one navigation event.
func (db *DB) RecordEvent(kind, detail string) error {
	_, err := db.Exec("INSERT INTO events (kind, detail) VALUES (?, ?)", kind, detail)
	return err
}

// Event implements the navigation event sink. Persistence failures are
// logged rather than surfaced so a full disk can never stall the control
// tick.
func (db *DB) Event(kind, detail string) {
	if err := db.RecordEvent(kind, detail); err != nil {
		monitoring.Logf("telemetry: failed to record event %s: %v", kind, err)
	}
}

// RecordCommand stores one velocity frame written to the motor bus.
func (db *DB) RecordCommand(frame string) error {
	_, err := db.Exec("INSERT INTO commands (frame) VALUES (?)", frame)
	return err
}

// RecordBusLine stores one raw line received from a device bus, classified
// by line shape.
func (db *DB) RecordBusLine(device, payload string) error {
	_, err := db.Exec(
		"INSERT INTO bus_lines (device, kind, payload) VALUES (?, ?, ?)",
		device, serialmux.ClassifyLine(payload), payload,
	)
	return err
}

// Target is a stored navigation target request.
type Target struct {
	ID        string    `json:"id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Theta     float64   `json:"theta"`
	Planned   bool      `json:"planned"`
	CreatedAt time.Time `json:"created_at"`
}

// Targets returns the most recent target requests, newest first.
func (db *DB) Targets(limit int) ([]Target, error) {
	rows, err := db.Query(
		"SELECT id, x, y, theta, planned, created_at FROM targets ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []Target
	for rows.Next() {
		var t Target
		if err := rows.Scan(&t.ID, &t.X, &t.Y, &t.Theta, &t.Planned, &t.CreatedAt); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// StoredEvent is a persisted navigation event.
type StoredEvent struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// Events returns the most recent events, newest first.
func (db *DB) Events(limit int) ([]StoredEvent, error) {
	rows, err := db.Query(
		"SELECT event_id, kind, detail, created_at FROM events ORDER BY event_id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []StoredEvent
	for rows.Next() {
		var e StoredEvent
		if err := rows.Scan(&e.ID, &e.Kind, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// BusLineCounts returns the number of stored bus lines per device and kind.
func (db *DB) BusLineCounts() (map[string]int64, error) {
	rows, err := db.Query("SELECT device || '/' || kind, COUNT(*) FROM bus_lines GROUP BY device, kind")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// AttachAdminRoutes mounts live SQL debugging and database backup on the
// admin mux.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)

	// create a tailSQL instance and point it to our DB
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://rover.db", db.DB, &tailsql.DBOptions{
		Label: "Rover telemetry",
	})

	// mount the tailSQL server on the debug /tailsql path
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("db-schema", "Telemetry database schema version", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version, dirty, err := db.MigrateVersion()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to read schema version: %v", err), http.StatusInternalServerError)
			return
		}
		httputil.WriteJSONOK(w, map[string]any{
			"version": version,
			"dirty":   dirty,
		})
	}))

	debug.Handle("db-backup", "Create and download a backup of the telemetry database", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backupPath := fmt.Sprintf("backup-%d.db", time.Now().Unix())
		if _, err := db.DB.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")
		http.ServeFile(w, r, backupPath)
	}))
	return nil
}
