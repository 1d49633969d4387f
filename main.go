package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rtk-robotics/rover/internal/api"
	"github.com/rtk-robotics/rover/internal/config"
	"github.com/rtk-robotics/rover/internal/lidar"
	"github.com/rtk-robotics/rover/internal/motor"
	"github.com/rtk-robotics/rover/internal/nav"
	"github.com/rtk-robotics/rover/internal/serialmux"
	"github.com/rtk-robotics/rover/internal/telemetry"
	"github.com/rtk-robotics/rover/internal/timeutil"
	"github.com/rtk-robotics/rover/internal/version"
)

var (
	//go:embed static/*
	staticFiles embed.FS

	devMode    = flag.Bool("dev", false, "Run with mock serial devices and generated fixture scans")
	listen     = flag.String("listen", ":8080", "Listen address")
	lidarPort  = flag.String("lidar-port", "/dev/ttyUSB0", "Lidar serial port path")
	motorPort  = flag.String("motor-port", "/dev/ttyACM0", "Motor controller serial port path")
	dbFile     = flag.String("db", "rover.db", "Telemetry database path (empty disables telemetry)")
	configPath = flag.String("config", "", "Optional tuning config JSON path")
	noLidar    = flag.Bool("no-lidar", false, "Run without the lidar device")
	noMotor    = flag.Bool("no-motor", false, "Run without the motor controller")
)

// devLidarLines synthesises one revolution of scan lines describing a
// circular wall 3m out, so dev mode maps something without hardware.
func devLidarLines() []string {
	lines := make([]string, 0, 180)
	for a := 0; a < 360; a += 2 {
		lines = append(lines, fmt.Sprintf("15,%d.0,3000", a))
	}
	return lines
}

// openMux selects the bus implementation for one device: disabled, mock
// replay in dev mode, or a real serial port.
func openMux(disabled bool, path string, fixtures []string) (serialmux.Muxer, error) {
	switch {
	case disabled:
		return serialmux.NewDisabledSerialMux(), nil
	case *devMode:
		return serialmux.NewMockSerialMux(fixtures, 5*time.Millisecond), nil
	default:
		return serialmux.NewRealSerialMux(path, serialmux.PortOptions{})
	}
}

// recordBusLines subscribes to a device bus and persists every line until the
// context is cancelled.
func recordBusLines(ctx context.Context, db *telemetry.DB, device string, m serialmux.Muxer) {
	id, c := m.Subscribe()
	defer m.Unsubscribe(id)
	for {
		select {
		case payload, ok := <-c:
			if !ok {
				return
			}
			if err := db.RecordBusLine(device, payload); err != nil {
				log.Printf("failed to record %s bus line: %v", device, err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}
	navCfg := tuning.NavConfig()

	lidarMux, err := openMux(*noLidar, *lidarPort, devLidarLines())
	if err != nil {
		log.Fatalf("failed to open lidar port: %v", err)
	}
	defer lidarMux.Close()

	motorMux, err := openMux(*noMotor, *motorPort, []string{"OK"})
	if err != nil {
		log.Fatalf("failed to open motor port: %v", err)
	}
	defer motorMux.Close()

	var tdb *telemetry.DB
	var events nav.EventSink
	if *dbFile != "" {
		tdb, err = telemetry.NewDB(*dbFile)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer tdb.Close()
		events = tdb
	}

	worker := lidar.NewWorker(lidarMux)
	driver := motor.NewDriver(motorMux)
	if tdb != nil {
		// persist every velocity frame written to the bus
		driver.SetRecorder(tdb)
	}

	sys, err := nav.NewSystem(navCfg, worker, events)
	if err != nil {
		log.Fatalf("invalid navigation config: %v", err)
	}

	hz := int(time.Second / tuning.GetLoopInterval())
	loop := nav.NewLoop(sys, driver, timeutil.RealClock{}, hz)

	log.Printf("rover %s starting: map %dx%d @ %.2fm, control loop %dHz",
		version.String(), navCfg.MapWidth, navCfg.MapHeight, navCfg.ResolutionMeters, hz)

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the monitor routines to manage IO on the serial ports
	for device, m := range map[string]serialmux.Muxer{"lidar": lidarMux, "motor": motorMux} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Monitor(ctx); err != nil && err != context.Canceled {
				log.Printf("failed to monitor %s port: %v", device, err)
			}
			log.Printf("%s monitor routine terminated", device)
		}()
	}

	// persist raw bus traffic for post-run analysis
	if tdb != nil {
		for device, m := range map[string]serialmux.Muxer{"lidar": lidarMux, "motor": motorMux} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				recordBusLines(ctx, tdb, device, m)
			}()
		}
	}

	// spin up the scanner and start assembling revolutions
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := worker.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("lidar worker terminated: %v", err)
		}
	}()

	// enable torque and run the control loop; torque is released on the way
	// out so the platform never stays energised past shutdown
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := driver.Initialize(); err != nil {
			log.Printf("failed to initialise motor driver: %v", err)
			return
		}
		defer func() {
			if err := driver.Shutdown(); err != nil {
				log.Printf("failed to shut down motor driver: %v", err)
			}
		}()
		if err := loop.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("control loop terminated: %v", err)
		}
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// mount the admin debugging routes (accessible only in dev mode or over Tailscale)
		if tdb != nil {
			if err := tdb.AttachAdminRoutes(mux); err != nil {
				log.Printf("failed to attach telemetry admin routes: %v", err)
			}
		}
		// only the lidar bus gets the command/tail console; the debug handle
		// names are fixed so a second mux cannot mount alongside it
		lidarMux.AttachAdminRoutes(mux)

		api.NewServer(sys, worker, driver, tdb).AttachRoutes(mux)

		// read static files from the embedded filesystem in production or from
		// the local ./static in dev for easier iteration without restarting the
		// server
		var staticHandler http.Handler
		if *devMode {
			staticHandler = http.FileServer(http.Dir("./static"))
		} else {
			staticRoot, err := fs.Sub(staticFiles, "static")
			if err != nil {
				log.Fatalf("embedded static files missing: %v", err)
			}
			staticHandler = http.FileServer(http.FS(staticRoot))
		}
		mux.Handle("/", staticHandler)

		server := &http.Server{
			Addr:    *listen,
			Handler: mux,
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
