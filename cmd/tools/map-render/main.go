// Command map-render builds an occupancy map from a captured lidar log and
// renders it to a PNG, without running the rover.
//
// The input is a text file of raw scan lines as they appear on the lidar bus
// ("quality,angle_deg,distance_mm", one per line). Lines that don't parse are
// counted and skipped.
//
// Usage:
//
//	go run ./cmd/tools/map-render -scans capture.txt -out map.png [flags]
//
// Flags:
//
//	-scans   Input scan log path (required)
//	-out     Output PNG path (default: map.png)
//	-config  Optional tuning config JSON path
package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/rtk-robotics/rover/internal/config"
	"github.com/rtk-robotics/rover/internal/lidar"
	"github.com/rtk-robotics/rover/internal/monitor"
	"github.com/rtk-robotics/rover/internal/nav"
	"github.com/rtk-robotics/rover/internal/security"
)

func main() {
	scansPath := flag.String("scans", "", "Input scan log path")
	outPath := flag.String("out", "map.png", "Output PNG path")
	configPath := flag.String("config", "", "Optional tuning config JSON path")
	flag.Parse()

	if *scansPath == "" {
		log.Fatal("-scans is required")
	}
	if err := security.ValidateExportPath(*outPath, filepath.Dir(*outPath), ".png"); err != nil {
		log.Fatalf("invalid output path: %v", err)
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}
	cfg := tuning.NavConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid navigation config: %v", err)
	}

	grid, err := nav.NewGrid(cfg.MapWidth, cfg.MapHeight, cfg.ResolutionMeters)
	if err != nil {
		log.Fatalf("failed to create grid: %v", err)
	}
	ingestor := nav.NewScanIngestor(grid, cfg)

	f, err := os.Open(*scansPath)
	if err != nil {
		log.Fatalf("failed to open scan log: %v", err)
	}
	defer f.Close()

	var samples []nav.RangeSample
	var parseErrors int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		sample, err := lidar.ParseSample(scanner.Text())
		if err != nil {
			parseErrors++
			continue
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("failed to read scan log: %v", err)
	}

	applied := ingestor.Ingest(samples)
	log.Printf("ingested %d of %d samples (%d unparseable lines)", applied, len(samples), parseErrors)

	if err := monitor.NewGridPlotter().RenderPNG(grid, *outPath); err != nil {
		log.Fatalf("failed to render map: %v", err)
	}
	log.Printf("wrote %s", *outPath)
}
