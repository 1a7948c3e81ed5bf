package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/machwatch/curator/internal/config"
	"github.com/machwatch/curator/internal/database"
	"github.com/machwatch/curator/internal/metrics"
	"github.com/machwatch/curator/internal/pipeline"
	"github.com/machwatch/curator/internal/storage"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		manifest   = flag.String("videos", "", "Video manifest JSON to ingest before the run")
		frameIndex = flag.String("frames", "", "Extracted-frame CSV index to ingest before the run")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid config:", err)
	}

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatal("Failed to register metrics:", err)
	}

	source, err := storage.NewLocalLabelSource(cfg.Labels.AnomalyDir, cfg.Labels.NormalDir)
	if err != nil {
		log.Fatal("Failed to open label source:", err)
	}

	p := &pipeline.Pipeline{
		Videos:    database.NewVideoRepository(db),
		Frames:    database.NewFrameRepository(db),
		Labels:    database.NewLabelFrameRepository(db),
		Telemetry: database.NewTelemetryRepository(db),
		Windows:   database.NewWindowRepository(db),
		Casefiles: database.NewCasefileRepository(db),
		Runs:      database.NewRunRepository(db),
		Source:    source,
		Config:    cfg,
	}

	ctx := context.Background()

	if *manifest != "" {
		if *frameIndex == "" {
			log.Fatal("-videos requires -frames")
		}
		if err := p.Ingest(ctx, *manifest, *frameIndex); err != nil {
			log.Fatal("Ingest failed:", err)
		}
	}

	report, err := p.Run(ctx)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoUpstreamData) {
			log.Printf("Run aborted: %v", err)
			log.Fatal("Check the ingest paths: an empty input set is a misconfiguration, not an empty result")
		}
		log.Fatal("Run failed:", err)
	}

	fmt.Printf("Run %s complete\n", report.RunID)
	fmt.Printf("  videos processed:        %d\n", report.VideosProcessed)
	fmt.Printf("  videos without windows:  %d\n", report.VideosWithoutWindows)
	fmt.Printf("  label files parsed:      %d\n", report.LabelFilesParsed)
	fmt.Printf("  label files skipped:     %d\n", report.LabelFilesSkipped)
	fmt.Printf("  windows built:           %d\n", report.WindowsBuilt)
	fmt.Printf("  synthetic windows:       %d\n", report.SyntheticWindows)
	fmt.Printf("  synthetic shortfall:     %d\n", report.SyntheticShortfall)
	fmt.Printf("  overlaps dropped:        %d\n", report.OverlapsDropped)
	fmt.Printf("  empty telemetry windows: %d\n", report.EmptyTelemetryWindows)
	fmt.Printf("  casefiles written:       %d\n", report.CasefilesWritten)
}
