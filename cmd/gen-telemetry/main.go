package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/machwatch/curator/internal/config"
	"github.com/machwatch/curator/internal/database"
	"github.com/machwatch/curator/internal/telemetry"
)

// gen-telemetry fills the telemetry_samples table with the synthetic
// fixed-cadence stream for every ingested video. Deterministic per
// (seed, video_id), so re-running overwrites identical data.
func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		videoID    = flag.String("id", "", "Generate for a single video only")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	videoRepo := database.NewVideoRepository(db)
	telemetryRepo := database.NewTelemetryRepository(db)
	generator := telemetry.NewGenerator(cfg.Telemetry.CadenceMS, cfg.Telemetry.Seed)

	ctx := context.Background()

	videos, err := videoRepo.List(ctx)
	if err != nil {
		log.Fatal("Failed to list videos:", err)
	}
	if len(videos) == 0 {
		log.Fatal("No videos ingested; run the pipeline ingest first")
	}

	total := 0
	for _, video := range videos {
		if *videoID != "" && video.ID != *videoID {
			continue
		}

		samples := generator.Generate(&video)
		if err := telemetryRepo.InsertBatch(ctx, samples); err != nil {
			log.Fatal("Failed to store telemetry:", err)
		}
		fmt.Printf("Video %s: %d samples at %dms cadence\n", video.ID, len(samples), cfg.Telemetry.CadenceMS)
		total += len(samples)
	}

	fmt.Printf("Generated %d telemetry samples\n", total)
}
