package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/machwatch/curator/internal/api"
	"github.com/machwatch/curator/internal/config"
	"github.com/machwatch/curator/internal/database"
	"github.com/machwatch/curator/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
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

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatal("Failed to register metrics:", err)
	}

	app := &api.App{
		VideoRepo:    database.NewVideoRepository(db),
		RunRepo:      database.NewRunRepository(db),
		WindowRepo:   database.NewWindowRepository(db),
		CasefileRepo: database.NewCasefileRepository(db),
	}

	router := api.NewRouter(app)

	log.Printf("Server starting on port %s", cfg.Server.Port)
	log.Printf("Database type: %s", cfg.Database.Type)

	if err := http.ListenAndServe(":"+cfg.Server.Port, router); err != nil {
		log.Fatal(err)
	}
}
