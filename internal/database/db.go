package database

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/machwatch/curator/internal/config"
)

type DB struct {
	conn   *sql.DB
	dbType string
}

func NewDB(cfg config.DatabaseConfig) (*DB, error) {
	var conn *sql.DB
	var err error

	switch cfg.Type {
	case "sqlite":
		conn, err = sql.Open("sqlite3", cfg.SQLitePath)
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
		conn, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn, dbType: cfg.Type}

	// Only create tables for SQLite; Postgres goes through migrations.
	if cfg.Type == "sqlite" {
		if err := db.createTables(); err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return db, nil
}

func (db *DB) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		fps REAL NOT NULL,
		duration_ms INTEGER NOT NULL,
		raw_path TEXT NOT NULL,
		ingest_time DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS extracted_frames (
		video_id TEXT NOT NULL,
		frame_number INTEGER NOT NULL,
		ts_ms INTEGER NOT NULL,
		frame_path TEXT NOT NULL,
		PRIMARY KEY (video_id, frame_number)
	);

	CREATE TABLE IF NOT EXISTS label_frames (
		video_id TEXT NOT NULL,
		frame_number INTEGER NOT NULL,
		ts_ms INTEGER NOT NULL,
		label_prior INTEGER NOT NULL,
		PRIMARY KEY (video_id, frame_number, label_prior)
	);

	CREATE TABLE IF NOT EXISTS telemetry_samples (
		video_id TEXT NOT NULL,
		ts_ms INTEGER NOT NULL,
		temperature REAL NOT NULL,
		current REAL NOT NULL,
		vibration REAL NOT NULL,
		speed REAL NOT NULL,
		feed_rate REAL NOT NULL,
		PRIMARY KEY (video_id, ts_ms)
	);

	CREATE TABLE IF NOT EXISTS event_windows (
		event_id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		video_id TEXT NOT NULL,
		t_start_ms INTEGER NOT NULL,
		t_end_ms INTEGER NOT NULL,
		label_prior INTEGER NOT NULL,
		origin TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_event_windows_run ON event_windows (run_id);

	CREATE TABLE IF NOT EXISTS event_casefiles (
		run_id TEXT NOT NULL,
		event_id TEXT NOT NULL,
		schema_version TEXT NOT NULL,
		video_id TEXT NOT NULL,
		t_start_ms INTEGER NOT NULL,
		t_end_ms INTEGER NOT NULL,
		label_prior INTEGER NOT NULL,
		origin TEXT NOT NULL,
		evidence TEXT NOT NULL,
		telemetry TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (run_id, event_id)
	);

	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		schema_version TEXT NOT NULL,
		videos_processed INTEGER NOT NULL,
		videos_without_windows INTEGER NOT NULL,
		label_files_parsed INTEGER NOT NULL,
		label_files_skipped INTEGER NOT NULL,
		windows_built INTEGER NOT NULL,
		synthetic_windows INTEGER NOT NULL,
		synthetic_shortfall INTEGER NOT NULL,
		overlaps_dropped INTEGER NOT NULL,
		empty_telemetry_windows INTEGER NOT NULL,
		casefiles_written INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL
	);
	`

	_, err := db.conn.Exec(query)
	return err
}

// RunMigrations applies pending SQL migrations (Postgres only; SQLite
// tables are created directly).
func (db *DB) RunMigrations(migrationsPath string) error {
	migrator := NewMigrator(db.conn, db.dbType)
	return migrator.Run(migrationsPath)
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}
