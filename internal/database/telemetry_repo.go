package database

import (
	"context"
	"fmt"

	"github.com/machwatch/curator/internal/models"
)

type TelemetryRepository struct {
	db *DB
}

func NewTelemetryRepository(db *DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

func (r *TelemetryRepository) InsertBatch(ctx context.Context, samples []models.TelemetrySample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO telemetry_samples (video_id, ts_ms, temperature, current, vibration, speed, feed_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (video_id, ts_ms) DO UPDATE SET
			temperature = EXCLUDED.temperature,
			current = EXCLUDED.current,
			vibration = EXCLUDED.vibration,
			speed = EXCLUDED.speed,
			feed_rate = EXCLUDED.feed_rate`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare telemetry insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.ExecContext(ctx, s.VideoID, s.TSMillis, s.Temperature, s.Current, s.Vibration, s.Speed, s.FeedRate); err != nil {
			return fmt.Errorf("failed to insert telemetry sample at %dms for video %s: %w", s.TSMillis, s.VideoID, err)
		}
	}

	return tx.Commit()
}

func (r *TelemetryRepository) GetByVideoID(ctx context.Context, videoID string) ([]models.TelemetrySample, error) {
	query := `
		SELECT video_id, ts_ms, temperature, current, vibration, speed, feed_rate
		FROM telemetry_samples
		WHERE video_id = $1
		ORDER BY ts_ms`

	rows, err := r.db.conn.QueryContext(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query telemetry for video %s: %w", videoID, err)
	}
	defer rows.Close()

	var samples []models.TelemetrySample
	for rows.Next() {
		var s models.TelemetrySample
		if err := rows.Scan(&s.VideoID, &s.TSMillis, &s.Temperature, &s.Current, &s.Vibration, &s.Speed, &s.FeedRate); err != nil {
			return nil, fmt.Errorf("failed to scan telemetry sample: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
