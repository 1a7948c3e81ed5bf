package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/machwatch/curator/internal/models"
)

type VideoRepository struct {
	db *DB
}

func NewVideoRepository(db *DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Insert(ctx context.Context, video *models.Video) error {
	query := `
		INSERT INTO videos (id, fps, duration_ms, raw_path, ingest_time)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.conn.ExecContext(ctx, query,
		video.ID, video.FPS, video.DurationMS, video.RawPath, video.IngestTime)
	if err != nil {
		return fmt.Errorf("failed to insert video %s: %w", video.ID, err)
	}
	return nil
}

func (r *VideoRepository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	query := `
		SELECT id, fps, duration_ms, raw_path, ingest_time
		FROM videos WHERE id = $1`

	video := &models.Video{}
	err := r.db.conn.QueryRowContext(ctx, query, id).Scan(
		&video.ID, &video.FPS, &video.DurationMS, &video.RawPath, &video.IngestTime)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("video %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video %s: %w", id, err)
	}
	return video, nil
}

func (r *VideoRepository) List(ctx context.Context) ([]models.Video, error) {
	query := `
		SELECT id, fps, duration_ms, raw_path, ingest_time
		FROM videos ORDER BY id`

	rows, err := r.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(&video.ID, &video.FPS, &video.DurationMS, &video.RawPath, &video.IngestTime); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}
