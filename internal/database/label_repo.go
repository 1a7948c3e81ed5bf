package database

import (
	"context"
	"fmt"

	"github.com/machwatch/curator/internal/models"
)

type LabelFrameRepository struct {
	db *DB
}

func NewLabelFrameRepository(db *DB) *LabelFrameRepository {
	return &LabelFrameRepository{db: db}
}

func (r *LabelFrameRepository) InsertBatch(ctx context.Context, frames []models.LabelFrame) error {
	if len(frames) == 0 {
		return nil
	}

	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO label_frames (video_id, frame_number, ts_ms, label_prior)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (video_id, frame_number, label_prior) DO UPDATE SET
			ts_ms = EXCLUDED.ts_ms`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare label insert: %w", err)
	}
	defer stmt.Close()

	for _, frame := range frames {
		if _, err := stmt.ExecContext(ctx, frame.VideoID, frame.FrameNumber, frame.TSMillis, frame.LabelPrior); err != nil {
			return fmt.Errorf("failed to insert label frame %d of video %s: %w", frame.FrameNumber, frame.VideoID, err)
		}
	}

	return tx.Commit()
}

func (r *LabelFrameRepository) GetByVideoID(ctx context.Context, videoID string) ([]models.LabelFrame, error) {
	query := `
		SELECT video_id, frame_number, ts_ms, label_prior
		FROM label_frames
		WHERE video_id = $1
		ORDER BY ts_ms`

	rows, err := r.db.conn.QueryContext(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query label frames for video %s: %w", videoID, err)
	}
	defer rows.Close()

	var frames []models.LabelFrame
	for rows.Next() {
		var frame models.LabelFrame
		if err := rows.Scan(&frame.VideoID, &frame.FrameNumber, &frame.TSMillis, &frame.LabelPrior); err != nil {
			return nil, fmt.Errorf("failed to scan label frame: %w", err)
		}
		frames = append(frames, frame)
	}
	return frames, rows.Err()
}
