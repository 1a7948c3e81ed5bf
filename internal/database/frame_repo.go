package database

import (
	"context"
	"fmt"

	"github.com/machwatch/curator/internal/models"
)

type FrameRepository struct {
	db *DB
}

func NewFrameRepository(db *DB) *FrameRepository {
	return &FrameRepository{db: db}
}

// InsertBatch writes an extracted-frame index in one transaction.
// Existing (video_id, frame_number) rows are replaced: frame extraction
// output is immutable, so a re-ingest carries identical data.
func (r *FrameRepository) InsertBatch(ctx context.Context, frames []models.ExtractedFrame) error {
	if len(frames) == 0 {
		return nil
	}

	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO extracted_frames (video_id, frame_number, ts_ms, frame_path)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (video_id, frame_number) DO UPDATE SET
			ts_ms = EXCLUDED.ts_ms,
			frame_path = EXCLUDED.frame_path`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare frame insert: %w", err)
	}
	defer stmt.Close()

	for _, frame := range frames {
		if _, err := stmt.ExecContext(ctx, frame.VideoID, frame.FrameNumber, frame.TSMillis, frame.FramePath); err != nil {
			return fmt.Errorf("failed to insert frame %d of video %s: %w", frame.FrameNumber, frame.VideoID, err)
		}
	}

	return tx.Commit()
}

func (r *FrameRepository) GetByVideoID(ctx context.Context, videoID string) ([]models.ExtractedFrame, error) {
	query := `
		SELECT video_id, frame_number, ts_ms, frame_path
		FROM extracted_frames
		WHERE video_id = $1
		ORDER BY frame_number`

	rows, err := r.db.conn.QueryContext(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query frames for video %s: %w", videoID, err)
	}
	defer rows.Close()

	var frames []models.ExtractedFrame
	for rows.Next() {
		var frame models.ExtractedFrame
		if err := rows.Scan(&frame.VideoID, &frame.FrameNumber, &frame.TSMillis, &frame.FramePath); err != nil {
			return nil, fmt.Errorf("failed to scan frame: %w", err)
		}
		frames = append(frames, frame)
	}
	return frames, rows.Err()
}

func (r *FrameRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM extracted_frames").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count frames: %w", err)
	}
	return count, nil
}
