package database

import (
	"context"
	"fmt"

	"github.com/machwatch/curator/internal/models"
)

type WindowRepository struct {
	db *DB
}

func NewWindowRepository(db *DB) *WindowRepository {
	return &WindowRepository{db: db}
}

func (r *WindowRepository) InsertBatch(ctx context.Context, runID string, windows []*models.EventWindow) error {
	if len(windows) == 0 {
		return nil
	}

	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO event_windows (event_id, run_id, video_id, t_start_ms, t_end_ms, label_prior, origin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare window insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range windows {
		if _, err := stmt.ExecContext(ctx, w.EventID, runID, w.VideoID, w.TStartMS, w.TEndMS, w.LabelPrior, string(w.Origin)); err != nil {
			return fmt.Errorf("failed to insert window %s: %w", w.EventID, err)
		}
	}

	return tx.Commit()
}

func (r *WindowRepository) GetByRunID(ctx context.Context, runID string) ([]models.EventWindow, error) {
	query := `
		SELECT event_id, video_id, t_start_ms, t_end_ms, label_prior, origin
		FROM event_windows
		WHERE run_id = $1
		ORDER BY video_id, t_start_ms`

	rows, err := r.db.conn.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query windows for run %s: %w", runID, err)
	}
	defer rows.Close()

	var windows []models.EventWindow
	for rows.Next() {
		var w models.EventWindow
		var origin string
		if err := rows.Scan(&w.EventID, &w.VideoID, &w.TStartMS, &w.TEndMS, &w.LabelPrior, &origin); err != nil {
			return nil, fmt.Errorf("failed to scan window: %w", err)
		}
		w.Origin = models.WindowOrigin(origin)
		windows = append(windows, w)
	}
	return windows, rows.Err()
}
