package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/machwatch/curator/internal/models"
)

type RunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Insert(ctx context.Context, report *models.RunReport) error {
	query := `
		INSERT INTO runs (
			run_id, schema_version, videos_processed, videos_without_windows,
			label_files_parsed, label_files_skipped, windows_built,
			synthetic_windows, synthetic_shortfall, overlaps_dropped,
			empty_telemetry_windows, casefiles_written, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.conn.ExecContext(ctx, query,
		report.RunID, report.SchemaVersion, report.VideosProcessed, report.VideosWithoutWindows,
		report.LabelFilesParsed, report.LabelFilesSkipped, report.WindowsBuilt,
		report.SyntheticWindows, report.SyntheticShortfall, report.OverlapsDropped,
		report.EmptyTelemetryWindows, report.CasefilesWritten, report.StartedAt, report.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run report %s: %w", report.RunID, err)
	}
	return nil
}

func (r *RunRepository) GetByID(ctx context.Context, runID string) (*models.RunReport, error) {
	query := selectRuns + " WHERE run_id = $1"

	report := &models.RunReport{}
	err := r.db.conn.QueryRowContext(ctx, query, runID).Scan(scanTargets(report)...)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	return report, nil
}

func (r *RunRepository) List(ctx context.Context) ([]models.RunReport, error) {
	rows, err := r.db.conn.QueryContext(ctx, selectRuns+" ORDER BY started_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var reports []models.RunReport
	for rows.Next() {
		var report models.RunReport
		if err := rows.Scan(scanTargets(&report)...); err != nil {
			return nil, fmt.Errorf("failed to scan run report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

const selectRuns = `
	SELECT run_id, schema_version, videos_processed, videos_without_windows,
		   label_files_parsed, label_files_skipped, windows_built,
		   synthetic_windows, synthetic_shortfall, overlaps_dropped,
		   empty_telemetry_windows, casefiles_written, started_at, finished_at
	FROM runs`

func scanTargets(r *models.RunReport) []any {
	return []any{
		&r.RunID, &r.SchemaVersion, &r.VideosProcessed, &r.VideosWithoutWindows,
		&r.LabelFilesParsed, &r.LabelFilesSkipped, &r.WindowsBuilt,
		&r.SyntheticWindows, &r.SyntheticShortfall, &r.OverlapsDropped,
		&r.EmptyTelemetryWindows, &r.CasefilesWritten, &r.StartedAt, &r.FinishedAt,
	}
}
