package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/machwatch/curator/internal/models"
)

type CasefileRepository struct {
	db *DB
}

func NewCasefileRepository(db *DB) *CasefileRepository {
	return &CasefileRepository{db: db}
}

// Create validates and writes one casefile. Evidence and telemetry go
// into JSON columns; the flattened projection expands them on read.
func (r *CasefileRepository) Create(ctx context.Context, c *models.EventCasefile) error {
	if err := c.Validate(); err != nil {
		return err
	}

	evidenceJSON, err := json.Marshal(c.Evidence)
	if err != nil {
		return fmt.Errorf("failed to marshal evidence for casefile %s: %w", c.EventID, err)
	}
	telemetryJSON, err := json.Marshal(c.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to marshal telemetry for casefile %s: %w", c.EventID, err)
	}

	query := `
		INSERT INTO event_casefiles (
			run_id, event_id, schema_version, video_id, t_start_ms, t_end_ms,
			label_prior, origin, evidence, telemetry, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (run_id, event_id) DO UPDATE SET
			evidence = EXCLUDED.evidence,
			telemetry = EXCLUDED.telemetry,
			created_at = EXCLUDED.created_at`

	_, err = r.db.conn.ExecContext(ctx, query,
		c.RunID, c.EventID, c.SchemaVersion, c.VideoID, c.TStartMS, c.TEndMS,
		c.LabelPrior, string(c.Origin), string(evidenceJSON), string(telemetryJSON), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert casefile %s: %w", c.EventID, err)
	}
	return nil
}

func (r *CasefileRepository) GetByRunID(ctx context.Context, runID string) ([]*models.EventCasefile, error) {
	query := `
		SELECT run_id, event_id, schema_version, video_id, t_start_ms, t_end_ms,
			   label_prior, origin, evidence, telemetry, created_at
		FROM event_casefiles
		WHERE run_id = $1
		ORDER BY video_id, t_start_ms`

	rows, err := r.db.conn.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query casefiles for run %s: %w", runID, err)
	}
	defer rows.Close()

	var casefiles []*models.EventCasefile
	for rows.Next() {
		c := &models.EventCasefile{}
		var origin, evidenceJSON, telemetryJSON string
		err := rows.Scan(&c.RunID, &c.EventID, &c.SchemaVersion, &c.VideoID, &c.TStartMS, &c.TEndMS,
			&c.LabelPrior, &origin, &evidenceJSON, &telemetryJSON, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan casefile: %w", err)
		}
		c.Origin = models.WindowOrigin(origin)

		if err := json.Unmarshal([]byte(evidenceJSON), &c.Evidence); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evidence for casefile %s: %w", c.EventID, err)
		}
		if err := json.Unmarshal([]byte(telemetryJSON), &c.Telemetry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal telemetry for casefile %s: %w", c.EventID, err)
		}
		casefiles = append(casefiles, c)
	}
	return casefiles, rows.Err()
}

// GetFlatByRunID returns the scalar-column projection, one row per
// casefile.
func (r *CasefileRepository) GetFlatByRunID(ctx context.Context, runID string) ([]models.FlatCasefile, error) {
	casefiles, err := r.GetByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	flat := make([]models.FlatCasefile, 0, len(casefiles))
	for _, c := range casefiles {
		flat = append(flat, c.Flatten())
	}
	return flat, nil
}
