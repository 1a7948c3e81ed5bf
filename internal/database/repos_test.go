package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machwatch/curator/internal/models"
)

func TestVideoRepository(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewVideoRepository(db)
	ctx := context.Background()

	video := models.NewVideo("press03", 120, 60000, "/videos/press03.mp4")
	require.NoError(t, repo.Insert(ctx, video))

	got, err := repo.GetByID(ctx, "press03")
	require.NoError(t, err)
	assert.Equal(t, video.ID, got.ID)
	assert.Equal(t, video.FPS, got.FPS)
	assert.Equal(t, video.DurationMS, got.DurationMS)
	assert.Equal(t, video.RawPath, got.RawPath)
	assert.WithinDuration(t, video.IngestTime, got.IngestTime, time.Second)

	_, err = repo.GetByID(ctx, "missing")
	assert.Error(t, err)

	videos, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, videos, 1)
}

func TestFrameRepositoryBatchAndOrder(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewFrameRepository(db)
	ctx := context.Background()

	frames := []models.ExtractedFrame{
		{VideoID: "V1", FrameNumber: 20, TSMillis: 200, FramePath: "/f/20.jpg"},
		{VideoID: "V1", FrameNumber: 0, TSMillis: 0, FramePath: "/f/0.jpg"},
		{VideoID: "V1", FrameNumber: 10, TSMillis: 100, FramePath: "/f/10.jpg"},
		{VideoID: "V2", FrameNumber: 5, TSMillis: 50, FramePath: "/f/5.jpg"},
	}
	require.NoError(t, repo.InsertBatch(ctx, frames))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	got, err := repo.GetByVideoID(ctx, "V1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 0, got[0].FrameNumber)
	assert.Equal(t, 10, got[1].FrameNumber)
	assert.Equal(t, 20, got[2].FrameNumber)

	// Re-ingesting the same index is an idempotent upsert.
	require.NoError(t, repo.InsertBatch(ctx, frames))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestLabelFrameRepository(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewLabelFrameRepository(db)
	ctx := context.Background()

	frames := []models.LabelFrame{
		{VideoID: "V1", FrameNumber: 103, TSMillis: 858, LabelPrior: models.PriorAnomaly},
		{VideoID: "V1", FrameNumber: 100, TSMillis: 833, LabelPrior: models.PriorAnomaly},
	}
	require.NoError(t, repo.InsertBatch(ctx, frames))

	got, err := repo.GetByVideoID(ctx, "V1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(833), got[0].TSMillis, "rows come back in timestamp order")
}

func TestTelemetryRepository(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTelemetryRepository(db)
	ctx := context.Background()

	samples := []models.TelemetrySample{
		{VideoID: "V1", TSMillis: 500, Temperature: 58.2, Current: 12.1, Vibration: 0.3, Speed: 1448, FeedRate: 119},
		{VideoID: "V1", TSMillis: 0, Temperature: 58.0, Current: 12.0, Vibration: 0.3, Speed: 1450, FeedRate: 120},
	}
	require.NoError(t, repo.InsertBatch(ctx, samples))

	got, err := repo.GetByVideoID(ctx, "V1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(0), got[0].TSMillis)
	assert.Equal(t, 58.0, got[0].Temperature)
}

func TestWindowRepository(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewWindowRepository(db)
	ctx := context.Background()

	w1, err := models.NewEventWindow("V1", 900, 1130, models.PriorAnomaly, models.OriginLabels)
	require.NoError(t, err)
	w2, err := models.NewEventWindow("V1", 30000, 35000, models.PriorNormal, models.OriginSynthetic)
	require.NoError(t, err)

	require.NoError(t, repo.InsertBatch(ctx, "run-1", []*models.EventWindow{w2, w1}))

	got, err := repo.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, w1.EventID, got[0].EventID, "windows ordered by start time")
	assert.Equal(t, models.OriginLabels, got[0].Origin)
	assert.Equal(t, models.OriginSynthetic, got[1].Origin)

	other, err := repo.GetByRunID(ctx, "run-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}
