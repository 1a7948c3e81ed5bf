package evidence

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machwatch/curator/internal/models"
)

func frameIndex(videoID string, fps float64, frameNumbers ...int) *FrameIndex {
	video := models.NewVideo(videoID, fps, 600000, "")
	frames := make([]models.ExtractedFrame, 0, len(frameNumbers))
	for _, n := range frameNumbers {
		frames = append(frames, models.ExtractedFrame{
			VideoID:     videoID,
			FrameNumber: n,
			TSMillis:    video.FrameTimestampMS(n),
			FramePath:   framePath(videoID, n),
		})
	}
	return NewFrameIndex(frames)
}

func framePath(videoID string, n int) string {
	return fmt.Sprintf("/frames/%s/%06d.jpg", videoID, n)
}

func TestSnapToFrameNumber(t *testing.T) {
	idx := frameIndex("V1", 100, 0, 10, 20, 30)

	tests := []struct {
		name  string
		query int
		want  int
	}{
		{"exact hit is idempotent", 10, 10},
		{"midpoint tie prefers lower", 15, 10},
		{"closer to lower", 14, 10},
		{"closer to upper", 16, 20},
		{"below range clamps to first", -5, 0},
		{"above range clamps to last", 100, 30},
		{"exact first", 0, 0},
		{"exact last", 30, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, ok := idx.SnapToFrameNumber(tt.query)
			require.True(t, ok)
			assert.Equal(t, tt.want, frame.FrameNumber)
		})
	}
}

func TestSnapToFrameNumberEmptyIndex(t *testing.T) {
	idx := NewFrameIndex(nil)
	_, ok := idx.SnapToFrameNumber(5)
	assert.False(t, ok)
}

func TestSnapToTimestamp(t *testing.T) {
	// 100fps: frames 0,10,20 sit at 0,100,200ms.
	idx := frameIndex("V1", 100, 0, 10, 20)

	frame, ok := idx.SnapToTimestamp(100)
	require.True(t, ok)
	assert.Equal(t, 10, frame.FrameNumber)

	frame, ok = idx.SnapToTimestamp(150) // tie prefers earlier
	require.True(t, ok)
	assert.Equal(t, 10, frame.FrameNumber)

	frame, ok = idx.SnapToTimestamp(160)
	require.True(t, ok)
	assert.Equal(t, 20, frame.FrameNumber)

	frame, ok = idx.SnapToTimestamp(9999)
	require.True(t, ok)
	assert.Equal(t, 20, frame.FrameNumber)
}

func TestAnomalyEvidenceSnapsAndDedupes(t *testing.T) {
	video := models.NewVideo("V1", 100, 60000, "")
	idx := frameIndex("V1", 100, 0, 100, 200)

	window, err := models.NewEventWindow("V1", 900, 1200, models.PriorAnomaly, models.OriginLabels)
	require.NoError(t, err)

	// Labels 99 and 101 both snap to extracted frame 100; the window
	// must reference it once.
	labels := []models.LabelFrame{
		{VideoID: "V1", FrameNumber: 99, TSMillis: video.FrameTimestampMS(99), LabelPrior: models.PriorAnomaly},
		{VideoID: "V1", FrameNumber: 101, TSMillis: video.FrameTimestampMS(101), LabelPrior: models.PriorAnomaly},
	}

	refs := AnomalyEvidence(window, labels, idx)
	require.Len(t, refs, 1)
	assert.Equal(t, 100, refs[0].FrameNumber)
	assert.Equal(t, int64(1000), refs[0].TSMillis)
}

func TestAnomalyEvidenceIgnoresLabelsOutsideWindow(t *testing.T) {
	video := models.NewVideo("V1", 100, 60000, "")
	idx := frameIndex("V1", 100, 0, 100, 200, 300)

	window, err := models.NewEventWindow("V1", 900, 1200, models.PriorAnomaly, models.OriginLabels)
	require.NoError(t, err)

	labels := []models.LabelFrame{
		{VideoID: "V1", FrameNumber: 100, TSMillis: video.FrameTimestampMS(100), LabelPrior: models.PriorAnomaly},
		{VideoID: "V1", FrameNumber: 300, TSMillis: video.FrameTimestampMS(300), LabelPrior: models.PriorAnomaly},
	}

	refs := AnomalyEvidence(window, labels, idx)
	require.Len(t, refs, 1)
	assert.Equal(t, 100, refs[0].FrameNumber)
}

func TestNormalEvidenceMidpoint(t *testing.T) {
	idx := frameIndex("V1", 100, 0, 100, 200, 300, 400)

	window, err := models.NewEventWindow("V1", 1500, 2500, models.PriorNormal, models.OriginSynthetic)
	require.NoError(t, err)

	refs := NormalEvidence(window, idx, 1)
	require.Len(t, refs, 1)
	// Midpoint 2000ms snaps to frame 200.
	assert.Equal(t, 200, refs[0].FrameNumber)
}

func TestNormalEvidenceMultipleSamplesOrdered(t *testing.T) {
	idx := frameIndex("V1", 100, 0, 100, 200, 300, 400)

	window, err := models.NewEventWindow("V1", 0, 4000, models.PriorNormal, models.OriginSynthetic)
	require.NoError(t, err)

	refs := NormalEvidence(window, idx, 3)
	require.NotEmpty(t, refs)
	for i := 1; i < len(refs); i++ {
		assert.Less(t, refs[i-1].TSMillis, refs[i].TSMillis)
	}
}

func TestAssembleAnomalyCasefile(t *testing.T) {
	video := models.NewVideo("V1", 100, 60000, "")
	idx := frameIndex("V1", 100, 0, 100, 200)

	window, err := models.NewEventWindow("V1", 900, 1200, models.PriorAnomaly, models.OriginLabels)
	require.NoError(t, err)

	labels := []models.LabelFrame{
		{VideoID: "V1", FrameNumber: 100, TSMillis: video.FrameTimestampMS(100), LabelPrior: models.PriorAnomaly},
	}
	samples := []models.TelemetrySample{
		{VideoID: "V1", TSMillis: 950, Temperature: 60, Current: 12, Vibration: 0.4, Speed: 1450, FeedRate: 120},
	}

	casefile, err := Assemble("run-1", window, labels, idx, samples, 1)
	require.NoError(t, err)

	assert.Equal(t, "run-1", casefile.RunID)
	assert.Equal(t, window.EventID, casefile.EventID)
	assert.Equal(t, models.SchemaVersion, casefile.SchemaVersion)
	require.Len(t, casefile.Evidence, 1)
	assert.True(t, casefile.Telemetry.HasData)
	assert.Equal(t, 1, casefile.Telemetry.SampleCount)
	require.NoError(t, casefile.Validate())
}
