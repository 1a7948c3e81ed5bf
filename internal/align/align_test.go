package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machwatch/curator/internal/models"
)

func TestParseLabelFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVideoID string
		wantFrame   int
		wantErr     bool
	}{
		{
			name:        "typical anomaly label",
			filename:    "000150_press03_detected_crack.png",
			wantVideoID: "press03",
			wantFrame:   150,
		},
		{
			name:        "no zero padding",
			filename:    "7_mill01_detected_burn.jpg",
			wantVideoID: "mill01",
			wantFrame:   7,
		},
		{
			name:        "video id with underscores",
			filename:    "42_line_2_cam_detected_spark.png",
			wantVideoID: "line_2_cam",
			wantFrame:   42,
		},
		{
			name:        "path prefix is ignored",
			filename:    "labels/anomaly/000100_press03_detected_dent.png",
			wantVideoID: "press03",
			wantFrame:   100,
		},
		{
			name:     "no leading frame number",
			filename: "press03_detected_crack.png",
			wantErr:  true,
		},
		{
			name:     "marker missing",
			filename: "000150_press03_crack.png",
			wantErr:  true,
		},
		{
			name:     "empty video id before marker",
			filename: "000150_detected_crack.png",
			wantErr:  true,
		},
		{
			name:     "digits only",
			filename: "000150.png",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			videoID, frame, err := ParseLabelFilename(tt.filename, "_detected_")
			if tt.wantErr {
				require.Error(t, err)
				var parseErr *ParseError
				assert.ErrorAs(t, err, &parseErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVideoID, videoID)
			assert.Equal(t, tt.wantFrame, frame)
		})
	}
}

func TestPartition(t *testing.T) {
	files := []string{
		"000100_press03_detected_crack.png",
		"000103_press03_detected_crack.png",
		"000050_mill01_detected_burn.png",
		"not_a_label.png",
	}

	parsed, skipped := Partition(files, "_detected_")

	assert.Equal(t, []string{"not_a_label.png"}, skipped)
	require.Len(t, parsed["press03"], 2)
	require.Len(t, parsed["mill01"], 1)
	assert.Equal(t, 50, parsed["mill01"][0].FrameNumber)
}

func TestPartitionAllMalformed(t *testing.T) {
	parsed, skipped := Partition([]string{"garbage.png", "also_garbage.jpg"}, "_detected_")
	assert.Empty(t, parsed)
	assert.Len(t, skipped, 2)
}

func TestAlign(t *testing.T) {
	video := models.NewVideo("press03", 120, 60000, "/videos/press03.mp4")

	parsed := []ParsedLabel{
		{VideoID: "press03", FrameNumber: 100},
		{VideoID: "press03", FrameNumber: 103},
		{VideoID: "press03", FrameNumber: 101},
	}

	frames := Align(video, parsed, models.PriorAnomaly)
	require.Len(t, frames, 3)

	// Sorted by timestamp, which at 120fps is round(frame/120*1000).
	assert.Equal(t, 100, frames[0].FrameNumber)
	assert.Equal(t, int64(833), frames[0].TSMillis)
	assert.Equal(t, 101, frames[1].FrameNumber)
	assert.Equal(t, int64(842), frames[1].TSMillis)
	assert.Equal(t, 103, frames[2].FrameNumber)
	assert.Equal(t, int64(858), frames[2].TSMillis)

	for _, f := range frames {
		assert.Equal(t, models.PriorAnomaly, f.LabelPrior)
		assert.Equal(t, "press03", f.VideoID)
	}
}

func TestCheckNormalSource(t *testing.T) {
	assert.ErrorIs(t, CheckNormalSource(nil), ErrNoNormalLabels)
	assert.ErrorIs(t, CheckNormalSource([]string{}), ErrNoNormalLabels)
	assert.NoError(t, CheckNormalSource([]string{"1_v_detected_x.png"}))
}
