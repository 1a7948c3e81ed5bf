package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machwatch/curator/internal/models"
)

func TestGenerateCadence(t *testing.T) {
	video := models.NewVideo("V1", 100, 2000, "")
	gen := NewGenerator(500, 42)

	samples := gen.Generate(video)
	require.Len(t, samples, 5) // 0, 500, 1000, 1500, 2000

	for i, s := range samples {
		assert.Equal(t, "V1", s.VideoID)
		assert.Equal(t, int64(i)*500, s.TSMillis)
		assert.GreaterOrEqual(t, s.Vibration, 0.0)
		assert.GreaterOrEqual(t, s.Current, 0.0)
	}
}

func TestGenerateDeterministicPerSeed(t *testing.T) {
	video := models.NewVideo("V1", 100, 10000, "")

	first := NewGenerator(500, 42).Generate(video)
	second := NewGenerator(500, 42).Generate(video)
	require.Equal(t, first, second)

	different := NewGenerator(500, 43).Generate(video)
	assert.NotEqual(t, first, different)
}

func TestGenerateVariesByVideo(t *testing.T) {
	gen := NewGenerator(500, 42)

	a := gen.Generate(models.NewVideo("A", 100, 5000, ""))
	b := gen.Generate(models.NewVideo("B", 100, 5000, ""))

	require.Equal(t, len(a), len(b))
	assert.NotEqual(t, a[0].Temperature, b[0].Temperature)
}

func TestGenerateInvalidInputs(t *testing.T) {
	video := models.NewVideo("V1", 100, 2000, "")
	assert.Nil(t, NewGenerator(0, 42).Generate(video))
}
