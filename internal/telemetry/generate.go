// Package telemetry generates the synthetic fixed-cadence machine
// telemetry stream. Values are produced independently of video content
// and align with it only through timestamps.
package telemetry

import (
	"hash/fnv"
	"math/rand"

	"github.com/machwatch/curator/internal/models"
)

// channel baselines for a mid-size milling spindle; values random-walk
// around these.
const (
	baseTemperature = 58.0
	baseCurrent     = 12.5
	baseVibration   = 0.35
	baseSpeed       = 1450.0
	baseFeedRate    = 120.0
)

type Generator struct {
	cadenceMS int64
	seed      int64
}

func NewGenerator(cadenceMS, seed int64) *Generator {
	return &Generator{cadenceMS: cadenceMS, seed: seed}
}

// Generate produces samples at t = 0, cadence, 2*cadence, ... up to and
// including the video duration. Regenerating with the same seed and
// video id yields the identical stream.
func (g *Generator) Generate(video *models.Video) []models.TelemetrySample {
	if g.cadenceMS <= 0 || video.DurationMS < 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(g.seed ^ int64(videoSeed(video.ID))))

	temperature := baseTemperature
	current := baseCurrent
	vibration := baseVibration
	speed := baseSpeed
	feedRate := baseFeedRate

	var samples []models.TelemetrySample
	for ts := int64(0); ts <= video.DurationMS; ts += g.cadenceMS {
		temperature += rng.NormFloat64() * 0.15
		current += rng.NormFloat64() * 0.25
		vibration += rng.NormFloat64() * 0.02
		speed += rng.NormFloat64() * 4.0
		feedRate += rng.NormFloat64() * 1.5

		if vibration < 0 {
			vibration = 0
		}
		if current < 0 {
			current = 0
		}

		samples = append(samples, models.TelemetrySample{
			VideoID:     video.ID,
			TSMillis:    ts,
			Temperature: temperature,
			Current:     current,
			Vibration:   vibration,
			Speed:       speed,
			FeedRate:    feedRate,
		})
	}
	return samples
}

func videoSeed(id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}
