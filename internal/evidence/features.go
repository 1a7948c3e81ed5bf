package evidence

import (
	"math"
	"sort"

	"github.com/machwatch/curator/internal/models"
)

// AggregateTelemetry summarises every sample whose timestamp falls in
// the window, bounds inclusive. An empty intersection yields the
// explicit no-data marker, never fabricated zeros.
func AggregateTelemetry(samples []models.TelemetrySample, window *models.EventWindow) models.TelemetryFeatures {
	var inRange []models.TelemetrySample
	for _, s := range samples {
		if window.Contains(s.TSMillis) {
			inRange = append(inRange, s)
		}
	}
	if len(inRange) == 0 {
		return models.NoTelemetryData()
	}

	sort.Slice(inRange, func(i, j int) bool { return inRange[i].TSMillis < inRange[j].TSMillis })

	features := models.TelemetryFeatures{
		HasData:     true,
		SampleCount: len(inRange),
		Channels:    make(map[string]models.ChannelStats, len(models.ChannelNames)),
	}
	for _, name := range models.ChannelNames {
		features.Channels[name] = channelStats(inRange, name)
	}
	return features
}

func channelStats(samples []models.TelemetrySample, channel string) models.ChannelStats {
	stats := models.ChannelStats{
		Min: math.Inf(1),
		Max: math.Inf(-1),
	}

	sum := 0.0
	for _, s := range samples {
		v := s.ChannelValue(channel)
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		sum += v
	}
	stats.Mean = sum / float64(len(samples))

	variance := 0.0
	for _, s := range samples {
		d := s.ChannelValue(channel) - stats.Mean
		variance += d * d
	}
	stats.StdDev = math.Sqrt(variance / float64(len(samples)))

	// Max-delta between consecutive samples as the instability measure.
	for i := 1; i < len(samples); i++ {
		delta := math.Abs(samples[i].ChannelValue(channel) - samples[i-1].ChannelValue(channel))
		if delta > stats.MaxDelta {
			stats.MaxDelta = delta
		}
	}
	return stats
}
