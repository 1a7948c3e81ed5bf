package models

// TelemetrySample is one reading of the synthetic machine-telemetry
// stream, aligned to a video only by timestamp.
type TelemetrySample struct {
	VideoID     string  `json:"video_id"`
	TSMillis    int64   `json:"ts_ms"`
	Temperature float64 `json:"temperature"`
	Current     float64 `json:"current"`
	Vibration   float64 `json:"vibration"`
	Speed       float64 `json:"speed"`
	FeedRate    float64 `json:"feed_rate"`
}

// ChannelNames lists the telemetry channels in a fixed order so that
// aggregation output and the flattened projection stay column-stable.
var ChannelNames = []string{"temperature", "current", "vibration", "speed", "feed_rate"}

// ChannelValue returns the reading for a named channel.
func (s *TelemetrySample) ChannelValue(name string) float64 {
	switch name {
	case "temperature":
		return s.Temperature
	case "current":
		return s.Current
	case "vibration":
		return s.Vibration
	case "speed":
		return s.Speed
	case "feed_rate":
		return s.FeedRate
	}
	return 0
}

// ChannelStats summarises one telemetry channel over a window.
type ChannelStats struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	MaxDelta float64 `json:"max_delta"`
}

// TelemetryFeatures is the per-window aggregate. HasData=false is the
// explicit no-data marker: Channels is nil and must never be read as
// zeros.
type TelemetryFeatures struct {
	HasData     bool                    `json:"has_data"`
	SampleCount int                     `json:"sample_count"`
	Channels    map[string]ChannelStats `json:"channels,omitempty"`
}

// NoTelemetryData returns the marker aggregate for a window whose range
// contained no samples.
func NoTelemetryData() TelemetryFeatures {
	return TelemetryFeatures{HasData: false, SampleCount: 0}
}
