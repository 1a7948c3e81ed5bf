package models

import (
	"math"
	"time"
)

type Video struct {
	ID         string    `json:"video_id"`
	FPS        float64   `json:"fps"`
	DurationMS int64     `json:"duration_ms"`
	RawPath    string    `json:"raw_path"`
	IngestTime time.Time `json:"ingest_time"`
}

func NewVideo(id string, fps float64, durationMS int64, rawPath string) *Video {
	return &Video{
		ID:         id,
		FPS:        fps,
		DurationMS: durationMS,
		RawPath:    rawPath,
		IngestTime: time.Now().UTC(),
	}
}

// FrameTimestampMS converts a frame number to milliseconds on this
// video's timeline.
func (v *Video) FrameTimestampMS(frameNumber int) int64 {
	if v.FPS <= 0 {
		return 0
	}
	return int64(math.Round(float64(frameNumber) / v.FPS * 1000.0))
}

type ExtractedFrame struct {
	VideoID     string `json:"video_id"`
	FrameNumber int    `json:"frame_number"`
	TSMillis    int64  `json:"ts_ms"`
	FramePath   string `json:"frame_path"`
}

// LabelFrame is one manually labeled image mapped onto a video's
// timeline. LabelPrior is 0 for normal, 1 for anomaly, assigned by the
// folder the file came from.
type LabelFrame struct {
	VideoID     string `json:"video_id"`
	FrameNumber int    `json:"frame_number"`
	TSMillis    int64  `json:"ts_ms"`
	LabelPrior  int    `json:"label_prior"`
}

const (
	PriorNormal  = 0
	PriorAnomaly = 1
)
