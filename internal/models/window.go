package models

import (
	"fmt"

	"github.com/google/uuid"
)

// WindowOrigin records which path produced an event window.
type WindowOrigin string

const (
	OriginLabels    WindowOrigin = "labels"
	OriginSynthetic WindowOrigin = "synthetic"
)

// EventWindow is a time span on one video's timeline tagged with a
// prior class. Windows are append-only within a run.
type EventWindow struct {
	EventID    string       `json:"event_id"`
	VideoID    string       `json:"video_id"`
	TStartMS   int64        `json:"t_start_ms"`
	TEndMS     int64        `json:"t_end_ms"`
	LabelPrior int          `json:"label_prior"`
	Origin     WindowOrigin `json:"origin"`
}

func NewEventWindow(videoID string, tStartMS, tEndMS int64, labelPrior int, origin WindowOrigin) (*EventWindow, error) {
	if tStartMS > tEndMS {
		return nil, fmt.Errorf("invalid window for video %s: start %d > end %d", videoID, tStartMS, tEndMS)
	}
	return &EventWindow{
		EventID:    uuid.New().String(),
		VideoID:    videoID,
		TStartMS:   tStartMS,
		TEndMS:     tEndMS,
		LabelPrior: labelPrior,
		Origin:     origin,
	}, nil
}

// Overlaps reports whether two windows intersect as closed intervals.
func (w *EventWindow) Overlaps(other *EventWindow) bool {
	return w.TStartMS <= other.TEndMS && other.TStartMS <= w.TEndMS
}

// Contains reports whether ts falls inside the window, bounds included.
func (w *EventWindow) Contains(ts int64) bool {
	return ts >= w.TStartMS && ts <= w.TEndMS
}

// DurationMS returns the window length in milliseconds.
func (w *EventWindow) DurationMS() int64 {
	return w.TEndMS - w.TStartMS
}

// MidpointMS returns the timestamp halfway through the window.
func (w *EventWindow) MidpointMS() int64 {
	return w.TStartMS + (w.TEndMS-w.TStartMS)/2
}
