package models

import (
	"fmt"
	"strings"
	"time"
)

// SchemaVersion tags every casefile written by this build. Bump on any
// incompatible change to the casefile layout.
const SchemaVersion = "1.0"

// EvidenceRef points at an extracted frame chosen as evidence for a
// window. References, not ownership: the frame row itself lives in the
// extracted_frames table.
type EvidenceRef struct {
	FramePath   string `json:"frame_path"`
	FrameNumber int    `json:"frame_number"`
	TSMillis    int64  `json:"ts_ms"`
}

// EventCasefile is the final record for one event window: identity,
// ordered evidence, and the telemetry aggregate.
type EventCasefile struct {
	RunID         string            `json:"run_id"`
	EventID       string            `json:"event_id"`
	SchemaVersion string            `json:"schema_version"`
	VideoID       string            `json:"video_id"`
	TStartMS      int64             `json:"t_start_ms"`
	TEndMS        int64             `json:"t_end_ms"`
	LabelPrior    int               `json:"label_prior"`
	Origin        WindowOrigin      `json:"origin"`
	Evidence      []EvidenceRef     `json:"evidence"`
	Telemetry     TelemetryFeatures `json:"telemetry"`
	CreatedAt     time.Time         `json:"created_at"`
}

// FlatCasefile is the scalar-column projection of an EventCasefile:
// one row per casefile with JSON fields expanded into named columns,
// for consumers that only speak flat tables.
type FlatCasefile struct {
	RunID         string `json:"run_id"`
	EventID       string `json:"event_id"`
	SchemaVersion string `json:"schema_version"`
	VideoID       string `json:"video_id"`
	TStartMS      int64  `json:"t_start_ms"`
	TEndMS        int64  `json:"t_end_ms"`
	LabelPrior    int    `json:"label_prior"`
	Origin        string `json:"origin"`
	EvidenceCount int    `json:"evidence_count"`
	EvidencePaths string `json:"evidence_paths"`

	TelemetryHasData bool `json:"telemetry_has_data"`
	TelemetrySamples int  `json:"telemetry_samples"`

	// One column group per channel; nil when telemetry_has_data is
	// false so flat consumers can tell "missing" from 0.
	Stats map[string]*ChannelStats `json:"channel_stats"`
}

// Flatten expands a casefile into its scalar projection.
func (c *EventCasefile) Flatten() FlatCasefile {
	paths := make([]string, 0, len(c.Evidence))
	for _, ev := range c.Evidence {
		paths = append(paths, ev.FramePath)
	}

	flat := FlatCasefile{
		RunID:            c.RunID,
		EventID:          c.EventID,
		SchemaVersion:    c.SchemaVersion,
		VideoID:          c.VideoID,
		TStartMS:         c.TStartMS,
		TEndMS:           c.TEndMS,
		LabelPrior:       c.LabelPrior,
		Origin:           string(c.Origin),
		EvidenceCount:    len(c.Evidence),
		EvidencePaths:    strings.Join(paths, ";"),
		TelemetryHasData: c.Telemetry.HasData,
		TelemetrySamples: c.Telemetry.SampleCount,
		Stats:            make(map[string]*ChannelStats, len(ChannelNames)),
	}

	for _, name := range ChannelNames {
		if c.Telemetry.HasData {
			if st, ok := c.Telemetry.Channels[name]; ok {
				cp := st
				flat.Stats[name] = &cp
				continue
			}
		}
		flat.Stats[name] = nil
	}
	return flat
}

// Validate checks the invariants every casefile must satisfy before it
// is written.
func (c *EventCasefile) Validate() error {
	if c.RunID == "" || c.EventID == "" {
		return fmt.Errorf("casefile missing identity: run=%q event=%q", c.RunID, c.EventID)
	}
	if c.SchemaVersion == "" {
		return fmt.Errorf("casefile %s missing schema version", c.EventID)
	}
	if c.TStartMS > c.TEndMS {
		return fmt.Errorf("casefile %s has inverted window [%d,%d]", c.EventID, c.TStartMS, c.TEndMS)
	}
	for i := 1; i < len(c.Evidence); i++ {
		if c.Evidence[i-1].TSMillis > c.Evidence[i].TSMillis {
			return fmt.Errorf("casefile %s evidence not in ascending ts order", c.EventID)
		}
	}
	if !c.Telemetry.HasData && len(c.Telemetry.Channels) != 0 {
		return fmt.Errorf("casefile %s marked no-data but carries channel stats", c.EventID)
	}
	return nil
}
