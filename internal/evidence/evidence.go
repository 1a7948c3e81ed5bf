// Package evidence selects representative frames for event windows and
// aggregates the telemetry stream into per-window features.
package evidence

import (
	"sort"
	"time"

	"github.com/machwatch/curator/internal/models"
)

// FrameIndex is a per-video lookup over extracted frames, ordered by
// frame number (and therefore by timestamp).
type FrameIndex struct {
	frames []models.ExtractedFrame
}

func NewFrameIndex(frames []models.ExtractedFrame) *FrameIndex {
	sorted := make([]models.ExtractedFrame, len(frames))
	copy(sorted, frames)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FrameNumber < sorted[j].FrameNumber })
	return &FrameIndex{frames: sorted}
}

func (idx *FrameIndex) Len() int { return len(idx.frames) }

// SnapToFrameNumber returns the extracted frame whose frame number is
// nearest to the requested one. Ties prefer the lower frame number, so
// snapping an existing frame's own number always returns that frame.
func (idx *FrameIndex) SnapToFrameNumber(frameNumber int) (models.ExtractedFrame, bool) {
	if len(idx.frames) == 0 {
		return models.ExtractedFrame{}, false
	}

	i := sort.Search(len(idx.frames), func(i int) bool {
		return idx.frames[i].FrameNumber >= frameNumber
	})

	if i == 0 {
		return idx.frames[0], true
	}
	if i == len(idx.frames) {
		return idx.frames[len(idx.frames)-1], true
	}

	lower := idx.frames[i-1]
	upper := idx.frames[i]
	if frameNumber-lower.FrameNumber <= upper.FrameNumber-frameNumber {
		return lower, true
	}
	return upper, true
}

// SnapToTimestamp returns the extracted frame nearest in time to ts,
// ties preferring the earlier frame.
func (idx *FrameIndex) SnapToTimestamp(ts int64) (models.ExtractedFrame, bool) {
	if len(idx.frames) == 0 {
		return models.ExtractedFrame{}, false
	}

	i := sort.Search(len(idx.frames), func(i int) bool {
		return idx.frames[i].TSMillis >= ts
	})

	if i == 0 {
		return idx.frames[0], true
	}
	if i == len(idx.frames) {
		return idx.frames[len(idx.frames)-1], true
	}

	lower := idx.frames[i-1]
	upper := idx.frames[i]
	if ts-lower.TSMillis <= upper.TSMillis-ts {
		return lower, true
	}
	return upper, true
}

// AnomalyEvidence snaps every label frame inside the window to its
// nearest extracted frame, deduplicated and in ascending timestamp
// order.
func AnomalyEvidence(window *models.EventWindow, labels []models.LabelFrame, idx *FrameIndex) []models.EvidenceRef {
	seen := make(map[int]bool)
	var refs []models.EvidenceRef
	for _, lf := range labels {
		if !window.Contains(lf.TSMillis) {
			continue
		}
		frame, ok := idx.SnapToFrameNumber(lf.FrameNumber)
		if !ok || seen[frame.FrameNumber] {
			continue
		}
		seen[frame.FrameNumber] = true
		refs = append(refs, evidenceRef(frame))
	}
	sortEvidence(refs)
	return refs
}

// NormalEvidence samples the window at deterministic positions: the
// midpoint always, plus count-1 further timestamps spaced uniformly
// across the window, each snapped to the nearest extracted frame.
func NormalEvidence(window *models.EventWindow, idx *FrameIndex, count int) []models.EvidenceRef {
	if count < 1 {
		count = 1
	}

	targets := []int64{window.MidpointMS()}
	if count > 1 {
		step := window.DurationMS() / int64(count+1)
		for i := 1; len(targets) < count; i++ {
			targets = append(targets, window.TStartMS+step*int64(i))
		}
	}

	seen := make(map[int]bool)
	var refs []models.EvidenceRef
	for _, ts := range targets {
		frame, ok := idx.SnapToTimestamp(ts)
		if !ok || seen[frame.FrameNumber] {
			continue
		}
		seen[frame.FrameNumber] = true
		refs = append(refs, evidenceRef(frame))
	}
	sortEvidence(refs)
	return refs
}

// Assemble produces the casefile for one window. labels may be nil for
// normal windows; samples is the video's full telemetry stream.
func Assemble(runID string, window *models.EventWindow, labels []models.LabelFrame, idx *FrameIndex, samples []models.TelemetrySample, normalSampleCount int) (*models.EventCasefile, error) {
	var refs []models.EvidenceRef
	if window.LabelPrior == models.PriorAnomaly {
		refs = AnomalyEvidence(window, labels, idx)
	} else {
		refs = NormalEvidence(window, idx, normalSampleCount)
	}

	casefile := &models.EventCasefile{
		RunID:         runID,
		EventID:       window.EventID,
		SchemaVersion: models.SchemaVersion,
		VideoID:       window.VideoID,
		TStartMS:      window.TStartMS,
		TEndMS:        window.TEndMS,
		LabelPrior:    window.LabelPrior,
		Origin:        window.Origin,
		Evidence:      refs,
		Telemetry:     AggregateTelemetry(samples, window),
		CreatedAt:     time.Now().UTC(),
	}

	if err := casefile.Validate(); err != nil {
		return nil, err
	}
	return casefile, nil
}

func evidenceRef(frame models.ExtractedFrame) models.EvidenceRef {
	return models.EvidenceRef{
		FramePath:   frame.FramePath,
		FrameNumber: frame.FrameNumber,
		TSMillis:    frame.TSMillis,
	}
}

func sortEvidence(refs []models.EvidenceRef) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].TSMillis < refs[j].TSMillis })
}
