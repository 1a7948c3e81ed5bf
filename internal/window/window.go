// Package window groups label frames into event windows and fills in
// synthetic normal windows when no normal labels exist.
package window

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"

	"github.com/machwatch/curator/internal/config"
	"github.com/machwatch/curator/internal/models"
)

// Builder constructs event windows for one video at a time. Builders
// are cheap; the pipeline makes one per video so synthetic sampling
// stays deterministic per (seed, video_id).
type Builder struct {
	cfg config.WindowingConfig
}

func NewBuilder(cfg config.WindowingConfig) *Builder {
	return &Builder{cfg: cfg}
}

// BuildFromLabels walks a video's label frames of one class in
// timestamp order and opens a new window whenever the gap to the
// previous frame exceeds the configured threshold. Each window is
// padded by the margin on both ends and clipped to the video timeline.
func (b *Builder) BuildFromLabels(video *models.Video, frames []models.LabelFrame, labelPrior int) ([]*models.EventWindow, error) {
	var class []models.LabelFrame
	for _, f := range frames {
		if f.LabelPrior == labelPrior {
			class = append(class, f)
		}
	}
	if len(class) == 0 {
		return nil, nil
	}

	sort.Slice(class, func(i, j int) bool { return class[i].TSMillis < class[j].TSMillis })

	var windows []*models.EventWindow
	clusterStart := class[0].TSMillis
	clusterEnd := class[0].TSMillis

	flush := func(start, end int64) error {
		w, err := b.newPaddedWindow(video, start, end, labelPrior)
		if err != nil {
			return err
		}
		windows = append(windows, w)
		return nil
	}

	for _, f := range class[1:] {
		if f.TSMillis-clusterEnd > b.cfg.GapThresholdMS {
			if err := flush(clusterStart, clusterEnd); err != nil {
				return nil, err
			}
			clusterStart = f.TSMillis
		}
		clusterEnd = f.TSMillis
	}
	if err := flush(clusterStart, clusterEnd); err != nil {
		return nil, err
	}

	return windows, nil
}

func (b *Builder) newPaddedWindow(video *models.Video, start, end int64, labelPrior int) (*models.EventWindow, error) {
	start -= b.cfg.MarginMS
	end += b.cfg.MarginMS
	if start < 0 {
		start = 0
	}
	if end > video.DurationMS {
		end = video.DurationMS
	}
	return models.NewEventWindow(video.ID, start, end, labelPrior, models.OriginLabels)
}

// BuildSynthetic samples normal windows uniformly across the video,
// rejecting candidates that intersect an anomaly window or an already
// accepted synthetic window. The retry budget bounds total draws; the
// returned shortfall is how many windows under target the sampler came
// up, which the caller reports rather than retrying forever.
func (b *Builder) BuildSynthetic(video *models.Video, anomaly []*models.EventWindow) ([]*models.EventWindow, int, error) {
	length := b.cfg.SyntheticLengthMS
	if video.DurationMS < length {
		// Too short for even one window of the configured length.
		return nil, b.cfg.SyntheticCount, nil
	}

	rng := rand.New(rand.NewSource(b.cfg.SyntheticSeed ^ int64(videoHash(video.ID))))

	var placed []*models.EventWindow
	attempts := 0
	for len(placed) < b.cfg.SyntheticCount && attempts < b.cfg.SyntheticRetryMax {
		attempts++
		start := int64(rng.Float64() * float64(video.DurationMS-length))
		candidate, err := models.NewEventWindow(video.ID, start, start+length, models.PriorNormal, models.OriginSynthetic)
		if err != nil {
			return nil, 0, fmt.Errorf("synthetic window for video %s: %w", video.ID, err)
		}
		if intersectsAny(candidate, anomaly) || intersectsAny(candidate, placed) {
			continue
		}
		placed = append(placed, candidate)
	}

	return placed, b.cfg.SyntheticCount - len(placed), nil
}

// Combine applies the cross-class overlap policy: normal windows that
// intersect an anomaly window are either dropped (reject) or folded
// into the anomaly window they touch (merge). Returns the surviving
// set and the number of normal windows that did not survive intact.
func (b *Builder) Combine(anomaly, normal []*models.EventWindow) ([]*models.EventWindow, int) {
	out := make([]*models.EventWindow, 0, len(anomaly)+len(normal))
	out = append(out, anomaly...)

	dropped := 0
	for _, n := range normal {
		conflict := false
		for _, a := range anomaly {
			if !n.Overlaps(a) {
				continue
			}
			conflict = true
			if b.cfg.OverlapPolicy == config.OverlapMerge {
				if n.TStartMS < a.TStartMS {
					a.TStartMS = n.TStartMS
				}
				if n.TEndMS > a.TEndMS {
					a.TEndMS = n.TEndMS
				}
			}
			break
		}
		if conflict {
			dropped++
			continue
		}
		out = append(out, n)
	}
	return out, dropped
}

func intersectsAny(w *models.EventWindow, set []*models.EventWindow) bool {
	for _, other := range set {
		if w.Overlaps(other) {
			return true
		}
	}
	return false
}

func videoHash(id string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(id))
	return h.Sum32()
}
