package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/machwatch/curator/internal/models"
)

// videoManifestEntry is one record of the ingest manifest produced by
// the upstream extraction job.
type videoManifestEntry struct {
	VideoID    string  `json:"video_id"`
	FPS        float64 `json:"fps"`
	DurationMS int64   `json:"duration_ms"`
	RawPath    string  `json:"raw_path"`
}

// LoadVideoManifest parses the JSON video manifest.
func LoadVideoManifest(path string) ([]*models.Video, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read video manifest: %w", err)
	}

	var entries []videoManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse video manifest %s: %w", path, err)
	}

	videos := make([]*models.Video, 0, len(entries))
	for _, e := range entries {
		if e.VideoID == "" || e.FPS <= 0 || e.DurationMS <= 0 {
			return nil, fmt.Errorf("invalid manifest entry for video %q (fps=%v, duration=%d)", e.VideoID, e.FPS, e.DurationMS)
		}
		videos = append(videos, models.NewVideo(e.VideoID, e.FPS, e.DurationMS, e.RawPath))
	}
	return videos, nil
}

// LoadFrameIndex parses the extracted-frame CSV index
// (video_id,frame_number,frame_path). Timestamps are derived from each
// video's frame rate.
func LoadFrameIndex(path string, videos []*models.Video) ([]models.ExtractedFrame, error) {
	byID := make(map[string]*models.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame index: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3

	var frames []models.ExtractedFrame
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read frame index %s: %w", path, err)
		}
		line++
		if line == 1 && record[0] == "video_id" {
			continue
		}

		video, ok := byID[record[0]]
		if !ok {
			return nil, fmt.Errorf("frame index references unknown video %q (line %d)", record[0], line)
		}
		frameNumber, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("invalid frame number %q (line %d): %w", record[1], line, err)
		}

		frames = append(frames, models.ExtractedFrame{
			VideoID:     video.ID,
			FrameNumber: frameNumber,
			TSMillis:    video.FrameTimestampMS(frameNumber),
			FramePath:   record[2],
		})
	}
	return frames, nil
}

// Ingest loads the video manifest and frame index into the bronze
// tables. Append-only: re-ingesting identical rows is a no-op upsert.
func (p *Pipeline) Ingest(ctx context.Context, manifestPath, frameIndexPath string) error {
	videos, err := LoadVideoManifest(manifestPath)
	if err != nil {
		return err
	}

	for _, video := range videos {
		if err := p.Videos.Insert(ctx, video); err != nil {
			// Re-runs hit the primary key on already ingested videos.
			log.Printf("Video %s already ingested: %v", video.ID, err)
		}
	}

	frames, err := LoadFrameIndex(frameIndexPath, videos)
	if err != nil {
		return err
	}
	if err := p.Frames.InsertBatch(ctx, frames); err != nil {
		return err
	}

	log.Printf("Ingested %d videos and %d extracted frames", len(videos), len(frames))
	return nil
}
