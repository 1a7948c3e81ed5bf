// Package align maps labeled-image filenames onto a video's frame
// timeline.
package align

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/machwatch/curator/internal/models"
)

// ErrNoNormalLabels signals that the normal-label source was absent or
// empty. It is a condition, not a failure: the window builder reacts by
// taking the synthetic path.
var ErrNoNormalLabels = errors.New("no normal labels available")

// ParseError describes one malformed label filename. The batch absorbs
// these; callers count them instead of failing.
type ParseError struct {
	Filename string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("label filename %q: %s", e.Filename, e.Reason)
}

// ParseLabelFilename extracts (video_id, frame_number) from a labeled
// image filename. The frame number is the leading digit run; the video
// id is the segment between that run and the marker token, e.g.
//
//	000150_press03_detected_crack.png -> ("press03", 150)
func ParseLabelFilename(name, marker string) (string, int, error) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	digits := 0
	for digits < len(base) && base[digits] >= '0' && base[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return "", 0, &ParseError{Filename: name, Reason: "no leading frame number"}
	}

	frameNumber, err := strconv.Atoi(base[:digits])
	if err != nil {
		return "", 0, &ParseError{Filename: name, Reason: "frame number out of range"}
	}

	rest := base[digits:]
	markerIdx := strings.Index(rest, marker)
	if markerIdx < 0 {
		return "", 0, &ParseError{Filename: name, Reason: fmt.Sprintf("marker %q not found", marker)}
	}

	videoID := strings.Trim(rest[:markerIdx], "_")
	if videoID == "" {
		return "", 0, &ParseError{Filename: name, Reason: "empty video id before marker"}
	}

	return videoID, frameNumber, nil
}

// ParsedLabel is one successfully parsed label filename, not yet bound
// to a video's timeline.
type ParsedLabel struct {
	VideoID     string
	FrameNumber int
}

// Partition parses every filename exactly once and groups the results
// by video id. The label folders hold the whole dataset, so this runs
// once per batch; malformed filenames are returned in skipped exactly
// once regardless of how many videos the batch covers.
func Partition(filenames []string, marker string) (map[string][]ParsedLabel, []string) {
	parsed := make(map[string][]ParsedLabel)
	var skipped []string
	for _, name := range filenames {
		videoID, frameNumber, err := ParseLabelFilename(name, marker)
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		parsed[videoID] = append(parsed[videoID], ParsedLabel{VideoID: videoID, FrameNumber: frameNumber})
	}
	return parsed, skipped
}

// Align binds one video's parsed labels to its frame timeline, ordered
// by timestamp.
func Align(video *models.Video, parsed []ParsedLabel, labelPrior int) []models.LabelFrame {
	frames := make([]models.LabelFrame, 0, len(parsed))
	for _, p := range parsed {
		frames = append(frames, models.LabelFrame{
			VideoID:     video.ID,
			FrameNumber: p.FrameNumber,
			TSMillis:    video.FrameTimestampMS(p.FrameNumber),
			LabelPrior:  labelPrior,
		})
	}

	sort.Slice(frames, func(i, j int) bool {
		return frames[i].TSMillis < frames[j].TSMillis
	})
	return frames
}

// CheckNormalSource converts an empty normal-label listing into the
// explicit ErrNoNormalLabels signal so downstream stages never confuse
// "no labels" with "zero windows produced".
func CheckNormalSource(filenames []string) error {
	if len(filenames) == 0 {
		return ErrNoNormalLabels
	}
	return nil
}
