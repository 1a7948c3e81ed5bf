// Package pipeline runs the full curation batch: align labels, build
// event windows, assemble casefiles, and persist everything under one
// run id.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/machwatch/curator/internal/align"
	"github.com/machwatch/curator/internal/config"
	"github.com/machwatch/curator/internal/database"
	"github.com/machwatch/curator/internal/evidence"
	"github.com/machwatch/curator/internal/metrics"
	"github.com/machwatch/curator/internal/models"
	"github.com/machwatch/curator/internal/storage"
	"github.com/machwatch/curator/internal/window"
)

// ErrNoUpstreamData means the input set is systemically empty (zero
// videos or zero extracted frames). That is a misconfigured input path,
// not a legitimately empty result, and aborts the run.
var ErrNoUpstreamData = errors.New("no upstream data: zero videos or extracted frames ingested")

type Pipeline struct {
	Videos    *database.VideoRepository
	Frames    *database.FrameRepository
	Labels    *database.LabelFrameRepository
	Telemetry *database.TelemetryRepository
	Windows   *database.WindowRepository
	Casefiles *database.CasefileRepository
	Runs      *database.RunRepository
	Source    storage.LabelSource
	Config    *config.Config
}

// videoResult is one worker's output: computed in parallel, persisted
// by the single writer in Run.
type videoResult struct {
	video       models.Video
	labelFrames []models.LabelFrame
	windows     []*models.EventWindow
	casefiles   []*models.EventCasefile
	report      models.RunReport
	err         error
}

// Run executes one pipeline batch and returns its report. The run id
// is minted here and threaded through every record written.
func (p *Pipeline) Run(ctx context.Context) (*models.RunReport, error) {
	started := time.Now().UTC()
	runID := uuid.New().String()
	log.Printf("Starting pipeline run %s", runID)

	report := &models.RunReport{
		RunID:         runID,
		SchemaVersion: models.SchemaVersion,
		StartedAt:     started,
	}

	videos, err := p.Videos.List(ctx)
	if err != nil {
		metrics.ObserveRun(time.Since(started), metrics.OutcomeError)
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	frameCount, err := p.Frames.Count(ctx)
	if err != nil {
		metrics.ObserveRun(time.Since(started), metrics.OutcomeError)
		return nil, fmt.Errorf("failed to count extracted frames: %w", err)
	}
	if len(videos) == 0 || frameCount == 0 {
		metrics.ObserveRun(time.Since(started), metrics.OutcomeError)
		return nil, fmt.Errorf("%w (videos=%d, frames=%d)", ErrNoUpstreamData, len(videos), frameCount)
	}

	anomalyFiles, err := p.Source.AnomalyFiles()
	if err != nil {
		metrics.ObserveRun(time.Since(started), metrics.OutcomeError)
		return nil, fmt.Errorf("failed to read anomaly labels: %w", err)
	}
	normalFiles, err := p.Source.NormalFiles()
	if err != nil {
		metrics.ObserveRun(time.Since(started), metrics.OutcomeError)
		return nil, fmt.Errorf("failed to read normal labels: %w", err)
	}
	if err := align.CheckNormalSource(normalFiles); err != nil {
		log.Printf("Run %s: %v, synthetic normal windows will be generated", runID, err)
	}

	// Parse the label listings once per run. The folders hold the whole
	// dataset, so per-video parsing would count each malformed filename
	// once per video instead of once per run.
	anomalyParsed, anomalySkipped := align.Partition(anomalyFiles, p.Config.Labels.Marker)
	normalParsed, normalSkipped := align.Partition(normalFiles, p.Config.Labels.Marker)
	for _, name := range anomalySkipped {
		log.Printf("Run %s: skipped malformed label filename %q", runID, name)
	}
	for _, name := range normalSkipped {
		log.Printf("Run %s: skipped malformed label filename %q", runID, name)
	}
	report.LabelFilesSkipped = len(anomalySkipped) + len(normalSkipped)

	results := p.processVideos(ctx, runID, videos, anomalyParsed, normalParsed)

	// Single writer: workers only compute, persistence happens here.
	for _, res := range results {
		if res.err != nil {
			metrics.ObserveRun(time.Since(started), metrics.OutcomeError)
			return nil, fmt.Errorf("video %s failed: %w", res.video.ID, res.err)
		}

		if err := p.Labels.InsertBatch(ctx, res.labelFrames); err != nil {
			metrics.ObserveRun(time.Since(started), metrics.OutcomeError)
			return nil, err
		}
		if err := p.Windows.InsertBatch(ctx, runID, res.windows); err != nil {
			metrics.ObserveRun(time.Since(started), metrics.OutcomeError)
			return nil, err
		}
		for _, c := range res.casefiles {
			if err := p.Casefiles.Create(ctx, c); err != nil {
				metrics.ObserveRun(time.Since(started), metrics.OutcomeError)
				return nil, err
			}
		}
		report.Merge(res.report)
	}

	report.FinishedAt = time.Now().UTC()
	if err := p.Runs.Insert(ctx, report); err != nil {
		metrics.ObserveRun(time.Since(started), metrics.OutcomeError)
		return nil, err
	}

	metrics.ObserveRun(time.Since(started), metrics.OutcomeSuccess)
	metrics.AddLabelFilesSkipped(report.LabelFilesSkipped)
	metrics.AddSyntheticShortfall(report.SyntheticShortfall)
	metrics.AddEmptyTelemetryWindows(report.EmptyTelemetryWindows)

	log.Printf("Run %s finished: %d windows, %d casefiles, %d label files skipped, %d synthetic shortfall",
		runID, report.WindowsBuilt, report.CasefilesWritten, report.LabelFilesSkipped, report.SyntheticShortfall)
	return report, nil
}

// processVideos fans the independent per-video work out over a bounded
// worker pool. Order of results is not significant.
func (p *Pipeline) processVideos(ctx context.Context, runID string, videos []models.Video, anomalyParsed, normalParsed map[string][]align.ParsedLabel) []*videoResult {
	jobs := make(chan models.Video)
	out := make(chan *videoResult)

	// At least one worker must drain jobs even if the config was never
	// validated, or the feeder below blocks forever.
	workers := p.Config.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(videos) {
		workers = len(videos)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for video := range jobs {
				out <- p.processVideo(ctx, runID, video, anomalyParsed[video.ID], normalParsed[video.ID])
			}
		}()
	}

	go func() {
		for _, video := range videos {
			jobs <- video
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	var results []*videoResult
	for res := range out {
		results = append(results, res)
	}
	return results
}

func (p *Pipeline) processVideo(ctx context.Context, runID string, video models.Video, anomalyParsed, normalParsed []align.ParsedLabel) *videoResult {
	res := &videoResult{video: video}
	res.report.VideosProcessed = 1

	frames, err := p.Frames.GetByVideoID(ctx, video.ID)
	if err != nil {
		res.err = err
		return res
	}
	if len(frames) == 0 {
		// No extracted frames means no evidence to reference; the
		// video is skipped, counted, and the batch moves on.
		log.Printf("Run %s: video %s has no extracted frames, skipping", runID, video.ID)
		res.report.VideosWithoutWindows = 1
		return res
	}

	anomalyFrames := align.Align(&video, anomalyParsed, models.PriorAnomaly)
	normalFrames := align.Align(&video, normalParsed, models.PriorNormal)
	res.report.LabelFilesParsed = len(anomalyFrames) + len(normalFrames)

	res.labelFrames = append(res.labelFrames, anomalyFrames...)
	res.labelFrames = append(res.labelFrames, normalFrames...)

	builder := window.NewBuilder(p.Config.Windowing)

	anomalyWindows, err := builder.BuildFromLabels(&video, anomalyFrames, models.PriorAnomaly)
	if err != nil {
		res.err = err
		return res
	}

	var normalWindows []*models.EventWindow
	if len(normalFrames) == 0 {
		normalWindows, res.report.SyntheticShortfall, err = builder.BuildSynthetic(&video, anomalyWindows)
		if err != nil {
			res.err = err
			return res
		}
		res.report.SyntheticWindows = len(normalWindows)
		metrics.AddWindowsBuilt(string(models.OriginSynthetic), len(normalWindows))
	} else {
		normalWindows, err = builder.BuildFromLabels(&video, normalFrames, models.PriorNormal)
		if err != nil {
			res.err = err
			return res
		}
		metrics.AddWindowsBuilt(string(models.OriginLabels), len(normalWindows))
	}

	windows, dropped := builder.Combine(anomalyWindows, normalWindows)
	res.report.OverlapsDropped = dropped
	res.report.WindowsBuilt = len(windows)
	metrics.AddWindowsBuilt(string(models.OriginLabels), len(anomalyWindows))

	if len(windows) == 0 {
		log.Printf("Run %s: video %s produced zero event windows", runID, video.ID)
		res.report.VideosWithoutWindows = 1
		return res
	}
	res.windows = windows

	samples, err := p.Telemetry.GetByVideoID(ctx, video.ID)
	if err != nil {
		res.err = err
		return res
	}

	idx := evidence.NewFrameIndex(frames)
	for _, w := range windows {
		casefile, err := evidence.Assemble(runID, w, anomalyFrames, idx, samples, p.Config.Evidence.SamplesPerNormalWindow)
		if err != nil {
			res.err = err
			return res
		}
		if !casefile.Telemetry.HasData {
			res.report.EmptyTelemetryWindows++
		}
		res.casefiles = append(res.casefiles, casefile)
	}
	res.report.CasefilesWritten = len(res.casefiles)

	return res
}
