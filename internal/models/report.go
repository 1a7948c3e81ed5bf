package models

import "time"

// RunReport counts everything a pipeline run absorbed instead of
// failing on. One report per run_id, persisted alongside the outputs.
type RunReport struct {
	RunID                 string    `json:"run_id"`
	SchemaVersion         string    `json:"schema_version"`
	VideosProcessed       int       `json:"videos_processed"`
	VideosWithoutWindows  int       `json:"videos_without_windows"`
	LabelFilesParsed      int       `json:"label_files_parsed"`
	LabelFilesSkipped     int       `json:"label_files_skipped"`
	WindowsBuilt          int       `json:"windows_built"`
	SyntheticWindows      int       `json:"synthetic_windows"`
	SyntheticShortfall    int       `json:"synthetic_shortfall"`
	OverlapsDropped       int       `json:"overlaps_dropped"`
	EmptyTelemetryWindows int       `json:"empty_telemetry_windows"`
	CasefilesWritten      int       `json:"casefiles_written"`
	StartedAt             time.Time `json:"started_at"`
	FinishedAt            time.Time `json:"finished_at"`
}

// Merge folds per-video counters into the run totals.
func (r *RunReport) Merge(other RunReport) {
	r.VideosProcessed += other.VideosProcessed
	r.VideosWithoutWindows += other.VideosWithoutWindows
	r.LabelFilesParsed += other.LabelFilesParsed
	r.LabelFilesSkipped += other.LabelFilesSkipped
	r.WindowsBuilt += other.WindowsBuilt
	r.SyntheticWindows += other.SyntheticWindows
	r.SyntheticShortfall += other.SyntheticShortfall
	r.OverlapsDropped += other.OverlapsDropped
	r.EmptyTelemetryWindows += other.EmptyTelemetryWindows
	r.CasefilesWritten += other.CasefilesWritten
}
