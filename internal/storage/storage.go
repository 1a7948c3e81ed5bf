package storage

// LabelSource lists labeled-image filenames partitioned by class
// folder. The anomaly folder is required; a missing or empty normal
// folder is reported as an empty listing, which the pipeline turns
// into the synthetic-window fallback.
type LabelSource interface {
	AnomalyFiles() ([]string, error)
	NormalFiles() ([]string, error)
}
