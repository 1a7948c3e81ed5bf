package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// LocalLabelSource reads label filenames from two class folders on the
// local filesystem.
type LocalLabelSource struct {
	anomalyDir string
	normalDir  string
}

func NewLocalLabelSource(anomalyDir, normalDir string) (*LocalLabelSource, error) {
	if anomalyDir == "" {
		return nil, fmt.Errorf("anomaly label directory not configured")
	}
	if _, err := os.Stat(anomalyDir); err != nil {
		return nil, fmt.Errorf("anomaly label directory not accessible: %w", err)
	}
	return &LocalLabelSource{
		anomalyDir: anomalyDir,
		normalDir:  normalDir,
	}, nil
}

func (s *LocalLabelSource) AnomalyFiles() ([]string, error) {
	return listImages(s.anomalyDir)
}

// NormalFiles returns an empty slice when the normal folder is missing
// or unset. The caller decides whether that triggers the synthetic
// fallback; it is never an error here.
func (s *LocalLabelSource) NormalFiles() ([]string, error) {
	if s.normalDir == "" {
		return nil, nil
	}
	if _, err := os.Stat(s.normalDir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("normal label directory not accessible: %w", err)
	}
	return listImages(s.normalDir)
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read label directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !imageExtensions[ext] {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
