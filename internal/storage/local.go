package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalFileStorage implements the Storage interface for local filesystem
type LocalFileStorage struct {
	outputDir     string
	publicBaseURL string
}

// NewLocalFileStorage creates a new local file storage instance
func NewLocalFileStorage(outputDir, publicBaseURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", outputDir, err)
	}

	return &LocalFileStorage{
		outputDir:     outputDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Upload writes the blob under the output dir and returns its public URL.
func (s *LocalFileStorage) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	objectPath = strings.TrimPrefix(objectPath, "/")
	fullPath := filepath.Join(s.outputDir, filepath.FromSlash(objectPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", fullPath, err)
	}

	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s", s.publicBaseURL, objectPath), nil
	}
	return fullPath, nil
}
