package storage

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStorage implements the Storage interface for Google Cloud Storage
type GCSStorage struct {
	client        *storage.Client
	bucket        string
	objectPrefix  string
	publicBaseURL string
}

// NewGCSStorage creates a new GCSStorage instance
func NewGCSStorage(ctx context.Context, bucketName, objectPrefix, publicBaseURL, credentialsFile string) (*GCSStorage, error) {
	var client *storage.Client
	var err error

	// Create a client
	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		// Use application default credentials
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client:        client,
		bucket:        bucketName,
		objectPrefix:  objectPrefix,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Upload writes the blob to the bucket and returns its public URL.
func (s *GCSStorage) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	objectName := strings.TrimPrefix(objectPath, "/")
	if s.objectPrefix != "" {
		objectName = s.objectPrefix + "/" + objectName
	}

	writer := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}

	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s", s.publicBaseURL, objectName), nil
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName), nil
}
