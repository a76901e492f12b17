package storage

import (
	"context"
)

// Storage is the object-storage contract the submission coordinator
// uploads through. Paths are unique per submission, so idempotency is not
// required of implementations.
type Storage interface {
	// Upload stores data under objectPath and returns its public URL.
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
}
