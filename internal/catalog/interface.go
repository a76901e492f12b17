// Package catalog is the pipeline's contract with the datastore that owns
// ring rows. The pipeline only ever checks slug existence and inserts; it
// never reads a row back within a session.
package catalog

import (
	"context"

	"github.com/saravn-ent/tamilring/internal/domain"
)

// Catalog is the narrow datastore surface the pipeline consumes.
type Catalog interface {
	// Exists reports whether a ring with the slug is already cataloged.
	// A missing row is a normal negative result, not an error.
	Exists(ctx context.Context, slug string) (bool, error)

	// Insert persists a new ring row and returns its id.
	Insert(ctx context.Context, ring *domain.Ring) (string, error)
}
