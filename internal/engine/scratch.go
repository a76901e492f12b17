package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Scratch is a per-call namespace inside the engine's working space.
// Names are unique per acquisition so a retried submission never collides
// with a previous attempt's entries. Callers must Release it on every exit
// path; Release is safe to defer immediately after creation.
type Scratch struct {
	dir string
}

// NewScratch creates a uniquely named scratch namespace.
func (e *Engine) NewScratch() (*Scratch, error) {
	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), uuid.NewString())
	dir := filepath.Join(e.scratchRoot, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch namespace: %w", err)
	}
	return &Scratch{dir: dir}, nil
}

// Path returns the absolute path of a named entry in the namespace.
func (s *Scratch) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// WriteInput stores data under the given name and returns its path.
func (s *Scratch) WriteInput(name string, data []byte) (string, error) {
	path := s.Path(name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write scratch input: %w", err)
	}
	return path, nil
}

// ReadOutput reads a named entry back out of the namespace.
func (s *Scratch) ReadOutput(name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read scratch output: %w", err)
	}
	return data, nil
}

// Release removes the namespace and everything in it. Errors are logged,
// not returned; cleanup must never mask the outcome of the call it guards.
func (s *Scratch) Release() {
	if err := os.RemoveAll(s.dir); err != nil {
		slog.Warn("failed to release scratch namespace", "dir", s.dir, "error", err)
	}
}
