// Package source loads a user-selected audio file into the engine and
// exposes sample-accurate duration plus waveform peaks for the region UI.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saravn-ent/tamilring/internal/engine"
)

// ErrNoAudio is returned when the selected file carries no audio stream.
var ErrNoAudio = errors.New("file has no audio stream")

// SourceAudio is the handle to a decoded source for one editing session.
// It owns the decoded state until a new file is selected or the session
// ends; everything downstream works from this handle.
type SourceAudio struct {
	Path     string
	Duration float64
}

// Decode probes the file and returns a session handle with its
// sample-accurate duration.
func Decode(ctx context.Context, eng *engine.Engine, path string) (*SourceAudio, error) {
	result, err := eng.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode source: %w", err)
	}

	if !result.HasAudio() {
		return nil, fmt.Errorf("%w: %s", ErrNoAudio, path)
	}

	duration, err := result.Duration()
	if err != nil {
		return nil, fmt.Errorf("failed to decode source: %w", err)
	}

	slog.Debug("Decoded source audio", "path", path, "duration", duration)

	return &SourceAudio{
		Path:     path,
		Duration: duration,
	}, nil
}
