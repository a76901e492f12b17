// Package transcode turns one source and one trim window into the two
// encoded outputs a submission carries. The actual codec work happens in
// the shared engine; this package builds the filter description and owns
// the per-call scratch lifecycle.
package transcode

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/saravn-ent/tamilring/internal/engine"
	"github.com/saravn-ent/tamilring/internal/region"
	"github.com/saravn-ent/tamilring/internal/source"
)

// FadeLength is the linear fade applied when a fade flag is set, in
// seconds. It is clamped to half the window so short rings stay audible.
const FadeLength = 2.0

// EncodedAsset is one profile's in-memory output, consumed exactly once
// by the upload step.
type EncodedAsset struct {
	Profile   Profile
	Data      []byte
	SizeBytes int
}

// Orchestrator produces EncodedAssets from a source and a region.
type Orchestrator struct {
	engineCfg engine.Config
}

// NewOrchestrator creates an orchestrator. The engine behind it loads
// lazily on the first transcode and is shared process-wide.
func NewOrchestrator(engineCfg engine.Config) *Orchestrator {
	return &Orchestrator{engineCfg: engineCfg}
}

// Transcode encodes the selected region of the source for one profile.
// Every call writes into its own uniquely named scratch namespace, which
// is released on all exit paths.
func (o *Orchestrator) Transcode(ctx context.Context, src *source.SourceAudio, snap region.Snapshot, profile Profile) (*EncodedAsset, error) {
	eng, err := engine.Acquire(ctx, o.engineCfg)
	if err != nil {
		return nil, err
	}

	scratch, err := eng.NewScratch()
	if err != nil {
		return nil, &EncodeError{Profile: profile.Name, Err: err}
	}
	defer scratch.Release()

	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputRead, err)
	}

	inputName := "input" + filepath.Ext(src.Path)
	inputPath, err := scratch.WriteInput(inputName, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputRead, err)
	}

	outputName := "output." + profile.Extension
	args := buildArgs(inputPath, snap, profile, scratch.Path(outputName))

	slog.Debug("Transcoding region",
		"profile", profile.Name,
		"start", fmt.Sprintf("%.3f", snap.Start),
		"duration", fmt.Sprintf("%.3f", snap.Length()),
		"fade_in", snap.FadeIn,
		"fade_out", snap.FadeOut,
	)

	if err := eng.Exec(ctx, args...); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &EncodeError{Profile: profile.Name, Err: err}
	}

	blob, err := scratch.ReadOutput(outputName)
	if err != nil {
		return nil, &EncodeError{Profile: profile.Name, Err: err}
	}

	return &EncodedAsset{
		Profile:   profile,
		Data:      blob,
		SizeBytes: len(blob),
	}, nil
}

// buildArgs assembles the ffmpeg invocation for one profile: time offset,
// window duration, optional fades, then the profile's codec arguments.
func buildArgs(inputPath string, snap region.Snapshot, profile Profile, outputPath string) []string {
	window := snap.Length()

	args := []string{
		"-y",
		"-i", inputPath,
		"-ss", fmt.Sprintf("%.3f", snap.Start),
	}

	if window > 0 {
		args = append(args, "-t", fmt.Sprintf("%.3f", window))
	}

	args = append(args, "-map", "0:a")
	if profile.StripVideo {
		args = append(args, "-vn")
	}

	args = append(args, "-af", buildFilter(snap))

	args = append(args,
		"-c:a", profile.Codec,
		"-b:a", profile.Bitrate,
		"-f", profile.Format,
	)

	switch profile.Format {
	case "ipod":
		args = append(args, "-movflags", "+faststart")
	case "mp3":
		args = append(args, "-id3v2_version", "3")
	}

	return append(args, outputPath)
}

// buildFilter describes the fade chain in the trimmed output's timeline:
// fade-in anchored at the window start, fade-out ending at the window end.
func buildFilter(snap region.Snapshot) string {
	filters := []string{"aresample=async=1"}

	window := snap.Length()
	fade := FadeLength
	if window > 0 && fade > window/2 {
		fade = window / 2
	}

	if snap.FadeIn {
		filters = append(filters, fmt.Sprintf("afade=t=in:st=0:d=%.3f", fade))
	}
	if snap.FadeOut {
		filters = append(filters, fmt.Sprintf("afade=t=out:st=%.3f:d=%.3f", window-fade, fade))
	}

	return strings.Join(filters, ",")
}
