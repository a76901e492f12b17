package source

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/saravn-ent/tamilring/internal/engine"
)

// DefaultWaveformResolution is the number of peaks rendered for the
// trimmer view.
const DefaultWaveformResolution = 800

// waveformSampleRate keeps the PCM extraction cheap; peak detection does
// not need full fidelity.
const waveformSampleRate = 8000

// Waveform renders normalized peak amplitudes for the source, one value
// per horizontal bucket, in [0, 1]. The PCM extraction happens in a
// scratch namespace that is always released.
func Waveform(ctx context.Context, eng *engine.Engine, src *SourceAudio, resolution int) ([]float32, error) {
	if resolution <= 0 {
		resolution = DefaultWaveformResolution
	}

	scratch, err := eng.NewScratch()
	if err != nil {
		return nil, fmt.Errorf("waveform extraction failed: %w", err)
	}
	defer scratch.Release()

	const pcmName = "waveform.pcm"
	err = eng.Exec(ctx,
		"-y",
		"-i", src.Path,
		"-map", "0:a:0",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", waveformSampleRate),
		"-f", "s16le",
		scratch.Path(pcmName),
	)
	if err != nil {
		return nil, fmt.Errorf("waveform extraction failed: %w", err)
	}

	pcm, err := scratch.ReadOutput(pcmName)
	if err != nil {
		return nil, fmt.Errorf("waveform extraction failed: %w", err)
	}

	return peaksFromPCM(pcm, resolution), nil
}

// peaksFromPCM buckets mono s16le samples into resolution peaks,
// normalized against the loudest bucket.
func peaksFromPCM(pcm []byte, resolution int) []float32 {
	sampleCount := len(pcm) / 2
	peaks := make([]float32, resolution)
	if sampleCount == 0 {
		return peaks
	}

	bucketSize := sampleCount / resolution
	if bucketSize == 0 {
		bucketSize = 1
	}

	var loudest float32
	for i := 0; i < resolution; i++ {
		start := i * bucketSize
		if start >= sampleCount {
			break
		}
		end := start + bucketSize
		if i == resolution-1 || end > sampleCount {
			end = sampleCount
		}

		var peak float32
		for s := start; s < end; s++ {
			sample := int16(binary.LittleEndian.Uint16(pcm[s*2 : s*2+2]))
			amp := float32(math.Abs(float64(sample))) / math.MaxInt16
			if amp > peak {
				peak = amp
			}
		}
		peaks[i] = peak
		if peak > loudest {
			loudest = peak
		}
	}

	if loudest > 0 {
		for i := range peaks {
			peaks[i] /= loudest
		}
	}

	return peaks
}
