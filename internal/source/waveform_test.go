package source

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pcmFromSamples(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

func TestPeaksFromPCMNormalizes(t *testing.T) {
	// Two buckets: a quiet one and a loud one.
	samples := []int16{100, -200, 100, 8000, -16000, 4000}
	peaks := peaksFromPCM(pcmFromSamples(samples), 2)

	assert.Len(t, peaks, 2)
	assert.Equal(t, float32(1.0), peaks[1])
	assert.Greater(t, peaks[1], peaks[0])
	assert.Greater(t, peaks[0], float32(0))
}

func TestPeaksFromPCMEmptyInput(t *testing.T) {
	peaks := peaksFromPCM(nil, 4)

	assert.Len(t, peaks, 4)
	for _, p := range peaks {
		assert.Equal(t, float32(0), p)
	}
}

func TestPeaksFromPCMFewerSamplesThanBuckets(t *testing.T) {
	samples := []int16{1000, -2000}
	peaks := peaksFromPCM(pcmFromSamples(samples), 8)

	assert.Len(t, peaks, 8)
	// The available samples land in the leading buckets; the rest stay flat.
	assert.Equal(t, float32(0), peaks[7])
}

func TestPeaksFromPCMSilence(t *testing.T) {
	samples := make([]int16, 64)
	peaks := peaksFromPCM(pcmFromSamples(samples), 4)

	for _, p := range peaks {
		assert.Equal(t, float32(0), p)
	}
}
