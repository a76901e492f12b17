// Package region maintains the trim window a user selects on the waveform.
// All edits clamp into a valid state; nothing here ever returns an error,
// because a half-dragged handle must never leave the player visibly broken.
package region

import (
	"sync"
)

const (
	// MinDuration is the shortest window a ring may span, in seconds.
	MinDuration = 10.0

	// DefaultLength is the window length used when a new source is loaded.
	DefaultLength = 30.0
)

// Snapshot is an immutable view of the current trim window.
type Snapshot struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	FadeIn  bool    `json:"fade_in"`
	FadeOut bool    `json:"fade_out"`

	// Duration of the underlying source, not of the window.
	Duration float64 `json:"duration"`
}

// Length returns the window length in seconds.
func (s Snapshot) Length() float64 {
	return s.End - s.Start
}

// Model holds the trim window for one editing session and notifies
// listeners on every mutation. It has no UI dependency; the waveform
// view subscribes and redraws from snapshots.
type Model struct {
	mu        sync.RWMutex
	duration  float64
	start     float64
	end       float64
	fadeIn    bool
	fadeOut   bool
	listeners []func(Snapshot)
}

// NewModel creates a model with a default window centered in a source of
// the given duration. Sources shorter than the default window get the
// full span; sources shorter than the minimum still span fully, the
// minimum is simply unattainable.
func NewModel(duration float64) *Model {
	m := &Model{}
	m.Initialize(duration)
	return m
}

// Initialize resets the window for a new source. The window is
// DefaultLength seconds centered in the track, or the full track when it
// is shorter than that.
func (m *Model) Initialize(duration float64) {
	m.mu.Lock()
	if duration < 0 {
		duration = 0
	}
	m.duration = duration
	if duration <= DefaultLength {
		m.start = 0
		m.end = duration
	} else {
		m.start = (duration - DefaultLength) / 2
		m.end = m.start + DefaultLength
	}
	m.fadeIn = false
	m.fadeOut = false
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notifyListeners(snap)
}

// SetStart moves the window start. If the edit would shrink the window
// below the minimum, the end is pushed instead: the user's gesture wins.
func (m *Model) SetStart(t float64) {
	m.mu.Lock()
	m.start = clamp(t, 0, m.duration)
	if m.end-m.start < MinDuration {
		m.end = clamp(m.start+MinDuration, 0, m.duration)
		if m.end-m.start < MinDuration {
			m.start = clamp(m.end-MinDuration, 0, m.duration)
		}
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notifyListeners(snap)
}

// SetEnd moves the window end, pushing the start when the minimum would
// be violated.
func (m *Model) SetEnd(t float64) {
	m.mu.Lock()
	m.end = clamp(t, 0, m.duration)
	if m.end-m.start < MinDuration {
		m.start = clamp(m.end-MinDuration, 0, m.duration)
		if m.end-m.start < MinDuration {
			m.end = clamp(m.start+MinDuration, 0, m.duration)
		}
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notifyListeners(snap)
}

// SetBoth applies a start and end together, as a single atomic update, so
// numeric entry never exposes a transient invalid window between two
// single-edge edits.
func (m *Model) SetBoth(start, end float64) {
	m.mu.Lock()
	if end < start {
		start, end = end, start
	}
	m.start = clamp(start, 0, m.duration)
	m.end = clamp(end, 0, m.duration)
	if m.end-m.start < MinDuration {
		m.end = clamp(m.start+MinDuration, 0, m.duration)
		if m.end-m.start < MinDuration {
			m.start = clamp(m.end-MinDuration, 0, m.duration)
		}
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notifyListeners(snap)
}

// ToggleFadeIn flips the fade-in flag without touching the bounds.
func (m *Model) ToggleFadeIn() {
	m.mu.Lock()
	m.fadeIn = !m.fadeIn
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notifyListeners(snap)
}

// ToggleFadeOut flips the fade-out flag without touching the bounds.
func (m *Model) ToggleFadeOut() {
	m.mu.Lock()
	m.fadeOut = !m.fadeOut
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notifyListeners(snap)
}

// AddListener registers a callback invoked with a snapshot after every
// mutation.
func (m *Model) AddListener(listener func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, listener)
}

// Snapshot returns the current window state.
func (m *Model) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Model) snapshotLocked() Snapshot {
	return Snapshot{
		Start:    m.start,
		End:      m.end,
		FadeIn:   m.fadeIn,
		FadeOut:  m.fadeOut,
		Duration: m.duration,
	}
}

func (m *Model) notifyListeners(snap Snapshot) {
	m.mu.RLock()
	listeners := make([]func(Snapshot), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, listener := range listeners {
		listener(snap)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
