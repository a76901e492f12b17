package submission

import (
	"errors"
	"fmt"

	"github.com/saravn-ent/tamilring/internal/domain"
	"github.com/saravn-ent/tamilring/internal/region"
	"github.com/saravn-ent/tamilring/internal/source"
)

// Stage identifies where a submission currently is. Transitions are
// strictly forward; the only way back is a full restart.
type Stage string

const (
	StageIdle               Stage = "idle"
	StageTranscoding        Stage = "transcoding"
	StageUploadingUniversal Stage = "uploading_universal"
	StageUploadingDevice    Stage = "uploading_device"
	StagePersisting         Stage = "persisting"
	StageNotifying          Stage = "notifying"
	StageDone               Stage = "done"
	StageErrored            Stage = "errored"
)

// Event is a progress update published to listeners.
type Event struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Draft aggregates everything a submission needs: the decoded source, the
// confirmed region, and validated metadata with its derived slug. It
// survives a failed submission so the user can retry without re-selecting
// the file or re-drawing the region.
type Draft struct {
	Source *source.SourceAudio
	Region region.Snapshot
	Meta   domain.Metadata
	Slug   string
}

// Receipt reports a completed submission.
type Receipt struct {
	RingID       string `json:"ring_id"`
	Slug         string `json:"slug"`
	UniversalURL string `json:"universal_url"`
	DeviceURL    string `json:"device_url,omitempty"`
}

// Error is a submission failure pinned to the stage that produced it. The
// UI shows exactly one message identifying the stage.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("submission failed during %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	// ErrSubmissionInFlight rejects a second submission while one runs.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")

	// ErrCancelled reports that the session moved on before the
	// submission finished; any in-flight results were discarded.
	ErrCancelled = errors.New("submission cancelled")
)
