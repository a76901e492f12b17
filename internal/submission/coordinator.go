// Package submission sequences the end-to-end commit of a ring: transcode
// both profiles, upload, persist, then fire best-effort side effects. The
// universal output is required; the device output is optional by policy —
// most users never need it, so its absence must not block the submission.
package submission

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/saravn-ent/tamilring/internal/cache"
	"github.com/saravn-ent/tamilring/internal/catalog"
	"github.com/saravn-ent/tamilring/internal/domain"
	"github.com/saravn-ent/tamilring/internal/notify"
	"github.com/saravn-ent/tamilring/internal/region"
	"github.com/saravn-ent/tamilring/internal/source"
	"github.com/saravn-ent/tamilring/internal/storage"
	"github.com/saravn-ent/tamilring/internal/transcode"
)

// Transcoder produces one profile's encoded asset from a source region.
type Transcoder interface {
	Transcode(ctx context.Context, src *source.SourceAudio, snap region.Snapshot, profile transcode.Profile) (*transcode.EncodedAsset, error)
}

// Coordinator owns all I/O of a submission and runs at most one at a
// time. Every asynchronous result is applied only after a session
// validity check, so an abandoned flow discards stale completions instead
// of acting on them.
type Coordinator struct {
	transcoder  Transcoder
	store       storage.Storage
	catalog     catalog.Catalog
	notifier    notify.Notifier
	invalidator cache.Invalidator

	mu        sync.Mutex
	epoch     uint64
	inFlight  bool
	stage     Stage
	lastErr   *Error
	receipt   *Receipt
	listeners []func(Event)
}

// NewCoordinator wires the coordinator to its collaborators.
func NewCoordinator(transcoder Transcoder, store storage.Storage, cat catalog.Catalog, notifier notify.Notifier, invalidator cache.Invalidator) *Coordinator {
	return &Coordinator{
		transcoder:  transcoder,
		store:       store,
		catalog:     cat,
		notifier:    notifier,
		invalidator: invalidator,
		stage:       StageIdle,
	}
}

// AddListener registers a progress callback.
func (c *Coordinator) AddListener(listener func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// Stage returns the current stage.
func (c *Coordinator) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// LastError returns the failure of the most recent attempt, if any.
func (c *Coordinator) LastError() *Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// LastReceipt returns the receipt of the most recent completed attempt.
func (c *Coordinator) LastReceipt() *Receipt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.receipt
}

// Cancel abandons the current flow. In-flight engine and upload calls are
// not forcibly killed; their eventual results fail the validity check and
// are discarded.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.inFlight = false
	c.stage = StageIdle
	c.lastErr = nil
}

// Submit runs the full commit sequence for the draft. It returns the
// receipt on success, a *Error pinned to the failing stage otherwise.
func (c *Coordinator) Submit(ctx context.Context, draft *Draft) (*Receipt, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	c.inFlight = true
	c.epoch++
	epoch := c.epoch
	c.lastErr = nil
	c.receipt = nil
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.epoch == epoch {
			c.inFlight = false
		}
		c.mu.Unlock()
	}()

	// Stage 1: produce both assets before any upload begins. The
	// universal profile is fail-fast; the device profile is not.
	c.setStage(epoch, StageTranscoding, "Encoding ring")

	universalAsset, err := c.transcoder.Transcode(ctx, draft.Source, draft.Region, transcode.Universal)
	if !c.valid(epoch) {
		return nil, ErrCancelled
	}
	if err != nil {
		return nil, c.fail(epoch, StageTranscoding, err)
	}

	deviceAsset, err := c.transcoder.Transcode(ctx, draft.Source, draft.Region, transcode.Device)
	if !c.valid(epoch) {
		return nil, ErrCancelled
	}
	if err != nil {
		slog.Warn("Device-profile transcode failed, continuing without it",
			"slug", draft.Slug, "error", err)
		deviceAsset = nil
	}

	// Stage 2: the universal upload is required.
	c.setStage(epoch, StageUploadingUniversal, "Uploading ring")

	submissionID := uuid.NewString()
	universalPath := objectPath(draft.Slug, submissionID, universalAsset.Profile)

	universalURL, err := c.store.Upload(ctx, universalPath, universalAsset.Data, universalAsset.Profile.ContentType)
	if !c.valid(epoch) {
		return nil, ErrCancelled
	}
	if err != nil {
		return nil, c.fail(epoch, StageUploadingUniversal, err)
	}

	// Stage 3: the device upload is optional; a failure leaves the
	// catalog row without a device reference.
	deviceURL := ""
	if deviceAsset != nil {
		c.setStage(epoch, StageUploadingDevice, "Uploading device variant")

		devicePath := objectPath(draft.Slug, submissionID, deviceAsset.Profile)
		deviceURL, err = c.store.Upload(ctx, devicePath, deviceAsset.Data, deviceAsset.Profile.ContentType)
		if !c.valid(epoch) {
			return nil, ErrCancelled
		}
		if err != nil {
			slog.Warn("Device-profile upload failed, continuing without it",
				"slug", draft.Slug, "error", err)
			deviceURL = ""
		}
	}

	// Stage 4: persist the catalog row. From the user's point of view
	// the submission succeeds the moment this does.
	c.setStage(epoch, StagePersisting, "Saving to catalog")

	ring := &domain.Ring{
		Slug:            draft.Slug,
		MediaName:       draft.Meta.MediaName,
		ItemName:        draft.Meta.ItemName,
		VariantLabel:    draft.Meta.VariantLabel,
		Contributors:    draft.Meta.Contributors,
		Tags:            draft.Meta.Tags,
		DurationSeconds: draft.Region.Length(),
		UniversalURL:    universalURL,
		DeviceURL:       deviceURL,
		Status:          domain.StatusPendingReview,
	}

	ringID, err := c.catalog.Insert(ctx, ring)
	if !c.valid(epoch) {
		return nil, ErrCancelled
	}
	if err != nil {
		// Uploaded blobs become orphans; acceptable.
		return nil, c.fail(epoch, StagePersisting, err)
	}
	ring.ID = ringID

	// Stage 5: best-effort side effects. Failures are logged, never
	// surfaced, and never roll back the persist.
	c.setStage(epoch, StageNotifying, "Finishing up")
	c.runSideEffects(ctx, ring)

	receipt := &Receipt{
		RingID:       ringID,
		Slug:         draft.Slug,
		UniversalURL: universalURL,
		DeviceURL:    deviceURL,
	}

	c.mu.Lock()
	if c.epoch == epoch {
		c.stage = StageDone
		c.receipt = receipt
	}
	c.mu.Unlock()
	c.notifyListeners(Event{Stage: StageDone, Message: "Submitted for review"})

	return receipt, nil
}

func (c *Coordinator) runSideEffects(ctx context.Context, ring *domain.Ring) {
	summary := notify.Summary{
		Slug:         ring.Slug,
		MediaName:    ring.MediaName,
		ItemName:     ring.ItemName,
		Contributors: ring.Contributors,
		UniversalURL: ring.UniversalURL,
	}
	if err := c.notifier.Notify(ctx, summary); err != nil {
		slog.Warn("Submission notification failed", "slug", ring.Slug, "error", err)
	}

	if err := c.invalidator.InvalidateFor(ctx, ring); err != nil {
		slog.Warn("Cache invalidation failed", "slug", ring.Slug, "error", err)
	}
}

// valid reports whether the submission that started at epoch still owns
// the coordinator. Checked before acting on any completed async result.
func (c *Coordinator) valid(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch == epoch
}

func (c *Coordinator) setStage(epoch uint64, stage Stage, message string) {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.stage = stage
	c.mu.Unlock()

	c.notifyListeners(Event{Stage: stage, Message: message})
}

func (c *Coordinator) fail(epoch uint64, stage Stage, err error) error {
	failure := &Error{Stage: stage, Err: err}

	c.mu.Lock()
	if c.epoch == epoch {
		c.stage = StageErrored
		c.lastErr = failure
	}
	c.mu.Unlock()

	c.notifyListeners(Event{Stage: StageErrored, Message: failure.Error(), Error: err.Error()})
	return failure
}

func (c *Coordinator) notifyListeners(event Event) {
	c.mu.Lock()
	listeners := make([]func(Event), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// objectPath builds the unique storage path for one profile's blob.
func objectPath(slug, submissionID string, profile transcode.Profile) string {
	return fmt.Sprintf("rings/%s/%s.%s", slug, submissionID, profile.Extension)
}
