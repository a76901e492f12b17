package submission

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saravn-ent/tamilring/internal/catalog"
	"github.com/saravn-ent/tamilring/internal/domain"
	"github.com/saravn-ent/tamilring/internal/notify"
	"github.com/saravn-ent/tamilring/internal/region"
	"github.com/saravn-ent/tamilring/internal/source"
	"github.com/saravn-ent/tamilring/internal/transcode"
)

type fakeTranscoder struct {
	mu      sync.Mutex
	failFor map[string]error
	gate    chan struct{}
	calls   []string
}

func (f *fakeTranscoder) Transcode(ctx context.Context, src *source.SourceAudio, snap region.Snapshot, profile transcode.Profile) (*transcode.EncodedAsset, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.calls = append(f.calls, profile.Name)
	err := f.failFor[profile.Name]
	f.mu.Unlock()

	if err != nil {
		return nil, &transcode.EncodeError{Profile: profile.Name, Err: err}
	}
	return &transcode.EncodedAsset{
		Profile:   profile,
		Data:      []byte("encoded-" + profile.Name),
		SizeBytes: len("encoded-" + profile.Name),
	}, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	uploads []string
	failExt string
}

func (f *fakeStorage) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failExt != "" && strings.HasSuffix(objectPath, f.failExt) {
		return "", errors.New("storage unavailable")
	}
	f.uploads = append(f.uploads, objectPath)
	return "https://cdn.example.net/" + objectPath, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	summaries []notify.Summary
	err       error
}

func (r *recordingNotifier) Notify(ctx context.Context, summary notify.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, summary)
	return r.err
}

type recordingInvalidator struct {
	mu    sync.Mutex
	rings []*domain.Ring
	err   error
}

func (r *recordingInvalidator) InvalidateFor(ctx context.Context, ring *domain.Ring) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rings = append(r.rings, ring)
	return r.err
}

type fixture struct {
	coordinator *Coordinator
	transcoder  *fakeTranscoder
	store       *fakeStorage
	catalog     *catalog.Memory
	notifier    *recordingNotifier
	invalidator *recordingInvalidator
}

func newFixture() *fixture {
	f := &fixture{
		transcoder:  &fakeTranscoder{failFor: map[string]error{}},
		store:       &fakeStorage{},
		catalog:     catalog.NewMemory(),
		notifier:    &recordingNotifier{},
		invalidator: &recordingInvalidator{},
	}
	f.coordinator = NewCoordinator(f.transcoder, f.store, f.catalog, f.notifier, f.invalidator)
	return f
}

func testDraft() *Draft {
	return &Draft{
		Source: &source.SourceAudio{Path: "/tmp/source.mp3", Duration: 240},
		Region: region.Snapshot{Start: 105, End: 135, FadeOut: true, Duration: 240},
		Meta: domain.Metadata{
			MediaName:    "Vaaranam Aayiram",
			ItemName:     "Ninaikatha",
			VariantLabel: "BGM",
			Contributors: []string{"Harris Jayaraj"},
			Tags:         []string{"melancholy"},
		},
		Slug: "vaaranam-aayiram-ninaikatha-bgm",
	}
}

func TestSubmitHappyPath(t *testing.T) {
	f := newFixture()

	receipt, err := f.coordinator.Submit(context.Background(), testDraft())

	require.NoError(t, err)
	assert.Equal(t, StageDone, f.coordinator.Stage())
	assert.NotEmpty(t, receipt.RingID)
	assert.Contains(t, receipt.UniversalURL, ".mp3")
	assert.Contains(t, receipt.DeviceURL, ".m4r")

	ring, ok := f.catalog.Get("vaaranam-aayiram-ninaikatha-bgm")
	require.True(t, ok)
	assert.Equal(t, domain.StatusPendingReview, ring.Status)
	assert.Equal(t, 30.0, ring.DurationSeconds)
	assert.NotEmpty(t, ring.DeviceURL)

	require.Len(t, f.notifier.summaries, 1)
	assert.Equal(t, "vaaranam-aayiram-ninaikatha-bgm", f.notifier.summaries[0].Slug)
	require.Len(t, f.invalidator.rings, 1)
}

func TestSubmitDeviceTranscodeFailureIsNonFatal(t *testing.T) {
	f := newFixture()
	f.transcoder.failFor["device"] = errors.New("encoder crashed")

	receipt, err := f.coordinator.Submit(context.Background(), testDraft())

	require.NoError(t, err)
	assert.Equal(t, StageDone, f.coordinator.Stage())
	assert.Empty(t, receipt.DeviceURL)

	// The catalog row simply omits the device reference.
	ring, ok := f.catalog.Get("vaaranam-aayiram-ninaikatha-bgm")
	require.True(t, ok)
	assert.Empty(t, ring.DeviceURL)
	assert.NotEmpty(t, ring.UniversalURL)

	// Only the universal blob was uploaded.
	require.Len(t, f.store.uploads, 1)
	assert.True(t, strings.HasSuffix(f.store.uploads[0], ".mp3"))
}

func TestSubmitUniversalTranscodeFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.transcoder.failFor["universal"] = errors.New("encoder crashed")

	_, err := f.coordinator.Submit(context.Background(), testDraft())

	require.Error(t, err)
	var subErr *Error
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, StageTranscoding, subErr.Stage)
	assert.Equal(t, StageErrored, f.coordinator.Stage())

	// Fail-fast: no uploads were attempted and no row exists.
	assert.Empty(t, f.store.uploads)
	_, ok := f.catalog.Get("vaaranam-aayiram-ninaikatha-bgm")
	assert.False(t, ok)
	assert.Empty(t, f.notifier.summaries)
}

func TestSubmitUniversalUploadFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.store.failExt = ".mp3"

	_, err := f.coordinator.Submit(context.Background(), testDraft())

	var subErr *Error
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, StageUploadingUniversal, subErr.Stage)

	_, ok := f.catalog.Get("vaaranam-aayiram-ninaikatha-bgm")
	assert.False(t, ok)
}

func TestSubmitDeviceUploadFailureIsNonFatal(t *testing.T) {
	f := newFixture()
	f.store.failExt = ".m4r"

	receipt, err := f.coordinator.Submit(context.Background(), testDraft())

	require.NoError(t, err)
	assert.Empty(t, receipt.DeviceURL)

	ring, ok := f.catalog.Get("vaaranam-aayiram-ninaikatha-bgm")
	require.True(t, ok)
	assert.Empty(t, ring.DeviceURL)
}

func TestSubmitPersistFailureLeavesOrphans(t *testing.T) {
	f := newFixture()

	// Pre-fill the slug so the insert collides.
	_, err := f.catalog.Insert(context.Background(), &domain.Ring{Slug: "vaaranam-aayiram-ninaikatha-bgm"})
	require.NoError(t, err)

	_, err = f.coordinator.Submit(context.Background(), testDraft())

	var subErr *Error
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, StagePersisting, subErr.Stage)

	// Both blobs were uploaded before the persist failed; they stay as
	// accepted orphans.
	assert.Len(t, f.store.uploads, 2)
	assert.Empty(t, f.notifier.summaries)
}

func TestSubmitSideEffectFailuresAreSwallowed(t *testing.T) {
	f := newFixture()
	f.notifier.err = errors.New("webhook down")
	f.invalidator.err = errors.New("revalidate down")

	receipt, err := f.coordinator.Submit(context.Background(), testDraft())

	require.NoError(t, err)
	assert.Equal(t, StageDone, f.coordinator.Stage())
	assert.NotEmpty(t, receipt.RingID)
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	f := newFixture()
	f.transcoder.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.coordinator.Submit(context.Background(), testDraft())
		done <- err
	}()

	// Wait until the first submission is inside the transcoding stage.
	waitForStage(t, f.coordinator, StageTranscoding)

	_, err := f.coordinator.Submit(context.Background(), testDraft())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(f.transcoder.gate)
	require.NoError(t, <-done)
}

func TestCancelDiscardsInFlightResults(t *testing.T) {
	f := newFixture()
	f.transcoder.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.coordinator.Submit(context.Background(), testDraft())
		done <- err
	}()

	waitForStage(t, f.coordinator, StageTranscoding)
	f.coordinator.Cancel()
	close(f.transcoder.gate)

	assert.ErrorIs(t, <-done, ErrCancelled)
	assert.Equal(t, StageIdle, f.coordinator.Stage())

	// The completed transcode's result was discarded: nothing moved on.
	assert.Empty(t, f.store.uploads)
	_, ok := f.catalog.Get("vaaranam-aayiram-ninaikatha-bgm")
	assert.False(t, ok)
}

func TestSubmitPublishesForwardOnlyStages(t *testing.T) {
	f := newFixture()

	var mu sync.Mutex
	var stages []Stage
	f.coordinator.AddListener(func(e Event) {
		mu.Lock()
		stages = append(stages, e.Stage)
		mu.Unlock()
	})

	_, err := f.coordinator.Submit(context.Background(), testDraft())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Stage{
		StageTranscoding,
		StageUploadingUniversal,
		StageUploadingDevice,
		StagePersisting,
		StageNotifying,
		StageDone,
	}, stages)
}

func waitForStage(t *testing.T, c *Coordinator, want Stage) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Stage() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("coordinator never reached stage %q (last: %q)", want, c.Stage())
}
