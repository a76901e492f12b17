package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saravn-ent/tamilring/internal/domain"
	"github.com/saravn-ent/tamilring/internal/engine"
	"github.com/saravn-ent/tamilring/internal/region"
	"github.com/saravn-ent/tamilring/internal/slug"
	"github.com/saravn-ent/tamilring/internal/source"
	"github.com/saravn-ent/tamilring/internal/submission"
)

// health handles health check requests
func (s *Server) health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

// createSession accepts a source audio upload, decodes it, and opens an
// editing session with an auto-centered default region.
func (s *Server) createSession(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("missing audio file: %v", err)})
		return
	}

	if file.Size > s.cfg.Server.MaxUploadBytes {
		c.JSON(413, gin.H{"error": "audio file too large"})
		return
	}

	sessionID := uuid.NewString()
	uploadPath := filepath.Join(s.uploadDir, sessionID+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, uploadPath); err != nil {
		c.JSON(500, gin.H{"error": fmt.Sprintf("failed to store upload: %v", err)})
		return
	}

	eng, err := engine.Acquire(c.Request.Context(), s.engineCfg)
	if err != nil {
		_ = os.Remove(uploadPath)
		c.JSON(503, gin.H{"error": fmt.Sprintf("audio engine unavailable: %v", err)})
		return
	}

	src, err := source.Decode(c.Request.Context(), eng, uploadPath)
	if err != nil {
		_ = os.Remove(uploadPath)
		c.JSON(422, gin.H{"error": fmt.Sprintf("could not decode audio: %v", err)})
		return
	}

	waveform, err := source.Waveform(c.Request.Context(), eng, src, source.DefaultWaveformResolution)
	if err != nil {
		_ = os.Remove(uploadPath)
		c.JSON(422, gin.H{"error": fmt.Sprintf("could not render waveform: %v", err)})
		return
	}

	session := &Session{
		ID:          sessionID,
		StartTime:   time.Now(),
		Source:      src,
		Waveform:    waveform,
		Region:      region.NewModel(src.Duration),
		Checker:     slug.NewChecker(s.catalog, slug.DefaultDebounce),
		Coordinator: submission.NewCoordinator(s.transcoder, s.store, s.catalog, s.notifier, s.invalidator),
		uploadPath:  uploadPath,
	}
	s.putSession(session)

	slog.Info("Editing session created", "session", sessionID, "duration", src.Duration)
	c.JSON(201, s.sessionResponse(session, true))
}

// getSession returns the full session view.
func (s *Server) getSession(c *gin.Context) {
	session, ok := s.getSessionByID(c.Param("id"))
	if !ok {
		c.JSON(404, gin.H{"error": "session not found"})
		return
	}

	c.JSON(200, s.sessionResponse(session, c.Query("waveform") == "true"))
}

// updateRegion applies a partial region edit. All inputs clamp; the
// response carries the resulting window.
func (s *Server) updateRegion(c *gin.Context) {
	session, ok := s.getSessionByID(c.Param("id"))
	if !ok {
		c.JSON(404, gin.H{"error": "session not found"})
		return
	}

	var req RegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	switch {
	case req.Start != nil && req.End != nil:
		session.Region.SetBoth(*req.Start, *req.End)
	case req.Start != nil:
		session.Region.SetStart(*req.Start)
	case req.End != nil:
		session.Region.SetEnd(*req.End)
	}

	snap := session.Region.Snapshot()
	if req.FadeIn != nil && *req.FadeIn != snap.FadeIn {
		session.Region.ToggleFadeIn()
	}
	if req.FadeOut != nil && *req.FadeOut != snap.FadeOut {
		session.Region.ToggleFadeOut()
	}

	c.JSON(200, session.Region.Snapshot())
}

// updateMetadata replaces the metadata draft; the slug check re-runs
// after its debounce quiet period.
func (s *Server) updateMetadata(c *gin.Context) {
	session, ok := s.getSessionByID(c.Param("id"))
	if !ok {
		c.JSON(404, gin.H{"error": "session not found"})
		return
	}

	var req MetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	session.SetMetadata(req.toDomain())

	c.JSON(200, session.Checker.Current())
}

// getSlugStatus returns the latest duplicate-check result.
func (s *Server) getSlugStatus(c *gin.Context) {
	session, ok := s.getSessionByID(c.Param("id"))
	if !ok {
		c.JSON(404, gin.H{"error": "session not found"})
		return
	}

	c.JSON(200, session.Checker.Current())
}

// submit starts the commit sequence in the background. It is rejected
// while the slug check is not available or a submission is in flight.
func (s *Server) submit(c *gin.Context) {
	session, ok := s.getSessionByID(c.Param("id"))
	if !ok {
		c.JSON(404, gin.H{"error": "session not found"})
		return
	}

	check := session.Checker.Current()
	if check.Status != slug.StatusAvailable {
		c.JSON(409, gin.H{"error": fmt.Sprintf("slug is not available (status: %s)", check.Status)})
		return
	}

	switch session.Coordinator.Stage() {
	case submission.StageDone:
		c.JSON(409, gin.H{"error": "session already submitted"})
		return
	case submission.StageIdle, submission.StageErrored:
		// A fresh or failed submission may (re)start.
	default:
		c.JSON(409, gin.H{"error": submission.ErrSubmissionInFlight.Error()})
		return
	}

	draft := &submission.Draft{
		Source: session.Source,
		Region: session.Region.Snapshot(),
		Meta:   session.Metadata(),
		Slug:   check.Slug,
	}

	go func() {
		if _, err := session.Coordinator.Submit(context.Background(), draft); err != nil {
			slog.Error("Submission failed", "session", session.ID, "error", err)
		}
	}()

	c.JSON(202, gin.H{"message": "Submission started"})
}

// getSubmissionStatus reports the submission's stage, failure, and
// receipt.
func (s *Server) getSubmissionStatus(c *gin.Context) {
	session, ok := s.getSessionByID(c.Param("id"))
	if !ok {
		c.JSON(404, gin.H{"error": "session not found"})
		return
	}

	c.JSON(200, submissionResponse(session.Coordinator))
}

// cancelSession abandons the session: the coordinator discards any
// in-flight results and the uploaded source is removed.
func (s *Server) cancelSession(c *gin.Context) {
	session, ok := s.removeSession(c.Param("id"))
	if !ok {
		c.JSON(404, gin.H{"error": "session not found"})
		return
	}

	session.Coordinator.Cancel()
	session.Checker.Stop()
	if session.uploadPath != "" {
		if err := os.Remove(session.uploadPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove session upload", "session", session.ID, "error", err)
		}
	}

	c.JSON(200, gin.H{"message": "Session cancelled"})
}

func (r MetadataRequest) toDomain() domain.Metadata {
	return domain.Metadata{
		MediaName:    r.MediaName,
		ItemName:     r.ItemName,
		VariantLabel: r.VariantLabel,
		Contributors: r.Contributors,
		Tags:         r.Tags,
	}
}

func (s *Server) sessionResponse(session *Session, includeWaveform bool) SessionResponse {
	resp := SessionResponse{
		ID:         session.ID,
		Duration:   session.Source.Duration,
		Region:     session.Region.Snapshot(),
		Metadata:   session.Metadata(),
		SlugStatus: session.Checker.Current(),
		Submission: submissionResponse(session.Coordinator),
	}
	if includeWaveform {
		resp.Waveform = session.Waveform
	}
	return resp
}

func submissionResponse(coordinator *submission.Coordinator) SubmissionResponse {
	resp := SubmissionResponse{
		Stage:   coordinator.Stage(),
		Receipt: coordinator.LastReceipt(),
	}
	if failure := coordinator.LastError(); failure != nil {
		resp.Error = failure.Error()
	}
	return resp
}
