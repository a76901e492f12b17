package server

import (
	"sync"
	"time"

	"github.com/saravn-ent/tamilring/internal/domain"
	"github.com/saravn-ent/tamilring/internal/region"
	"github.com/saravn-ent/tamilring/internal/slug"
	"github.com/saravn-ent/tamilring/internal/source"
	"github.com/saravn-ent/tamilring/internal/submission"
)

// Session is one client's editing state: the decoded source, the trim
// window, the metadata draft with its slug check, and the submission
// coordinator. It lives until submitted or cancelled.
type Session struct {
	ID        string
	StartTime time.Time

	Source      *source.SourceAudio
	Waveform    []float32
	Region      *region.Model
	Checker     *slug.Checker
	Coordinator *submission.Coordinator

	mu         sync.Mutex
	meta       domain.Metadata
	uploadPath string
}

// Metadata returns the current metadata draft.
func (s *Session) Metadata() domain.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// SetMetadata replaces the metadata draft and restarts the slug check.
func (s *Session) SetMetadata(meta domain.Metadata) {
	s.mu.Lock()
	s.meta = meta
	s.mu.Unlock()

	s.Checker.Update(meta.MediaName, meta.ItemName, meta.VariantLabel)
}

func (s *Server) getSessionByID(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *Server) putSession(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

func (s *Server) removeSession(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	return session, ok
}
