package server

import (
	"github.com/saravn-ent/tamilring/internal/domain"
	"github.com/saravn-ent/tamilring/internal/region"
	"github.com/saravn-ent/tamilring/internal/slug"
	"github.com/saravn-ent/tamilring/internal/submission"
)

// SessionResponse is the full session view the editing UI renders from.
type SessionResponse struct {
	ID         string             `json:"id"`
	Duration   float64            `json:"duration"`
	Waveform   []float32          `json:"waveform,omitempty"`
	Region     region.Snapshot    `json:"region"`
	Metadata   domain.Metadata    `json:"metadata"`
	SlugStatus slug.Result        `json:"slug_status"`
	Submission SubmissionResponse `json:"submission"`
}

// RegionRequest is a partial region edit. Supplying both start and end
// applies them atomically; fade fields are absolute values, not toggles.
type RegionRequest struct {
	Start   *float64 `json:"start,omitempty"`
	End     *float64 `json:"end,omitempty"`
	FadeIn  *bool    `json:"fade_in,omitempty"`
	FadeOut *bool    `json:"fade_out,omitempty"`
}

// MetadataRequest carries the user-entered metadata fields.
type MetadataRequest struct {
	MediaName    string   `json:"media_name" binding:"required"`
	ItemName     string   `json:"item_name" binding:"required"`
	VariantLabel string   `json:"variant_label"`
	Contributors []string `json:"contributors"`
	Tags         []string `json:"tags"`
}

// SubmissionResponse reports where the session's submission stands.
type SubmissionResponse struct {
	Stage   submission.Stage    `json:"stage"`
	Error   string              `json:"error,omitempty"`
	Receipt *submission.Receipt `json:"receipt,omitempty"`
}

// MessageResponse represents a generic message payload used for success responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents a generic error payload used for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
