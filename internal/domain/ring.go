package domain

// StatusPendingReview is the review status every freshly submitted ring
// carries; approval happens in the moderation dashboard, not here.
const StatusPendingReview = "pending_review"

// Metadata holds the user-entered fields describing a ring.
type Metadata struct {
	MediaName    string   `json:"media_name"`
	ItemName     string   `json:"item_name"`
	VariantLabel string   `json:"variant_label,omitempty"`
	Contributors []string `json:"contributors,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// Ring represents a catalog row for a submitted ring.
type Ring struct {
	ID              string   `json:"id,omitempty"`
	Slug            string   `json:"slug"`
	MediaName       string   `json:"media_name"`
	ItemName        string   `json:"item_name"`
	VariantLabel    string   `json:"variant_label,omitempty"`
	Contributors    []string `json:"contributors,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	DurationSeconds float64  `json:"duration_seconds"`
	UniversalURL    string   `json:"universal_url"`
	DeviceURL       string   `json:"device_url,omitempty"`
	Status          string   `json:"status"`
}
