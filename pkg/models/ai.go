package models

import "context"

// AIProvider is the contract for the vision and copywriting backends.
// Never call a specific provider directly; always inject this interface.
type AIProvider interface {
	// AnalyzeRooms classifies property photos. Results are positionally
	// matched to the input order; callers must length-check defensively
	// because providers may drop entries.
	AnalyzeRooms(ctx context.Context, imageURLs []string) ([]RoomAnalysis, error)
	// WriteCaptions produces one caption per target platform.
	WriteCaptions(ctx context.Context, req CaptionRequest) (Captions, error)
	// Name returns the provider identifier (e.g., "gemini", "mock").
	Name() string
}

// RoomAnalysis is one photo's classification from the vision service.
type RoomAnalysis struct {
	RoomType       string `json:"room_type"`
	Description    string `json:"description"`
	SuggestedOrder int    `json:"suggested_order"`
}

// CaptionRequest carries the property context given to the copywriter.
type CaptionRequest struct {
	City         string
	District     string
	Price        string
	Descriptions []string
}

// Captions holds the platform-specific caption strings.
type Captions struct {
	Instagram string `json:"caption_instagram"`
	TikTok    string `json:"caption_tiktok"`
}

// VideoGenerator turns one property photo into a short cinematic clip.
// A call may involve a create-then-poll handshake against the backend.
type VideoGenerator interface {
	GenerateClip(ctx context.Context, imageURL, prompt string) (string, error)
	Name() string
}
