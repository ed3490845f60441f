// Package scene builds the timed scene list a rendered reel is composed of.
// All functions are pure; durations are expressed in frames at 30 fps, which
// is the unit the render service consumes.
package scene

// FPS is the frame rate the render service composes at.
const FPS = 30

// Scene types understood by the dynamic renderer.
const (
	TypeHook    = "hook_photo"
	TypePhoto   = "photo_scene"
	TypeVideo   = "video_scene"
	TypeStaging = "staging_scene"
	TypeEndCard = "end_card"
)

// Fixed scene durations, in frames.
const (
	hookFrames    = 5 * FPS
	stagingFrames = 6 * FPS
	photoFrames   = 4 * FPS
	endCardFrames = 3 * FPS
	maxClipFrames = 8 * FPS
	minAdjustable = 2 * FPS
)

// Camera motions cycled through static photo scenes, assigned round-robin
// in processing order.
var animations = []string{"zoom_in", "zoom_out", "pan_left", "pan_right", "ken_burns"}

// Scene is one entry in the renderer's scene list. Exactly the fields for
// the scene's Type are populated; the rest stay empty and are omitted on
// the wire.
type Scene struct {
	Type           string `json:"type"`
	ImageURL       string `json:"imageUrl,omitempty"`
	VideoURL       string `json:"videoUrl,omitempty"`
	BeforeURL      string `json:"beforeUrl,omitempty"`
	AfterURL       string `json:"afterUrl,omitempty"`
	Label          string `json:"label,omitempty"`
	Animation      string `json:"animation,omitempty"`
	City           string `json:"city,omitempty"`
	District       string `json:"district,omitempty"`
	Price          string `json:"price,omitempty"`
	Contact        string `json:"contact,omitempty"`
	Phone          string `json:"phone,omitempty"`
	DurationFrames int    `json:"durationFrames"`
}

// Adjustable reports whether the balancer may stretch or shrink this scene.
// Hook and end card carry fixed timings.
func (s Scene) Adjustable() bool {
	return s.Type != TypeHook && s.Type != TypeEndCard
}
