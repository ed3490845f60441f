package models

import (
	"time"

	"github.com/google/uuid"
)

// Media kinds.
const (
	MediaTypePhoto = "photo"
	MediaTypeVideo = "video"
)

// Room classifications assigned by the vision stage. RoomOther is the
// catch-all and the fallback when a classification is missing.
const (
	RoomFacade     = "facade"
	RoomLivingRoom = "living_room"
	RoomKitchen    = "kitchen"
	RoomBedroom    = "bedroom"
	RoomBathroom   = "bathroom"
	RoomOffice     = "office"
	RoomTerrace    = "terrace"
	RoomGarden     = "garden"
	RoomPool       = "pool"
	RoomGarage     = "garage"
	RoomEntry      = "entry"
	RoomHallway    = "hallway"
	RoomDiningRoom = "dining_room"
	RoomCloset     = "closet"
	RoomOther      = "other"
)

// ValidRoomTypes enumerates every accepted room classification.
var ValidRoomTypes = map[string]bool{
	RoomFacade:     true,
	RoomLivingRoom: true,
	RoomKitchen:    true,
	RoomBedroom:    true,
	RoomBathroom:   true,
	RoomOffice:     true,
	RoomTerrace:    true,
	RoomGarden:     true,
	RoomPool:       true,
	RoomGarage:     true,
	RoomEntry:      true,
	RoomHallway:    true,
	RoomDiningRoom: true,
	RoomCloset:     true,
	RoomOther:      true,
}

// MediaItem is one uploaded photo or video belonging to a Reel. Items are
// always read and written scoped to exactly one reel id, ordered by SortOrder.
type MediaItem struct {
	ID     uuid.UUID `db:"id"      json:"id"`
	ReelID uuid.UUID `db:"reel_id" json:"reel_id"`

	URL          string  `db:"url"           json:"url"`
	ThumbnailURL *string `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	MediaType    string  `db:"media_type"    json:"media_type"`

	RoomType      *string `db:"room_type"      json:"room_type,omitempty"`
	AIDescription *string `db:"ai_description" json:"ai_description,omitempty"`
	SortOrder     int     `db:"sort_order"     json:"sort_order"`

	GeneratedVideoURL *string `db:"generated_video_url" json:"generated_video_url,omitempty"`
	StagedURL         *string `db:"staged_url"          json:"staged_url,omitempty"`

	Width      *int `db:"width"       json:"width,omitempty"`
	Height     *int `db:"height"      json:"height,omitempty"`
	DurationMs *int `db:"duration_ms" json:"duration_ms,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Room returns the item's classification, or RoomOther when unset.
func (m *MediaItem) Room() string {
	if m.RoomType == nil || *m.RoomType == "" {
		return RoomOther
	}
	return *m.RoomType
}

// IsFacadePhoto reports whether this item is the hook-scene candidate.
func (m *MediaItem) IsFacadePhoto() bool {
	return m.MediaType == MediaTypePhoto && m.RoomType != nil && *m.RoomType == RoomFacade
}
