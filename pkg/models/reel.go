// Package models contains shared data models used across the ReelForge codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Reel lifecycle statuses.
const (
	ReelStatusPending    = "pending"
	ReelStatusProcessing = "processing"
	ReelStatusCompleted  = "completed"
	ReelStatusError      = "error"
)

// Pipeline stages, in execution order. Progress is persisted alongside the
// stage so the UI can poll a single row.
const (
	StageAnalyzing        = "analyzing"
	StageGeneratingVideos = "generating_videos"
	StageRendering        = "rendering"
	StageWritingCaptions  = "writing_captions"
	StageCompleted        = "completed"
	StageError            = "error"
)

// Content types.
const (
	ContentTypeReel     = "reel"
	ContentTypeCarousel = "carousel"
)

// Reel is one generation job: a property's short-form video content unit and
// its lifecycle record.
type Reel struct {
	ID       uuid.UUID `db:"id"       json:"id"`
	City     string    `db:"city"     json:"city"`
	District string    `db:"district" json:"district"`
	Price    string    `db:"price"    json:"price"`
	Contact  string    `db:"contact"  json:"contact"`
	Phone    string    `db:"phone"    json:"phone"`

	Status           string  `db:"status"            json:"status"`
	ContentType      string  `db:"content_type"      json:"content_type"`
	PipelineStage    *string `db:"pipeline_stage"    json:"pipeline_stage,omitempty"`
	PipelineProgress int     `db:"pipeline_progress" json:"pipeline_progress"`
	ErrorMessage     *string `db:"error_message"     json:"error_message,omitempty"`

	Video916URL *string `db:"video_916_url" json:"video_916_url,omitempty"`
	Video1x1URL *string `db:"video_1x1_url" json:"video_1x1_url,omitempty"`

	CaptionInstagram *string `db:"caption_instagram" json:"caption_instagram,omitempty"`
	CaptionTikTok    *string `db:"caption_tiktok"    json:"caption_tiktok,omitempty"`

	InstagramPostID *string `db:"instagram_post_id" json:"instagram_post_id,omitempty"`
	TikTokPostID    *string `db:"tiktok_post_id"    json:"tiktok_post_id,omitempty"`

	EnableVideoGen  bool    `db:"enable_video_gen" json:"enable_video_gen"`
	EnableStaging   bool    `db:"enable_staging"   json:"enable_staging"`
	DurationSeconds int     `db:"duration_seconds" json:"duration_seconds"`
	MusicURL        *string `db:"music_url"        json:"music_url,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Joined, populated only by GetReelWithMedia.
	MediaItems []*MediaItem `db:"-" json:"media_items,omitempty"`
}
