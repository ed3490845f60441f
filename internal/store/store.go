package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lucasverdier/reelforge/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateReel(ctx context.Context, reel *models.Reel) error
	GetReel(ctx context.Context, id uuid.UUID) (*models.Reel, error)
	GetReelWithMedia(ctx context.Context, id uuid.UUID) (*models.Reel, error)
	UpdateReel(ctx context.Context, id uuid.UUID, opts ...ReelUpdateOption) error

	CreateMediaItem(ctx context.Context, item *models.MediaItem) error
	ListMediaItems(ctx context.Context, reelID uuid.UUID) ([]*models.MediaItem, error)
	UpdateMediaItem(ctx context.Context, id uuid.UUID, opts ...MediaUpdateOption) error

	CreateSocialAccount(ctx context.Context, account *models.SocialAccount) error
	GetSocialAccount(ctx context.Context, platform string) (*models.SocialAccount, error)
	UpdateSocialAccountTokens(ctx context.Context, id uuid.UUID, accessToken string, refreshToken *string, expiresAt time.Time) error
	DeleteSocialAccount(ctx context.Context, platform string) error
}

// ReelUpdate collects the fields a partial reel update may touch. Options
// populate it; nil fields are left untouched.
type ReelUpdate struct {
	Status       *string
	Stage        *string
	Progress     *int
	ErrorMessage *string
	Video916URL  *string
	Video1x1URL  *string
	CaptionIG    *string
	CaptionTT    *string
	IGPostID     *string
	TTPostID     *string
}

type ReelUpdateOption func(*ReelUpdate)

func WithStatus(status string) ReelUpdateOption {
	return func(p *ReelUpdate) { p.Status = &status }
}

// WithStage records the pipeline stage together with its progress percent.
func WithStage(stage string, progress int) ReelUpdateOption {
	return func(p *ReelUpdate) {
		p.Stage = &stage
		p.Progress = &progress
	}
}

func WithErrorMessage(msg string) ReelUpdateOption {
	return func(p *ReelUpdate) { p.ErrorMessage = &msg }
}

// WithErrorStage marks the pipeline stage terminal without resetting progress.
func WithErrorStage() ReelUpdateOption {
	return func(p *ReelUpdate) {
		stage := models.StageError
		p.Stage = &stage
	}
}

// WithVideoURLs sets both output artifacts. They currently mirror the same
// rendered URL.
func WithVideoURLs(url916, url1x1 string) ReelUpdateOption {
	return func(p *ReelUpdate) {
		p.Video916URL = &url916
		p.Video1x1URL = &url1x1
	}
}

// WithCaptions stores the platform caption strings; nil leaves a caption null.
func WithCaptions(instagram, tiktok *string) ReelUpdateOption {
	return func(p *ReelUpdate) {
		p.CaptionIG = instagram
		p.CaptionTT = tiktok
	}
}

func WithInstagramPostID(id string) ReelUpdateOption {
	return func(p *ReelUpdate) { p.IGPostID = &id }
}

func WithTikTokPostID(id string) ReelUpdateOption {
	return func(p *ReelUpdate) { p.TTPostID = &id }
}

type MediaUpdate struct {
	RoomType          *string
	AIDescription     *string
	SortOrder         *int
	GeneratedVideoURL *string
}

type MediaUpdateOption func(*MediaUpdate)

// WithRoomAnalysis writes back one vision-stage classification.
func WithRoomAnalysis(roomType, description string, sortOrder int) MediaUpdateOption {
	return func(p *MediaUpdate) {
		p.RoomType = &roomType
		p.AIDescription = &description
		p.SortOrder = &sortOrder
	}
}

func WithGeneratedVideoURL(url string) MediaUpdateOption {
	return func(p *MediaUpdate) { p.GeneratedVideoURL = &url }
}
