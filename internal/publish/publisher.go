package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lucasverdier/reelforge/internal/store"
	"github.com/lucasverdier/reelforge/pkg/models"
)

// Validation errors surfaced to the HTTP layer as client errors.
var (
	ErrNoPlatforms     = errors.New("at least one platform is required")
	ErrInvalidPlatform = errors.New("unsupported platform")
	ErrReelNotReady    = errors.New("reel must be completed with a video before publishing")
	ErrNotConnected    = errors.New("account not connected")
)

// Publish outcome statuses.
const (
	StatusPublished = "published"
	StatusPartial   = "partial"
)

// InstagramPublisher is the Graph API surface the publisher needs.
type InstagramPublisher interface {
	PublishReel(ctx context.Context, accessToken, igUserID, videoURL, caption string) (PublishResult, error)
	PublishCarousel(ctx context.Context, accessToken, igUserID string, imageURLs []string, caption string) (PublishResult, error)
	RefreshToken(ctx context.Context, accessToken string) (newToken string, expiresIn int, err error)
}

// TikTokPublisher is the Content Posting API surface the publisher needs.
type TikTokPublisher interface {
	PublishDirect(ctx context.Context, accessToken, videoURL, caption string) (PublishResult, error)
	SendToInbox(ctx context.Context, accessToken, videoURL, caption string) (PublishResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, expiresIn int, err error)
}

// PlatformResult is one platform's publish outcome.
type PlatformResult struct {
	Success bool   `json:"success"`
	PostID  string `json:"post_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Result aggregates the per-platform outcomes. Status is "published" only
// when every requested platform succeeded.
type Result struct {
	Status  string                    `json:"status"`
	Results map[string]PlatformResult `json:"results"`
}

// Publisher fans a completed reel out to the requested platforms. Platform
// failures are isolated: one platform failing never blocks the others.
type Publisher struct {
	store     store.Store
	instagram InstagramPublisher
	tiktok    TikTokPublisher
}

func NewPublisher(st store.Store, instagram InstagramPublisher, tiktok TikTokPublisher) *Publisher {
	return &Publisher{store: st, instagram: instagram, tiktok: tiktok}
}

// Publish posts the reel to each requested platform and records the post ids.
func (p *Publisher) Publish(ctx context.Context, reelID uuid.UUID, platforms []string) (*Result, error) {
	if len(platforms) == 0 {
		return nil, ErrNoPlatforms
	}
	for _, platform := range platforms {
		if platform != models.PlatformInstagram && platform != models.PlatformTikTok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPlatform, platform)
		}
	}

	reel, err := p.store.GetReelWithMedia(ctx, reelID)
	if err != nil {
		return nil, err
	}
	if reel.Status != models.ReelStatusCompleted || reel.Video916URL == nil || *reel.Video916URL == "" {
		return nil, ErrReelNotReady
	}

	result := &Result{Status: StatusPublished, Results: make(map[string]PlatformResult)}

	for _, platform := range platforms {
		var postID string
		var pubErr error

		switch platform {
		case models.PlatformInstagram:
			postID, pubErr = p.publishInstagram(ctx, reel)
		case models.PlatformTikTok:
			postID, pubErr = p.publishTikTok(ctx, reel)
		}

		if pubErr != nil {
			slog.Error("publish failed", "reel_id", reel.ID, "platform", platform, "error", pubErr)
			result.Results[platform] = PlatformResult{Success: false, Error: pubErr.Error()}
			result.Status = StatusPartial
			continue
		}
		result.Results[platform] = PlatformResult{Success: true, PostID: postID}
	}

	return result, nil
}

func (p *Publisher) publishInstagram(ctx context.Context, reel *models.Reel) (string, error) {
	account, err := p.store.GetSocialAccount(ctx, models.PlatformInstagram)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("instagram: %w", ErrNotConnected)
		}
		return "", err
	}
	if account.AccountID == nil || *account.AccountID == "" {
		return "", errors.New("instagram account has no user id")
	}

	token, err := p.ensureValidToken(ctx, account)
	if err != nil {
		return "", err
	}

	caption := fallbackCaption(reel)
	if reel.CaptionInstagram != nil && *reel.CaptionInstagram != "" {
		caption = *reel.CaptionInstagram
	}

	var published PublishResult
	if reel.ContentType == models.ContentTypeCarousel && len(reel.MediaItems) > 0 {
		var imageURLs []string
		for _, item := range reel.MediaItems {
			if item.MediaType == models.MediaTypePhoto {
				imageURLs = append(imageURLs, item.URL)
			}
		}
		published, err = p.instagram.PublishCarousel(ctx, token, *account.AccountID, imageURLs, caption)
	} else {
		published, err = p.instagram.PublishReel(ctx, token, *account.AccountID, *reel.Video916URL, caption)
	}
	if err != nil {
		return "", err
	}

	if err := p.store.UpdateReel(ctx, reel.ID, store.WithInstagramPostID(published.PostID)); err != nil {
		return "", fmt.Errorf("recording post id: %w", err)
	}
	return published.PostID, nil
}

func (p *Publisher) publishTikTok(ctx context.Context, reel *models.Reel) (string, error) {
	account, err := p.store.GetSocialAccount(ctx, models.PlatformTikTok)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("tiktok: %w", ErrNotConnected)
		}
		return "", err
	}

	token, err := p.ensureValidToken(ctx, account)
	if err != nil {
		return "", err
	}

	caption := fallbackCaption(reel)
	if reel.CaptionTikTok != nil && *reel.CaptionTikTok != "" {
		caption = *reel.CaptionTikTok
	}

	published, err := p.tiktok.PublishDirect(ctx, token, *reel.Video916URL, caption)
	if err != nil {
		// Direct posting needs an audited app; the inbox flow does not.
		slog.Warn("direct publish failed, trying inbox", "reel_id", reel.ID, "error", err)
		published, err = p.tiktok.SendToInbox(ctx, token, *reel.Video916URL, caption)
		if err != nil {
			return "", err
		}
	}

	if err := p.store.UpdateReel(ctx, reel.ID, store.WithTikTokPostID(published.PostID)); err != nil {
		return "", fmt.Errorf("recording post id: %w", err)
	}
	return published.PostID, nil
}

// ensureValidToken returns a usable access token, refreshing and persisting
// it when the stored one has expired.
func (p *Publisher) ensureValidToken(ctx context.Context, account *models.SocialAccount) (string, error) {
	now := time.Now()
	if !account.TokenExpired(now) {
		return account.AccessToken, nil
	}

	switch account.Platform {
	case models.PlatformInstagram:
		newToken, expiresIn, err := p.instagram.RefreshToken(ctx, account.AccessToken)
		if err != nil {
			return "", err
		}
		expiresAt := now.Add(time.Duration(expiresIn) * time.Second)
		if err := p.store.UpdateSocialAccountTokens(ctx, account.ID, newToken, account.RefreshToken, expiresAt); err != nil {
			return "", fmt.Errorf("persisting refreshed token: %w", err)
		}
		return newToken, nil

	case models.PlatformTikTok:
		if account.RefreshToken == nil || *account.RefreshToken == "" {
			return "", fmt.Errorf("tiktok: %w", ErrTokenExpired)
		}
		newToken, newRefresh, expiresIn, err := p.tiktok.RefreshToken(ctx, *account.RefreshToken)
		if err != nil {
			return "", err
		}
		expiresAt := now.Add(time.Duration(expiresIn) * time.Second)
		if err := p.store.UpdateSocialAccountTokens(ctx, account.ID, newToken, &newRefresh, expiresAt); err != nil {
			return "", fmt.Errorf("persisting refreshed token: %w", err)
		}
		return newToken, nil
	}

	return "", fmt.Errorf("%s: %w", account.Platform, ErrTokenExpired)
}

// fallbackCaption is used when the pipeline produced no caption.
func fallbackCaption(reel *models.Reel) string {
	return fmt.Sprintf("%s - %s", reel.City, reel.Price)
}

var (
	_ InstagramPublisher = (*InstagramClient)(nil)
	_ TikTokPublisher    = (*TikTokClient)(nil)
)
