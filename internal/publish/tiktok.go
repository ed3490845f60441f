package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lucasverdier/reelforge/internal/config"
)

// ErrPublishTimeout is returned when a TikTok publish never reaches a
// terminal status.
var ErrPublishTimeout = errors.New("tiktok publish not complete in time")

const (
	publishMaxPolls = 30
	maxTitleLength  = 150
)

// TikTokClient talks to the Content Posting API. Direct posting needs an
// audited app; SendToInbox is the unaudited fallback that parks the video in
// the user's TikTok inbox for manual publishing.
type TikTokClient struct {
	baseURL      string
	clientKey    string
	clientSecret string
	pollInterval time.Duration
	client       *http.Client
}

func NewTikTokClient(cfg config.TikTokConfig) *TikTokClient {
	return &TikTokClient{
		baseURL:      cfg.BaseURL,
		clientKey:    cfg.ClientKey,
		clientSecret: cfg.ClientSecret,
		pollInterval: 5 * time.Second,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

type tiktokResponse struct {
	Data struct {
		PublishID  string `json:"publish_id"`
		Status     string `json:"status"`
		FailReason string `json:"fail_reason"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// PublishDirect posts the video from its URL and waits for it to go live.
// Posts start private so the account owner can review before exposing them.
func (c *TikTokClient) PublishDirect(ctx context.Context, accessToken, videoURL, caption string) (PublishResult, error) {
	title := caption
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}

	resp, err := c.post(ctx, accessToken, "/post/publish/video/init/", map[string]any{
		"post_info": map[string]any{
			"title":                    title,
			"privacy_level":            "SELF_ONLY",
			"disable_duet":             false,
			"disable_comment":          false,
			"disable_stitch":           false,
			"video_cover_timestamp_ms": 1000,
		},
		"source_info": map[string]any{
			"source":    "PULL_FROM_URL",
			"video_url": videoURL,
		},
	})
	if err != nil {
		return PublishResult{}, fmt.Errorf("initializing publish: %w", err)
	}
	if resp.Data.PublishID == "" {
		return PublishResult{}, errors.New("no publish_id returned")
	}

	if err := c.pollStatus(ctx, accessToken, resp.Data.PublishID); err != nil {
		return PublishResult{}, err
	}

	return PublishResult{PostID: resp.Data.PublishID}, nil
}

// SendToInbox pushes the video to the user's TikTok inbox without publishing.
func (c *TikTokClient) SendToInbox(ctx context.Context, accessToken, videoURL, _ string) (PublishResult, error) {
	resp, err := c.post(ctx, accessToken, "/post/publish/inbox/video/init/", map[string]any{
		"source_info": map[string]any{
			"source":    "PULL_FROM_URL",
			"video_url": videoURL,
		},
	})
	if err != nil {
		return PublishResult{}, fmt.Errorf("sending to inbox: %w", err)
	}

	postID := resp.Data.PublishID
	if postID == "" {
		postID = "inbox"
	}
	return PublishResult{PostID: postID}, nil
}

// RefreshToken exchanges a refresh token for a new token pair.
func (c *TikTokClient) RefreshToken(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, expiresIn int, err error) {
	form := url.Values{
		"client_key":    {c.clientKey},
		"client_secret": {c.clientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token/", strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", 0, fmt.Errorf("tiktok unreachable: %w", err)
	}
	defer resp.Body.Close()

	var token struct {
		AccessToken      string `json:"access_token"`
		RefreshToken     string `json:"refresh_token"`
		ExpiresIn        int    `json:"expires_in"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", "", 0, fmt.Errorf("decoding token response: %w", err)
	}
	if token.Error != "" {
		msg := token.ErrorDescription
		if msg == "" {
			msg = token.Error
		}
		return "", "", 0, fmt.Errorf("refreshing token: %s", msg)
	}

	return token.AccessToken, token.RefreshToken, token.ExpiresIn, nil
}

// pollStatus waits for the publish to reach a terminal status.
func (c *TikTokClient) pollStatus(ctx context.Context, accessToken, publishID string) error {
	for i := 0; i < publishMaxPolls; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}

		resp, err := c.post(ctx, accessToken, "/post/publish/status/fetch/", map[string]any{
			"publish_id": publishID,
		})
		if err != nil {
			return fmt.Errorf("fetching publish status: %w", err)
		}

		switch resp.Data.Status {
		case "PUBLISH_COMPLETE":
			return nil
		case "FAILED":
			reason := resp.Data.FailReason
			if reason == "" {
				reason = "unknown"
			}
			return fmt.Errorf("publish failed: %s", reason)
		}
	}

	return ErrPublishTimeout
}

func (c *TikTokClient) post(ctx context.Context, accessToken, path string, body map[string]any) (*tiktokResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tiktok unreachable: %w", err)
	}
	defer resp.Body.Close()

	var ttResp tiktokResponse
	if err := json.NewDecoder(resp.Body).Decode(&ttResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if ttResp.Error.Code != "" && ttResp.Error.Code != "ok" {
		msg := ttResp.Error.Message
		if msg == "" {
			msg = ttResp.Error.Code
		}
		return nil, fmt.Errorf("tiktok api error: %s", msg)
	}
	return &ttResp, nil
}
