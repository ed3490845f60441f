// Package publish pushes finished reels to the social platforms.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lucasverdier/reelforge/internal/config"
)

// Sentinel errors shared by the platform clients.
var (
	ErrContainerTimeout = errors.New("media container not ready in time")
	ErrTokenExpired     = errors.New("token expired, account must be reconnected")
)

// containerMaxPolls bounds the container wait to roughly 2.5 minutes at the
// default poll interval.
const containerMaxPolls = 30

// maxCarouselItems is the Graph API limit on carousel children.
const maxCarouselItems = 10

// PublishResult identifies a published post.
type PublishResult struct {
	PostID    string
	Permalink string
}

// InstagramClient talks to the Graph API. A reel publish is a three-step
// handshake: create a media container, poll it until processed, publish it.
type InstagramClient struct {
	baseURL      string
	appID        string
	appSecret    string
	pollInterval time.Duration
	client       *http.Client
}

func NewInstagramClient(cfg config.InstagramConfig) *InstagramClient {
	return &InstagramClient{
		baseURL:      cfg.BaseURL,
		appID:        cfg.AppID,
		appSecret:    cfg.AppSecret,
		pollInterval: 5 * time.Second,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

type graphResponse struct {
	ID         string `json:"id"`
	StatusCode string `json:"status_code"`
	Status     string `json:"status"`
	Permalink  string `json:"permalink"`

	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`

	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// PublishReel publishes a rendered video as a reel and returns the post id,
// with a best-effort permalink.
func (c *InstagramClient) PublishReel(ctx context.Context, accessToken, igUserID, videoURL, caption string) (PublishResult, error) {
	created, err := c.post(ctx, fmt.Sprintf("/%s/media", igUserID), map[string]any{
		"media_type":   "REELS",
		"video_url":    videoURL,
		"caption":      caption,
		"access_token": accessToken,
	})
	if err != nil {
		return PublishResult{}, fmt.Errorf("creating container: %w", err)
	}

	if err := c.pollContainer(ctx, accessToken, created.ID); err != nil {
		return PublishResult{}, err
	}

	return c.publishContainer(ctx, accessToken, igUserID, created.ID)
}

// PublishCarousel publishes the reel's photos as a carousel post. The Graph
// API caps carousels at ten children; extra images are dropped.
func (c *InstagramClient) PublishCarousel(ctx context.Context, accessToken, igUserID string, imageURLs []string, caption string) (PublishResult, error) {
	if len(imageURLs) > maxCarouselItems {
		imageURLs = imageURLs[:maxCarouselItems]
	}

	childIDs := make([]string, 0, len(imageURLs))
	for _, u := range imageURLs {
		child, err := c.post(ctx, fmt.Sprintf("/%s/media", igUserID), map[string]any{
			"image_url":        u,
			"is_carousel_item": true,
			"access_token":     accessToken,
		})
		if err != nil {
			return PublishResult{}, fmt.Errorf("creating carousel child: %w", err)
		}
		childIDs = append(childIDs, child.ID)
	}

	carousel, err := c.post(ctx, fmt.Sprintf("/%s/media", igUserID), map[string]any{
		"media_type":   "CAROUSEL",
		"children":     childIDs,
		"caption":      caption,
		"access_token": accessToken,
	})
	if err != nil {
		return PublishResult{}, fmt.Errorf("creating carousel container: %w", err)
	}

	if err := c.pollContainer(ctx, accessToken, carousel.ID); err != nil {
		return PublishResult{}, err
	}

	return c.publishContainer(ctx, accessToken, igUserID, carousel.ID)
}

// RefreshToken exchanges a long-lived token for a fresh one.
func (c *InstagramClient) RefreshToken(ctx context.Context, accessToken string) (newToken string, expiresIn int, err error) {
	params := url.Values{
		"grant_type":        {"fb_exchange_token"},
		"client_id":         {c.appID},
		"client_secret":     {c.appSecret},
		"fb_exchange_token": {accessToken},
	}

	resp, err := c.get(ctx, "/oauth/access_token?"+params.Encode())
	if err != nil {
		return "", 0, fmt.Errorf("refreshing token: %w", err)
	}
	return resp.AccessToken, resp.ExpiresIn, nil
}

func (c *InstagramClient) publishContainer(ctx context.Context, accessToken, igUserID, containerID string) (PublishResult, error) {
	published, err := c.post(ctx, fmt.Sprintf("/%s/media_publish", igUserID), map[string]any{
		"creation_id":  containerID,
		"access_token": accessToken,
	})
	if err != nil {
		return PublishResult{}, fmt.Errorf("publishing container: %w", err)
	}

	result := PublishResult{PostID: published.ID}

	// Permalink fetch is best-effort; the post already exists.
	if media, err := c.get(ctx, fmt.Sprintf("/%s?fields=permalink&access_token=%s", published.ID, accessToken)); err == nil {
		result.Permalink = media.Permalink
	}

	return result, nil
}

// pollContainer waits until the media container finishes processing.
func (c *InstagramClient) pollContainer(ctx context.Context, accessToken, containerID string) error {
	path := fmt.Sprintf("/%s?fields=status_code,status&access_token=%s", containerID, accessToken)

	for i := 0; i < containerMaxPolls; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}

		resp, err := c.get(ctx, path)
		if err != nil {
			return fmt.Errorf("polling container: %w", err)
		}
		switch resp.StatusCode {
		case "FINISHED":
			return nil
		case "ERROR":
			status := resp.Status
			if status == "" {
				status = "unknown error"
			}
			return fmt.Errorf("container processing failed: %s", status)
		}
	}

	return ErrContainerTimeout
}

func (c *InstagramClient) post(ctx context.Context, path string, body map[string]any) (*graphResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *InstagramClient) get(ctx context.Context, path string) (*graphResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	return c.do(req)
}

func (c *InstagramClient) do(req *http.Request) (*graphResponse, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph api unreachable: %w", err)
	}
	defer resp.Body.Close()

	var graph graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&graph); err != nil {
		return nil, fmt.Errorf("decoding graph response: %w", err)
	}
	if graph.Error != nil {
		return nil, fmt.Errorf("graph api error: %s", graph.Error.Message)
	}
	return &graph, nil
}
