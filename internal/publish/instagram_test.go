package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lucasverdier/reelforge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInstagramClient(baseURL string) *InstagramClient {
	c := NewInstagramClient(config.InstagramConfig{
		BaseURL:   baseURL,
		AppID:     "app-id",
		AppSecret: "app-secret",
	})
	c.pollInterval = 5 * time.Millisecond
	return c
}

func TestPublishReel_FullHandshake(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/ig-user-1/media":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "REELS", body["media_type"])
			assert.Equal(t, "https://videos.example.com/final.mp4", body["video_url"])
			assert.Equal(t, "A dream flat", body["caption"])
			json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})

		case r.Method == http.MethodGet && r.URL.Path == "/container-1":
			if polls.Add(1) < 2 {
				json.NewEncoder(w).Encode(map[string]string{"status_code": "IN_PROGRESS"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"status_code": "FINISHED"})

		case r.Method == http.MethodPost && r.URL.Path == "/ig-user-1/media_publish":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "container-1", body["creation_id"])
			json.NewEncoder(w).Encode(map[string]string{"id": "post-42"})

		case r.Method == http.MethodGet && r.URL.Path == "/post-42":
			json.NewEncoder(w).Encode(map[string]string{"permalink": "https://instagram.com/p/abc"})

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	result, err := testInstagramClient(srv.URL).PublishReel(
		context.Background(), "token", "ig-user-1", "https://videos.example.com/final.mp4", "A dream flat")
	require.NoError(t, err)
	assert.Equal(t, "post-42", result.PostID)
	assert.Equal(t, "https://instagram.com/p/abc", result.Permalink)
}

func TestPublishReel_ContainerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{"id": "container-bad"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status_code": "ERROR", "status": "video too short"})
	}))
	defer srv.Close()

	_, err := testInstagramClient(srv.URL).PublishReel(
		context.Background(), "token", "u", "https://videos.example.com/v.mp4", "cap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "video too short")
}

func TestPublishReel_ContainerTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{"id": "container-slow"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status_code": "IN_PROGRESS"})
	}))
	defer srv.Close()

	_, err := testInstagramClient(srv.URL).PublishReel(
		context.Background(), "token", "u", "https://videos.example.com/v.mp4", "cap")
	assert.ErrorIs(t, err, ErrContainerTimeout)
}

func TestPublishReel_GraphError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "invalid token"}})
	}))
	defer srv.Close()

	_, err := testInstagramClient(srv.URL).PublishReel(
		context.Background(), "token", "u", "https://videos.example.com/v.mp4", "cap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestPublishCarousel_CapsAtTenChildren(t *testing.T) {
	var childCreates atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/u/media" {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["is_carousel_item"] == true {
				n := childCreates.Add(1)
				json.NewEncoder(w).Encode(map[string]string{"id": fmt.Sprintf("child-%d", n)})
				return
			}
			assert.Len(t, body["children"], 10)
			json.NewEncoder(w).Encode(map[string]string{"id": "carousel-1"})
			return
		}
		if r.Method == http.MethodGet && r.URL.Path == "/carousel-1" {
			json.NewEncoder(w).Encode(map[string]string{"status_code": "FINISHED"})
			return
		}
		if r.Method == http.MethodPost && r.URL.Path == "/u/media_publish" {
			json.NewEncoder(w).Encode(map[string]string{"id": "post-carousel"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	urls := make([]string, 12)
	for i := range urls {
		urls[i] = "https://cdn.example.com/photo.jpg"
	}

	result, err := testInstagramClient(srv.URL).PublishCarousel(context.Background(), "token", "u", urls, "cap")
	require.NoError(t, err)
	assert.Equal(t, "post-carousel", result.PostID)
	assert.Equal(t, int32(10), childCreates.Load())
}

func TestInstagramRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/access_token", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "fb_exchange_token", q.Get("grant_type"))
		assert.Equal(t, "app-id", q.Get("client_id"))
		assert.Equal(t, "app-secret", q.Get("client_secret"))
		assert.Equal(t, "old-token", q.Get("fb_exchange_token"))
		json.NewEncoder(w).Encode(map[string]any{"access_token": "new-token", "expires_in": 5184000})
	}))
	defer srv.Close()

	token, expiresIn, err := testInstagramClient(srv.URL).RefreshToken(context.Background(), "old-token")
	require.NoError(t, err)
	assert.Equal(t, "new-token", token)
	assert.Equal(t, 5184000, expiresIn)
}
