package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lucasverdier/reelforge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTikTokClient(baseURL string) *TikTokClient {
	c := NewTikTokClient(config.TikTokConfig{
		BaseURL:      baseURL,
		ClientKey:    "client-key",
		ClientSecret: "client-secret",
	})
	c.pollInterval = 5 * time.Millisecond
	return c
}

func TestPublishDirect_Success(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/post/publish/video/init/":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			postInfo := body["post_info"].(map[string]any)
			assert.Equal(t, "SELF_ONLY", postInfo["privacy_level"])
			sourceInfo := body["source_info"].(map[string]any)
			assert.Equal(t, "PULL_FROM_URL", sourceInfo["source"])
			assert.Equal(t, "https://videos.example.com/final.mp4", sourceInfo["video_url"])

			json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"publish_id": "pub-1"}})

		case "/post/publish/status/fetch/":
			status := "PROCESSING_DOWNLOAD"
			if polls.Add(1) >= 2 {
				status = "PUBLISH_COMPLETE"
			}
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"status": status}})

		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	result, err := testTikTokClient(srv.URL).PublishDirect(
		context.Background(), "token", "https://videos.example.com/final.mp4", "A dream flat")
	require.NoError(t, err)
	assert.Equal(t, "pub-1", result.PostID)
}

func TestPublishDirect_TruncatesTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/post/publish/video/init/" {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			title := body["post_info"].(map[string]any)["title"].(string)
			assert.Len(t, title, 150)
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"publish_id": "pub-2"}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"status": "PUBLISH_COMPLETE"}})
	}))
	defer srv.Close()

	_, err := testTikTokClient(srv.URL).PublishDirect(
		context.Background(), "token", "https://videos.example.com/v.mp4", strings.Repeat("x", 300))
	require.NoError(t, err)
}

func TestPublishDirect_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "access_token_invalid", "message": "bad token"},
		})
	}))
	defer srv.Close()

	_, err := testTikTokClient(srv.URL).PublishDirect(
		context.Background(), "token", "https://videos.example.com/v.mp4", "cap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad token")
}

func TestPublishDirect_FailedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/post/publish/video/init/" {
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"publish_id": "pub-3"}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"status": "FAILED", "fail_reason": "video_pull_failed"},
		})
	}))
	defer srv.Close()

	_, err := testTikTokClient(srv.URL).PublishDirect(
		context.Background(), "token", "https://videos.example.com/v.mp4", "cap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "video_pull_failed")
}

func TestSendToInbox(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/post/publish/inbox/video/init/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"publish_id": "inbox-1"}})
	}))
	defer srv.Close()

	result, err := testTikTokClient(srv.URL).SendToInbox(
		context.Background(), "token", "https://videos.example.com/v.mp4", "cap")
	require.NoError(t, err)
	assert.Equal(t, "inbox-1", result.PostID)
}

func TestTikTokRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/token/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client-key", r.PostForm.Get("client_key"))
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"expires_in":    86400,
		})
	}))
	defer srv.Close()

	access, refresh, expiresIn, err := testTikTokClient(srv.URL).RefreshToken(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", access)
	assert.Equal(t, "new-refresh", refresh)
	assert.Equal(t, 86400, expiresIn)
}

func TestTikTokRefreshToken_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error":             "invalid_grant",
			"error_description": "refresh token expired",
		})
	}))
	defer srv.Close()

	_, _, _, err := testTikTokClient(srv.URL).RefreshToken(context.Background(), "stale")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh token expired")
}
