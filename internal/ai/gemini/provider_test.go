package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lucasverdier/reelforge/internal/config"
	"github.com/lucasverdier/reelforge/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider(baseURL string) *Provider {
	p := NewProvider(config.GeminiConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "gemini-2.5-flash",
		Timeout: 5 * time.Second,
	})
	p.retryDelay = 10 * time.Millisecond
	return p
}

func textResponse(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestAnalyzeRooms_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
		// one prompt part plus one part per image
		assert.Len(t, req.Contents[0].Parts, 3)

		w.Write([]byte(textResponse(`[
			{"room_type":"facade","description":"Stone facade","suggested_order":0},
			{"room_type":"kitchen","description":"Open kitchen","suggested_order":1}
		]`)))
	}))
	defer srv.Close()

	p := testProvider(srv.URL)
	results, err := p.AnalyzeRooms(context.Background(), []string{
		"https://cdn.example.com/1.jpg",
		"https://cdn.example.com/2.jpg",
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, models.RoomFacade, results[0].RoomType)
	assert.Equal(t, models.RoomKitchen, results[1].RoomType)
	assert.Equal(t, 1, results[1].SuggestedOrder)
}

func TestAnalyzeRooms_EmptyInput(t *testing.T) {
	p := testProvider("http://unused.invalid")
	results, err := p.AnalyzeRooms(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestAnalyzeRooms_MarkdownFence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fenced := "```json\n[{\"room_type\":\"bedroom\",\"description\":\"Calm bedroom\",\"suggested_order\":0}]\n```"
		w.Write([]byte(textResponse(fenced)))
	}))
	defer srv.Close()

	p := testProvider(srv.URL)
	results, err := p.AnalyzeRooms(context.Background(), []string{"https://cdn.example.com/1.jpg"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.RoomBedroom, results[0].RoomType)
}

func TestGenerate_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
			return
		}
		w.Write([]byte(textResponse(`{"caption_instagram":"Great flat","caption_tiktok":"Great flat #re"}`)))
	}))
	defer srv.Close()

	p := testProvider(srv.URL)
	captions, err := p.WriteCaptions(context.Background(), models.CaptionRequest{
		City: "Porto", District: "Ribeira", Price: "320000",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, "Great flat", captions.Instagram)
}

func TestGenerate_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	p := testProvider(srv.URL)
	_, err := p.WriteCaptions(context.Background(), models.CaptionRequest{City: "Porto"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPIError)
	assert.Equal(t, int32(maxAttempts), calls.Load())
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	p := testProvider(srv.URL)
	_, err := p.WriteCaptions(context.Background(), models.CaptionRequest{City: "Porto"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerate_ContextCancelledBetweenRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"transient"}}`))
	}))
	defer srv.Close()

	p := testProvider(srv.URL)
	p.retryDelay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.WriteCaptions(ctx, models.CaptionRequest{City: "Porto"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced bare", "```\n[1,2]\n```", "[1,2]"},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.in))
		})
	}
}
