package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/lucasverdier/reelforge/internal/config"
	"github.com/lucasverdier/reelforge/pkg/models"
)

// Sentinel errors for Gemini client failures.
var (
	ErrGeminiUnavailable = errors.New("gemini unreachable")
	ErrEmptyResponse     = errors.New("gemini returned no text")
	ErrAPIError          = errors.New("gemini api error")
)

const maxAttempts = 3

// Provider implements models.AIProvider against the Gemini generateContent API.
type Provider struct {
	cfg        config.GeminiConfig
	client     *http.Client
	retryDelay time.Duration
}

func NewProvider(cfg config.GeminiConfig) *Provider {
	return &Provider{
		cfg:        cfg,
		client:     &http.Client{Timeout: cfg.Timeout},
		retryDelay: 5 * time.Second,
	}
}

func (p *Provider) Name() string { return "gemini" }

// AnalyzeRooms classifies property photos by referencing their URLs in the
// prompt. Results come back positionally; the caller length-checks them
// against the input.
func (p *Provider) AnalyzeRooms(ctx context.Context, imageURLs []string) ([]models.RoomAnalysis, error) {
	if len(imageURLs) == 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(`You are a real estate expert. Analyze these %d photos of a property listing.

For EACH photo (in order), determine:
1. room_type: one of: facade, living_room, kitchen, bedroom, bathroom, office, terrace, garden, pool, garage, entry, hallway, dining_room, closet, other
2. description: a short description (20 words max)
3. suggested_order: the optimal order for a video tour (0 = first, facade first when present)

Return ONLY valid JSON: an array of objects with room_type, description, suggested_order.
Example: [{"room_type":"facade","description":"Modern facade with clean lines","suggested_order":0}]`, len(imageURLs))

	parts := []part{{Text: prompt}}
	for _, u := range imageURLs {
		parts = append(parts, part{Text: "Image: " + u})
	}

	text, err := p.generate(ctx, generateRequest{
		Contents: []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:      0.3,
			MaxOutputTokens:  2048,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return nil, err
	}

	var results []models.RoomAnalysis
	if err := json.Unmarshal([]byte(extractJSON(text)), &results); err != nil {
		return nil, fmt.Errorf("parsing room analysis: %w", err)
	}
	return results, nil
}

func (p *Provider) WriteCaptions(ctx context.Context, req models.CaptionRequest) (models.Captions, error) {
	roomContext := ""
	if len(req.Descriptions) > 0 {
		roomContext = "\nRooms: " + strings.Join(req.Descriptions, ", ")
	}

	prompt := fmt.Sprintf(`You are an expert real estate copywriter for Instagram Reels and TikTok.

Property: %s, %s district, %s euros.%s

Write CONCISE, punchy marketing copy. Return ONLY valid JSON:
{
  "caption_instagram": "engaging caption, 150 words max, with 5 real estate hashtags",
  "caption_tiktok": "caption, 100 chars max, with 3 hashtags"
}`, req.City, req.District, req.Price, roomContext)

	text, err := p.generate(ctx, generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      0.7,
			MaxOutputTokens:  2048,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return models.Captions{}, err
	}

	var captions models.Captions
	if err := json.Unmarshal([]byte(extractJSON(text)), &captions); err != nil {
		return models.Captions{}, fmt.Errorf("parsing captions: %w", err)
	}
	return captions, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// generate calls generateContent, retrying transient failures with a fixed
// delay between attempts.
func (p *Provider) generate(ctx context.Context, req generateRequest) (string, error) {
	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.cfg.BaseURL, p.cfg.Model, p.cfg.APIKey)

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := p.doGenerate(ctx, u, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(p.retryDelay):
			}
		}
	}
	return "", lastErr
}

func (p *Provider) doGenerate(ctx context.Context, url string, payload []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeminiUnavailable, err)
	}
	defer resp.Body.Close()

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if genResp.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrAPIError, genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// extractJSON strips a markdown code fence when the model wraps its output
// in one despite the JSON mime type.
func extractJSON(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

var _ models.AIProvider = (*Provider)(nil)
