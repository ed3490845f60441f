package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/lucasverdier/reelforge/internal/config"
	"github.com/lucasverdier/reelforge/pkg/scene"
)

// Sentinel errors for render server failures.
var (
	ErrRenderUnreachable = errors.New("render server unreachable")
	ErrNoRenderURL       = errors.New("render server returned no url")
)

// Renderer is the contract for submitting render jobs.
type Renderer interface {
	RenderDynamic(ctx context.Context, scenes []scene.Scene, musicURL string) (string, error)
	RenderLegacy(ctx context.Context, props LegacyProps) (string, error)
}

// LegacyProps is the fixed-slot payload for the legacy composition: one
// facade shot, one interior shot, an optional staged shot, and the property
// facts burned into the overlays.
type LegacyProps struct {
	FacadeURL   string `json:"facadeUrl"`
	InteriorURL string `json:"interiorUrl"`
	StagedURL   string `json:"stagedUrl"`
	City        string `json:"city"`
	District    string `json:"district"`
	Price       string `json:"price"`
	Contact     string `json:"contact"`
	Phone       string `json:"phone"`
}

// Gateway submits scene lists to the rendering server over HTTP. Renders are
// slow; the client timeout bounds a whole render, not a handshake.
type Gateway struct {
	baseURL string
	client  *http.Client
}

func NewGateway(cfg config.RenderConfig) *Gateway {
	return &Gateway{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type dynamicRequest struct {
	Scenes   []scene.Scene `json:"scenes"`
	MusicURL string        `json:"musicUrl"`
	Format   string        `json:"format"`
}

type legacyRequest struct {
	LegacyProps
	Format        string `json:"format"`
	EnableStaging bool   `json:"enableStaging"`
}

type renderResponse struct {
	URL     string `json:"url"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RenderDynamic submits a full scene list to the dynamic composition and
// returns the URL of the finished video.
func (g *Gateway) RenderDynamic(ctx context.Context, scenes []scene.Scene, musicURL string) (string, error) {
	return g.render(ctx, "/render-dynamic", dynamicRequest{
		Scenes:   scenes,
		MusicURL: musicURL,
		Format:   "916",
	})
}

// RenderLegacy submits the fixed-slot composition used when too few scenes
// exist for a dynamic render.
func (g *Gateway) RenderLegacy(ctx context.Context, props LegacyProps) (string, error) {
	return g.render(ctx, "/render", legacyRequest{
		LegacyProps:   props,
		Format:        "916",
		EnableStaging: props.StagedURL != "",
	})
}

func (g *Gateway) render(ctx context.Context, path string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding render request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building render request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("render failed: status %d: %s", resp.StatusCode, text)
	}

	var renderResp renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&renderResp); err != nil {
		return "", fmt.Errorf("decoding render response: %w", err)
	}
	if renderResp.Error != "" {
		return "", fmt.Errorf("render failed: %s: %s", renderResp.Error, renderResp.Message)
	}
	if renderResp.URL == "" {
		return "", ErrNoRenderURL
	}
	return renderResp.URL, nil
}

var _ Renderer = (*Gateway)(nil)
