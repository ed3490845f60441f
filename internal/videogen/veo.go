package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lucasverdier/reelforge/internal/config"
	"github.com/lucasverdier/reelforge/pkg/models"
)

// Sentinel errors for video backend failures.
var (
	ErrVeoUnreachable = errors.New("video backend unreachable")
	ErrNoVideoURI     = errors.New("video generation finished without a video uri")
	ErrPollTimeout    = errors.New("video generation timed out")
)

// maxPolls bounds the completion wait to roughly five minutes at the
// default poll interval.
const maxPolls = 60

// VeoClient implements models.VideoGenerator against the Veo
// predictLongRunning API. Generation is a create-then-poll handshake.
type VeoClient struct {
	model        string
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	client       *http.Client
}

func NewVeoClient(cfg config.VideoGenConfig, gemini config.GeminiConfig) *VeoClient {
	return &VeoClient{
		model:        cfg.Model,
		apiKey:       gemini.APIKey,
		baseURL:      gemini.BaseURL,
		pollInterval: cfg.PollInterval,
		client:       &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *VeoClient) Name() string { return c.model }

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string   `json:"prompt"`
	Image  imageRef `json:"image"`
}

type imageRef struct {
	GcsURI string `json:"gcsUri"`
}

type predictParameters struct {
	AspectRatio      string `json:"aspectRatio"`
	DurationSeconds  int    `json:"durationSeconds"`
	PersonGeneration string `json:"personGeneration"`
}

type videoResponse struct {
	GeneratedSamples []struct {
		Video struct {
			URI string `json:"uri"`
		} `json:"video"`
	} `json:"generatedSamples"`
}

type operationState struct {
	Name                  string         `json:"name"`
	Done                  bool           `json:"done"`
	GenerateVideoResponse *videoResponse `json:"generateVideoResponse"`
	Response              *struct {
		GenerateVideoResponse *videoResponse `json:"generateVideoResponse"`
	} `json:"response"`
}

// GenerateClip turns one property photo into a short vertical clip and
// returns the signed video URL.
func (c *VeoClient) GenerateClip(ctx context.Context, imageURL, prompt string) (string, error) {
	req := predictRequest{
		Instances: []predictInstance{{
			Prompt: prompt,
			Image:  imageRef{GcsURI: imageURL},
		}},
		Parameters: predictParameters{
			AspectRatio:      "9:16",
			DurationSeconds:  8,
			PersonGeneration: "dont_allow",
		},
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:predictLongRunning?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrVeoUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("video generation failed: status %d: %s", resp.StatusCode, body)
	}

	var op operationState
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if op.Name == "" {
		// Some model versions answer synchronously.
		if uri := sampleURI(op.GenerateVideoResponse); uri != "" {
			return c.signURI(uri), nil
		}
		return "", ErrNoVideoURI
	}

	return c.pollOperation(ctx, op.Name)
}

// pollOperation waits for a long-running generation to finish.
func (c *VeoClient) pollOperation(ctx context.Context, name string) (string, error) {
	u := fmt.Sprintf("%s/v1beta/%s?key=%s", c.baseURL, name, c.apiKey)

	for i := 0; i < maxPolls; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return "", fmt.Errorf("building poll request: %w", err)
		}

		resp, err := c.client.Do(httpReq)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrVeoUnreachable, err)
		}

		var op operationState
		err = json.NewDecoder(resp.Body).Decode(&op)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("decoding poll response: %w", err)
		}

		if op.Done {
			var vr *videoResponse
			if op.Response != nil {
				vr = op.Response.GenerateVideoResponse
			}
			if uri := sampleURI(vr); uri != "" {
				return c.signURI(uri), nil
			}
			return "", ErrNoVideoURI
		}
	}

	return "", ErrPollTimeout
}

// signURI appends the API key so the returned URL is directly fetchable.
func (c *VeoClient) signURI(uri string) string {
	return uri + "&key=" + c.apiKey
}

func sampleURI(vr *videoResponse) string {
	if vr == nil || len(vr.GeneratedSamples) == 0 {
		return ""
	}
	return vr.GeneratedSamples[0].Video.URI
}

var _ models.VideoGenerator = (*VeoClient)(nil)
