package videogen

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lucasverdier/reelforge/pkg/models"
)

// ClipRequest selects one photo for clip generation.
type ClipRequest struct {
	MediaItemID uuid.UUID
	ImageURL    string
	RoomType    string
	Description string
}

// ClipResult pairs a generated clip URL with its source media item.
type ClipResult struct {
	MediaItemID uuid.UUID
	VideoURL    string
}

// ProgressFunc is called after each clip attempt, successful or not.
type ProgressFunc func(completed, total int)

// Generator runs clip generation over a batch of photos, enforcing the
// per-reel clip budget.
type Generator struct {
	backend  models.VideoGenerator
	maxClips int
}

func NewGenerator(backend models.VideoGenerator, maxClips int) *Generator {
	return &Generator{backend: backend, maxClips: maxClips}
}

// GenerateClips produces one clip per selected photo, sequentially. A failed
// clip is logged and skipped so a single bad generation never sinks the
// batch.
func (g *Generator) GenerateClips(ctx context.Context, items []ClipRequest, onProgress ProgressFunc) []ClipResult {
	if len(items) > g.maxClips {
		items = items[:g.maxClips]
	}

	results := make([]ClipResult, 0, len(items))
	for i, item := range items {
		prompt := BuildPrompt(item.RoomType, item.Description)

		slog.Info("generating clip",
			"media_item_id", item.MediaItemID,
			"room_type", item.RoomType,
			"clip", i+1,
			"total", len(items))

		videoURL, err := g.backend.GenerateClip(ctx, item.ImageURL, prompt)
		if err != nil {
			slog.Error("clip generation failed",
				"media_item_id", item.MediaItemID,
				"room_type", item.RoomType,
				"error", err)
		} else {
			results = append(results, ClipResult{MediaItemID: item.MediaItemID, VideoURL: videoURL})
		}

		if onProgress != nil {
			onProgress(i+1, len(items))
		}
	}

	return results
}

// EstimateCost returns the projected cost for generating clips from
// photoCount photos under this generator's budget.
func (g *Generator) EstimateCost(photoCount int) float64 {
	return EstimateCost(photoCount, g.maxClips)
}
