// Package pipeline drives a reel through its generation stages: vision
// analysis, clip generation, rendering, and caption writing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lucasverdier/reelforge/internal/cache"
	"github.com/lucasverdier/reelforge/internal/render"
	"github.com/lucasverdier/reelforge/internal/store"
	"github.com/lucasverdier/reelforge/internal/videogen"
	"github.com/lucasverdier/reelforge/pkg/models"
	"github.com/lucasverdier/reelforge/pkg/scene"
)

// ErrAlreadyRunning is returned when a reel's run lock is already held.
var ErrAlreadyRunning = errors.New("pipeline already running for this reel")

const (
	statusTTL = 30 * time.Minute
	lockTTL   = 30 * time.Minute
)

// Orchestrator owns the per-reel generation state machine. One background
// goroutine per triggered reel; the redis run lock keeps concurrent triggers
// of the same reel out.
type Orchestrator struct {
	store     store.Store
	cache     cache.Cache
	provider  models.AIProvider
	generator *videogen.Generator
	renderer  render.Renderer
}

func NewOrchestrator(st store.Store, ca cache.Cache, provider models.AIProvider, generator *videogen.Generator, renderer render.Renderer) *Orchestrator {
	return &Orchestrator{
		store:     st,
		cache:     ca,
		provider:  provider,
		generator: generator,
		renderer:  renderer,
	}
}

// Trigger marks the reel processing and dispatches the pipeline in a
// background goroutine. Returns the reel immediately without waiting for the
// run to complete.
func (o *Orchestrator) Trigger(ctx context.Context, reelID uuid.UUID) (*models.Reel, error) {
	reel, err := o.store.GetReel(ctx, reelID)
	if err != nil {
		return nil, err
	}

	ok, err := o.cache.AcquireRunLock(ctx, reel.ID, lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquiring run lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}

	if err := o.store.UpdateReel(ctx, reel.ID, store.WithStatus(models.ReelStatusProcessing)); err != nil {
		_ = o.cache.ReleaseRunLock(ctx, reel.ID)
		return nil, fmt.Errorf("marking reel processing: %w", err)
	}
	reel.Status = models.ReelStatusProcessing

	go o.run(reel)

	return reel, nil
}

// EstimateCost returns the projected clip generation cost for a reel's media.
// Only non-facade photos are candidates for clips.
func (o *Orchestrator) EstimateCost(items []*models.MediaItem) float64 {
	count := 0
	for _, item := range items {
		if item.MediaType == models.MediaTypePhoto && !item.IsFacadePhoto() {
			count++
		}
	}
	return o.generator.EstimateCost(count)
}

// run executes the pipeline in a goroutine. It recovers from panics and
// always leaves the reel in a terminal state and the run lock released.
func (o *Orchestrator) run(reel *models.Reel) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in pipeline run", "error", r, "reel_id", reel.ID)
			o.fail(ctx, reel.ID, fmt.Sprintf("panic: %v", r))
		}
		_ = o.cache.ReleaseRunLock(ctx, reel.ID)
	}()

	if err := o.process(ctx, reel); err != nil {
		slog.Error("pipeline failed", "reel_id", reel.ID, "error", err)
		o.fail(ctx, reel.ID, err.Error())
	}
}

func (o *Orchestrator) process(ctx context.Context, reel *models.Reel) error {
	// Stage 1: vision analysis
	o.setStage(ctx, reel.ID, models.StageAnalyzing, 10)

	items, err := o.store.ListMediaItems(ctx, reel.ID)
	if err != nil {
		return fmt.Errorf("listing media: %w", err)
	}
	slog.Info("pipeline started", "reel_id", reel.ID, "media_items", len(items))

	if len(items) > 0 {
		o.analyzeMedia(ctx, reel.ID, items)
	}
	o.setStage(ctx, reel.ID, models.StageAnalyzing, 25)

	// Stage 2: clip generation
	if reel.EnableVideoGen && len(items) > 0 {
		o.setStage(ctx, reel.ID, models.StageGeneratingVideos, 30)
		o.generateClips(ctx, reel.ID)
		o.setStage(ctx, reel.ID, models.StageGeneratingVideos, 50)
	}

	// Stage 3: render
	o.setStage(ctx, reel.ID, models.StageRendering, 55)

	finalMedia, err := o.store.ListMediaItems(ctx, reel.ID)
	if err != nil {
		return fmt.Errorf("listing media: %w", err)
	}

	facts := scene.Facts{
		City:     reel.City,
		District: reel.District,
		Price:    reel.Price,
		Contact:  reel.Contact,
		Phone:    reel.Phone,
	}
	scenes := scene.Build(finalMedia, facts, reel.DurationSeconds)
	slog.Info("scene list built", "reel_id", reel.ID, "scenes", len(scenes))

	videoURL, err := o.renderReel(ctx, reel, finalMedia, facts, scenes)
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	o.setStage(ctx, reel.ID, models.StageRendering, 80)

	// Stage 4: captions
	o.setStage(ctx, reel.ID, models.StageWritingCaptions, 85)
	captionIG, captionTT := o.writeCaptions(ctx, reel, finalMedia)
	o.setStage(ctx, reel.ID, models.StageWritingCaptions, 95)

	// Stage 5: finalize
	if err := o.store.UpdateReel(ctx, reel.ID,
		store.WithStatus(models.ReelStatusCompleted),
		store.WithVideoURLs(videoURL, videoURL),
		store.WithCaptions(captionIG, captionTT),
		store.WithStage(models.StageCompleted, 100)); err != nil {
		return fmt.Errorf("finalizing reel: %w", err)
	}
	_ = o.cache.SetPipelineStatus(ctx, reel.ID, models.StageCompleted, 100, statusTTL)

	slog.Info("pipeline complete", "reel_id", reel.ID, "video_url", videoURL)
	return nil
}

// analyzeMedia classifies the reel's photos. Analysis failures are logged
// and the pipeline continues; the scene builder copes with unclassified
// media.
func (o *Orchestrator) analyzeMedia(ctx context.Context, reelID uuid.UUID, items []*models.MediaItem) {
	var photos []*models.MediaItem
	var urls []string
	for _, item := range items {
		if item.MediaType == models.MediaTypePhoto {
			photos = append(photos, item)
			urls = append(urls, item.URL)
		}
	}
	if len(photos) == 0 {
		return
	}

	results, err := o.provider.AnalyzeRooms(ctx, urls)
	if err != nil {
		slog.Error("room analysis failed, continuing", "reel_id", reelID, "error", err)
		return
	}

	// Positional match; the provider may return fewer entries than photos.
	for i := 0; i < len(results) && i < len(photos); i++ {
		r := results[i]
		if !models.ValidRoomTypes[r.RoomType] {
			r.RoomType = models.RoomOther
		}
		if err := o.store.UpdateMediaItem(ctx, photos[i].ID,
			store.WithRoomAnalysis(r.RoomType, r.Description, r.SuggestedOrder)); err != nil {
			slog.Error("storing room analysis failed", "media_item_id", photos[i].ID, "error", err)
		}
	}
	slog.Info("room analysis complete", "reel_id", reelID, "photos", len(photos), "classified", len(results))
}

// generateClips turns interior photos into short clips, re-reading media so
// vision-stage classifications are visible. The facade never gets a clip;
// it feeds the hook scene as-is.
func (o *Orchestrator) generateClips(ctx context.Context, reelID uuid.UUID) {
	items, err := o.store.ListMediaItems(ctx, reelID)
	if err != nil {
		slog.Error("refetching media failed, skipping clip generation", "reel_id", reelID, "error", err)
		return
	}

	var reqs []videogen.ClipRequest
	for _, item := range items {
		if item.MediaType != models.MediaTypePhoto || item.IsFacadePhoto() {
			continue
		}
		description := ""
		if item.AIDescription != nil {
			description = *item.AIDescription
		}
		reqs = append(reqs, videogen.ClipRequest{
			MediaItemID: item.ID,
			ImageURL:    item.URL,
			RoomType:    item.Room(),
			Description: description,
		})
	}
	if len(reqs) == 0 {
		return
	}

	clips := o.generator.GenerateClips(ctx, reqs, func(done, total int) {
		progress := 30 + int(math.Round(float64(done)/float64(total)*20))
		o.setStage(ctx, reelID, models.StageGeneratingVideos, progress)
	})

	for _, clip := range clips {
		if err := o.store.UpdateMediaItem(ctx, clip.MediaItemID,
			store.WithGeneratedVideoURL(clip.VideoURL)); err != nil {
			slog.Error("storing clip url failed", "media_item_id", clip.MediaItemID, "error", err)
		}
	}
	slog.Info("clips generated", "reel_id", reelID, "count", len(clips))
}

// renderReel prefers the dynamic composition when the scene list is rich
// enough, falling back to the fixed-slot legacy composition on failure.
func (o *Orchestrator) renderReel(ctx context.Context, reel *models.Reel, items []*models.MediaItem, facts scene.Facts, scenes []scene.Scene) (string, error) {
	musicURL := ""
	if reel.MusicURL != nil {
		musicURL = *reel.MusicURL
	}

	if len(scenes) >= 3 {
		url, err := o.renderer.RenderDynamic(ctx, scenes, musicURL)
		if err == nil {
			return url, nil
		}
		slog.Warn("dynamic render failed, falling back to legacy", "reel_id", reel.ID, "error", err)
	}

	return o.renderer.RenderLegacy(ctx, render.BuildLegacyProps(items, facts, reel.EnableStaging))
}

// writeCaptions asks the copywriter for platform captions. Failures are
// non-fatal; the publisher falls back to a minimal caption.
func (o *Orchestrator) writeCaptions(ctx context.Context, reel *models.Reel, items []*models.MediaItem) (*string, *string) {
	var descriptions []string
	for _, item := range items {
		if item.AIDescription != nil && *item.AIDescription != "" {
			descriptions = append(descriptions, *item.AIDescription)
		}
	}

	captions, err := o.provider.WriteCaptions(ctx, models.CaptionRequest{
		City:         reel.City,
		District:     reel.District,
		Price:        reel.Price,
		Descriptions: descriptions,
	})
	if err != nil {
		slog.Error("caption generation failed, continuing", "reel_id", reel.ID, "error", err)
		return nil, nil
	}

	var ig, tt *string
	if captions.Instagram != "" {
		ig = &captions.Instagram
	}
	if captions.TikTok != "" {
		tt = &captions.TikTok
	}
	return ig, tt
}

// setStage persists the stage transition and mirrors it to the cache.
// Both writes are best-effort; a missed heartbeat never fails a run.
func (o *Orchestrator) setStage(ctx context.Context, id uuid.UUID, stage string, progress int) {
	_ = o.store.UpdateReel(ctx, id, store.WithStage(stage, progress))
	_ = o.cache.SetPipelineStatus(ctx, id, stage, progress, statusTTL)
}

func (o *Orchestrator) fail(ctx context.Context, id uuid.UUID, msg string) {
	_ = o.store.UpdateReel(ctx, id,
		store.WithStatus(models.ReelStatusError),
		store.WithErrorStage(),
		store.WithErrorMessage(msg))
	_ = o.cache.SetPipelineStatus(ctx, id, models.StageError, 0, statusTTL)
}
