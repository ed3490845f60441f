package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lucasverdier/reelforge/internal/api/response"
	"github.com/lucasverdier/reelforge/internal/pipeline"
	"github.com/lucasverdier/reelforge/internal/store"
	"github.com/lucasverdier/reelforge/pkg/models"
)

// PipelineTrigger starts generation runs and prices clip generation.
type PipelineTrigger interface {
	Trigger(ctx context.Context, reelID uuid.UUID) (*models.Reel, error)
	EstimateCost(items []*models.MediaItem) float64
}

// MediaLister loads the media rows attached to a reel.
type MediaLister interface {
	ListMediaItems(ctx context.Context, reelID uuid.UUID) ([]*models.MediaItem, error)
}

type generateResponse struct {
	ReelID        uuid.UUID `json:"reel_id"`
	Status        string    `json:"status"`
	EstimatedCost *float64  `json:"estimated_cost,omitempty"`
}

// NewGenerateHandler returns an http.HandlerFunc for
// POST /api/v1/reels/{reelID}/generate. The pipeline run continues in the
// background after the 202 response.
func NewGenerateHandler(trigger PipelineTrigger, media MediaLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reelID, err := uuid.Parse(chi.URLParam(r, "reelID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest,
				"INVALID_REQUEST", "reelID must be a valid UUID", nil)
			return
		}

		reel, err := trigger.Trigger(r.Context(), reelID)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				response.Error(w, http.StatusNotFound,
					"RESOURCE_NOT_FOUND", "Reel not found", nil)
			case errors.Is(err, pipeline.ErrAlreadyRunning):
				response.Error(w, http.StatusConflict,
					"PIPELINE_RUNNING", "A pipeline run is already in progress for this reel", nil)
			default:
				response.Error(w, http.StatusInternalServerError,
					"INTERNAL_ERROR", "An unexpected error occurred", nil)
			}
			return
		}

		resp := generateResponse{ReelID: reel.ID, Status: reel.Status}
		if reel.EnableVideoGen {
			// Cost estimate is informational; skip it if media cannot be read.
			if items, err := media.ListMediaItems(r.Context(), reelID); err == nil {
				cost := trigger.EstimateCost(items)
				resp.EstimatedCost = &cost
			}
		}

		response.Accepted(w, resp)
	}
}
