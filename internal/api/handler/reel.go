package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lucasverdier/reelforge/internal/api/response"
	"github.com/lucasverdier/reelforge/internal/store"
	"github.com/lucasverdier/reelforge/pkg/models"
)

// ReelReader loads a reel with its media rows joined.
type ReelReader interface {
	GetReelWithMedia(ctx context.Context, id uuid.UUID) (*models.Reel, error)
}

// StatusReader reads the cached pipeline progress mirror.
type StatusReader interface {
	GetPipelineStatus(ctx context.Context, reelID uuid.UUID) (stage string, progress int, ok bool, err error)
}

// NewGetReelHandler returns an http.HandlerFunc for GET /api/v1/reels/{reelID}.
// The UI polls this endpoint for stage and progress during a run.
func NewGetReelHandler(reels ReelReader, status StatusReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reelID, err := uuid.Parse(chi.URLParam(r, "reelID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest,
				"INVALID_REQUEST", "reelID must be a valid UUID", nil)
			return
		}

		reel, err := reels.GetReelWithMedia(r.Context(), reelID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound,
					"RESOURCE_NOT_FOUND", "Reel not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		// The cache mirror is fresher than the row while a run is in flight.
		if stage, progress, ok, err := status.GetPipelineStatus(r.Context(), reelID); err == nil && ok {
			reel.PipelineStage = &stage
			reel.PipelineProgress = progress
		}

		response.JSON(w, reel)
	}
}
