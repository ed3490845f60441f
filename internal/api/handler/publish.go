package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lucasverdier/reelforge/internal/api/response"
	"github.com/lucasverdier/reelforge/internal/publish"
	"github.com/lucasverdier/reelforge/internal/store"
)

// ReelPublisher pushes a completed reel to the requested platforms.
type ReelPublisher interface {
	Publish(ctx context.Context, reelID uuid.UUID, platforms []string) (*publish.Result, error)
}

// NewPublishHandler returns an http.HandlerFunc for
// POST /api/v1/reels/{reelID}/publish. Publishing is synchronous; the
// response carries one result per requested platform.
func NewPublishHandler(pub ReelPublisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reelID, err := uuid.Parse(chi.URLParam(r, "reelID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest,
				"INVALID_REQUEST", "reelID must be a valid UUID", nil)
			return
		}

		var req struct {
			Platforms []string `json:"platforms"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest,
				"INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		result, err := pub.Publish(r.Context(), reelID, req.Platforms)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				response.Error(w, http.StatusNotFound,
					"RESOURCE_NOT_FOUND", "Reel not found", nil)
			case errors.Is(err, publish.ErrNoPlatforms),
				errors.Is(err, publish.ErrInvalidPlatform):
				response.Error(w, http.StatusBadRequest,
					"VALIDATION_ERROR", err.Error(), nil)
			case errors.Is(err, publish.ErrReelNotReady):
				response.Error(w, http.StatusBadRequest,
					"REEL_NOT_READY", err.Error(), nil)
			default:
				response.Error(w, http.StatusInternalServerError,
					"INTERNAL_ERROR", "An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, result)
	}
}
