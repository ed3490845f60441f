package mock

import (
	"context"
	"fmt"

	"github.com/lucasverdier/reelforge/pkg/models"
)

// MockProvider satisfies models.AIProvider for testing and local development.
type MockProvider struct {
	Name_             string
	AnalyzeRoomsFunc  func(ctx context.Context, imageURLs []string) ([]models.RoomAnalysis, error)
	WriteCaptionsFunc func(ctx context.Context, req models.CaptionRequest) (models.Captions, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) AnalyzeRooms(ctx context.Context, imageURLs []string) ([]models.RoomAnalysis, error) {
	if m.AnalyzeRoomsFunc != nil {
		return m.AnalyzeRoomsFunc(ctx, imageURLs)
	}
	return nil, nil
}

func (m *MockProvider) WriteCaptions(ctx context.Context, req models.CaptionRequest) (models.Captions, error) {
	if m.WriteCaptionsFunc != nil {
		return m.WriteCaptionsFunc(ctx, req)
	}
	return models.Captions{}, nil
}

// NewProvider returns a MockProvider with sensible default responses.
func NewProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		AnalyzeRoomsFunc: func(_ context.Context, imageURLs []string) ([]models.RoomAnalysis, error) {
			results := make([]models.RoomAnalysis, len(imageURLs))
			for i := range imageURLs {
				roomType := models.RoomOther
				if i == 0 {
					roomType = models.RoomFacade
				}
				results[i] = models.RoomAnalysis{
					RoomType:       roomType,
					Description:    fmt.Sprintf("Simulated description for photo %d", i+1),
					SuggestedOrder: i,
				}
			}
			return results, nil
		},
		WriteCaptionsFunc: func(_ context.Context, req models.CaptionRequest) (models.Captions, error) {
			return models.Captions{
				Instagram: fmt.Sprintf("Discover this property in %s. #realestate", req.City),
				TikTok:    fmt.Sprintf("%s - %s #realestate", req.City, req.Price),
			}, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		AnalyzeRoomsFunc: func(_ context.Context, _ []string) ([]models.RoomAnalysis, error) {
			return nil, err
		},
		WriteCaptionsFunc: func(_ context.Context, _ models.CaptionRequest) (models.Captions, error) {
			return models.Captions{}, err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		AnalyzeRoomsFunc: func(ctx context.Context, _ []string) ([]models.RoomAnalysis, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		WriteCaptionsFunc: func(ctx context.Context, _ models.CaptionRequest) (models.Captions, error) {
			<-ctx.Done()
			return models.Captions{}, ctx.Err()
		},
	}
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
