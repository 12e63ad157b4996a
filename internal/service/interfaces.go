package service

import (
	"context"

	"github.com/voyago/backend/internal/models"
)

// GeminiGenerator produces a structured travel idea for a set of preferences
type GeminiGenerator interface {
	Generate(ctx context.Context, prefs TravelPreferences) (*TravelIdea, error)
}

// IRecommendationService defines the interface for the submit-and-list flow
type IRecommendationService interface {
	Submit(ctx context.Context, prefs TravelPreferences) (*models.Recommendation, error)
	List(ctx context.Context) ([]models.Recommendation, error)
}
