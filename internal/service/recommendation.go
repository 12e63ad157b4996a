package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voyago/backend/internal/models"
)

// RecordsChannel is the Redis pub/sub channel carrying new-record ids so
// every running instance can refresh its connected timeline clients.
const RecordsChannel = "recommendations:new"

// FieldError describes a single invalid preference field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the full set of per-field validation failures
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// ValidatePreferences checks the four-field schema. Validation failure
// blocks submission entirely; no generation call is made.
func ValidatePreferences(prefs TravelPreferences) error {
	var errs ValidationErrors

	checks := []struct {
		field  string
		value  string
		minLen int
	}{
		{"username", prefs.Username, 2},
		{"age", prefs.Age, 1},
		{"style", prefs.Style, 3},
		{"activity", prefs.Activity, 3},
	}
	for _, c := range checks {
		if len(strings.TrimSpace(c.value)) < c.minLen {
			errs = append(errs, FieldError{
				Field:   c.field,
				Message: fmt.Sprintf("must be at least %d characters", c.minLen),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SnapshotBroadcaster pushes a full ordered record list to live subscribers
type SnapshotBroadcaster interface {
	BroadcastTimeline(records []models.Recommendation)
}

// RecommendationService handles the submit-and-list flow: validate input,
// generate a destination, persist the merged record and fan the change out
// to timeline subscribers.
type RecommendationService struct {
	db        *gorm.DB
	generator GeminiGenerator
	redis     *redis.Client
	hub       SnapshotBroadcaster
	logger    *zap.Logger
}

// NewRecommendationService creates a new RecommendationService instance.
// redisClient may be nil; fan-out then degrades to local-only broadcast.
func NewRecommendationService(db *gorm.DB, generator GeminiGenerator, redisClient *redis.Client, hub SnapshotBroadcaster, logger *zap.Logger) *RecommendationService {
	return &RecommendationService{
		db:        db,
		generator: generator,
		redis:     redisClient,
		hub:       hub,
		logger:    logger,
	}
}

// Submit runs one full recommendation round trip. A record is created only
// when generation and the store write both succeed; a store-write failure
// is returned to the caller rather than dropped.
func (s *RecommendationService) Submit(ctx context.Context, prefs TravelPreferences) (*models.Recommendation, error) {
	if err := ValidatePreferences(prefs); err != nil {
		return nil, err
	}

	idea, err := s.generator.Generate(ctx, prefs)
	if err != nil {
		return nil, err
	}

	record := &models.Recommendation{
		Username:       prefs.Username,
		Age:            prefs.Age,
		Style:          prefs.Style,
		Activity:       prefs.Activity,
		City:           orUnknown(idea.City),
		Country:        orUnknown(idea.Country),
		Recommendation: orUnknown(idea.Recommendation),
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to save recommendation: %w", err)
	}

	s.notify(ctx, record)
	return record, nil
}

// List returns all recommendations, newest first
func (s *RecommendationService) List(ctx context.Context) ([]models.Recommendation, error) {
	var records []models.Recommendation
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// notify publishes the new record id so every instance (this one included)
// refreshes its subscribers. When Redis is unavailable the local hub is
// pushed directly so connected clients still see the change.
func (s *RecommendationService) notify(ctx context.Context, record *models.Recommendation) {
	if s.redis != nil {
		err := s.redis.Publish(ctx, RecordsChannel, record.ID.String()).Err()
		if err == nil {
			return
		}
		s.logger.Warn("failed to publish record event, falling back to local broadcast",
			zap.String("record_id", record.ID.String()),
			zap.Error(err),
		)
	}

	if s.hub == nil {
		return
	}
	records, err := s.List(ctx)
	if err != nil {
		s.logger.Error("failed to load timeline for broadcast", zap.Error(err))
		return
	}
	s.hub.BroadcastTimeline(records)
}

// orUnknown is the documented fallback layer for generator output: the
// generator already rejects empty fields, so this only fires if that
// contract is ever loosened.
func orUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}
