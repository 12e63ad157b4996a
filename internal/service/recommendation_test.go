package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/voyago/backend/internal/models"
)

type stubGenerator struct {
	idea  *TravelIdea
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, prefs TravelPreferences) (*TravelIdea, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.idea, nil
}

type stubBroadcaster struct {
	snapshots [][]models.Recommendation
}

func (s *stubBroadcaster) BroadcastTimeline(records []models.Recommendation) {
	s.snapshots = append(s.snapshots, records)
}

func setupRecommendationDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Recommendation{}))
	return db
}

func TestValidatePreferences(t *testing.T) {
	valid := TravelPreferences{Username: "Ana", Age: "29", Style: "Relaxed", Activity: "Hiking"}

	t.Run("valid input passes", func(t *testing.T) {
		assert.NoError(t, ValidatePreferences(valid))
	})

	tests := []struct {
		name  string
		mut   func(*TravelPreferences)
		field string
	}{
		{"short username", func(p *TravelPreferences) { p.Username = "A" }, "username"},
		{"empty age", func(p *TravelPreferences) { p.Age = "" }, "age"},
		{"short style", func(p *TravelPreferences) { p.Style = "ok" }, "style"},
		{"short activity", func(p *TravelPreferences) { p.Activity = "x" }, "activity"},
		{"whitespace does not count", func(p *TravelPreferences) { p.Username = "  " }, "username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := valid
			tt.mut(&prefs)

			err := ValidatePreferences(prefs)
			require.Error(t, err)

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}

	t.Run("all fields reported together", func(t *testing.T) {
		err := ValidatePreferences(TravelPreferences{})
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 4)
	})
}

func TestSubmitRejectsInvalidInputWithoutGenerating(t *testing.T) {
	db := setupRecommendationDB(t)
	gen := &stubGenerator{}
	svc := NewRecommendationService(db, gen, nil, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), TravelPreferences{Username: "A"})

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, 0, gen.calls, "validation failure must not reach the generator")

	var count int64
	require.NoError(t, db.Model(&models.Recommendation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitPersistsAndBroadcasts(t *testing.T) {
	db := setupRecommendationDB(t)
	gen := &stubGenerator{idea: &TravelIdea{
		City:           "Lisbon",
		Country:        "Portugal",
		Recommendation: "Coastal walks and mild weather.",
	}}
	hub := &stubBroadcaster{}
	svc := NewRecommendationService(db, gen, nil, hub, zap.NewNop())

	record, err := svc.Submit(context.Background(), TravelPreferences{
		Username: "Ana", Age: "29", Style: "Relaxed", Activity: "Hiking",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.False(t, record.CreatedAt.IsZero())
	assert.Equal(t, "Ana", record.Username)
	assert.Equal(t, "29", record.Age)
	assert.Equal(t, "Relaxed", record.Style)
	assert.Equal(t, "Hiking", record.Activity)
	assert.Equal(t, "Lisbon", record.City)
	assert.Equal(t, "Portugal", record.Country)
	assert.Equal(t, "Coastal walks and mild weather.", record.Recommendation)

	var count int64
	require.NoError(t, db.Model(&models.Recommendation{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.Len(t, hub.snapshots, 1)
	require.Len(t, hub.snapshots[0], 1)
	assert.Equal(t, record.ID, hub.snapshots[0][0].ID)
}

func TestSubmitDefaultsEmptyResultFieldsToUnknown(t *testing.T) {
	db := setupRecommendationDB(t)
	gen := &stubGenerator{idea: &TravelIdea{City: "Lisbon"}}
	svc := NewRecommendationService(db, gen, nil, nil, zap.NewNop())

	record, err := svc.Submit(context.Background(), TravelPreferences{
		Username: "Ana", Age: "29", Style: "Relaxed", Activity: "Hiking",
	})
	require.NoError(t, err)

	assert.Equal(t, "Lisbon", record.City)
	assert.Equal(t, "Unknown", record.Country)
	assert.Equal(t, "Unknown", record.Recommendation)
}

func TestSubmitGeneratorFailurePersistsNothing(t *testing.T) {
	db := setupRecommendationDB(t)
	gen := &stubGenerator{err: ErrUpstream}
	svc := NewRecommendationService(db, gen, nil, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), TravelPreferences{
		Username: "Ana", Age: "29", Style: "Relaxed", Activity: "Hiking",
	})
	assert.ErrorIs(t, err, ErrUpstream)

	var count int64
	require.NoError(t, db.Model(&models.Recommendation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListOrdersNewestFirst(t *testing.T) {
	db := setupRecommendationDB(t)
	svc := NewRecommendationService(db, &stubGenerator{}, nil, nil, zap.NewNop())

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	// Inserted oldest-last on purpose; ordering must come from the query,
	// not insertion order.
	for _, rec := range []models.Recommendation{
		{Username: "Ana", Age: "29", Style: "Relaxed", Activity: "Hiking", City: "Lisbon", Country: "Portugal", Recommendation: "r1", CreatedAt: base.Add(time.Hour)},
		{Username: "Bo", Age: "41", Style: "Luxury", Activity: "Dining", City: "Kyoto", Country: "Japan", Recommendation: "r2", CreatedAt: base.Add(2 * time.Hour)},
		{Username: "Cy", Age: "35", Style: "Budget", Activity: "Surfing", City: "Taghazout", Country: "Morocco", Recommendation: "r3", CreatedAt: base},
	} {
		require.NoError(t, db.Create(&rec).Error)
	}

	records, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Kyoto", records[0].City)
	assert.Equal(t, "Lisbon", records[1].City)
	assert.Equal(t, "Taghazout", records[2].City)
}

func TestOrUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", orUnknown(""))
	assert.Equal(t, "Lisbon", orUnknown("Lisbon"))
}

func TestSubmitUnknownGeneratorError(t *testing.T) {
	db := setupRecommendationDB(t)
	sentinel := errors.New("boom")
	svc := NewRecommendationService(db, &stubGenerator{err: sentinel}, nil, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), TravelPreferences{
		Username: "Ana", Age: "29", Style: "Relaxed", Activity: "Hiking",
	})
	assert.ErrorIs(t, err, sentinel)
}
