package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recommendation is one completed travel recommendation: the preferences a
// user submitted merged with the destination the generator produced.
// Records are append-only; nothing in the codebase updates or deletes them.
type Recommendation struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_recommendations_created_at,sort:desc" json:"created_at"`

	Username string `gorm:"size:255;not null" json:"username"`
	Age      string `gorm:"size:50;not null" json:"age"`
	Style    string `gorm:"size:255;not null" json:"style"`
	Activity string `gorm:"size:255;not null" json:"activity"`

	City           string `gorm:"size:255;not null" json:"city"`
	Country        string `gorm:"size:255;not null" json:"country"`
	Recommendation string `gorm:"type:text;not null" json:"recommendation"`
}

// BeforeCreate assigns the record identifier and creation timestamp on the
// server so every record carries a store-side ordering key.
func (r *Recommendation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}
