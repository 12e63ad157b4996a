package timeline

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/voyago/backend/internal/models"
)

// EmptyPlaceholder is rendered instead of a list when no records exist
const EmptyPlaceholder = "No recommendations yet."

// Entry is one timeline row prepared for display
type Entry struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Age            string `json:"age"`
	Style          string `json:"style"`
	Activity       string `json:"activity"`
	City           string `json:"city"`
	Country        string `json:"country"`
	Recommendation string `json:"recommendation"`
	CreatedAt      string `json:"created_at"`
}

// Snapshot is the full ordered timeline delivered on every change
type Snapshot struct {
	Records     []Entry `json:"records"`
	Placeholder string  `json:"placeholder,omitempty"`
}

// NewSnapshot converts stored records into display entries. City and
// country are capitalized; a record whose timestamp has not resolved yet
// renders the current time instead.
func NewSnapshot(records []models.Recommendation) Snapshot {
	entries := make([]Entry, len(records))
	for i, r := range records {
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		entries[i] = Entry{
			ID:             r.ID.String(),
			Username:       r.Username,
			Age:            r.Age,
			Style:          r.Style,
			Activity:       r.Activity,
			City:           Capitalize(r.City),
			Country:        Capitalize(r.Country),
			Recommendation: r.Recommendation,
			CreatedAt:      createdAt.Local().Format("2006-01-02 15:04:05"),
		}
	}

	snapshot := Snapshot{Records: entries}
	if len(entries) == 0 {
		snapshot.Placeholder = EmptyPlaceholder
	}
	return snapshot
}

// Capitalize uppercases the first rune and leaves the remainder unchanged.
// Total on empty input: "" comes back unchanged.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
