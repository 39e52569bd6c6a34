package clips

import (
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the fixed-width ISO-8601 form used for stored timestamps.
// Fixed width keeps lexical order equal to chronological order.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Clip is a trimmed segment of a source recording plus its metadata.
// Only Name, Description and UpdatedAt change after creation.
type Clip struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	SourceLocator   string    `json:"source_locator"`
	ArtifactLocator string    `json:"artifact_locator"`
	StartTime       float64   `json:"start_time"`
	EndTime         float64   `json:"end_time"`
	Duration        float64   `json:"duration"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Patch lists the mutable fields of a clip. Nil fields are left alone.
type Patch struct {
	Name        *string
	Description *string
	UpdatedAt   *time.Time
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.UpdatedAt == nil
}

// Apply returns a copy of c with the patch applied.
func (p Patch) Apply(c Clip) Clip {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.UpdatedAt != nil {
		c.UpdatedAt = *p.UpdatedAt
	}
	return c
}

func NewID() string {
	return "clip_" + uuid.NewString()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}
