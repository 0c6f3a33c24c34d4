package lu

import (
	"time"
)

// LearningUnit statuses
const (
	StatusPublished = "Published"
	StatusDraft     = "Draft"
)

type (
	// LearningUnit is an assignable unit of work.
	LearningUnit struct {
		ID        int64     `json:"id"` // time-derived (UnixMilli)
		Title     string    `json:"title"`
		Module    string    `json:"module,omitempty"`
		DueDate   string    `json:"dueDate,omitempty"` // YYYY-MM-DD
		Status    string    `json:"status,omitempty"`  // Published | Draft
		Tags      []string  `json:"tags"`
		SubjectID string    `json:"subjectId,omitempty"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	Subject struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}
)

// IsPublished reports whether the unit is visible to students.
// An empty status is treated as published for backward compatibility.
func (u LearningUnit) IsPublished() bool {
	return u.Status == "" || u.Status == StatusPublished
}
