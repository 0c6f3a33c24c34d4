package track

import (
	"github.com/trezcool/maendeleo/core/lu"
	"github.com/trezcool/maendeleo/core/user"
)

// Progress statuses
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

var AllStatuses = []string{StatusToDo, StatusInProgress, StatusCompleted}

type (
	// Progress ties a student to a LearningUnit; the row's existence IS the
	// assignment. Status belongs to the student, feedback/grade to teachers.
	Progress struct {
		UserID   string `json:"userId"`
		LUID     int64  `json:"luId"`
		Status   string `json:"status"`
		Feedback string `json:"feedback,omitempty"`
		Grade    string `json:"grade,omitempty"`
	}

	// Activity records that a student touched their progress on a calendar
	// date. Appended on every status change; never mutated or deleted.
	Activity struct {
		UserID string `json:"userId"`
		Date   string `json:"date"` // YYYY-MM-DD, UTC
	}

	// BoardItem is a published LearningUnit annotated with the student's
	// progress fields.
	BoardItem struct {
		lu.LearningUnit
		Status   string `json:"status"`
		Feedback string `json:"feedback,omitempty"`
		Grade    string `json:"grade,omitempty"`
	}

	ProgressInfo struct {
		Status   string `json:"status"`
		Feedback string `json:"feedback,omitempty"`
		Grade    string `json:"grade,omitempty"`
	}

	// RosterEntry is a student annotated with their progress per unit and
	// their deduplicated activity dates.
	RosterEntry struct {
		user.User
		Progress         map[int64]ProgressInfo `json:"progress"`
		LearningActivity []string               `json:"learningActivity"`
	}
)
