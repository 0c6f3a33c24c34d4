package core

// Event types published after mutating operations.
const (
	EventNewLU          = "new_lu"
	EventLUUpdated      = "lu_updated"
	EventLUDeleted      = "lu_deleted"
	EventGradeUpdated   = "grade_updated"
	EventStatusUpdated  = "status_updated"
	EventRegistration   = "registration"
	EventProfileUpdated = "profile_updated"
)

// Event is a lightweight change notification: it identifies what changed and
// nothing more. Recipients must re-fetch authoritative state through the
// normal read endpoints.
type Event struct {
	Type      string `json:"type"`
	UserID    string `json:"userId,omitempty"`
	LUID      int64  `json:"luId,omitempty"`
	SubjectID string `json:"subjectId,omitempty"`
	Title     string `json:"title,omitempty"`
}

// Broadcaster delivers events to currently connected clients on a best-effort
// basis: no delivery guarantee, no replay, no ordering across rapid mutations.
// Business logic must never depend on a client having received an event.
type Broadcaster interface {
	Broadcast(evt Event)
}

// NopBroadcaster discards all events.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(Event) {}
