package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType classifies an activity log entry.
type ActivityType string

const (
	ActivityCall        ActivityType = "Call"
	ActivityEmail       ActivityType = "Email"
	ActivityNote        ActivityType = "Note"
	ActivityMeeting     ActivityType = "Meeting"
	ActivityStageChange ActivityType = "StageChange"
)

// IsManual reports whether callers may log this type directly. StageChange
// entries are written only by the gateway.
func (t ActivityType) IsManual() bool {
	switch t {
	case ActivityCall, ActivityEmail, ActivityNote, ActivityMeeting:
		return true
	default:
		return false
	}
}

// CountsAsContact reports whether the activity updates the lead's LastContact.
func (t ActivityType) CountsAsContact() bool {
	return t == ActivityCall || t == ActivityEmail || t == ActivityMeeting
}

// ActivityEntry is an immutable, append-only record keyed by lead id.
type ActivityEntry struct {
	ID        uuid.UUID    `json:"id"`
	LeadID    uuid.UUID    `json:"leadId"`
	Timestamp time.Time    `json:"timestamp"`
	Type      ActivityType `json:"type"`
	Details   string       `json:"details"`
	UserID    *uuid.UUID   `json:"userId,omitempty"`
}
