package domain

import "time"

// RecordType classifies what prompted a notification record.
type RecordType string

const (
	TypeEventReminder      RecordType = "eventReminder"
	TypeAssignmentReminder RecordType = "assignmentReminder"
	TypeImmediate          RecordType = "immediate"
	TypeScheduled          RecordType = "scheduled"
)

// Status tracks a record's delivery lifecycle.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

// Record is the append-only audit trail of every notification-worthy event.
// ScheduledFor may be in the past (immediate events) or the future (intended
// reminders). Records are never deleted automatically.
type Record struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	UserID       string     `json:"user_id" gorm:"index;not null"`
	Type         RecordType `json:"type" gorm:"not null"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	RelatedID    string     `json:"related_id"` // optional FK to the triggering entity
	ScheduledFor time.Time  `json:"scheduled_for"`
	CreatedAt    time.Time  `json:"created_at"`
	Status       Status     `json:"status" gorm:"index;default:scheduled"`
}
