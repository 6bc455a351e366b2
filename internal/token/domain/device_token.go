package domain

import "time"

// Kind distinguishes the two token flavors a device can hold.
type Kind string

const (
	KindPush Kind = "push"
	KindVoIP Kind = "voip"
)

// DeviceToken is the lookup-by-user index row mirroring the token fields on
// the user record. Server-side senders read this table; the user record is
// the client-facing copy.
type DeviceToken struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_device_tokens_user_kind;not null"`
	Kind      Kind      `json:"kind" gorm:"uniqueIndex:idx_device_tokens_user_kind;not null"`
	Token     string    `json:"-" gorm:"not null"` // Don't expose token in JSON
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
