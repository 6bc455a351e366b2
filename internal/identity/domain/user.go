package domain

import "time"

// User is the identity record. The token columns are merge-updated by the
// token repository; everything else belongs to the (out of scope) account
// management surface and must not be clobbered by token writes.
type User struct {
	ID        string `json:"id" gorm:"primaryKey"`
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	Name      string `json:"name"`
	Role      string `json:"role"` // student | teacher | parent
	PhotoURL  string `json:"photo_url"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Live push routing state for the user's most recent device.
	FCMToken           *string    `json:"-" gorm:"column:fcm_token"`
	FCMTokenUpdatedAt  *time.Time `json:"-" gorm:"column:fcm_token_updated_at"`
	VoIPToken          *string    `json:"-" gorm:"column:voip_token"`
	VoIPTokenUpdatedAt *time.Time `json:"-" gorm:"column:voip_token_updated_at"`
	Platform           string     `json:"platform"`
}
