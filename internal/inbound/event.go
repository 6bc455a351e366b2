package inbound

// Event is one notification-originated message, regardless of which platform
// entry point produced it (foreground delivery, tapped notification, or a
// cold start from a notification). Only Type and Data["chatRoomId"] are
// interpreted; every other payload key is opaque pass-through.
type Event struct {
	MessageID string            `json:"messageId"`
	Type      string            `json:"type"`
	Data      map[string]string `json:"data"`

	// Title and Body are set only when the platform surfaced a visible
	// notification alongside the data payload.
	Title string `json:"notificationTitle,omitempty"`
	Body  string `json:"notificationBody,omitempty"`
}

// RecipientID returns the addressed user, "" when the payload does not carry
// one.
func (e Event) RecipientID() string {
	return e.Data["userId"]
}

// ChatRoomID returns the chat room for chat-type events, "" otherwise.
func (e Event) ChatRoomID() string {
	return e.Data["chatRoomId"]
}
