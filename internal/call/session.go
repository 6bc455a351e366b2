package call

// Session describes one incoming call handed over by the calling feature.
// It is transient; nothing here is persisted.
type Session struct {
	ID             string `json:"id"`
	CalleeID       string `json:"callee_id"`
	CallerID       string `json:"caller_id"`
	CallerName     string `json:"caller_name"`
	CallerPhotoURL string `json:"caller_photo_url,omitempty"`
	IsVideo        bool   `json:"is_video"`
}

// Action is what the user (or the call layer) did with a ringing call.
type Action string

const (
	ActionAccept      Action = "accept"
	ActionDecline     Action = "decline"
	ActionBodyTap     Action = "body_tap" // tapping the notification itself, treated as accept
	ActionTimeout     Action = "timeout"
	ActionRemoteEnded Action = "remote_ended"
)

// ActionEvent is an accept/decline/end signal arriving from the platform
// call layer, keyed by the session id it was shown with.
type ActionEvent struct {
	CallID string `json:"call_id"`
	Action Action `json:"action"`
}
