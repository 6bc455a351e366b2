package permission

import (
	"context"
	"log"
)

const (
	guidanceDenied  = "Notifications are blocked. Enable them in your browser or system settings to receive class updates."
	guidancePending = "Notification permission has not been decided yet. Allow notifications to receive class updates."
)

// webBackend implements the browser flow: check the current state first, only
// prompt when the browser has not decided yet, and report guidance for every
// terminal state.
type webBackend struct {
	prompter Prompter
}

func NewWebBackend(p Prompter) Backend {
	return &webBackend{prompter: p}
}

func (b *webBackend) Request(ctx context.Context) (bool, string) {
	state, err := b.prompter.Current(ctx)
	if err != nil {
		log.Printf("[Permission] Failed to query browser permission: %v", err)
		return false, ""
	}

	switch state {
	case StateGranted:
		return true, ""
	case StateDenied:
		return false, guidanceDenied
	}

	// Not yet asked: show the browser prompt and branch on its outcome.
	state, err = b.prompter.Request(ctx)
	if err != nil {
		log.Printf("[Permission] Browser permission request failed: %v", err)
		return false, ""
	}
	switch state {
	case StateGranted:
		return true, ""
	case StateDenied:
		return false, guidanceDenied
	default:
		// The browser can leave the decision pending (dialog dismissed).
		return false, guidancePending
	}
}
