package permission

import (
	"context"
	"log"
)

// mobileBackend delegates straight to the platform permission API; the OS
// handles the "already asked" bookkeeping itself.
type mobileBackend struct {
	prompter Prompter
}

func NewMobileBackend(p Prompter) Backend {
	return &mobileBackend{prompter: p}
}

func (b *mobileBackend) Request(ctx context.Context) (bool, string) {
	state, err := b.prompter.Request(ctx)
	if err != nil {
		log.Printf("[Permission] Platform permission request failed: %v", err)
		return false, ""
	}
	if state == StateDenied {
		return false, guidanceDenied
	}
	return state == StateGranted, ""
}

// grantedBackend is used on platforms without a permission surface; delivery
// is always allowed.
type grantedBackend struct{}

func NewGrantedBackend() Backend {
	return &grantedBackend{}
}

func (grantedBackend) Request(ctx context.Context) (bool, string) {
	return true, ""
}
