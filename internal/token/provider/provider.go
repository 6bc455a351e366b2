package provider

import (
	"context"
	"log"

	"classnest-backend/pkg/platform"
)

// TokenSource is the platform bridge that actually talks to the push service
// registration API. The web implementation understands the VAPID key; native
// implementations ignore it.
type TokenSource interface {
	// PushToken registers for standard push delivery. webKey is the VAPID
	// public key and may be empty.
	PushToken(ctx context.Context, webKey string) (string, error)
	// VoIPToken registers for VoIP push delivery where the platform supports
	// it.
	VoIPToken(ctx context.Context) (string, error)
}

// Provider acquires push and VoIP tokens from the platform, absorbing every
// failure into an empty-string result. Callers treat "" as "no token".
type Provider struct {
	platform platform.Platform
	source   TokenSource
	webKey   string
}

func New(p platform.Platform, source TokenSource, webKey string) *Provider {
	return &Provider{platform: p, source: source, webKey: webKey}
}

// AcquirePushToken returns the current standard push token, or "" if the
// platform refused. On web a missing VAPID key is a degraded development
// setup, not an error; with a key present, one keyless fallback attempt is
// made before giving up.
func (p *Provider) AcquirePushToken(ctx context.Context) string {
	if p.platform != platform.Web {
		token, err := p.source.PushToken(ctx, "")
		if err != nil {
			log.Printf("[TokenProvider] Push token acquisition failed on %s: %v", p.platform, err)
			return ""
		}
		return token
	}

	if p.webKey == "" {
		log.Printf("[TokenProvider] No web push key configured, acquiring token without VAPID key")
		token, err := p.source.PushToken(ctx, "")
		if err != nil {
			log.Printf("[TokenProvider] Keyless push token acquisition failed: %v", err)
			return ""
		}
		return token
	}

	token, err := p.source.PushToken(ctx, p.webKey)
	if err == nil {
		return token
	}
	log.Printf("[TokenProvider] Push token acquisition with VAPID key failed, retrying without key: %v", err)

	token, err = p.source.PushToken(ctx, "")
	if err != nil {
		log.Printf("[TokenProvider] Keyless push token acquisition failed: %v", err)
		return ""
	}
	return token
}

// AcquireVoIPToken returns the VoIP token on iOS, and "" everywhere else
// without touching the platform.
func (p *Provider) AcquireVoIPToken(ctx context.Context) string {
	if !p.platform.SupportsVoIP() {
		return ""
	}
	token, err := p.source.VoIPToken(ctx)
	if err != nil {
		log.Printf("[TokenProvider] VoIP token acquisition failed: %v", err)
		return ""
	}
	return token
}
