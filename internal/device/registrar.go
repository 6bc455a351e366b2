package device

import (
	"context"
	"log"

	"classnest-backend/internal/token/domain"
	"classnest-backend/pkg/platform"
)

// PermissionNegotiator gates registration on the platform permission flow.
type PermissionNegotiator interface {
	RequestPermission(ctx context.Context) bool
}

// TokenProvider acquires platform tokens; "" means the platform refused.
type TokenProvider interface {
	AcquirePushToken(ctx context.Context) string
	AcquireVoIPToken(ctx context.Context) string
}

// TokenStore persists acquired tokens for the signed-in user.
type TokenStore interface {
	SaveToken(ctx context.Context, userID, token string, kind domain.Kind, platform string) error
	DeleteToken(ctx context.Context, userID string, kind domain.Kind) error
	Reset()
}

// Registrar runs the sign-in/sign-out token lifecycle: permission gates
// acquisition, acquisition feeds persistence. Every step degrades rather than
// fails; a device that ends up without a token simply gets no push.
type Registrar struct {
	platform   platform.Platform
	negotiator PermissionNegotiator
	provider   TokenProvider
	store      TokenStore
}

func NewRegistrar(p platform.Platform, negotiator PermissionNegotiator, provider TokenProvider, store TokenStore) *Registrar {
	return &Registrar{
		platform:   p,
		negotiator: negotiator,
		provider:   provider,
		store:      store,
	}
}

// OnSignIn acquires and persists the device's tokens for the user. Returns
// whether a push token ended up registered.
func (r *Registrar) OnSignIn(ctx context.Context, userID string) bool {
	if !r.negotiator.RequestPermission(ctx) {
		log.Printf("[Registrar] Notification permission not granted, skipping token registration")
		return false
	}

	registered := false
	if token := r.provider.AcquirePushToken(ctx); token != "" {
		if err := r.store.SaveToken(ctx, userID, token, domain.KindPush, string(r.platform)); err == nil {
			registered = true
		}
	}

	if token := r.provider.AcquireVoIPToken(ctx); token != "" {
		if err := r.store.SaveToken(ctx, userID, token, domain.KindVoIP, string(r.platform)); err != nil {
			log.Printf("[Registrar] Failed to save voip token: %v", err)
		}
	}

	return registered
}

// OnTokenRefresh persists a platform-issued replacement token. The store's
// idempotence check absorbs refreshes that repeat the current value.
func (r *Registrar) OnTokenRefresh(ctx context.Context, userID, token string) {
	if token == "" {
		return
	}
	if err := r.store.SaveToken(ctx, userID, token, domain.KindPush, string(r.platform)); err != nil {
		log.Printf("[Registrar] Failed to save refreshed token: %v", err)
	}
}

// OnSignOut clears both token kinds and resets the store's cache so the next
// sign-in starts clean.
func (r *Registrar) OnSignOut(ctx context.Context, userID string) {
	if err := r.store.DeleteToken(ctx, userID, domain.KindPush); err != nil {
		log.Printf("[Registrar] Failed to delete push token: %v", err)
	}
	if r.platform.SupportsVoIP() {
		if err := r.store.DeleteToken(ctx, userID, domain.KindVoIP); err != nil {
			log.Printf("[Registrar] Failed to delete voip token: %v", err)
		}
	}
	r.store.Reset()
}
