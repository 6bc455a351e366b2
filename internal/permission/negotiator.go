package permission

import (
	"context"
	"log"
	"sync"
)

// Negotiator drives the permission dialog and gates retries so the platform
// prompt is only re-shown after a recorded denial. Permission state itself is
// never cached here; every request re-derives it from the platform.
type Negotiator struct {
	backend Backend

	mu       sync.Mutex
	denied   bool
	guidance string
}

func NewNegotiator(backend Backend) *Negotiator {
	return &Negotiator{backend: backend}
}

// RequestPermission runs the platform flow once and reports whether
// notifications are allowed. A denial arms the retry gate.
func (n *Negotiator) RequestPermission(ctx context.Context) bool {
	granted, guidance := n.backend.Request(ctx)

	n.mu.Lock()
	n.denied = !granted && guidance == guidanceDenied
	n.guidance = guidance
	n.mu.Unlock()

	if guidance != "" {
		log.Printf("[Permission] %s", guidance)
	}
	return granted
}

// RetryPermissionRequest re-runs the flow only when the previous outcome was
// a denial. The flag is reset before retrying so a second denial re-arms it.
func (n *Negotiator) RetryPermissionRequest(ctx context.Context) bool {
	n.mu.Lock()
	if !n.denied {
		n.mu.Unlock()
		return false
	}
	n.denied = false
	n.mu.Unlock()

	return n.RequestPermission(ctx)
}

// Guidance returns the user-facing text from the last request, "" when the
// last outcome needs no explanation.
func (n *Negotiator) Guidance() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.guidance
}
