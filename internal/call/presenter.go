package call

import (
	"context"
	"hash/fnv"
	"log"
	"sync"

	"classnest-backend/pkg/platform"
)

// NativeCallUI is the OS full-screen incoming-call surface (CallKit-style).
type NativeCallUI interface {
	Report(ctx context.Context, s Session) error
	Dismiss(ctx context.Context, callID string) error
}

// Notifier shows the plain local-notification fallback with accept/decline
// actions. The key is a stable hash of the call id so the notification can be
// cancelled later.
type Notifier interface {
	ShowCallAlert(ctx context.Context, key uint32, s Session, fullScreen bool) error
	Cancel(ctx context.Context, key uint32) error
}

type presentation int

const (
	presentedNative presentation = iota
	presentedLocal
	presentedLogOnly
)

type activeCall struct {
	mode presentation
	key  uint32
}

// Presenter shows incoming calls via the best mechanism the platform and
// regional policy allow, and manages their teardown.
type Presenter struct {
	platform       platform.Platform
	regionAllowsUI bool
	native         NativeCallUI
	notifier       Notifier

	mu          sync.Mutex
	active      map[string]activeCall
	acceptSubs  []func(callID string)
	declineSubs []func(callID string)
}

func NewPresenter(p platform.Platform, regionAllowsNativeUI bool, native NativeCallUI, notifier Notifier) *Presenter {
	return &Presenter{
		platform:       p,
		regionAllowsUI: regionAllowsNativeUI,
		native:         native,
		notifier:       notifier,
		active:         make(map[string]activeCall),
	}
}

// OnAccepted registers a subscriber for accepted calls.
func (p *Presenter) OnAccepted(fn func(callID string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acceptSubs = append(p.acceptSubs, fn)
}

// OnDeclined registers a subscriber for declined calls.
func (p *Presenter) OnDeclined(fn func(callID string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.declineSubs = append(p.declineSubs, fn)
}

// notificationKey derives the stable local-notification id for a call.
func notificationKey(callID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(callID))
	return h.Sum32()
}

// ShowIncomingCall evaluates the selection policy once and renders the call.
// Failures are logged, never propagated; a call the user cannot see is a
// degraded state, not a crash.
func (p *Presenter) ShowIncomingCall(ctx context.Context, s Session) {
	useNative := p.platform.SupportsNativeCallUI() && p.regionAllowsUI && p.native != nil

	switch {
	case useNative:
		if err := p.native.Report(ctx, s); err != nil {
			log.Printf("[Call] Native call UI failed for call %s, falling back to notification: %v", s.ID, err)
			p.showLocal(ctx, s)
			return
		}
		p.track(s.ID, activeCall{mode: presentedNative})

	case p.platform == platform.Web:
		// Web has no actionable notification surface.
		log.Printf("[Call] Incoming call %s from %s (web: log only)", s.ID, s.CallerName)
		p.track(s.ID, activeCall{mode: presentedLogOnly})

	default:
		p.showLocal(ctx, s)
	}
}

func (p *Presenter) showLocal(ctx context.Context, s Session) {
	key := notificationKey(s.ID)
	fullScreen := p.platform == platform.Android
	if p.notifier == nil {
		log.Printf("[Call] No notifier configured, incoming call %s dropped", s.ID)
		return
	}
	if err := p.notifier.ShowCallAlert(ctx, key, s, fullScreen); err != nil {
		log.Printf("[Call] Failed to show call notification for %s: %v", s.ID, err)
		return
	}
	p.track(s.ID, activeCall{mode: presentedLocal, key: key})
}

func (p *Presenter) track(callID string, ac activeCall) {
	p.mu.Lock()
	p.active[callID] = ac
	p.mu.Unlock()
}

// EndCall tears down whatever was shown for the call. Idempotent: ending an
// unknown or already-ended call is a no-op.
func (p *Presenter) EndCall(ctx context.Context, callID string) {
	p.mu.Lock()
	ac, ok := p.active[callID]
	if ok {
		delete(p.active, callID)
	}
	p.mu.Unlock()
	if !ok {
		return
	}

	switch ac.mode {
	case presentedNative:
		if err := p.native.Dismiss(ctx, callID); err != nil {
			log.Printf("[Call] Failed to dismiss native call UI for %s: %v", callID, err)
		}
	case presentedLocal:
		if err := p.notifier.Cancel(ctx, ac.key); err != nil {
			log.Printf("[Call] Failed to cancel call notification for %s: %v", callID, err)
		}
	}
}

// HandleAction routes an action event from the platform call layer. Accept
// (and a body tap, the implicit accept) notifies accept subscribers; decline
// notifies decline subscribers and then tears down; timeout and remote-end
// tear down without invoking either.
func (p *Presenter) HandleAction(ctx context.Context, ev ActionEvent) {
	switch ev.Action {
	case ActionAccept, ActionBodyTap:
		for _, fn := range p.subscribers(&p.acceptSubs) {
			fn(ev.CallID)
		}
	case ActionDecline:
		for _, fn := range p.subscribers(&p.declineSubs) {
			fn(ev.CallID)
		}
		p.EndCall(ctx, ev.CallID)
	case ActionTimeout, ActionRemoteEnded:
		p.EndCall(ctx, ev.CallID)
	default:
		log.Printf("[Call] Unknown call action %q for call %s", ev.Action, ev.CallID)
	}
}

func (p *Presenter) subscribers(list *[]func(string)) []func(string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]func(string), len(*list))
	copy(out, *list)
	return out
}
