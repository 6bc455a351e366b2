package inbound

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// MessageFunc receives every non-navigation event.
type MessageFunc func(Event)

// NavigateFunc receives deep-link dispatches.
type NavigateFunc func(route string, params map[string]string)

// Immediate is the recorder path used when a dispatched event carried a
// visible notification.
type Immediate interface {
	SendImmediate(ctx context.Context, userID, title, message, relatedID string, data map[string]string)
}

// Source is one platform entry point feeding the router. Pending returns the
// event the app was launched from, if any; it is consulted exactly once, at
// startup. Receive blocks until ctx is cancelled.
type Source interface {
	Pending(ctx context.Context) (*Event, error)
	Receive(ctx context.Context, dispatch func(Event)) error
}

// Router is the single dispatch point for all notification-originated events.
// It does not deduplicate or reorder: events go out in arrival order, and
// duplicate message ids are passed through, so subscribers must be
// idempotent.
type Router struct {
	immediate Immediate

	mu          sync.Mutex
	messageSubs map[int]MessageFunc
	navSubs     map[int]NavigateFunc
	nextSubID   int
	cancels     []context.CancelFunc
}

func NewRouter(immediate Immediate) *Router {
	return &Router{
		immediate:   immediate,
		messageSubs: make(map[int]MessageFunc),
		navSubs:     make(map[int]NavigateFunc),
	}
}

// SubscribeMessages registers a subscriber for non-navigation events and
// returns its unsubscribe function. Multiple subscribers are allowed;
// registration never displaces an earlier one.
func (r *Router) SubscribeMessages(fn MessageFunc) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSubID
	r.nextSubID++
	r.messageSubs[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.messageSubs, id)
	}
}

// SubscribeNavigation registers a deep-link subscriber and returns its
// unsubscribe function.
func (r *Router) SubscribeNavigation(fn NavigateFunc) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSubID
	r.nextSubID++
	r.navSubs[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.navSubs, id)
	}
}

// Run drains the source's pending event (cold-start entry point) through the
// normal dispatch path, then receives live events until Close or ctx
// cancellation. Each source gets its own goroutine; call once per source.
func (r *Router) Run(ctx context.Context, source Source) {
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancels = append(r.cancels, cancel)
	r.mu.Unlock()

	go func() {
		pending, err := source.Pending(ctx)
		if err != nil {
			log.Printf("[Router] Failed to check pending launch event: %v", err)
		} else if pending != nil {
			r.Dispatch(ctx, *pending)
		}

		if err := source.Receive(ctx, func(ev Event) { r.Dispatch(ctx, ev) }); err != nil && ctx.Err() == nil {
			log.Printf("[Router] Source receive ended: %v", err)
		}
	}()
}

// Close cancels every running source subscription so no event is dispatched
// against a stale identity context.
func (r *Router) Close() {
	r.mu.Lock()
	cancels := r.cancels
	r.cancels = nil
	r.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// Dispatch routes one event: chat events with a room id become a navigation
// to the chat screen; everything else fans out to message subscribers and,
// when the event carried a visible notification, also lands in the
// immediate-notification path.
func (r *Router) Dispatch(ctx context.Context, ev Event) {
	if ev.Type == "chat" {
		if roomID := ev.ChatRoomID(); roomID != "" {
			route := fmt.Sprintf("/messages/chat/%s", roomID)
			r.mu.Lock()
			subs := make([]NavigateFunc, 0, len(r.navSubs))
			for _, fn := range r.navSubs {
				subs = append(subs, fn)
			}
			r.mu.Unlock()
			for _, fn := range subs {
				fn(route, map[string]string{"chatRoomId": roomID})
			}
			return
		}
	}

	r.mu.Lock()
	subs := make([]MessageFunc, 0, len(r.messageSubs))
	for _, fn := range r.messageSubs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}

	if r.immediate != nil && (ev.Title != "" || ev.Body != "") {
		r.immediate.SendImmediate(ctx, ev.RecipientID(), ev.Title, ev.Body, ev.MessageID, ev.Data)
	}
}
