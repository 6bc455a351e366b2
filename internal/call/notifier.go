package call

import (
	"context"
	"fmt"
	"sync"

	tokendomain "classnest-backend/internal/token/domain"
	"classnest-backend/pkg/push"
)

// DeviceSender is the slice of the push client used to reach one device.
type DeviceSender interface {
	SendToDevice(ctx context.Context, token string, n push.Notification) error
}

// TokenLookup resolves the callee's current token of a given kind.
type TokenLookup interface {
	LookupToken(ctx context.Context, userID string, kind tokendomain.Kind) (string, error)
}

// PushNotifier renders the local-notification fallback by sending a
// high-priority push that the device turns into an actionable call alert.
// The token used to show an alert is remembered so Cancel can reach the same
// device.
type PushNotifier struct {
	sender DeviceSender
	tokens TokenLookup

	mu    sync.Mutex
	shown map[uint32]string // notification key -> device token
}

func NewPushNotifier(sender DeviceSender, tokens TokenLookup) *PushNotifier {
	return &PushNotifier{
		sender: sender,
		tokens: tokens,
		shown:  make(map[uint32]string),
	}
}

func (n *PushNotifier) ShowCallAlert(ctx context.Context, key uint32, s Session, fullScreen bool) error {
	token, err := n.tokens.LookupToken(ctx, s.CalleeID, tokendomain.KindPush)
	if err != nil {
		return fmt.Errorf("failed to look up push token for user %s: %w", s.CalleeID, err)
	}
	if token == "" {
		return fmt.Errorf("no push token registered for user %s", s.CalleeID)
	}

	callType := "audio"
	if s.IsVideo {
		callType = "video"
	}

	err = n.sender.SendToDevice(ctx, token, push.Notification{
		Title:        "Incoming call",
		Body:         fmt.Sprintf("%s is calling you", s.CallerName),
		HighPriority: true,
		Data: map[string]string{
			"type":             "incoming_call",
			"call_id":          s.ID,
			"caller_id":        s.CallerID,
			"caller_name":      s.CallerName,
			"avatar":           s.CallerPhotoURL,
			"call_type":        callType,
			"notification_key": fmt.Sprintf("%d", key),
			"full_screen":      fmt.Sprintf("%t", fullScreen),
			"actions":          "accept,decline",
		},
	})
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.shown[key] = token
	n.mu.Unlock()
	return nil
}

// Cancel tells the device that showed the alert to dismiss it. Cancelling a
// key that was never shown is a no-op.
func (n *PushNotifier) Cancel(ctx context.Context, key uint32) error {
	n.mu.Lock()
	token, ok := n.shown[key]
	if ok {
		delete(n.shown, key)
	}
	n.mu.Unlock()
	if !ok {
		return nil
	}

	return n.sender.SendToDevice(ctx, token, push.Notification{
		HighPriority: true,
		Data: map[string]string{
			"type":             "call_cancelled",
			"notification_key": fmt.Sprintf("%d", key),
		},
	})
}

// VoIPReporter drives the native full-screen call UI by waking the device
// through its VoIP token with the call-kit payload.
type VoIPReporter struct {
	sender  DeviceSender
	tokens  TokenLookup
	appName string

	mu       sync.Mutex
	reported map[string]string // call id -> voip token
}

func NewVoIPReporter(sender DeviceSender, tokens TokenLookup, appName string) *VoIPReporter {
	return &VoIPReporter{
		sender:   sender,
		tokens:   tokens,
		appName:  appName,
		reported: make(map[string]string),
	}
}

func (r *VoIPReporter) Report(ctx context.Context, s Session) error {
	token, err := r.tokens.LookupToken(ctx, s.CalleeID, tokendomain.KindVoIP)
	if err != nil {
		return fmt.Errorf("failed to look up voip token for user %s: %w", s.CalleeID, err)
	}
	if token == "" {
		// Refusing here makes the presenter fall back to the plain
		// notification for devices without a VoIP registration.
		return fmt.Errorf("no voip token registered for user %s", s.CalleeID)
	}

	callType := "audio"
	if s.IsVideo {
		callType = "video"
	}

	err = r.sender.SendToDevice(ctx, token, push.Notification{
		HighPriority: true,
		Data: map[string]string{
			"id":          s.ID,
			"callerName":  s.CallerName,
			"appName":     r.appName,
			"avatar":      s.CallerPhotoURL,
			"handle":      s.CallerID,
			"type":        callType,
			"duration":    "45000",
			"textAccept":  "Accept",
			"textDecline": "Decline",
		},
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.reported[s.ID] = token
	r.mu.Unlock()
	return nil
}

// Dismiss ends the native call screen on the device that reported the call.
func (r *VoIPReporter) Dismiss(ctx context.Context, callID string) error {
	r.mu.Lock()
	token, ok := r.reported[callID]
	if ok {
		delete(r.reported, callID)
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}

	return r.sender.SendToDevice(ctx, token, push.Notification{
		HighPriority: true,
		Data: map[string]string{
			"type": "end_call",
			"id":   callID,
		},
	})
}
