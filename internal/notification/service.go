package notification

import (
	"context"
	"log"
	"time"

	"classnest-backend/internal/notification/domain"
	tokendomain "classnest-backend/internal/token/domain"
	"classnest-backend/pkg/push"
	"classnest-backend/pkg/sse"
)

// Sender is the slice of the push client the service needs.
type Sender interface {
	SendToDevices(ctx context.Context, tokens []string, n push.Notification) ([]string, error)
}

// TokenReader resolves a user's live device tokens and cleans up dead ones.
type TokenReader interface {
	TokensByUserID(ctx context.Context, userID string) ([]tokendomain.DeviceToken, error)
	DeleteByToken(ctx context.Context, token string) error
}

// Service delivers notifications to a user across the available channels:
// push to registered devices, SSE to open in-app sessions, and always an
// audit record regardless of whether live delivery worked.
type Service struct {
	recorder   *Recorder
	tokens     TokenReader
	sender     Sender
	sseManager *sse.Manager
}

func NewService(recorder *Recorder, tokens TokenReader, sender Sender, sseManager *sse.Manager) *Service {
	return &Service{
		recorder:   recorder,
		tokens:     tokens,
		sender:     sender,
		sseManager: sseManager,
	}
}

// SendImmediate records and delivers a notification right now. Nothing in
// here propagates an error: a failed audit write or push attempt degrades to
// a log line.
func (s *Service) SendImmediate(ctx context.Context, userID, title, message, relatedID string, data map[string]string) {
	s.recorder.Record(ctx, userID, domain.TypeImmediate, title, message, relatedID, time.Now())

	if s.sseManager != nil {
		s.sseManager.SendToUser(userID, "notification", map[string]interface{}{
			"title":     title,
			"message":   message,
			"relatedId": relatedID,
			"timestamp": time.Now(),
		})
	}

	s.deliverPush(ctx, userID, title, message, data, false)
}

// ScheduleReminder records an intended future notification; the scheduler
// picks it up when it comes due.
func (s *Service) ScheduleReminder(ctx context.Context, userID string, typ domain.RecordType, title, message, relatedID string, scheduledFor time.Time) string {
	return s.recorder.Record(ctx, userID, typ, title, message, relatedID, scheduledFor)
}

func (s *Service) deliverPush(ctx context.Context, userID, title, message string, data map[string]string, highPriority bool) {
	if s.sender == nil || s.tokens == nil {
		return
	}

	deviceTokens, err := s.tokens.TokensByUserID(ctx, userID)
	if err != nil {
		log.Printf("[Notification] Error getting device tokens for user %s: %v", userID, err)
		return
	}
	if len(deviceTokens) == 0 {
		log.Printf("[Notification] No device tokens for user %s, skipping push", userID)
		return
	}

	var tokenStrings []string
	for _, t := range deviceTokens {
		if t.Kind == tokendomain.KindPush {
			tokenStrings = append(tokenStrings, t.Token)
		}
	}
	if len(tokenStrings) == 0 {
		return
	}

	failedTokens, err := s.sender.SendToDevices(ctx, tokenStrings, push.Notification{
		Title:        title,
		Body:         message,
		Data:         data,
		HighPriority: highPriority,
	})
	if err != nil {
		log.Printf("[Notification] Error sending push to user %s: %v", userID, err)
		return
	}

	// Cleanup failed tokens
	for _, token := range failedTokens {
		if err := s.tokens.DeleteByToken(ctx, token); err != nil {
			log.Printf("[Notification] Failed to delete dead token: %v", err)
		}
	}
}
