package notification

import (
	"context"
	"log"
	"time"

	"classnest-backend/internal/notification/domain"
	"classnest-backend/internal/notification/repository"

	"github.com/google/uuid"
)

// Recorder writes the audit trail. Recording is best-effort: delivery must
// never fail because the trail could not be written, so every storage error
// is logged and swallowed.
type Recorder struct {
	repo repository.RecordRepository
}

func NewRecorder(repo repository.RecordRepository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends one audit row and returns its id, "" if the insert failed.
func (r *Recorder) Record(ctx context.Context, userID string, typ domain.RecordType, title, message, relatedID string, scheduledFor time.Time) string {
	status := domain.StatusScheduled
	if !scheduledFor.After(time.Now()) {
		status = domain.StatusDelivered
	}

	record := &domain.Record{
		ID:           uuid.New().String(),
		UserID:       userID,
		Type:         typ,
		Title:        title,
		Message:      message,
		RelatedID:    relatedID,
		ScheduledFor: scheduledFor,
		CreatedAt:    time.Now(),
		Status:       status,
	}

	if err := r.repo.Create(ctx, record); err != nil {
		log.Printf("[Recorder] Failed to write notification record (type=%s user=%s): %v", typ, userID, err)
		return ""
	}
	return record.ID
}
