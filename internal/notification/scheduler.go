package notification

import (
	"context"
	"log"
	"time"

	"classnest-backend/internal/notification/repository"
)

const dueBatchSize = 100

// ReminderScheduler delivers scheduled notification records when their time
// arrives. The original platform delegated this to OS-level local scheduling;
// the service owns it instead.
type ReminderScheduler struct {
	repo     repository.RecordRepository
	service  *Service
	interval time.Duration
	stopChan chan struct{}
}

func NewReminderScheduler(repo repository.RecordRepository, service *Service, interval time.Duration) *ReminderScheduler {
	if interval <= 0 {
		interval = 1 * time.Minute
	}
	return &ReminderScheduler{
		repo:     repo,
		service:  service,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *ReminderScheduler) Start() {
	log.Printf("[Scheduler] Starting reminder scheduler (interval: %s)", s.interval)

	go func() {
		// Run immediately on start
		s.deliverDue()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.deliverDue()
			case <-s.stopChan:
				log.Println("[Scheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *ReminderScheduler) Stop() {
	close(s.stopChan)
}

func (s *ReminderScheduler) deliverDue() {
	ctx := context.Background()

	records, err := s.repo.DueScheduled(ctx, time.Now(), dueBatchSize)
	if err != nil {
		log.Printf("[Scheduler] Error finding due reminders: %v", err)
		return
	}
	if len(records) == 0 {
		return
	}

	log.Printf("[Scheduler] Found %d due reminders", len(records))

	for _, record := range records {
		s.service.deliverPush(ctx, record.UserID, record.Title, record.Message, map[string]string{
			"type":      string(record.Type),
			"relatedId": record.RelatedID,
		}, false)

		// Mark delivered after the push attempt so a crashed cycle re-sends
		// rather than silently dropping.
		if err := s.repo.MarkDelivered(ctx, record.ID); err != nil {
			log.Printf("[Scheduler] Failed to mark record %s delivered: %v", record.ID, err)
		}
	}
}
