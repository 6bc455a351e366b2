package repository

import (
	"context"
	"time"

	"classnest-backend/internal/notification/domain"

	"gorm.io/gorm"
)

// RecordRepository defines storage for notification audit records.
type RecordRepository interface {
	Create(ctx context.Context, record *domain.Record) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Record, error)
	DueScheduled(ctx context.Context, now time.Time, limit int) ([]domain.Record, error)
	MarkDelivered(ctx context.Context, id string) error
	MarkRead(ctx context.Context, id, userID string) error
}

type recordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

// Create inserts a new record. Never reads before writing, never updates an
// existing row.
func (r *recordRepository) Create(ctx context.Context, record *domain.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *recordRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Record, error) {
	var records []domain.Record
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DueScheduled returns scheduled records whose delivery time has passed.
func (r *recordRepository) DueScheduled(ctx context.Context, now time.Time, limit int) ([]domain.Record, error) {
	var records []domain.Record
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", domain.StatusScheduled, now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *recordRepository) MarkDelivered(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Record{}).
		Where("id = ?", id).
		Update("status", domain.StatusDelivered).Error
}

// MarkRead scopes by user so one user cannot flip another's records.
func (r *recordRepository) MarkRead(ctx context.Context, id, userID string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Record{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", domain.StatusRead).Error
}
