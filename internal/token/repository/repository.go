package repository

import (
	"context"
	"errors"
	"time"

	identitydomain "classnest-backend/internal/identity/domain"
	tokendomain "classnest-backend/internal/token/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRepository defines the storage operations behind the token store.
type TokenRepository interface {
	SaveToken(ctx context.Context, userID, token string, kind tokendomain.Kind, platform string) error
	DeleteToken(ctx context.Context, userID string, kind tokendomain.Kind) error
	TokenByUserID(ctx context.Context, userID string, kind tokendomain.Kind) (string, error)
	TokensByUserID(ctx context.Context, userID string) ([]tokendomain.DeviceToken, error)
	DeleteByToken(ctx context.Context, token string) error
}

// tokenRepository implements TokenRepository over the two storage locations:
// the token columns on the user record and the device_tokens lookup index.
type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// tokenColumns maps a kind onto the user-record columns it owns. The platform
// column is deliberately not part of this set: registration updates it, but
// deleting one token kind must not blank it while the other kind is live.
func tokenColumns(kind tokendomain.Kind, token *string, now time.Time) map[string]interface{} {
	switch kind {
	case tokendomain.KindVoIP:
		return map[string]interface{}{
			"voip_token":            token,
			"voip_token_updated_at": now,
		}
	default:
		return map[string]interface{}{
			"fcm_token":            token,
			"fcm_token_updated_at": now,
		}
	}
}

// SaveToken writes the token into both locations. The user-record update only
// touches the token columns so unrelated fields survive. The two writes are
// not wrapped in a transaction; a failure between them is healed by the next
// successful refresh.
func (r *tokenRepository) SaveToken(ctx context.Context, userID, token string, kind tokendomain.Kind, platform string) error {
	now := time.Now()

	cols := tokenColumns(kind, &token, now)
	cols["platform"] = platform
	err := r.db.WithContext(ctx).
		Model(&identitydomain.User{}).
		Where("id = ?", userID).
		Updates(cols).Error
	if err != nil {
		return err
	}

	entry := &tokendomain.DeviceToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Kind:      kind,
		Token:     token,
		Platform:  platform,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Atomic upsert on (user_id, kind): last write wins across devices.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "platform", "updated_at"}),
	}).Create(entry).Error
}

// DeleteToken clears the deleted kind's token columns on the user record and
// removes the index row. The platform column is left alone so a still-live
// token of the other kind keeps its routing information. A missing index row
// is not an error.
func (r *tokenRepository) DeleteToken(ctx context.Context, userID string, kind tokendomain.Kind) error {
	now := time.Now()

	err := r.db.WithContext(ctx).
		Model(&identitydomain.User{}).
		Where("id = ?", userID).
		Updates(tokenColumns(kind, nil, now)).Error
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, kind).
		Delete(&tokendomain.DeviceToken{}).Error
}

// TokenByUserID is the read path for server-side senders.
func (r *tokenRepository) TokenByUserID(ctx context.Context, userID string, kind tokendomain.Kind) (string, error) {
	var entry tokendomain.DeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, kind).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return entry.Token, nil
}

// TokensByUserID returns every live token for a user, both kinds.
func (r *tokenRepository) TokensByUserID(ctx context.Context, userID string) ([]tokendomain.DeviceToken, error) {
	var tokens []tokendomain.DeviceToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// DeleteByToken removes an index row by token value, used to clean up tokens
// the push service reports as dead.
func (r *tokenRepository) DeleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&tokendomain.DeviceToken{}).Error
}
