package usecase

import (
	"context"
	"log"
	"sync"

	"classnest-backend/internal/token/domain"
	"classnest-backend/internal/token/repository"
)

// cacheKey scopes the last-token cache per user and kind. The same token
// value handed from one user to another (shared-device sign-out/sign-in)
// must still be written for the new user.
type cacheKey struct {
	userID string
	kind   domain.Kind
}

// Store associates the current device's tokens with the signed-in user. It
// keeps the last successfully persisted value per (user, kind) so
// platform-issued refreshes that repeat the same token do not hit storage
// again.
type Store struct {
	repo repository.TokenRepository

	mu   sync.Mutex
	last map[cacheKey]string
}

func NewStore(repo repository.TokenRepository) *Store {
	return &Store{
		repo: repo,
		last: make(map[cacheKey]string),
	}
}

// SaveToken persists the token in both storage locations. A nil identity
// (empty userID) makes the call a no-op; a token equal to the last persisted
// value short-circuits without a write. The cache is only updated after a
// successful write so a failed attempt is retried on the next refresh.
func (s *Store) SaveToken(ctx context.Context, userID, token string, kind domain.Kind, platform string) error {
	if userID == "" {
		log.Printf("[TokenStore] No user signed in, skipping %s token save", kind)
		return nil
	}
	if token == "" {
		return nil
	}

	key := cacheKey{userID: userID, kind: kind}

	s.mu.Lock()
	if s.last[key] == token {
		s.mu.Unlock()
		log.Printf("[TokenStore] %s token unchanged for user %s, skipping write", kind, userID)
		return nil
	}
	s.mu.Unlock()

	if err := s.repo.SaveToken(ctx, userID, token, kind, platform); err != nil {
		log.Printf("[TokenStore] Failed to save %s token for user %s: %v", kind, userID, err)
		return err
	}

	s.mu.Lock()
	s.last[key] = token
	s.mu.Unlock()
	return nil
}

// DeleteToken removes the token from both locations, e.g. on sign-out.
func (s *Store) DeleteToken(ctx context.Context, userID string, kind domain.Kind) error {
	if userID == "" {
		return nil
	}

	if err := s.repo.DeleteToken(ctx, userID, kind); err != nil {
		log.Printf("[TokenStore] Failed to delete %s token for user %s: %v", kind, userID, err)
		return err
	}

	s.mu.Lock()
	delete(s.last, cacheKey{userID: userID, kind: kind})
	s.mu.Unlock()
	return nil
}

// LookupToken reads the index entry for a user, "" when absent.
func (s *Store) LookupToken(ctx context.Context, userID string, kind domain.Kind) (string, error) {
	return s.repo.TokenByUserID(ctx, userID, kind)
}

// Reset clears the in-memory cache, used on identity switch so the next save
// for the new user is not suppressed by the previous user's token.
func (s *Store) Reset() {
	s.mu.Lock()
	s.last = make(map[cacheKey]string)
	s.mu.Unlock()
}
