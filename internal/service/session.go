package service

import (
	"context"
	"crypto/subtle"

	"github.com/joblane/platform/pkg/logger"
	"gorm.io/gorm"
)

// RefreshTokenStore owns the single refresh-token slot on the User record.
// Persist is the rotation point: it overwrites the slot, so whatever token
// was stored before stops verifying immediately. That equality check is what
// gives the otherwise stateless token scheme real revocation semantics.
type RefreshTokenStore struct {
	store UserStore
}

func NewRefreshTokenStore(store UserStore) *RefreshTokenStore {
	return &RefreshTokenStore{store: store}
}

// Persist overwrites the user's refresh-token slot with token. Concurrent
// logins race here; last write wins and the loser's token is dead.
func (s *RefreshTokenStore) Persist(ctx context.Context, userID uint, token string) error {
	if err := s.store.UpdateRefreshToken(ctx, userID, token); err != nil {
		logger.ErrorWithContext(ctx, "Failed to persist refresh token").
			Int("user_id", int(userID)).
			Err(err).
			Log()
		return err
	}
	return nil
}

// Invalidate clears the slot. Any outstanding refresh token for the user is
// permanently unusable from this point, expired or not.
func (s *RefreshTokenStore) Invalidate(ctx context.Context, userID uint) error {
	if err := s.store.ClearRefreshToken(ctx, userID); err != nil {
		logger.ErrorWithContext(ctx, "Failed to invalidate refresh token").
			Int("user_id", int(userID)).
			Err(err).
			Log()
		return err
	}
	return nil
}

// Verify reports whether presented is byte-equal to the token currently
// stored for the user. An empty or missing slot never verifies.
func (s *RefreshTokenStore) Verify(ctx context.Context, userID uint, presented string) (bool, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}

	if user.RefreshToken == nil || *user.RefreshToken == "" || presented == "" {
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(presented)) == 1, nil
}
