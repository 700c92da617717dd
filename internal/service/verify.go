package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joblane/platform/internal/constants"
	apperrors "github.com/joblane/platform/internal/errors"
	"github.com/joblane/platform/pkg/logger"
	"github.com/joblane/platform/pkg/redis"
)

// VerificationService verifies email verification tokens. Signature and
// expiry checks are stateless; single-use enforcement goes through a redis
// jti ledger. When redis is unavailable the ledger check is skipped and
// validity degrades to signature+expiry only.
type VerificationService struct {
	tokens *TokenService
	ledger *redis.Client
}

func NewVerificationService(tokens *TokenService, ledger *redis.Client) *VerificationService {
	return &VerificationService{
		tokens: tokens,
		ledger: ledger,
	}
}

// Consume validates a verification token and claims its jti so the same
// token cannot be replayed. Returns the embedded identity on success.
func (s *VerificationService) Consume(ctx context.Context, token string) (*VerificationClaims, error) {
	claims, err := s.tokens.ParseVerificationToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.WrapError(apperrors.ErrInvalidVerificationToken, err)
	}

	if s.ledger != nil && s.ledger.IsEnabled() && claims.ID != "" {
		ttl := time.Until(claims.ExpiresAt.Time)
		claimed, err := s.ledger.ClaimOnce(ctx, constants.RedisKeyVerification+claims.ID, ttl)
		if err != nil {
			// Ledger outage: fall back to the stateless check rather than
			// blocking verification entirely.
			logger.WarnWithContext(ctx, "Verification ledger unavailable, skipping single-use check").
				Err(err).
				Log()
		} else if !claimed {
			logger.WarnWithContext(ctx, "Verification token replay detected").
				Int("user_id", int(claims.UserID)).
				Log()
			return nil, apperrors.ErrInvalidVerificationToken
		}
	}

	return claims, nil
}
