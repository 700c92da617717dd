package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	apperrors "github.com/joblane/platform/internal/errors"
	"github.com/joblane/platform/internal/model"
	"github.com/joblane/platform/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLedger(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return redis.NewClientFromRedis(rdb, nil)
}

func TestVerificationService_SingleUse(t *testing.T) {
	tokens := NewTokenService(testTokenConfig())
	verifier := NewVerificationService(tokens, newLedger(t))

	token, err := tokens.IssueVerificationToken(&model.User{
		Model: gorm.Model{ID: 7},
		Email: "dana@example.com",
	})
	require.NoError(t, err)

	claims, err := verifier.Consume(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)

	// Same token a second time is a replay.
	_, err = verifier.Consume(context.Background(), token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidVerificationToken)
}

func TestVerificationService_DistinctTokensDoNotCollide(t *testing.T) {
	tokens := NewTokenService(testTokenConfig())
	verifier := NewVerificationService(tokens, newLedger(t))

	user := &model.User{Model: gorm.Model{ID: 7}, Email: "dana@example.com"}

	first, err := tokens.IssueVerificationToken(user)
	require.NoError(t, err)
	second, err := tokens.IssueVerificationToken(user)
	require.NoError(t, err)

	_, err = verifier.Consume(context.Background(), first)
	require.NoError(t, err)

	// Different jti, so the ledger does not block it.
	_, err = verifier.Consume(context.Background(), second)
	assert.NoError(t, err)
}

// Without a ledger the check degrades to signature+expiry; replays pass.
func TestVerificationService_DegradesWithoutLedger(t *testing.T) {
	tokens := NewTokenService(testTokenConfig())
	verifier := NewVerificationService(tokens, nil)

	token, err := tokens.IssueVerificationToken(&model.User{
		Model: gorm.Model{ID: 7},
		Email: "dana@example.com",
	})
	require.NoError(t, err)

	_, err = verifier.Consume(context.Background(), token)
	require.NoError(t, err)
	_, err = verifier.Consume(context.Background(), token)
	assert.NoError(t, err)
}

func TestVerificationService_RejectsWrongSecret(t *testing.T) {
	tokens := NewTokenService(testTokenConfig())
	verifier := NewVerificationService(tokens, newLedger(t))

	otherCfg := testTokenConfig()
	otherCfg.VerificationSecret = "a-different-secret"
	forged, err := NewTokenService(otherCfg).IssueVerificationToken(&model.User{
		Model: gorm.Model{ID: 7},
		Email: "dana@example.com",
	})
	require.NoError(t, err)

	_, err = verifier.Consume(context.Background(), forged)
	assert.ErrorIs(t, err, apperrors.ErrInvalidVerificationToken)
}
