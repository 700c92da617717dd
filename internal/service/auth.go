package service

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joblane/platform/internal/dto"
	apperrors "github.com/joblane/platform/internal/errors"
	"github.com/joblane/platform/internal/model"
	ctxutil "github.com/joblane/platform/pkg/context"
	"github.com/joblane/platform/pkg/logger"
	"gorm.io/gorm"
)

// VerificationMailer delivers verification tokens out of band. Delivery is
// best-effort: AuthService logs failures and proceeds.
type VerificationMailer interface {
	SendVerification(ctx context.Context, email, name, token string) error
}

// AuthService orchestrates registration, login, refresh rotation, logout and
// email verification. Responses only ever carry sanitized user views.
type AuthService struct {
	store    UserStore
	hasher   *PasswordHasher
	tokens   *TokenService
	sessions *RefreshTokenStore
	verifier *VerificationService
	mailer   VerificationMailer
}

func NewAuthService(
	store UserStore,
	hasher *PasswordHasher,
	tokens *TokenService,
	sessions *RefreshTokenStore,
	verifier *VerificationService,
	mailer VerificationMailer,
) *AuthService {
	return &AuthService{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		verifier: verifier,
		mailer:   mailer,
	}
}

// Register creates a user with a hashed credential and fires the
// verification email. A degraded mail channel does not fail registration.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Register")

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		logger.WarnWithContext(ctx, "Registration rejected: email already exists").
			Log()
		return nil, apperrors.ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to hash password").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Role:         req.Role,
		PasswordHash: passwordHash,
	}

	if err := s.store.Create(ctx, user); err != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// Best-effort verification delivery. Issue failures and transport
	// failures are logged, never surfaced: registration already succeeded.
	if s.mailer != nil {
		token, err := s.tokens.IssueVerificationToken(user)
		if err != nil {
			logger.ErrorWithContext(ctx, "Failed to issue verification token").
				Int("user_id", int(user.ID)).
				Err(err).
				Log()
		} else if err := s.mailer.SendVerification(ctx, user.Email, user.Name, token); err != nil {
			logger.WarnWithContext(ctx, "Verification email delivery failed, continuing").
				Int("user_id", int(user.ID)).
				Err(err).
				Log()
		}
	}

	logger.InfoWithContext(ctx, "User registered").
		Int("user_id", int(user.ID)).
		String("role", user.Role).
		Log()

	response := dto.NewUserResponse(user)
	return &response, nil
}

// VerifyEmail consumes a verification token and marks the account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "VerifyEmail")

	claims, err := s.verifier.Consume(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidVerificationToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// The token must match the address it was issued for; a changed email
	// invalidates outstanding verification tokens.
	if !strings.EqualFold(user.Email, claims.Email) {
		return nil, apperrors.ErrInvalidVerificationToken
	}

	if !user.EmailVerified {
		if err := s.store.MarkEmailVerified(ctx, user.ID); err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		user.EmailVerified = true
	}

	logger.InfoWithContext(ctx, "Email verification completed").
		Int("user_id", int(user.ID)).
		Log()

	response := dto.NewUserResponse(user)
	return &response, nil
}

// Login authenticates a credential pair and mints a fresh token pair. The
// refresh token is persisted before the response is built, so a client can
// never hold a refresh token that is not the stored one.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Login")

	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same failure as a wrong password so responses cannot be used
			// to enumerate accounts.
			logger.InfoWithContext(ctx, "Authentication failed: unknown user").
				Log()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		logger.ErrorWithContext(ctx, "Stored password hash is corrupt").
			Int("user_id", int(user.ID)).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !ok {
		logger.WarnWithContext(ctx, "Authentication failed: incorrect password").
			Int("user_id", int(user.ID)).
			Log()
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		// Continue even if the timestamp update fails
		logger.WarnWithContext(ctx, "Failed to update last login timestamp").
			Int("user_id", int(user.ID)).
			Err(err).
			Log()
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// Issue, then persist, then respond. Responding before the persist
	// lands would let a client observe a token the server does not trust.
	if err := s.sessions.Persist(ctx, user.ID, refreshToken); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User logged in").
		Int("user_id", int(user.ID)).
		Log()

	return &dto.LoginResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
		User:         dto.NewUserResponse(user),
	}, nil
}

// Refresh rotates the token pair. The presented token must verify
// cryptographically and be byte-equal to the stored slot; rotation then
// replaces the slot so the presented token cannot be used again.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*dto.RefreshTokenResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Refresh")

	claims, err := s.tokens.ParseRefreshToken(presented)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.WarnWithContext(ctx, "Refresh token expired").
				Log()
			return nil, apperrors.ErrTokenExpired
		}
		logger.WarnWithContext(ctx, "Refresh token rejected").
			Err(err).
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	ok, err := s.sessions.Verify(ctx, claims.UserID, presented)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !ok {
		// Signature is fine but the slot holds something else: the token
		// was rotated away or revoked.
		logger.WarnWithContext(ctx, "Refresh token does not match stored slot").
			Int("user_id", int(claims.UserID)).
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	user, err := s.store.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	newRefreshToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.sessions.Persist(ctx, user.ID, newRefreshToken); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Token pair rotated").
		Int("user_id", int(user.ID)).
		Log()

	return &dto.RefreshTokenResponse{
		Token:        accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
		User:         dto.NewUserResponse(user),
	}, nil
}

// Logout clears the refresh-token slot so every outstanding refresh token
// for the user stops verifying immediately.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	ctx = ctxutil.WithOperation(ctx, "service", "Logout")

	if err := s.sessions.Invalidate(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User logged out").
		Int("user_id", int(userID)).
		Log()

	return nil
}
