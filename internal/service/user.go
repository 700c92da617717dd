package service

import (
	"context"
	"errors"
	"strings"

	"github.com/joblane/platform/internal/dto"
	apperrors "github.com/joblane/platform/internal/errors"
	"github.com/joblane/platform/internal/model"
	ctxutil "github.com/joblane/platform/pkg/context"
	"github.com/joblane/platform/pkg/logger"
	"gorm.io/gorm"
)

// UserService serves profile reads and writes for the authenticated user.
type UserService struct {
	store  UserStore
	hasher *PasswordHasher
}

func NewUserService(store UserStore, hasher *PasswordHasher) *UserService {
	return &UserService{store: store, hasher: hasher}
}

func (s *UserService) GetByID(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "GetUser")

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	response := dto.NewUserResponse(user)
	return &response, nil
}

func (s *UserService) Update(ctx context.Context, userID uint, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdateUser")

	update := &model.User{Name: strings.TrimSpace(req.Name)}
	if err := s.store.Update(ctx, userID, update); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User profile updated").
		Int("user_id", int(userID)).
		Log()

	response := dto.NewUserResponse(user)
	return &response, nil
}

// UpdatePassword re-checks the current password before storing a new hash.
func (s *UserService) UpdatePassword(ctx context.Context, userID uint, req *dto.UpdatePasswordRequest) error {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdatePassword")

	if req.NewPassword != req.ConfirmPassword {
		return apperrors.ErrPasswordMismatch
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	ok, err := s.hasher.Verify(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !ok {
		logger.WarnWithContext(ctx, "Password update rejected: incorrect current password").
			Int("user_id", int(userID)).
			Log()
		return apperrors.ErrIncorrectPassword
	}

	newHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.store.UpdatePassword(ctx, userID, newHash); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Password updated").
		Int("user_id", int(userID)).
		Log()

	return nil
}
