package service

import (
	"context"

	"github.com/joblane/platform/internal/model"
)

// UserStore is the persistence contract this subsystem requires. The gorm
// repository satisfies it in production; tests supply an in-memory fake.
type UserStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, id uint, user *model.User) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	UpdateRefreshToken(ctx context.Context, id uint, token string) error
	ClearRefreshToken(ctx context.Context, id uint) error
	UpdateLastLogin(ctx context.Context, id uint) error
	MarkEmailVerified(ctx context.Context, id uint) error
}
