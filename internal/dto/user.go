package dto

import (
	"time"

	"github.com/joblane/platform/internal/model"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role" binding:"required,oneof=candidate recruiter"`
	Password string `json:"password" binding:"required,min=8,max=100,password"`
}

type UpdateUserRequest struct {
	Name string `json:"name" binding:"omitempty,min=2,max=100"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=100,password"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// UserResponse is the sanitized user view: the only user representation that
// may cross the trust boundary. It structurally cannot carry the password
// hash or refresh token.
type UserResponse struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	EmailVerified bool       `json:"email_verified"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewUserResponse projects a User onto its sanitized view. Every egress path
// that returns a user-shaped object must go through here.
func NewUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		LastLogin:     user.LastLogin,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}
