package model

import (
	"time"

	"gorm.io/gorm"
)

// User is the identity record. PasswordHash and RefreshToken are secrets and
// must never leave the process except through dto.NewUserResponse.
//
// RefreshToken is a single slot: the one refresh token the server currently
// trusts for this user. Every login/refresh overwrites it, logout clears it.
type User struct {
	gorm.Model
	Name          string     `gorm:"column:name;not null"`
	Email         string     `gorm:"column:email;unique;not null"`
	Role          string     `gorm:"column:role;not null;default:candidate"`
	PasswordHash  string     `gorm:"column:password_hash;not null"`
	RefreshToken  *string    `gorm:"column:refresh_token;default:null"`
	EmailVerified bool       `gorm:"column:email_verified;not null;default:false"`
	LastLogin     *time.Time `gorm:"column:last_login;default:null"`
}
