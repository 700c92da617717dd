package database

import (
	"github.com/joblane/platform/internal/constants"
	"github.com/joblane/platform/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultRecruiter defines the seed recruiter account for local development
type DefaultRecruiter struct {
	Name     string
	Email    string
	Password string
}

// GetDefaultRecruiter returns the default recruiter user
func GetDefaultRecruiter() DefaultRecruiter {
	return DefaultRecruiter{
		Name:     "JobLane Recruiter",
		Email:    "recruiter@joblane.local",
		Password: "Recruiter@123", // Change this in production!
	}
}

// Seed creates initial data for the database
func Seed(db *gorm.DB) error {
	return SeedUsers(db)
}

// SeedUsers creates the default recruiter user if not exists
func SeedUsers(db *gorm.DB) error {
	recruiter := GetDefaultRecruiter()

	var existingUser model.User
	result := db.Where("email = ?", recruiter.Email).First(&existingUser)

	if result.Error == nil {
		// User already exists, skip seeding
		return nil
	}

	if result.Error != gorm.ErrRecordNotFound {
		return result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(recruiter.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := model.User{
		Name:          recruiter.Name,
		Email:         recruiter.Email,
		Role:          constants.RoleRecruiter,
		PasswordHash:  string(hashedPassword),
		EmailVerified: true,
	}

	return db.Create(&user).Error
}
