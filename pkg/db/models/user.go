package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a marketplace member: a customer or a settler.
type User struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email           string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	UserName        string    `gorm:"column:user_name;not null;default:''"`
	FirstName       string    `gorm:"column:first_name;not null"`
	LastName        string    `gorm:"column:last_name;not null"`
	PhoneNumber     string    `gorm:"column:phone_number;not null;default:''"`
	AccountType     string    `gorm:"column:account_type;not null"`
	IsActive        bool      `gorm:"column:is_active;not null;default:true"`
	IsVerified      bool      `gorm:"column:is_verified;not null;default:false"`
	ProfileImageURL *string   `gorm:"column:profile_image_url"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
