package models

import (
	"time"

	"github.com/DevStdio379/settisfy-web/pkg/enums"
	"github.com/google/uuid"
)

// OperatorAccount is a login for the dashboard API. Customer and settler
// accounts point at the marketplace user they act for.
type OperatorAccount struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Email        string            `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string            `gorm:"column:password_hash;not null"`
	Role         enums.AccountRole `gorm:"column:role;type:text;not null"`
	UserID       *uuid.UUID        `gorm:"column:user_id;type:uuid"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time        `gorm:"column:last_login_at"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
