package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email          string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash   string     `gorm:"column:password_hash;not null"`
	OrganizationID uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;index"`
	IsAdmin        bool       `gorm:"column:is_admin;not null;default:false"`
	IsActive       bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt    *time.Time `gorm:"column:last_login_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
