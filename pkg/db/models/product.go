package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents an inventory listing owned by an organization.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID       `gorm:"column:organization_id;type:uuid;not null;index"`
	Name           string          `gorm:"column:name;not null"`
	Description    *string         `gorm:"column:description"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity       int             `gorm:"column:quantity;not null;default:0"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
