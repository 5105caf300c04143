package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a purchase of a single product. TotalPrice snapshots the
// product price at creation time so later price edits do not rewrite history.
type Order struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID       `gorm:"column:organization_id;type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Quantity       int             `gorm:"column:quantity;not null"`
	TotalPrice     decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	IsFulfilled    bool            `gorm:"column:is_fulfilled;not null;default:false"`
	OrderDate      time.Time       `gorm:"column:order_date;not null"`
	FulfilledAt    *time.Time      `gorm:"column:fulfilled_at"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
