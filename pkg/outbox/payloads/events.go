package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderCreatedEvent signals a new order against a product.
type OrderCreatedEvent struct {
	OrderID        uuid.UUID       `json:"order_id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	Quantity       int             `json:"quantity"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	CreatedAt      time.Time       `json:"created_at"`
}

// OrderFulfilledEvent is emitted when an order transitions to fulfilled.
type OrderFulfilledEvent struct {
	OrderID        uuid.UUID `json:"order_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	ProductID      uuid.UUID `json:"product_id"`
	FulfilledAt    time.Time `json:"fulfilled_at"`
}

// ProductLowStockEvent alerts downstream systems when on-hand quantity drops
// to or below the configured threshold.
type ProductLowStockEvent struct {
	ProductID      uuid.UUID `json:"product_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `json:"quantity"`
	Threshold      int       `json:"threshold"`
}
