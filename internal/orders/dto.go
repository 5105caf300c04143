package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ParzivalXIII/inventory-management-system/pkg/db/models"
)

// OrderDTO is the transport shape for an order.
type OrderDTO struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	Quantity       int             `json:"quantity"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	IsFulfilled    bool            `json:"is_fulfilled"`
	OrderDate      time.Time       `json:"order_date"`
	FulfilledAt    *time.Time      `json:"fulfilled_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CreateOrderInput captures the fields accepted on order creation.
type CreateOrderInput struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	Quantity  int        `json:"quantity" validate:"required,gt=0"`
	OrderDate *time.Time `json:"order_date,omitempty"`
}

// OrderList wraps a page of orders plus the next cursor.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	return &OrderDTO{
		ID:             o.ID,
		OrganizationID: o.OrganizationID,
		ProductID:      o.ProductID,
		Quantity:       o.Quantity,
		TotalPrice:     o.TotalPrice,
		IsFulfilled:    o.IsFulfilled,
		OrderDate:      o.OrderDate,
		FulfilledAt:    o.FulfilledAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}
