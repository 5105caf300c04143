package warehouse

import (
	"encoding/json"
	"time"

	"github.com/ParzivalXIII/inventory-management-system/pkg/enums"
)

// Envelope is the decoded event handed to the warehouse handler.
type Envelope struct {
	EventID       string
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   string
	Version       int
	OccurredAt    time.Time
	Payload       json.RawMessage
}

// OrderEventRow is the flattened shape appended to the BigQuery order-events table.
type OrderEventRow struct {
	EventID        string    `bigquery:"event_id"`
	EventType      string    `bigquery:"event_type"`
	OrderID        string    `bigquery:"order_id"`
	OrganizationID string    `bigquery:"organization_id"`
	ProductID      string    `bigquery:"product_id"`
	Quantity       int64     `bigquery:"quantity"`
	TotalPrice     float64   `bigquery:"total_price"`
	IsFulfilled    bool      `bigquery:"is_fulfilled"`
	OccurredAt     time.Time `bigquery:"occurred_at"`
	Payload        string    `bigquery:"payload"`
}
