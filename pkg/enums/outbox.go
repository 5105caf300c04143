package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type_enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder   OutboxAggregateType = "order"
	AggregateProduct OutboxAggregateType = "product"
)

var aggregateTypeSet = map[OutboxAggregateType]struct{}{
	AggregateOrder:   {},
	AggregateProduct: {},
}

func (a OutboxAggregateType) IsValid() bool {
	_, ok := aggregateTypeSet[a]
	return ok
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	candidate := OutboxAggregateType(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid aggregate type %q", value)
	}
	return candidate, nil
}

// OutboxEventType maps to the event_type_enum in Postgres.
type OutboxEventType string

const (
	EventOrderCreated    OutboxEventType = "order.created"
	EventOrderFulfilled  OutboxEventType = "order.fulfilled"
	EventProductLowStock OutboxEventType = "product.low_stock"
)

var outboxEventTypeSet = map[OutboxEventType]struct{}{
	EventOrderCreated:    {},
	EventOrderFulfilled:  {},
	EventProductLowStock: {},
}

func (e OutboxEventType) IsValid() bool {
	_, ok := outboxEventTypeSet[e]
	return ok
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	candidate := OutboxEventType(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid event type %q", value)
	}
	return candidate, nil
}
