package warehouse

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ParzivalXIII/inventory-management-system/pkg/enums"
	"github.com/ParzivalXIII/inventory-management-system/pkg/outbox/payloads"
)

type stubRowWriter struct {
	rows []OrderEventRow
	err  error
}

func (s *stubRowWriter) Insert(ctx context.Context, row OrderEventRow) error {
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, row)
	return nil
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func TestHandlerFlattensOrderCreated(t *testing.T) {
	payload := payloads.OrderCreatedEvent{
		OrderID:        uuid.New(),
		OrganizationID: uuid.New(),
		ProductID:      uuid.New(),
		Quantity:       3,
		TotalPrice:     decimal.RequireFromString("59.97"),
		CreatedAt:      time.Now().UTC(),
	}
	occurredAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	writer := &stubRowWriter{}
	handler := NewOrderEventHandler(writer)

	err := handler.Handle(context.Background(), Envelope{
		EventID:       uuid.NewString(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   payload.OrderID.String(),
		OccurredAt:    occurredAt,
		Payload:       mustMarshal(t, payload),
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(writer.rows) != 1 {
		t.Fatalf("expected one row, got %d", len(writer.rows))
	}
	row := writer.rows[0]
	if row.OrderID != payload.OrderID.String() {
		t.Fatalf("expected order id %s got %s", payload.OrderID, row.OrderID)
	}
	if row.Quantity != 3 {
		t.Fatalf("expected quantity 3 got %d", row.Quantity)
	}
	if row.TotalPrice != 59.97 {
		t.Fatalf("expected total 59.97 got %v", row.TotalPrice)
	}
	if row.IsFulfilled {
		t.Fatalf("created event must not be marked fulfilled")
	}
	if !row.OccurredAt.Equal(occurredAt) {
		t.Fatalf("expected occurred_at %s got %s", occurredAt, row.OccurredAt)
	}
}

func TestHandlerFlattensOrderFulfilled(t *testing.T) {
	payload := payloads.OrderFulfilledEvent{
		OrderID:        uuid.New(),
		OrganizationID: uuid.New(),
		ProductID:      uuid.New(),
		FulfilledAt:    time.Now().UTC(),
	}
	writer := &stubRowWriter{}
	handler := NewOrderEventHandler(writer)

	err := handler.Handle(context.Background(), Envelope{
		EventID:     uuid.NewString(),
		EventType:   enums.EventOrderFulfilled,
		AggregateID: payload.OrderID.String(),
		OccurredAt:  time.Now().UTC(),
		Payload:     mustMarshal(t, payload),
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(writer.rows) != 1 {
		t.Fatalf("expected one row, got %d", len(writer.rows))
	}
	if !writer.rows[0].IsFulfilled {
		t.Fatalf("expected fulfilled row")
	}
}

func TestHandlerSkipsNonOrderEvents(t *testing.T) {
	writer := &stubRowWriter{}
	handler := NewOrderEventHandler(writer)

	err := handler.Handle(context.Background(), Envelope{
		EventID:   uuid.NewString(),
		EventType: enums.EventProductLowStock,
		Payload:   mustMarshal(t, payloads.ProductLowStockEvent{ProductID: uuid.New()}),
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(writer.rows) != 0 {
		t.Fatalf("expected no rows for non-order event, got %d", len(writer.rows))
	}
}

func TestHandlerRejectsMalformedPayload(t *testing.T) {
	writer := &stubRowWriter{}
	handler := NewOrderEventHandler(writer)

	err := handler.Handle(context.Background(), Envelope{
		EventID:   uuid.NewString(),
		EventType: enums.EventOrderCreated,
		Payload:   json.RawMessage(`{"order_id": 42}`),
	})
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if len(writer.rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(writer.rows))
	}
}
