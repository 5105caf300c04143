package warehouse

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ParzivalXIII/inventory-management-system/pkg/enums"
	"github.com/ParzivalXIII/inventory-management-system/pkg/outbox/payloads"
	"github.com/ParzivalXIII/inventory-management-system/pkg/outbox/registry"
)

// Handler defines how to process warehouse envelopes.
type Handler interface {
	Handle(ctx context.Context, envelope Envelope) error
}

// HandlerFunc adapts functions to the Handler interface.
type HandlerFunc func(ctx context.Context, envelope Envelope) error

// Handle calls the underlying function.
func (fn HandlerFunc) Handle(ctx context.Context, envelope Envelope) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, envelope)
}

type rowWriter interface {
	Insert(ctx context.Context, row OrderEventRow) error
}

func orderDecoders() *registry.DecoderRegistry {
	reg := registry.NewDecoderRegistry()
	reg.Register(enums.EventOrderCreated, 1, func(payload json.RawMessage) (interface{}, error) {
		var data payloads.OrderCreatedEvent
		if err := json.Unmarshal(payload, &data); err != nil {
			return nil, err
		}
		return data, nil
	})
	reg.Register(enums.EventOrderFulfilled, 1, func(payload json.RawMessage) (interface{}, error) {
		var data payloads.OrderFulfilledEvent
		if err := json.Unmarshal(payload, &data); err != nil {
			return nil, err
		}
		return data, nil
	})
	return reg
}

// NewOrderEventHandler flattens order envelopes into warehouse rows.
// Envelopes with event types outside the order family are dropped silently.
func NewOrderEventHandler(writer rowWriter) Handler {
	decoders := orderDecoders()
	return HandlerFunc(func(ctx context.Context, envelope Envelope) error {
		row, err := buildRow(decoders, envelope)
		if err != nil {
			return err
		}
		if row == nil {
			return nil
		}
		return writer.Insert(ctx, *row)
	})
}

func buildRow(decoders *registry.DecoderRegistry, envelope Envelope) (*OrderEventRow, error) {
	switch envelope.EventType {
	case enums.EventOrderCreated, enums.EventOrderFulfilled:
	default:
		// Not an order event; nothing to warehouse.
		return nil, nil
	}

	version := envelope.Version
	if version <= 0 {
		version = 1
	}

	decoded, err := decoders.Decode(envelope.EventType, version, envelope.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", envelope.EventType, err)
	}

	row := OrderEventRow{
		EventID:    envelope.EventID,
		EventType:  string(envelope.EventType),
		OccurredAt: envelope.OccurredAt,
		Payload:    string(envelope.Payload),
	}

	switch data := decoded.(type) {
	case payloads.OrderCreatedEvent:
		row.OrderID = data.OrderID.String()
		row.OrganizationID = data.OrganizationID.String()
		row.ProductID = data.ProductID.String()
		row.Quantity = int64(data.Quantity)
		row.TotalPrice = data.TotalPrice.InexactFloat64()
		row.IsFulfilled = false
	case payloads.OrderFulfilledEvent:
		row.OrderID = data.OrderID.String()
		row.OrganizationID = data.OrganizationID.String()
		row.ProductID = data.ProductID.String()
		row.IsFulfilled = true
	default:
		return nil, fmt.Errorf("unexpected decoded type %T for %s", decoded, envelope.EventType)
	}

	return &row, nil
}
