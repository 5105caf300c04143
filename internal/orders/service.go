package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ParzivalXIII/inventory-management-system/pkg/db/models"
	"github.com/ParzivalXIII/inventory-management-system/pkg/enums"
	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
	"github.com/ParzivalXIII/inventory-management-system/pkg/outbox"
	"github.com/ParzivalXIII/inventory-management-system/pkg/outbox/payloads"
	"github.com/ParzivalXIII/inventory-management-system/pkg/pagination"
)

// Service exposes organization-scoped order operations.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateOrderInput) (*OrderDTO, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, orgID uuid.UUID, params pagination.Params) (*OrderList, error)
	Fulfill(ctx context.Context, actor Actor, id uuid.UUID) (*OrderDTO, error)
}

// Actor identifies the authenticated caller for event attribution.
type Actor struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderRepository interface {
	CreateWithTx(tx *gorm.DB, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Order, error)
	FindByIDWithTx(tx *gorm.DB, orgID, id uuid.UUID) (*models.Order, error)
	UpdateWithTx(tx *gorm.DB, order *models.Order) error
	List(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
}

type productFinder interface {
	FindByIDWithTx(tx *gorm.DB, orgID, id uuid.UUID) (*models.Product, error)
}

type service struct {
	tx       txRunner
	repo     orderRepository
	products productFinder
	outbox   outboxEmitter
}

// NewService builds an order service with the provided dependencies.
func NewService(tx txRunner, repo orderRepository, productRepo productFinder, emitter outboxEmitter) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		products: productRepo,
		outbox:   emitter,
	}, nil
}

// Create snapshots the product price into total_price and queues the
// order.created event in the same transaction as the insert.
func (s *service) Create(ctx context.Context, actor Actor, input CreateOrderInput) (*OrderDTO, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	orderDate := time.Now().UTC()
	if input.OrderDate != nil {
		orderDate = input.OrderDate.UTC()
	}

	var order *models.Order
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.products.FindByIDWithTx(tx, actor.OrganizationID, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		order = &models.Order{
			OrganizationID: actor.OrganizationID,
			ProductID:      product.ID,
			Quantity:       input.Quantity,
			TotalPrice:     product.Price.Mul(decimal.NewFromInt(int64(input.Quantity))),
			OrderDate:      orderDate,
		}
		if _, err := s.repo.CreateWithTx(tx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor: &outbox.ActorRef{
				UserID:         actor.UserID,
				OrganizationID: actor.OrganizationID,
			},
			Version: 1,
			Data: payloads.OrderCreatedEvent{
				OrderID:        order.ID,
				OrganizationID: order.OrganizationID,
				ProductID:      order.ProductID,
				Quantity:       order.Quantity,
				TotalPrice:     order.TotalPrice,
				CreatedAt:      orderDate,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue order created event")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return FromModel(order), nil
}

func (s *service) Get(ctx context.Context, orgID, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID, params pagination.Params) (*OrderList, error) {
	rows, nextCursor, err := s.repo.List(ctx, orgID, params)
	if err != nil {
		if strings.Contains(err.Error(), "cursor") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	list := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		list = append(list, *FromModel(&rows[i]))
	}
	return &OrderList{Orders: list, NextCursor: nextCursor}, nil
}

// Fulfill transitions the order to fulfilled exactly once. A second call is a
// state conflict rather than a silent no-op.
func (s *service) Fulfill(ctx context.Context, actor Actor, id uuid.UUID) (*OrderDTO, error) {
	var order *models.Order
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		order, err = s.repo.FindByIDWithTx(tx, actor.OrganizationID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order.IsFulfilled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already fulfilled")
		}

		now := time.Now().UTC()
		order.IsFulfilled = true
		order.FulfilledAt = &now
		if err := s.repo.UpdateWithTx(tx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fulfill order")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderFulfilled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor: &outbox.ActorRef{
				UserID:         actor.UserID,
				OrganizationID: actor.OrganizationID,
			},
			Version: 1,
			Data: payloads.OrderFulfilledEvent{
				OrderID:        order.ID,
				OrganizationID: order.OrganizationID,
				ProductID:      order.ProductID,
				FulfilledAt:    now,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue order fulfilled event")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return FromModel(order), nil
}
