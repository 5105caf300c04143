package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ParzivalXIII/inventory-management-system/pkg/config"
	"github.com/ParzivalXIII/inventory-management-system/pkg/db/models"
	"github.com/ParzivalXIII/inventory-management-system/pkg/enums"
	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
	"github.com/ParzivalXIII/inventory-management-system/pkg/outbox"
	"github.com/ParzivalXIII/inventory-management-system/pkg/outbox/payloads"
	"github.com/ParzivalXIII/inventory-management-system/pkg/pagination"
)

// Service exposes organization-scoped product operations.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateProductInput) (*ProductDTO, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, orgID uuid.UUID, params pagination.Params) (*ProductList, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// Actor identifies the authenticated caller for event attribution.
type Actor struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productRepository interface {
	CreateWithTx(tx *gorm.DB, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Product, error)
	FindByIDWithTx(tx *gorm.DB, orgID, id uuid.UUID) (*models.Product, error)
	UpdateWithTx(tx *gorm.DB, product *models.Product) error
	List(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.Product, string, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) (int64, error)
	CountOrderReferences(ctx context.Context, id uuid.UUID) (int64, error)
}

type service struct {
	tx        txRunner
	repo      productRepository
	outbox    outboxEmitter
	threshold int
}

// NewService builds a product service with the provided dependencies.
func NewService(tx txRunner, repo productRepository, emitter outboxEmitter, cfg config.InventoryConfig) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		outbox:    emitter,
		threshold: cfg.LowStockThreshold,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	product := &models.Product{
		OrganizationID: actor.OrganizationID,
		Name:           name,
		Description:    input.Description,
		Price:          input.Price,
		Quantity:       input.Quantity,
	}

	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.CreateWithTx(tx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
		}
		return s.maybeEmitLowStock(ctx, tx, actor, product)
	})
	if txErr != nil {
		return nil, txErr
	}
	return FromModel(product), nil
}

func (s *service) Get(ctx context.Context, orgID, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return FromModel(product), nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID, params pagination.Params) (*ProductList, error) {
	rows, nextCursor, err := s.repo.List(ctx, orgID, params)
	if err != nil {
		if strings.Contains(err.Error(), "cursor") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	list := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		list = append(list, *FromModel(&rows[i]))
	}
	return &ProductList{Products: list, NextCursor: nextCursor}, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be blank")
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Quantity != nil && *input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	var product *models.Product
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		product, err = s.repo.FindByIDWithTx(tx, actor.OrganizationID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		if input.Name != nil {
			product.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			product.Description = input.Description
		}
		if input.Price != nil {
			product.Price = *input.Price
		}
		quantityChanged := false
		if input.Quantity != nil && *input.Quantity != product.Quantity {
			product.Quantity = *input.Quantity
			quantityChanged = true
		}

		if err := s.repo.UpdateWithTx(tx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
		}

		if quantityChanged {
			return s.maybeEmitLowStock(ctx, tx, actor, product)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return FromModel(product), nil
}

func (s *service) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, orgID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	referenced, err := s.repo.CountOrderReferences(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check order references")
	}
	if referenced > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "product has orders and cannot be deleted")
	}

	affected, err := s.repo.Delete(ctx, orgID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// maybeEmitLowStock appends a product.low_stock event when the written
// quantity lands at or below the configured threshold. Repeated writes while
// the product stays low reuse the pending outbox row instead of stacking
// duplicate alerts.
func (s *service) maybeEmitLowStock(ctx context.Context, tx *gorm.DB, actor Actor, product *models.Product) error {
	if s.threshold <= 0 || product.Quantity > s.threshold {
		return nil
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventProductLowStock,
		AggregateType: enums.AggregateProduct,
		AggregateID:   product.ID,
		Actor: &outbox.ActorRef{
			UserID:         actor.UserID,
			OrganizationID: actor.OrganizationID,
		},
		Version: 1,
		Data: payloads.ProductLowStockEvent{
			ProductID:      product.ID,
			OrganizationID: product.OrganizationID,
			ProductName:    product.Name,
			Quantity:       product.Quantity,
			Threshold:      s.threshold,
		},
	}
	if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue low stock event")
	}
	return nil
}
