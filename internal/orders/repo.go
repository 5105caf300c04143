package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ParzivalXIII/inventory-management-system/pkg/db/models"
	"github.com/ParzivalXIII/inventory-management-system/pkg/pagination"
)

// Repository handles order persistence scoped by organization.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to order operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithTx inserts a new order row using the provided transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, order *models.Order) (*models.Order, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	if err := tx.Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order belonging to the organization.
func (r *Repository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDWithTx loads an order using the provided transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, orgID, id uuid.UUID) (*models.Order, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var order models.Order
	err := tx.
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateWithTx persists the order using the provided transaction.
func (r *Repository) UpdateWithTx(tx *gorm.DB, order *models.Order) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Save(order).Error
}

// List returns a cursor page of the organization's orders, newest first.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC, id DESC").
		Limit(limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	pageSize := pagination.NormalizeLimit(params.Limit)
	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return rows, nextCursor, nil
}
