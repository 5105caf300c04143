package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ParzivalXIII/inventory-management-system/pkg/db/models"
	"github.com/ParzivalXIII/inventory-management-system/pkg/pagination"
)

// Repository handles product persistence scoped by organization.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to product operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithTx inserts a new product row using the provided transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, product *models.Product) (*models.Product, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	if err := tx.Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID loads a product belonging to the organization.
func (r *Repository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns a cursor page of the organization's products, newest first.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.Product, string, error) {
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

	var rows []models.Product
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

// Update saves the provided product.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes the product scoped to its organization. Returns rows touched.
func (r *Repository) Delete(ctx context.Context, orgID, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&models.Product{})
	return res.RowsAffected, res.Error
}

// CountOrderReferences reports how many orders point at the product.
func (r *Repository) CountOrderReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("product_id = ?", id).
		Count(&count).Error
	return count, err
}

// FindByIDWithTx loads a product using the provided transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, orgID, id uuid.UUID) (*models.Product, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var product models.Product
	err := tx.
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateWithTx persists the product using the provided transaction.
func (r *Repository) UpdateWithTx(tx *gorm.DB, product *models.Product) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Save(product).Error
}
