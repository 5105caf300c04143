package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailySales is one aggregated day of order totals.
type DailySales struct {
	Day   string  `gorm:"column:day"`
	Total float64 `gorm:"column:total"`
}

// InventoryLevel is a product name with its on-hand quantity.
type InventoryLevel struct {
	Name     string `gorm:"column:name"`
	Quantity int    `gorm:"column:quantity"`
}

// Repository runs the read-side aggregate queries over orders and products.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to the analytics queries.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SalesTrend sums order totals per calendar day for the organization.
func (r *Repository) SalesTrend(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]DailySales, error) {
	var rows []DailySales
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("DATE(order_date) AS day, SUM(total_price) AS total").
		Where("organization_id = ? AND order_date >= ? AND order_date <= ?", orgID, start, end).
		Group("DATE(order_date)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// InventoryLevels lists product names and quantities for the organization,
// ordered by name.
func (r *Repository) InventoryLevels(ctx context.Context, orgID uuid.UUID) ([]InventoryLevel, error) {
	var rows []InventoryLevel
	err := r.db.WithContext(ctx).
		Table("products").
		Select("name, quantity").
		Where("organization_id = ?", orgID).
		Order("name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AverageOrderTotal computes AVG(total_price) for the organization and range.
// Returns 0 when the range has no orders.
func (r *Repository) AverageOrderTotal(ctx context.Context, orgID uuid.UUID, start, end time.Time) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("AVG(total_price)").
		Where("organization_id = ? AND order_date >= ? AND order_date <= ?", orgID, start, end).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
