package organizations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ParzivalXIII/inventory-management-system/pkg/db/models"
)

// Repository handles organization persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to organization operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new organization row.
func (r *Repository) Create(ctx context.Context, dto CreateOrganizationDTO) (*models.Organization, error) {
	org := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}

// FindByID loads an organization by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// Update saves the provided organization.
func (r *Repository) Update(ctx context.Context, org *models.Organization) error {
	if org == nil {
		return fmt.Errorf("organization is required")
	}
	return r.db.WithContext(ctx).Save(org).Error
}
