package organizations

import (
	"time"

	"github.com/google/uuid"

	"github.com/ParzivalXIII/inventory-management-system/pkg/db/models"
)

// OrganizationDTO is the transport shape for a tenant.
type OrganizationDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateOrganizationDTO holds the data required to persist a new tenant.
type CreateOrganizationDTO struct {
	Name string
}

func FromModel(o *models.Organization) *OrganizationDTO {
	if o == nil {
		return nil
	}
	return &OrganizationDTO{
		ID:        o.ID,
		Name:      o.Name,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func (c CreateOrganizationDTO) ToModel() *models.Organization {
	return &models.Organization{Name: c.Name}
}
