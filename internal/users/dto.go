package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/ParzivalXIII/inventory-management-system/pkg/db/models"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	IsAdmin        bool       `json:"is_admin"`
	IsActive       bool       `json:"is_active"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email          string
	PasswordHash   string
	OrganizationID uuid.UUID
	IsAdmin        bool
	IsActive       *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:             u.ID,
		Email:          u.Email,
		OrganizationID: u.OrganizationID,
		IsAdmin:        u.IsAdmin,
		IsActive:       u.IsActive,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func FromModels(list []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}

	return &models.User{
		Email:          c.Email,
		PasswordHash:   c.PasswordHash,
		OrganizationID: c.OrganizationID,
		IsAdmin:        c.IsAdmin,
		IsActive:       isActive,
	}
}
