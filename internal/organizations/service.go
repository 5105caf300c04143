package organizations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ParzivalXIII/inventory-management-system/internal/users"
	"github.com/ParzivalXIII/inventory-management-system/pkg/config"
	"github.com/ParzivalXIII/inventory-management-system/pkg/db"
	"github.com/ParzivalXIII/inventory-management-system/pkg/db/models"
	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
	"github.com/ParzivalXIII/inventory-management-system/pkg/security"
)

type organizationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
}

type usersRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.User, error)
	SetActive(ctx context.Context, orgID, id uuid.UUID, active bool) (int64, error)
}

// Service exposes tenant operations scoped by organization.
type Service interface {
	Get(ctx context.Context, orgID uuid.UUID) (*OrganizationDTO, error)
	Rename(ctx context.Context, orgID uuid.UUID, name string) (*OrganizationDTO, error)
	ListUsers(ctx context.Context, orgID uuid.UUID) ([]users.UserDTO, error)
	InviteUser(ctx context.Context, orgID uuid.UUID, input InviteUserInput) (*users.UserDTO, string, error)
	DeactivateUser(ctx context.Context, orgID, actorID, targetID uuid.UUID) error
}

// InviteUserInput captures the data required to invite an organization user.
type InviteUserInput struct {
	Email   string
	IsAdmin bool
}

type service struct {
	repo        organizationRepository
	users       usersRepository
	passwordCfg config.PasswordConfig
}

// NewService builds an organization service with the provided repositories.
func NewService(repo organizationRepository, usersRepo usersRepository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("organization repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{
		repo:        repo,
		users:       usersRepo,
		passwordCfg: passwordCfg,
	}, nil
}

func (s *service) Get(ctx context.Context, orgID uuid.UUID) (*OrganizationDTO, error) {
	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load organization")
	}
	return FromModel(org), nil
}

func (s *service) Rename(ctx context.Context, orgID uuid.UUID, name string) (*OrganizationDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load organization")
	}

	org.Name = name
	if err := s.repo.Update(ctx, org); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "organization name already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rename organization")
	}
	return FromModel(org), nil
}

func (s *service) ListUsers(ctx context.Context, orgID uuid.UUID) ([]users.UserDTO, error) {
	list, err := s.users.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list organization users")
	}
	return users.FromModels(list), nil
}

// InviteUser creates a member with a generated temporary password. The
// password is returned once so the caller can hand it off out of band.
func (s *service) InviteUser(ctx context.Context, orgID uuid.UUID, input InviteUserInput) (*users.UserDTO, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !strings.Contains(email, "@") {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}

	tempPassword, err := security.GenerateTempPassword(16)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:          email,
		PasswordHash:   hash,
		OrganizationID: orgID,
		IsAdmin:        input.IsAdmin,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, "", pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	return users.FromModel(user), tempPassword, nil
}

func (s *service) DeactivateUser(ctx context.Context, orgID, actorID, targetID uuid.UUID) error {
	if actorID == targetID {
		return pkgerrors.New(pkgerrors.CodeConflict, "cannot deactivate your own account")
	}

	affected, err := s.users.SetActive(ctx, orgID, targetID, false)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate user")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}
