package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ParzivalXIII/inventory-management-system/internal/organizations"
	"github.com/ParzivalXIII/inventory-management-system/internal/users"
	pkgAuth "github.com/ParzivalXIII/inventory-management-system/pkg/auth"
	"github.com/ParzivalXIII/inventory-management-system/pkg/auth/session"
	"github.com/ParzivalXIII/inventory-management-system/pkg/config"
	"github.com/ParzivalXIII/inventory-management-system/pkg/db"
	"github.com/ParzivalXIII/inventory-management-system/pkg/db/models"
	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
	"github.com/ParzivalXIII/inventory-management-system/pkg/security"
)

// SignupRequest contains the payload required for onboarding a new tenant.
type SignupRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	OrganizationName string `json:"organization_name" validate:"required"`
}

// SignupService handles the onboarding transaction.
type SignupService interface {
	Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type signupUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type signupOrganizationRepository interface {
	Create(ctx context.Context, dto organizations.CreateOrganizationDTO) (*models.Organization, error)
}

// SignupServiceParams packages the dependencies for the signup flow. The repo
// factories default to the real repositories bound to the active transaction.
type SignupServiceParams struct {
	TxRunner        txRunner
	UserRepoFactory func(tx *gorm.DB) signupUserRepository
	OrgRepoFactory  func(tx *gorm.DB) signupOrganizationRepository
	SessionManager  sessionManager
	PasswordConfig  config.PasswordConfig
	JWTConfig       config.JWTConfig
}

type signupService struct {
	tx          txRunner
	userRepos   func(tx *gorm.DB) signupUserRepository
	orgRepos    func(tx *gorm.DB) signupOrganizationRepository
	session     sessionManager
	passwordCfg config.PasswordConfig
	jwtCfg      config.JWTConfig
}

// NewSignupService builds a signup service with the provided dependencies.
func NewSignupService(params SignupServiceParams) (SignupService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager required")
	}
	if params.UserRepoFactory == nil {
		params.UserRepoFactory = func(tx *gorm.DB) signupUserRepository {
			return users.NewRepository(tx)
		}
	}
	if params.OrgRepoFactory == nil {
		params.OrgRepoFactory = func(tx *gorm.DB) signupOrganizationRepository {
			return organizations.NewRepository(tx)
		}
	}
	return &signupService{
		tx:          params.TxRunner,
		userRepos:   params.UserRepoFactory,
		orgRepos:    params.OrgRepoFactory,
		session:     params.SessionManager,
		passwordCfg: params.PasswordConfig,
		jwtCfg:      params.JWTConfig,
	}, nil
}

// Signup creates the organization and its first admin user in one transaction,
// then issues the initial token pair.
func (s *signupService) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	orgName := strings.TrimSpace(req.OrganizationName)
	if orgName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization_name is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var (
		user *models.User
		org  *models.Organization
	)
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepos(tx)
		orgRepo := s.orgRepos(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "user already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		org, err = orgRepo.Create(ctx, organizations.CreateOrganizationDTO{Name: orgName})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "organization name already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create organization")
		}

		user, err = userRepo.Create(ctx, users.CreateUserDTO{
			Email:          email,
			PasswordHash:   passwordHash,
			OrganizationID: org.ID,
			IsAdmin:        true,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "user already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	now := time.Now().UTC()
	accessID := session.NewAccessID()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:         user.ID,
		OrganizationID: org.ID,
		IsAdmin:        true,
		JTI:            accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &SignupResponse{
		TokenPair: TokenPair{
			AccessToken:  token,
			TokenType:    "bearer",
			ExpiresIn:    s.jwtCfg.ExpirationMinutes * 60,
			RefreshToken: refreshToken,
		},
		User:         users.FromModel(user),
		Organization: organizations.FromModel(org),
	}, nil
}
