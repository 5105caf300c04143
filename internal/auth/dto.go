package auth

import (
	"github.com/ParzivalXIII/inventory-management-system/internal/organizations"
	"github.com/ParzivalXIII/inventory-management-system/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the rotation material for the refresh endpoint.
type RefreshRequest struct {
	UserID       string `json:"user_id" validate:"required,uuid"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is the bearer credential payload returned by signup, login, and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse contains the tokens and identity produced by a successful login.
type LoginResponse struct {
	TokenPair
	User         *users.UserDTO                 `json:"user"`
	Organization *organizations.OrganizationDTO `json:"organization"`
}

// SignupResponse mirrors LoginResponse for the onboarding flow.
type SignupResponse = LoginResponse
