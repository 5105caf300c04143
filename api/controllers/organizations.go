package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ParzivalXIII/inventory-management-system/api/responses"
	"github.com/ParzivalXIII/inventory-management-system/api/validators"
	orgsvc "github.com/ParzivalXIII/inventory-management-system/internal/organizations"
	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
	"github.com/ParzivalXIII/inventory-management-system/pkg/logger"
)

type renameOrganizationRequest struct {
	Name string `json:"name" validate:"required"`
}

type inviteUserRequest struct {
	Email   string `json:"email" validate:"required,email"`
	IsAdmin bool   `json:"is_admin"`
}

type invitedUserResponse struct {
	User         any    `json:"user"`
	TempPassword string `json:"temp_password"`
}

// GetMyOrganization returns the caller's organization.
func GetMyOrganization(svc orgsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "organization service unavailable"))
			return
		}

		_, orgID, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		org, err := svc.Get(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, org)
	}
}

// RenameMyOrganization renames the caller's organization (admin only).
func RenameMyOrganization(svc orgsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "organization service unavailable"))
			return
		}

		_, orgID, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body renameOrganizationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		org, err := svc.Rename(r.Context(), orgID, body.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, org)
	}
}

// ListOrganizationUsers lists the organization's members (admin only).
func ListOrganizationUsers(svc orgsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "organization service unavailable"))
			return
		}

		_, orgID, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListUsers(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// InviteOrganizationUser creates a member with a one-time temporary password
// (admin only). The password appears in this response and nowhere else.
func InviteOrganizationUser(svc orgsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "organization service unavailable"))
			return
		}

		_, orgID, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body inviteUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, tempPassword, err := svc.InviteUser(r.Context(), orgID, orgsvc.InviteUserInput{
			Email:   body.Email,
			IsAdmin: body.IsAdmin,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, invitedUserResponse{
			User:         user,
			TempPassword: tempPassword,
		})
	}
}

// DeactivateOrganizationUser flips a member inactive (admin only).
func DeactivateOrganizationUser(svc orgsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "organization service unavailable"))
			return
		}

		userID, orgID, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		if err := svc.DeactivateUser(r.Context(), orgID, userID, targetID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
