package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ParzivalXIII/inventory-management-system/api/middleware"
	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
)

// callerIdentity resolves the authenticated user and organization from the
// request context seeded by the auth middleware.
func callerIdentity(r *http.Request) (userID, orgID uuid.UUID, err error) {
	rawUser := middleware.UserIDFromContext(r.Context())
	rawOrg := middleware.OrgIDFromContext(r.Context())
	if rawUser == "" || rawOrg == "" {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "could not validate credentials")
	}

	userID, err = uuid.Parse(rawUser)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	orgID, err = uuid.Parse(rawOrg)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid organization id")
	}
	return userID, orgID, nil
}
