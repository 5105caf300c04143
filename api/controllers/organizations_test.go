package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	orgsvc "github.com/ParzivalXIII/inventory-management-system/internal/organizations"
	"github.com/ParzivalXIII/inventory-management-system/internal/users"
	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
)

type stubOrganizationService struct {
	getFn        func(ctx context.Context, orgID uuid.UUID) (*orgsvc.OrganizationDTO, error)
	renameFn     func(ctx context.Context, orgID uuid.UUID, name string) (*orgsvc.OrganizationDTO, error)
	listUsersFn  func(ctx context.Context, orgID uuid.UUID) ([]users.UserDTO, error)
	inviteFn     func(ctx context.Context, orgID uuid.UUID, input orgsvc.InviteUserInput) (*users.UserDTO, string, error)
	deactivateFn func(ctx context.Context, orgID, actorID, targetID uuid.UUID) error
}

func (s stubOrganizationService) Get(ctx context.Context, orgID uuid.UUID) (*orgsvc.OrganizationDTO, error) {
	return s.getFn(ctx, orgID)
}

func (s stubOrganizationService) Rename(ctx context.Context, orgID uuid.UUID, name string) (*orgsvc.OrganizationDTO, error) {
	return s.renameFn(ctx, orgID, name)
}

func (s stubOrganizationService) ListUsers(ctx context.Context, orgID uuid.UUID) ([]users.UserDTO, error) {
	return s.listUsersFn(ctx, orgID)
}

func (s stubOrganizationService) InviteUser(ctx context.Context, orgID uuid.UUID, input orgsvc.InviteUserInput) (*users.UserDTO, string, error) {
	return s.inviteFn(ctx, orgID, input)
}

func (s stubOrganizationService) DeactivateUser(ctx context.Context, orgID, actorID, targetID uuid.UUID) error {
	return s.deactivateFn(ctx, orgID, actorID, targetID)
}

func TestGetMyOrganization(t *testing.T) {
	orgID := uuid.New()
	svc := stubOrganizationService{
		getFn: func(ctx context.Context, gotOrg uuid.UUID) (*orgsvc.OrganizationDTO, error) {
			if gotOrg != orgID {
				t.Fatalf("unexpected organization %s", gotOrg)
			}
			return &orgsvc.OrganizationDTO{ID: orgID, Name: "acme"}, nil
		},
	}

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/organizations/me", nil), uuid.New(), orgID)
	resp := httptest.NewRecorder()
	GetMyOrganization(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data orgsvc.OrganizationDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Name != "acme" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestRenameMyOrganizationRejectsBlankName(t *testing.T) {
	svc := stubOrganizationService{
		renameFn: func(ctx context.Context, orgID uuid.UUID, name string) (*orgsvc.OrganizationDTO, error) {
			t.Fatalf("service must not be called on invalid body")
			return nil, nil
		},
	}

	req := withIdentity(httptest.NewRequest(http.MethodPatch, "/organizations/me", strings.NewReader(`{"name":""}`)), uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	RenameMyOrganization(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestInviteOrganizationUserReturnsTempPassword(t *testing.T) {
	orgID := uuid.New()
	svc := stubOrganizationService{
		inviteFn: func(ctx context.Context, gotOrg uuid.UUID, input orgsvc.InviteUserInput) (*users.UserDTO, string, error) {
			if gotOrg != orgID || input.Email != "member@example.com" || !input.IsAdmin {
				t.Fatalf("unexpected invite %s %+v", gotOrg, input)
			}
			return &users.UserDTO{ID: uuid.New(), Email: input.Email, OrganizationID: orgID, IsAdmin: true}, "temp-pass", nil
		},
	}

	body := `{"email":"member@example.com","is_admin":true}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/organizations/me/users", strings.NewReader(body)), uuid.New(), orgID)
	resp := httptest.NewRecorder()
	InviteOrganizationUser(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			User         users.UserDTO `json:"user"`
			TempPassword string        `json:"temp_password"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TempPassword != "temp-pass" {
		t.Fatalf("expected temp password in payload, got %+v", envelope.Data)
	}
}

func TestDeactivateOrganizationUserRejectsBadID(t *testing.T) {
	svc := stubOrganizationService{
		deactivateFn: func(ctx context.Context, orgID, actorID, targetID uuid.UUID) error {
			t.Fatalf("service must not be called for malformed id")
			return nil
		},
	}

	req := withIdentity(httptest.NewRequest(http.MethodDelete, "/organizations/me/users/not-a-uuid", nil), uuid.New(), uuid.New())
	req = withURLParam(req, "userID", "not-a-uuid")
	resp := httptest.NewRecorder()
	DeactivateOrganizationUser(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDeactivateOrganizationUserSelfConflict(t *testing.T) {
	actorID := uuid.New()
	svc := stubOrganizationService{
		deactivateFn: func(ctx context.Context, orgID, gotActor, targetID uuid.UUID) error {
			if gotActor != actorID || targetID != actorID {
				t.Fatalf("unexpected ids actor=%s target=%s", gotActor, targetID)
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot deactivate your own account")
		},
	}

	req := withIdentity(httptest.NewRequest(http.MethodDelete, "/organizations/me/users/"+actorID.String(), nil), actorID, uuid.New())
	req = withURLParam(req, "userID", actorID.String())
	resp := httptest.NewRecorder()
	DeactivateOrganizationUser(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}
