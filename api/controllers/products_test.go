package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ParzivalXIII/inventory-management-system/api/middleware"
	productsvc "github.com/ParzivalXIII/inventory-management-system/internal/products"
	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
	"github.com/ParzivalXIII/inventory-management-system/pkg/pagination"
)

// withIdentity seeds the context the auth middleware normally populates.
func withIdentity(req *http.Request, userID, orgID uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithOrgID(ctx, orgID.String())
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

type stubProductService struct {
	createFn func(ctx context.Context, actor productsvc.Actor, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error)
	getFn    func(ctx context.Context, orgID, id uuid.UUID) (*productsvc.ProductDTO, error)
	listFn   func(ctx context.Context, orgID uuid.UUID, params pagination.Params) (*productsvc.ProductList, error)
	updateFn func(ctx context.Context, actor productsvc.Actor, id uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.ProductDTO, error)
	deleteFn func(ctx context.Context, orgID, id uuid.UUID) error
}

func (s stubProductService) Create(ctx context.Context, actor productsvc.Actor, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	return s.createFn(ctx, actor, input)
}

func (s stubProductService) Get(ctx context.Context, orgID, id uuid.UUID) (*productsvc.ProductDTO, error) {
	return s.getFn(ctx, orgID, id)
}

func (s stubProductService) List(ctx context.Context, orgID uuid.UUID, params pagination.Params) (*productsvc.ProductList, error) {
	return s.listFn(ctx, orgID, params)
}

func (s stubProductService) Update(ctx context.Context, actor productsvc.Actor, id uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
	return s.updateFn(ctx, actor, id, input)
}

func (s stubProductService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return s.deleteFn(ctx, orgID, id)
}

func TestCreateProductReturns201(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	productID := uuid.New()

	svc := stubProductService{
		createFn: func(ctx context.Context, actor productsvc.Actor, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
			if actor.OrganizationID != orgID {
				t.Fatalf("unexpected organization %s", actor.OrganizationID)
			}
			if input.Name != "widget" {
				t.Fatalf("unexpected name %q", input.Name)
			}
			return &productsvc.ProductDTO{ID: productID, OrganizationID: orgID, Name: input.Name, Price: input.Price}, nil
		},
	}

	body := `{"name":"widget","price":"19.99","quantity":5}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body)), userID, orgID)
	resp := httptest.NewRecorder()
	CreateProduct(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data productsvc.ProductDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != productID {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestCreateProductRejectsMissingName(t *testing.T) {
	svc := stubProductService{
		createFn: func(ctx context.Context, actor productsvc.Actor, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
			t.Fatalf("service must not be called on invalid body")
			return nil, nil
		},
	}

	body := `{"price":"9.99"}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body)), uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	CreateProduct(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreateProductRequiresIdentity(t *testing.T) {
	svc := stubProductService{
		createFn: func(ctx context.Context, actor productsvc.Actor, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
			t.Fatalf("service must not be called without identity")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"name":"x","price":"1"}`))
	resp := httptest.NewRecorder()
	CreateProduct(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestListProductsForwardsPagination(t *testing.T) {
	orgID := uuid.New()
	svc := stubProductService{
		listFn: func(ctx context.Context, gotOrg uuid.UUID, params pagination.Params) (*productsvc.ProductList, error) {
			if gotOrg != orgID {
				t.Fatalf("unexpected organization %s", gotOrg)
			}
			if params.Limit != 5 || params.Cursor != "abc" {
				t.Fatalf("unexpected params %+v", params)
			}
			return &productsvc.ProductList{
				Products:   []productsvc.ProductDTO{{ID: uuid.New(), Name: "widget"}},
				NextCursor: "next",
			}, nil
		},
	}

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/products?limit=5&cursor=abc", nil), uuid.New(), orgID)
	resp := httptest.NewRecorder()
	ListProducts(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data []productsvc.ProductDTO `json:"data"`
		Meta struct {
			NextCursor string `json:"next_cursor"`
			Count      int    `json:"count"`
		} `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Meta.NextCursor != "next" || envelope.Meta.Count != 1 {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
}

func TestGetProductRejectsBadID(t *testing.T) {
	svc := stubProductService{
		getFn: func(ctx context.Context, orgID, id uuid.UUID) (*productsvc.ProductDTO, error) {
			t.Fatalf("service must not be called for malformed id")
			return nil, nil
		},
	}

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/products/not-a-uuid", nil), uuid.New(), uuid.New())
	req = withURLParam(req, "productID", "not-a-uuid")
	resp := httptest.NewRecorder()
	GetProduct(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetProductNotFound(t *testing.T) {
	svc := stubProductService{
		getFn: func(ctx context.Context, orgID, id uuid.UUID) (*productsvc.ProductDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		},
	}

	productID := uuid.New()
	req := withIdentity(httptest.NewRequest(http.MethodGet, "/products/"+productID.String(), nil), uuid.New(), uuid.New())
	req = withURLParam(req, "productID", productID.String())
	resp := httptest.NewRecorder()
	GetProduct(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestUpdateProductForwardsPartialBody(t *testing.T) {
	orgID := uuid.New()
	productID := uuid.New()
	svc := stubProductService{
		updateFn: func(ctx context.Context, actor productsvc.Actor, id uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
			if id != productID {
				t.Fatalf("unexpected id %s", id)
			}
			if input.Quantity == nil || *input.Quantity != 2 {
				t.Fatalf("unexpected quantity %+v", input.Quantity)
			}
			if input.Name != nil {
				t.Fatalf("name must stay unset")
			}
			return &productsvc.ProductDTO{ID: id, OrganizationID: orgID, Quantity: 2, Price: decimal.Zero}, nil
		},
	}

	req := withIdentity(httptest.NewRequest(http.MethodPut, "/products/"+productID.String(), strings.NewReader(`{"quantity":2}`)), uuid.New(), orgID)
	req = withURLParam(req, "productID", productID.String())
	resp := httptest.NewRecorder()
	UpdateProduct(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDeleteProductConflict(t *testing.T) {
	svc := stubProductService{
		deleteFn: func(ctx context.Context, orgID, id uuid.UUID) error {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "product has orders and cannot be deleted")
		},
	}

	productID := uuid.New()
	req := withIdentity(httptest.NewRequest(http.MethodDelete, "/products/"+productID.String(), nil), uuid.New(), uuid.New())
	req = withURLParam(req, "productID", productID.String())
	resp := httptest.NewRecorder()
	DeleteProduct(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}
