package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ordersvc "github.com/ParzivalXIII/inventory-management-system/internal/orders"
	pkgerrors "github.com/ParzivalXIII/inventory-management-system/pkg/errors"
	"github.com/ParzivalXIII/inventory-management-system/pkg/pagination"
)

type stubOrderService struct {
	createFn  func(ctx context.Context, actor ordersvc.Actor, input ordersvc.CreateOrderInput) (*ordersvc.OrderDTO, error)
	getFn     func(ctx context.Context, orgID, id uuid.UUID) (*ordersvc.OrderDTO, error)
	listFn    func(ctx context.Context, orgID uuid.UUID, params pagination.Params) (*ordersvc.OrderList, error)
	fulfillFn func(ctx context.Context, actor ordersvc.Actor, id uuid.UUID) (*ordersvc.OrderDTO, error)
}

func (s stubOrderService) Create(ctx context.Context, actor ordersvc.Actor, input ordersvc.CreateOrderInput) (*ordersvc.OrderDTO, error) {
	return s.createFn(ctx, actor, input)
}

func (s stubOrderService) Get(ctx context.Context, orgID, id uuid.UUID) (*ordersvc.OrderDTO, error) {
	return s.getFn(ctx, orgID, id)
}

func (s stubOrderService) List(ctx context.Context, orgID uuid.UUID, params pagination.Params) (*ordersvc.OrderList, error) {
	return s.listFn(ctx, orgID, params)
}

func (s stubOrderService) Fulfill(ctx context.Context, actor ordersvc.Actor, id uuid.UUID) (*ordersvc.OrderDTO, error) {
	return s.fulfillFn(ctx, actor, id)
}

func TestCreateOrderReturns201(t *testing.T) {
	orgID := uuid.New()
	productID := uuid.New()
	svc := stubOrderService{
		createFn: func(ctx context.Context, actor ordersvc.Actor, input ordersvc.CreateOrderInput) (*ordersvc.OrderDTO, error) {
			if input.ProductID != productID || input.Quantity != 3 {
				t.Fatalf("unexpected input %+v", input)
			}
			return &ordersvc.OrderDTO{
				ID:             uuid.New(),
				OrganizationID: actor.OrganizationID,
				ProductID:      input.ProductID,
				Quantity:       input.Quantity,
				TotalPrice:     decimal.RequireFromString("59.97"),
			}, nil
		},
	}

	body := `{"product_id":"` + productID.String() + `","quantity":3}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)), uuid.New(), orgID)
	resp := httptest.NewRecorder()
	CreateOrder(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data ordersvc.OrderDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrganizationID != orgID {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestCreateOrderRejectsZeroQuantity(t *testing.T) {
	svc := stubOrderService{
		createFn: func(ctx context.Context, actor ordersvc.Actor, input ordersvc.CreateOrderInput) (*ordersvc.OrderDTO, error) {
			t.Fatalf("service must not be called on invalid body")
			return nil, nil
		},
	}

	body := `{"product_id":"` + uuid.NewString() + `","quantity":0}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)), uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	CreateOrder(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestListOrdersReturnsMeta(t *testing.T) {
	svc := stubOrderService{
		listFn: func(ctx context.Context, orgID uuid.UUID, params pagination.Params) (*ordersvc.OrderList, error) {
			return &ordersvc.OrderList{
				Orders:     []ordersvc.OrderDTO{{ID: uuid.New()}, {ID: uuid.New()}},
				NextCursor: "cursor",
			}, nil
		},
	}

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/orders", nil), uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	ListOrders(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data []ordersvc.OrderDTO `json:"data"`
		Meta struct {
			NextCursor string `json:"next_cursor"`
			Count      int    `json:"count"`
		} `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Meta.Count != 2 || envelope.Meta.NextCursor != "cursor" {
		t.Fatalf("unexpected meta %+v", envelope.Meta)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	svc := stubOrderService{
		getFn: func(ctx context.Context, orgID, id uuid.UUID) (*ordersvc.OrderDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		},
	}

	orderID := uuid.New()
	req := withIdentity(httptest.NewRequest(http.MethodGet, "/orders/"+orderID.String(), nil), uuid.New(), uuid.New())
	req = withURLParam(req, "orderID", orderID.String())
	resp := httptest.NewRecorder()
	GetOrder(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestFulfillOrderReturnsUpdatedOrder(t *testing.T) {
	orderID := uuid.New()
	svc := stubOrderService{
		fulfillFn: func(ctx context.Context, actor ordersvc.Actor, id uuid.UUID) (*ordersvc.OrderDTO, error) {
			if id != orderID {
				t.Fatalf("unexpected id %s", id)
			}
			return &ordersvc.OrderDTO{ID: id, IsFulfilled: true}, nil
		},
	}

	req := withIdentity(httptest.NewRequest(http.MethodPut, "/orders/"+orderID.String()+"/fulfilled", nil), uuid.New(), uuid.New())
	req = withURLParam(req, "orderID", orderID.String())
	resp := httptest.NewRecorder()
	FulfillOrder(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data ordersvc.OrderDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.IsFulfilled {
		t.Fatalf("expected fulfilled order, got %+v", envelope.Data)
	}
}

func TestFulfillOrderSecondCallConflicts(t *testing.T) {
	svc := stubOrderService{
		fulfillFn: func(ctx context.Context, actor ordersvc.Actor, id uuid.UUID) (*ordersvc.OrderDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already fulfilled")
		},
	}

	orderID := uuid.New()
	req := withIdentity(httptest.NewRequest(http.MethodPut, "/orders/"+orderID.String()+"/fulfilled", nil), uuid.New(), uuid.New())
	req = withURLParam(req, "orderID", orderID.String())
	resp := httptest.NewRecorder()
	FulfillOrder(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}
