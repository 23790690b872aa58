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

	"github.com/bob-sav/gym-meat-sub000/api/middleware"
	internalorders "github.com/bob-sav/gym-meat-sub000/internal/orders"
	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	pkgerrors "github.com/bob-sav/gym-meat-sub000/pkg/errors"
	"github.com/bob-sav/gym-meat-sub000/pkg/pagination"
)

type stubOrdersService struct {
	setLineFn      func(ctx context.Context, input internalorders.SetLineStateInput) (*internalorders.OrderDetail, error)
	setOrderFn     func(ctx context.Context, input internalorders.SetOrderStateInput) (*internalorders.OrderDetail, error)
	getByCodeFn    func(ctx context.Context, viewer internalorders.Viewer, shortCode int64) (*internalorders.OrderDetail, error)
	lastOrderInput internalorders.SetOrderStateInput
}

func (s *stubOrdersService) SetLineState(ctx context.Context, input internalorders.SetLineStateInput) (*internalorders.OrderDetail, error) {
	if s.setLineFn != nil {
		return s.setLineFn(ctx, input)
	}
	return &internalorders.OrderDetail{}, nil
}

func (s *stubOrdersService) SetOrderStateButcher(ctx context.Context, input internalorders.SetOrderStateInput) (*internalorders.OrderDetail, error) {
	s.lastOrderInput = input
	if s.setOrderFn != nil {
		return s.setOrderFn(ctx, input)
	}
	return &internalorders.OrderDetail{}, nil
}

func (s *stubOrdersService) SetOrderStateGym(ctx context.Context, input internalorders.SetOrderStateInput) (*internalorders.OrderDetail, error) {
	s.lastOrderInput = input
	if s.setOrderFn != nil {
		return s.setOrderFn(ctx, input)
	}
	return &internalorders.OrderDetail{}, nil
}

func (s *stubOrdersService) GetOrder(ctx context.Context, viewer internalorders.Viewer, orderID uuid.UUID) (*internalorders.OrderDetail, error) {
	return &internalorders.OrderDetail{ID: orderID}, nil
}

func (s *stubOrdersService) GetOrderByShortCode(ctx context.Context, viewer internalorders.Viewer, shortCode int64) (*internalorders.OrderDetail, error) {
	if s.getByCodeFn != nil {
		return s.getByCodeFn(ctx, viewer, shortCode)
	}
	return &internalorders.OrderDetail{ShortCode: shortCode}, nil
}

func (s *stubOrdersService) ListOrders(ctx context.Context, viewer internalorders.Viewer, params pagination.Params, filters internalorders.OrderFilters) (*internalorders.OrderList, error) {
	return &internalorders.OrderList{Orders: []internalorders.OrderSummary{}}, nil
}

func withPathParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func asActor(req *http.Request, userID uuid.UUID, role enums.ActorRole) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), userID, role, nil))
}

func TestSetLineStateAppliesTransition(t *testing.T) {
	lineID := uuid.New()
	actorID := uuid.New()
	svc := &stubOrdersService{
		setLineFn: func(ctx context.Context, input internalorders.SetLineStateInput) (*internalorders.OrderDetail, error) {
			if input.LineID != lineID {
				t.Fatalf("unexpected line id %s", input.LineID)
			}
			if input.TargetState != enums.LineStatusReady {
				t.Fatalf("unexpected target %s", input.TargetState)
			}
			if input.ActorUserID != actorID || input.ActorRole != enums.ActorRoleButcher {
				t.Fatalf("actor not forwarded: %+v", input)
			}
			return &internalorders.OrderDetail{ID: uuid.New(), Status: enums.OrderStatusPreparing}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"state":"ready"}`))
	req.Header.Set("Content-Type", "application/json")
	req = asActor(withPathParam(req, "lineId", lineID.String()), actorID, enums.ActorRoleButcher)
	resp := httptest.NewRecorder()
	SetLineState(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data internalorders.OrderDetail `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.OrderStatusPreparing {
		t.Fatalf("unexpected order status %s", envelope.Data.Status)
	}
}

func TestSetLineStateRejectsUnknownState(t *testing.T) {
	svc := &stubOrdersService{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"state":"shipped"}`))
	req.Header.Set("Content-Type", "application/json")
	req = asActor(withPathParam(req, "lineId", uuid.NewString()), uuid.New(), enums.ActorRoleButcher)
	resp := httptest.NewRecorder()
	SetLineState(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSetLineStateRendersRejectionDetails(t *testing.T) {
	svc := &stubOrdersService{
		setLineFn: func(ctx context.Context, input internalorders.SetLineStateInput) (*internalorders.OrderDetail, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invalid line transition").
				WithDetails(internalorders.TransitionRejection{
					CurrentState:   "pending",
					RequestedState: "sent",
					AllowedNext:    []string{"preparing"},
				})
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"state":"sent"}`))
	req.Header.Set("Content-Type", "application/json")
	req = asActor(withPathParam(req, "lineId", uuid.NewString()), uuid.New(), enums.ActorRoleButcher)
	resp := httptest.NewRecorder()
	SetLineState(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				CurrentState   string   `json:"current_state"`
				RequestedState string   `json:"requested_state"`
				AllowedNext    []string `json:"allowed_next"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
	if envelope.Error.Details.CurrentState != "pending" || envelope.Error.Details.RequestedState != "sent" {
		t.Fatalf("unexpected details %+v", envelope.Error.Details)
	}
	if len(envelope.Error.Details.AllowedNext) != 1 || envelope.Error.Details.AllowedNext[0] != "preparing" {
		t.Fatalf("unexpected allowed next %v", envelope.Error.Details.AllowedNext)
	}
}

func TestSetOrderStateGymForwardsActor(t *testing.T) {
	orderID := uuid.New()
	actorID := uuid.New()
	svc := &stubOrdersService{}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"state":"at_gym"}`))
	req.Header.Set("Content-Type", "application/json")
	req = asActor(withPathParam(req, "orderId", orderID.String()), actorID, enums.ActorRoleGymStaff)
	resp := httptest.NewRecorder()
	SetOrderStateGym(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastOrderInput.OrderID != orderID {
		t.Fatalf("unexpected order id %s", svc.lastOrderInput.OrderID)
	}
	if svc.lastOrderInput.TargetState != enums.OrderStatusAtGym {
		t.Fatalf("unexpected target %s", svc.lastOrderInput.TargetState)
	}
	if svc.lastOrderInput.ActorUserID != actorID || svc.lastOrderInput.ActorRole != enums.ActorRoleGymStaff {
		t.Fatalf("actor not forwarded: %+v", svc.lastOrderInput)
	}
}

func TestGetOrderByCodeParsesShortCode(t *testing.T) {
	svc := &stubOrdersService{
		getByCodeFn: func(ctx context.Context, viewer internalorders.Viewer, shortCode int64) (*internalorders.OrderDetail, error) {
			if shortCode != 100042 {
				t.Fatalf("unexpected short code %d", shortCode)
			}
			return &internalorders.OrderDetail{ShortCode: shortCode}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = asActor(withPathParam(req, "shortCode", "100042"), uuid.New(), enums.ActorRoleGymStaff)
	resp := httptest.NewRecorder()
	GetOrderByCode(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	badReq := httptest.NewRequest(http.MethodGet, "/", nil)
	badReq = asActor(withPathParam(badReq, "shortCode", "abc"), uuid.New(), enums.ActorRoleGymStaff)
	badResp := httptest.NewRecorder()
	GetOrderByCode(svc, nil).ServeHTTP(badResp, badReq)

	if badResp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", badResp.Code)
	}
}
