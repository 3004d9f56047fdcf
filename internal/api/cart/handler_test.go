package cart_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"brasero/internal/api/cart"
	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
	"brasero/internal/pkg/middleware"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, userID string) (domain.CartView, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.CartView), args.Error(1)
}

func (m *MockCartService) Summary(ctx context.Context, userID string) (domain.CartSummary, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.CartSummary), args.Error(1)
}

func (m *MockCartService) SetItem(ctx context.Context, userID string, in domain.CartItemInput) (domain.CartView, error) {
	args := m.Called(ctx, userID, in)
	return args.Get(0).(domain.CartView), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, productID string) (domain.CartView, error) {
	args := m.Called(ctx, userID, productID)
	return args.Get(0).(domain.CartView), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, userID string) (domain.CartView, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.CartView), args.Error(1)
}

func asUser(r *http.Request) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), domain.UserContext{UserID: "u1", Role: domain.RoleUser}))
}

func withProductID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productId", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestSetItem_Success(t *testing.T) {
	svc := new(MockCartService)
	h := cart.NewHandler(svc, logger.NewLogger("error"))

	in := domain.CartItemInput{ProductID: "p1", Quantity: 2}
	svc.On("SetItem", mock.Anything, "u1", in).
		Return(domain.CartView{ID: "c1", Total: 25980, TotalItems: 2}, nil)

	rec := httptest.NewRecorder()
	h.SetItem(rec, asUser(httptest.NewRequest(http.MethodPost, "/api/carrito/items", strings.NewReader(`{"product_id":"p1","quantity":2}`))))

	require.Equal(t, http.StatusOK, rec.Code)
	var view domain.CartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 2, view.TotalItems)
	assert.Equal(t, int64(25980), view.Total)
}

func TestSetItem_Fail_QuantityOutOfBounds(t *testing.T) {
	svc := new(MockCartService)
	h := cart.NewHandler(svc, logger.NewLogger("error"))

	svc.On("SetItem", mock.Anything, "u1", domain.CartItemInput{ProductID: "p1", Quantity: 11}).
		Return(domain.CartView{}, apperror.NewValidationError("a quantidade deve estar entre 1 e 10."))

	rec := httptest.NewRecorder()
	h.SetItem(rec, asUser(httptest.NewRequest(http.MethodPost, "/api/carrito/items", strings.NewReader(`{"product_id":"p1","quantity":11}`))))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Category)
}

func TestSetItem_Fail_WithoutUser(t *testing.T) {
	svc := new(MockCartService)
	h := cart.NewHandler(svc, logger.NewLogger("error"))

	rec := httptest.NewRecorder()
	h.SetItem(rec, httptest.NewRequest(http.MethodPost, "/api/carrito/items", strings.NewReader(`{"product_id":"p1","quantity":1}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "SetItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveItem_Fail_NotInCart(t *testing.T) {
	svc := new(MockCartService)
	h := cart.NewHandler(svc, logger.NewLogger("error"))

	svc.On("RemoveItem", mock.Anything, "u1", "p9").
		Return(domain.CartView{}, apperror.NewNotFoundError("produto não está no carrinho."))

	req := asUser(withProductID(httptest.NewRequest(http.MethodDelete, "/api/carrito/items/p9", nil), "p9"))
	rec := httptest.NewRecorder()
	h.RemoveItem(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestSummary_Success(t *testing.T) {
	svc := new(MockCartService)
	h := cart.NewHandler(svc, logger.NewLogger("error"))

	svc.On("Summary", mock.Anything, "u1").Return(domain.CartSummary{TotalItems: 4}, nil)

	rec := httptest.NewRecorder()
	h.Summary(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/carrito/resumen", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_items":4}`, rec.Body.String())
}
