package order_test

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

	"brasero/internal/api/order"
	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
	"brasero/internal/pkg/middleware"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Confirm(ctx context.Context, userID string, customer domain.Profile) (domain.OrderCreated, error) {
	args := m.Called(ctx, userID, customer)
	return args.Get(0).(domain.OrderCreated), args.Error(1)
}

func (m *MockOrderService) GetConfirmation(ctx context.Context, userID, orderID string) (domain.OrderConfirmation, error) {
	args := m.Called(ctx, userID, orderID)
	return args.Get(0).(domain.OrderConfirmation), args.Error(1)
}

func (m *MockOrderService) ListMine(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, orderID string) (domain.Order, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderService) ChangeStatus(ctx context.Context, orderID string, next domain.OrderStatus) (domain.Order, error) {
	args := m.Called(ctx, orderID, next)
	return args.Get(0).(domain.Order), args.Error(1)
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), domain.UserContext{UserID: userID, Role: domain.RoleUser}))
}

func withID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestConfirm_Success_Created(t *testing.T) {
	svc := new(MockOrderService)
	h := order.NewHandler(svc, logger.NewLogger("error"))

	customer := domain.Profile{Name: "Juan Pérez", Phone: "912345678", Address: "Av. Siempre Viva 742", Commune: "Providencia"}
	svc.On("Confirm", mock.Anything, "u1", customer).Return(domain.OrderCreated{OrderID: "o1", OrderNumber: "BR-ABCDEF", Total: 15980}, nil)

	body := `{"name":"Juan Pérez","phone":"912345678","address":"Av. Siempre Viva 742","commune":"Providencia"}`
	rec := httptest.NewRecorder()
	h.Confirm(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/pedidos/confirmar", strings.NewReader(body)), "u1"))

	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.OrderCreated
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "BR-ABCDEF", created.OrderNumber)
	assert.Equal(t, int64(15980), created.Total)
}

func TestConfirm_Fail_EmptyCart(t *testing.T) {
	svc := new(MockOrderService)
	h := order.NewHandler(svc, logger.NewLogger("error"))

	svc.On("Confirm", mock.Anything, "u1", mock.Anything).Return(domain.OrderCreated{}, apperror.NewNotFoundError("carrinho vazio."))

	body := `{"name":"Juan","phone":"912345678","address":"Calle 1","commune":"Ñuñoa"}`
	rec := httptest.NewRecorder()
	h.Confirm(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/pedidos/confirmar", strings.NewReader(body)), "u1"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetConfirmation_Fail_WithoutUser(t *testing.T) {
	svc := new(MockOrderService)
	h := order.NewHandler(svc, logger.NewLogger("error"))

	rec := httptest.NewRecorder()
	h.GetConfirmation(rec, withID(httptest.NewRequest(http.MethodGet, "/api/pedidos/confirmacion/o1", nil), "o1"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "GetConfirmation", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminList_Success_PassesStatusFilter(t *testing.T) {
	svc := new(MockOrderService)
	h := order.NewHandler(svc, logger.NewLogger("error"))

	svc.On("ListAll", mock.Anything, domain.OrderFilter{Status: domain.StatusPaid}).
		Return([]domain.Order{{ID: "o1", Status: domain.StatusPaid}}, nil)

	rec := httptest.NewRecorder()
	h.AdminList(rec, httptest.NewRequest(http.MethodGet, "/api/admin/pedidos?estado=Pagado", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestChangeStatus_Success(t *testing.T) {
	svc := new(MockOrderService)
	h := order.NewHandler(svc, logger.NewLogger("error"))

	svc.On("ChangeStatus", mock.Anything, "o1", domain.StatusInPreparation).
		Return(domain.Order{ID: "o1", Status: domain.StatusInPreparation}, nil)

	req := withID(httptest.NewRequest(http.MethodPut, "/api/admin/pedidos/o1/estado", strings.NewReader(`{"status":"En preparación"}`)), "o1")
	rec := httptest.NewRecorder()
	h.ChangeStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var o domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, domain.StatusInPreparation, o.Status)
}

func TestChangeStatus_Fail_InvalidTransition(t *testing.T) {
	svc := new(MockOrderService)
	h := order.NewHandler(svc, logger.NewLogger("error"))

	svc.On("ChangeStatus", mock.Anything, "o1", domain.StatusCancelled).
		Return(domain.Order{}, apperror.NewBusinessRuleError("transição de estado inválida."))

	req := withID(httptest.NewRequest(http.MethodPut, "/api/admin/pedidos/o1/estado", strings.NewReader(`{"status":"Anulado"}`)), "o1")
	rec := httptest.NewRecorder()
	h.ChangeStatus(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
