package admin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"brasero/internal/api/admin"
	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
	"brasero/internal/pkg/middleware"
)

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) CreateAdmin(ctx context.Context, reg domain.UserRegistration) (domain.User, error) {
	args := m.Called(ctx, reg)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockAdminService) SetActive(ctx context.Context, actorID, userID string, change domain.ActiveChange) (domain.User, error) {
	args := m.Called(ctx, actorID, userID, change)
	return args.Get(0).(domain.User), args.Error(1)
}

func adminRequest(method, path, id, body string) *http.Request {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = middleware.WithUser(ctx, domain.UserContext{UserID: "admin-1", Role: domain.RoleAdmin})
	return r.WithContext(ctx)
}

func TestSetActive_Success_UsesActorFromContext(t *testing.T) {
	svc := new(MockAdminService)
	h := admin.NewHandler(svc, logger.NewLogger("error"))

	svc.On("SetActive", mock.Anything, "admin-1", "u2", mock.MatchedBy(func(c domain.ActiveChange) bool {
		return c.Active != nil && !*c.Active
	})).Return(domain.User{ID: "u2", Active: false}, nil)

	rec := httptest.NewRecorder()
	h.SetActive(rec, adminRequest(http.MethodPut, "/api/admin/usuarios/u2/activo", "u2", `{"active":false}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active":false`)
	svc.AssertExpectations(t)
}

func TestSetActive_Fail_SelfDisable(t *testing.T) {
	svc := new(MockAdminService)
	h := admin.NewHandler(svc, logger.NewLogger("error"))

	svc.On("SetActive", mock.Anything, "admin-1", "admin-1", mock.Anything).
		Return(domain.User{}, apperror.NewBusinessRuleError("um administrador não pode desativar a própria conta."))

	rec := httptest.NewRecorder()
	h.SetActive(rec, adminRequest(http.MethodPut, "/api/admin/usuarios/admin-1/activo", "admin-1", `{"active":false}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAdmin_Success(t *testing.T) {
	svc := new(MockAdminService)
	h := admin.NewHandler(svc, logger.NewLogger("error"))

	reg := domain.UserRegistration{Email: "jefe@elbrasero.cl", Password: "Passw0rd!"}
	svc.On("CreateAdmin", mock.Anything, reg).Return(domain.User{ID: "a2", Email: reg.Email, Role: domain.RoleAdmin, Active: true}, nil)

	rec := httptest.NewRecorder()
	h.CreateAdmin(rec, adminRequest(http.MethodPost, "/api/admin/usuarios/admin", "", `{"email":"jefe@elbrasero.cl","password":"Passw0rd!"}`))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"admin"`)
}
