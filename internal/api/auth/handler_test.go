package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"brasero/internal/api/auth"
	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
	"brasero/internal/pkg/middleware"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, reg domain.UserRegistration) (domain.User, error) {
	args := m.Called(ctx, reg)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string, meta domain.ClientMeta) (domain.LoginResult, error) {
	args := m.Called(ctx, email, password, meta)
	return args.Get(0).(domain.LoginResult), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, value string) (string, error) {
	args := m.Called(ctx, value)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, value string) error {
	return m.Called(ctx, value).Error(0)
}

func (m *MockAuthService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuthService) Status(ctx context.Context, userID string) (domain.SessionStatus, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.SessionStatus), args.Error(1)
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID string, p domain.Profile) (domain.User, error) {
	args := m.Called(ctx, userID, p)
	return args.Get(0).(domain.User), args.Error(1)
}

type MockRecoveryService struct {
	mock.Mock
}

func (m *MockRecoveryService) Request(ctx context.Context, email string) domain.MessageResponse {
	return m.Called(ctx, email).Get(0).(domain.MessageResponse)
}

func (m *MockRecoveryService) Validate(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

func (m *MockRecoveryService) Reset(ctx context.Context, email, code, newPassword string) error {
	return m.Called(ctx, email, code, newPassword).Error(0)
}

func newHandler() (*auth.Handler, *MockAuthService, *MockRecoveryService) {
	svc := new(MockAuthService)
	rec := new(MockRecoveryService)
	return auth.NewHandler(svc, rec, logger.NewLogger("error")), svc, rec
}

func TestRegister_Success(t *testing.T) {
	h, svc, _ := newHandler()

	reg := domain.UserRegistration{Email: "nuevo@test.cl", Password: "Passw0rd!"}
	svc.On("Register", mock.Anything, reg).Return(domain.User{ID: "u1", Email: "nuevo@test.cl", Role: domain.RoleUser, PasswordHash: "$2a$10$x"}, nil)

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"nuevo@test.cl","password":"Passw0rd!"}`)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "$2a$10$x")
	assert.Contains(t, rec.Body.String(), `"role":"user"`)
}

func TestRegister_Fail_DuplicateEmail(t *testing.T) {
	h, svc, _ := newHandler()

	svc.On("Register", mock.Anything, mock.Anything).Return(domain.User{}, apperror.NewConflictError("email já cadastrado."))

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"dup@test.cl","password":"Passw0rd!"}`)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin_Success(t *testing.T) {
	h, svc, _ := newHandler()

	svc.On("Login", mock.Anything, "user@test.cl", "Passw0rd!", mock.AnythingOfType("domain.ClientMeta")).
		Return(domain.LoginResult{AccessToken: "acc", RefreshToken: "ref", Role: domain.RoleUser}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"user@test.cl","password":"Passw0rd!"}`))
	req.Header.Set("User-Agent", "brasero-test")
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res domain.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "acc", res.AccessToken)
	assert.Equal(t, "ref", res.RefreshToken)
}

func TestLogin_Fail_InvalidCredentials(t *testing.T) {
	h, svc, _ := newHandler()

	svc.On("Login", mock.Anything, "user@test.cl", "errada", mock.Anything).
		Return(domain.LoginResult{}, apperror.NewUnauthorizedError("credenciais inválidas."))

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"user@test.cl","password":"errada"}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_Fail_InvalidSession(t *testing.T) {
	h, svc, _ := newHandler()

	svc.On("Refresh", mock.Anything, "revogado").Return("", apperror.NewInvalidSessionError("sessão inválida."))

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refresh_token":"revogado"}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutAll_Success_ReturnsCount(t *testing.T) {
	h, svc, _ := newHandler()

	svc.On("LogoutAll", mock.Anything, "u1").Return(int64(3), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout-all", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), domain.UserContext{UserID: "u1", Role: domain.RoleUser}))
	rec := httptest.NewRecorder()
	h.LogoutAll(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res auth.RevokedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, int64(3), res.Revoked)
}

func TestRecoveryRequest_Success_AlwaysSameMessage(t *testing.T) {
	h, _, recovery := newHandler()

	msg := domain.MessageResponse{Message: "Se a conta existir, enviaremos um código."}
	recovery.On("Request", mock.Anything, "ninguem@test.cl").Return(msg)

	rec := httptest.NewRecorder()
	h.RecoveryRequest(rec, httptest.NewRequest(http.MethodPost, "/api/auth/recovery/request", strings.NewReader(`{"email":"ninguem@test.cl"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var res domain.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, msg, res)
}

func TestRecoveryValidate_Fail_WrongCode(t *testing.T) {
	h, _, recovery := newHandler()

	recovery.On("Validate", mock.Anything, "user@test.cl", "000000").Return(apperror.NewValidationError("código inválido ou expirado."))

	rec := httptest.NewRecorder()
	h.RecoveryValidate(rec, httptest.NewRequest(http.MethodPost, "/api/auth/recovery/validate", strings.NewReader(`{"email":"user@test.cl","code":"000000"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"valid":true`)
}
