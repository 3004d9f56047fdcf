package auth

import (
	"context"
	"net/http"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
	"brasero/internal/pkg/middleware"
	"brasero/internal/pkg/respond"
)

// AuthService define o contrato de sessão e perfil esperado pelo Handler.
type AuthService interface {
	Register(ctx context.Context, reg domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, email, password string, meta domain.ClientMeta) (domain.LoginResult, error)
	Refresh(ctx context.Context, value string) (string, error)
	Logout(ctx context.Context, value string) error
	LogoutAll(ctx context.Context, userID string) (int64, error)
	Status(ctx context.Context, userID string) (domain.SessionStatus, error)
	GetProfile(ctx context.Context, userID string) (domain.User, error)
	UpdateProfile(ctx context.Context, userID string, p domain.Profile) (domain.User, error)
}

// RecoveryService define o contrato de recuperação de senha.
type RecoveryService interface {
	Request(ctx context.Context, email string) domain.MessageResponse
	Validate(ctx context.Context, email, code string) error
	Reset(ctx context.Context, email, code, newPassword string) error
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Email    string `json:"email" example:"user@test.cl"`
	Password string `json:"password" example:"Passw0rd!"`
}

// RefreshRequest carrega o refresh token recebido no login.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AccessTokenResponse é a resposta do refresh.
type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

// RevokedResponse informa quantas sessões foram encerradas.
type RevokedResponse struct {
	Revoked int64 `json:"revoked" example:"3"`
}

type RecoveryRequest struct {
	Email string `json:"email" example:"user@test.cl"`
}

type RecoveryValidateRequest struct {
	Email string `json:"email" example:"user@test.cl"`
	Code  string `json:"code" example:"042519"`
}

type RecoveryResetRequest struct {
	Email       string `json:"email" example:"user@test.cl"`
	Code        string `json:"code" example:"042519"`
	NewPassword string `json:"new_password" example:"NuevaClave1"`
}

type ValidResponse struct {
	Valid bool `json:"valid"`
}

// Handler agrupa os handlers de /api/auth.
type Handler struct {
	Service  AuthService
	Recovery RecoveryService
	Logger   logger.Logger
}

func NewHandler(svc AuthService, recovery RecoveryService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Recovery: recovery, Logger: log}
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (domain.UserContext, bool) {
	user, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.Logger, apperror.NewUnauthorizedError("autorização necessária."))
	}
	return user, ok
}

// Register
// @Summary Registra um novo cliente
// @Description Cria um usuário com role user. A senha precisa de 8 caracteres, maiúscula, minúscula e número.
// @Tags auth
// @Accept json
// @Produce json
// @Param registration body domain.UserRegistration true "Credenciais de registro"
// @Success 201 {object} domain.User
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou senha fraca"
// @Failure 409 {object} domain.ErrorResponse "Email já cadastrado"
// @Failure 429 {object} domain.ErrorResponse
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var reg domain.UserRegistration
	if err := respond.Decode(r, &reg); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	user, err := h.Service.Register(r.Context(), reg)
	respond.Handle(w, r, h.Logger, user, err, http.StatusCreated)
}

// Login
// @Summary Autentica e abre uma sessão
// @Description Emite um access token (JWT) e um refresh token. O número de sessões ativas por usuário é limitado; as mais antigas são revogadas.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Credenciais"
// @Success 200 {object} domain.LoginResult
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Failure 403 {object} domain.ErrorResponse "Conta desativada"
// @Failure 429 {object} domain.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	res, err := h.Service.Login(r.Context(), req.Email, req.Password, middleware.ClientMeta(r))
	respond.Handle(w, r, h.Logger, res, err, http.StatusOK)
}

// Refresh
// @Summary Emite um novo access token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "Refresh token"
// @Success 200 {object} AccessTokenResponse
// @Failure 401 {object} domain.ErrorResponse "Sessão inválida"
// @Router /auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	access, err := h.Service.Refresh(r.Context(), req.RefreshToken)
	respond.Handle(w, r, h.Logger, AccessTokenResponse{AccessToken: access}, err, http.StatusOK)
}

// Logout
// @Summary Encerra a sessão do refresh token informado
// @Description Idempotente: um token desconhecido ou já revogado também responde 200.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "Refresh token"
// @Success 200 {object} domain.MessageResponse
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	err := h.Service.Logout(r.Context(), req.RefreshToken)
	respond.Handle(w, r, h.Logger, domain.MessageResponse{Message: "Sessão encerrada."}, err, http.StatusOK)
}

// LogoutAll
// @Summary Encerra todas as sessões do usuário autenticado
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} RevokedResponse
// @Failure 401 {object} domain.ErrorResponse
// @Router /auth/logout-all [post]
func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	n, err := h.Service.LogoutAll(r.Context(), user.UserID)
	respond.Handle(w, r, h.Logger, RevokedResponse{Revoked: n}, err, http.StatusOK)
}

// Status
// @Summary Estado da sessão atual
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.SessionStatus
// @Failure 401 {object} domain.ErrorResponse
// @Router /auth/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	status, err := h.Service.Status(r.Context(), user.UserID)
	respond.Handle(w, r, h.Logger, status, err, http.StatusOK)
}

// GetProfile
// @Summary Perfil do usuário autenticado
// @Tags perfil
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.User
// @Router /auth/perfil [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.Service.GetProfile(r.Context(), user.UserID)
	respond.Handle(w, r, h.Logger, profile, err, http.StatusOK)
}

// UpdateProfile
// @Summary Atualiza nome, telefone, endereço e comuna
// @Tags perfil
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body domain.Profile true "Dados de contato e entrega"
// @Success 200 {object} domain.User
// @Failure 400 {object} domain.ErrorResponse
// @Router /auth/perfil [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var p domain.Profile
	if err := respond.Decode(r, &p); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	updated, err := h.Service.UpdateProfile(r.Context(), user.UserID, p)
	respond.Handle(w, r, h.Logger, updated, err, http.StatusOK)
}

// RecoveryRequest
// @Summary Solicita um código de recuperação de senha
// @Description A resposta é sempre a mesma, exista ou não a conta.
// @Tags recovery
// @Accept json
// @Produce json
// @Param body body RecoveryRequest true "Email da conta"
// @Success 200 {object} domain.MessageResponse
// @Failure 429 {object} domain.ErrorResponse
// @Router /auth/recovery/request [post]
func (h *Handler) RecoveryRequest(w http.ResponseWriter, r *http.Request) {
	var req RecoveryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.Recovery.Request(r.Context(), req.Email))
}

// RecoveryValidate
// @Summary Verifica um código sem consumi-lo
// @Tags recovery
// @Accept json
// @Produce json
// @Param body body RecoveryValidateRequest true "Email e código"
// @Success 200 {object} ValidResponse
// @Failure 400 {object} domain.ErrorResponse "Código inválido ou expirado"
// @Router /auth/recovery/validate [post]
func (h *Handler) RecoveryValidate(w http.ResponseWriter, r *http.Request) {
	var req RecoveryValidateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	err := h.Recovery.Validate(r.Context(), req.Email, req.Code)
	respond.Handle(w, r, h.Logger, ValidResponse{Valid: true}, err, http.StatusOK)
}

// RecoveryReset
// @Summary Define uma nova senha com o código recebido
// @Description Consome o código e encerra todas as sessões da conta.
// @Tags recovery
// @Accept json
// @Produce json
// @Param body body RecoveryResetRequest true "Email, código e nova senha"
// @Success 200 {object} domain.MessageResponse
// @Failure 400 {object} domain.ErrorResponse
// @Router /auth/recovery/reset [post]
func (h *Handler) RecoveryReset(w http.ResponseWriter, r *http.Request) {
	var req RecoveryResetRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	err := h.Recovery.Reset(r.Context(), req.Email, req.Code, req.NewPassword)
	respond.Handle(w, r, h.Logger, domain.MessageResponse{Message: "Senha atualizada. Faça login novamente."}, err, http.StatusOK)
}
