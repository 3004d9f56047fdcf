package admin

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
	"brasero/internal/pkg/middleware"
	"brasero/internal/pkg/respond"
)

type AdminService interface {
	CreateAdmin(ctx context.Context, reg domain.UserRegistration) (domain.User, error)
	SetActive(ctx context.Context, actorID, userID string, change domain.ActiveChange) (domain.User, error)
}

// Handler cobre a gestão de contas do painel. Produtos e pedidos do painel
// ficam nos handlers de product e order.
type Handler struct {
	Service AdminService
	Logger  logger.Logger
}

func NewHandler(svc AdminService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// CreateAdmin
// @Summary Cria um administrador
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param registration body domain.UserRegistration true "Credenciais do novo administrador"
// @Success 201 {object} domain.User
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Email já cadastrado"
// @Router /admin/usuarios/admin [post]
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var reg domain.UserRegistration
	if err := respond.Decode(r, &reg); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	user, err := h.Service.CreateAdmin(r.Context(), reg)
	respond.Handle(w, r, h.Logger, user, err, http.StatusCreated)
}

// SetActive
// @Summary Ativa ou desativa uma conta
// @Description Desativar encerra todas as sessões da conta.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do usuário"
// @Param body body domain.ActiveChange true "Novo status"
// @Success 200 {object} domain.User
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /admin/usuarios/{id}/activo [put]
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.Logger, apperror.NewUnauthorizedError("autorização necessária."))
		return
	}

	var change domain.ActiveChange
	if err := respond.Decode(r, &change); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	user, err := h.Service.SetActive(r.Context(), actor.UserID, chi.URLParam(r, "id"), change)
	respond.Handle(w, r, h.Logger, user, err, http.StatusOK)
}
