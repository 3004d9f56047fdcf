package order

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

type OrderService interface {
	Confirm(ctx context.Context, userID string, customer domain.Profile) (domain.OrderCreated, error)
	GetConfirmation(ctx context.Context, userID, orderID string) (domain.OrderConfirmation, error)
	ListMine(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	Get(ctx context.Context, orderID string) (domain.Order, error)
	ChangeStatus(ctx context.Context, orderID string, next domain.OrderStatus) (domain.Order, error)
}

// Handler atende /api/pedidos (cliente) e /api/admin/pedidos.
type Handler struct {
	Service OrderService
	Logger  logger.Logger
}

func NewHandler(svc OrderService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.Logger, apperror.NewUnauthorizedError("autorização necessária."))
		return "", false
	}
	return user.UserID, true
}

// Confirm
// @Summary Confirma o carrinho como pedido
// @Description Congela nome e preço de cada item, esvazia o carrinho e cria o pedido em Pendiente de pago.
// @Tags pedidos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param customer body domain.Profile true "Dados do cliente para a entrega"
// @Success 201 {object} domain.OrderCreated
// @Failure 400 {object} domain.ErrorResponse "Dados inválidos ou produto indisponível"
// @Failure 404 {object} domain.ErrorResponse "Carrinho vazio"
// @Router /pedidos/confirmar [post]
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	var customer domain.Profile
	if err := respond.Decode(r, &customer); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	created, err := h.Service.Confirm(r.Context(), id, customer)
	respond.Handle(w, r, h.Logger, created, err, http.StatusCreated)
}

// GetConfirmation
// @Summary Dados da página de confirmação de um pedido próprio
// @Tags pedidos
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pedido"
// @Success 200 {object} domain.OrderConfirmation
// @Failure 404 {object} domain.ErrorResponse
// @Router /pedidos/confirmacion/{id} [get]
func (h *Handler) GetConfirmation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	c, err := h.Service.GetConfirmation(r.Context(), id, chi.URLParam(r, "id"))
	respond.Handle(w, r, h.Logger, c, err, http.StatusOK)
}

// ListMine
// @Summary Pedidos do usuário, mais recentes primeiro
// @Tags pedidos
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Order
// @Router /pedidos [get]
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	orders, err := h.Service.ListMine(r.Context(), id)
	respond.Handle(w, r, h.Logger, orders, err, http.StatusOK)
}

// AdminList
// @Summary Todos os pedidos
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param estado query string false "Filtra pelo estado"
// @Success 200 {array} domain.Order
// @Failure 400 {object} domain.ErrorResponse
// @Router /admin/pedidos [get]
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	filter := domain.OrderFilter{Status: domain.OrderStatus(r.URL.Query().Get("estado"))}
	orders, err := h.Service.ListAll(r.Context(), filter)
	respond.Handle(w, r, h.Logger, orders, err, http.StatusOK)
}

// AdminGet
// @Summary Pedido com o histórico de tentativas de pagamento
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pedido"
// @Success 200 {object} domain.Order
// @Failure 404 {object} domain.ErrorResponse
// @Router /admin/pedidos/{id} [get]
func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	respond.Handle(w, r, h.Logger, o, err, http.StatusOK)
}

// ChangeStatus
// @Summary Altera o estado de um pedido
// @Description Estados finais não mudam; Anulado só a partir de Pendiente de pago; o fluxo nunca volta.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do pedido"
// @Param body body domain.StatusChange true "Novo estado"
// @Success 200 {object} domain.Order
// @Failure 400 {object} domain.ErrorResponse "Transição inválida"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Pedido alterado por outra requisição"
// @Router /admin/pedidos/{id}/estado [put]
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.StatusChange
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	o, err := h.Service.ChangeStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	respond.Handle(w, r, h.Logger, o, err, http.StatusOK)
}
