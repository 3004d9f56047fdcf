package cart

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

type CartService interface {
	Get(ctx context.Context, userID string) (domain.CartView, error)
	Summary(ctx context.Context, userID string) (domain.CartSummary, error)
	SetItem(ctx context.Context, userID string, in domain.CartItemInput) (domain.CartView, error)
	RemoveItem(ctx context.Context, userID, productID string) (domain.CartView, error)
	Clear(ctx context.Context, userID string) (domain.CartView, error)
}

type Handler struct {
	Service CartService
	Logger  logger.Logger
}

func NewHandler(svc CartService, log logger.Logger) *Handler {
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

// Get
// @Summary Carrinho do usuário com preços atuais
// @Tags carrito
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.CartView
// @Router /carrito [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	v, err := h.Service.Get(r.Context(), id)
	respond.Handle(w, r, h.Logger, v, err, http.StatusOK)
}

// Summary
// @Summary Quantidade total de itens (badge do navbar)
// @Tags carrito
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.CartSummary
// @Router /carrito/resumen [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	s, err := h.Service.Summary(r.Context(), id)
	respond.Handle(w, r, h.Logger, s, err, http.StatusOK)
}

// SetItem
// @Summary Define a quantidade de um produto no carrinho
// @Tags carrito
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item body domain.CartItemInput true "Produto e quantidade (1 a 10)"
// @Success 200 {object} domain.CartView
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /carrito/items [post]
func (h *Handler) SetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	var in domain.CartItemInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	v, err := h.Service.SetItem(r.Context(), id, in)
	respond.Handle(w, r, h.Logger, v, err, http.StatusOK)
}

// RemoveItem
// @Summary Remove um produto do carrinho
// @Tags carrito
// @Produce json
// @Security BearerAuth
// @Param productId path string true "ID do produto"
// @Success 200 {object} domain.CartView
// @Failure 404 {object} domain.ErrorResponse
// @Router /carrito/items/{productId} [delete]
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	v, err := h.Service.RemoveItem(r.Context(), id, chi.URLParam(r, "productId"))
	respond.Handle(w, r, h.Logger, v, err, http.StatusOK)
}

// Clear
// @Summary Esvazia o carrinho
// @Tags carrito
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.CartView
// @Router /carrito [delete]
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	v, err := h.Service.Clear(r.Context(), id)
	respond.Handle(w, r, h.Logger, v, err, http.StatusOK)
}
