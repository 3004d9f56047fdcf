package product

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
	"brasero/internal/pkg/respond"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	List(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error)
	Get(ctx context.Context, id string, includeUnavailable bool) (domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput) (domain.Product, error)
	Update(ctx context.Context, id string, in domain.ProductInput) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// Handler agrupa os handlers do catálogo, públicos e administrativos.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// parseFilter lê q, categoria, min, max, page e limit da query string.
func parseFilter(r *http.Request) (domain.ProductFilter, error) {
	q := r.URL.Query()
	f := domain.ProductFilter{
		Query:    q.Get("q"),
		Category: domain.Category(q.Get("categoria")),
	}

	ints := []struct {
		name string
		dst  *int
	}{{"page", &f.Page}, {"limit", &f.Limit}}
	for _, p := range ints {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return f, apperror.NewValidationError("o parâmetro '" + p.name + "' deve ser um número inteiro.")
			}
			*p.dst = n
		}
	}

	prices := []struct {
		name string
		dst  *int64
	}{{"min", &f.MinPrice}, {"max", &f.MaxPrice}}
	for _, p := range prices {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return f, apperror.NewValidationError("o parâmetro '" + p.name + "' deve ser um número inteiro.")
			}
			*p.dst = n
		}
	}
	return f, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, includeUnavailable bool) {
	f, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}
	f.IncludeUnavailable = includeUnavailable

	page, err := h.Service.List(r.Context(), f)
	respond.Handle(w, r, h.Logger, page, err, http.StatusOK)
}

// List
// @Summary Lista o catálogo
// @Description Busca paginada com filtro por texto, categoria e faixa de preço. Só produtos disponíveis.
// @Tags productos
// @Produce json
// @Param q query string false "Texto no nome"
// @Param categoria query string false "Pollos, Combos, Acompañamientos, Bebidas ou Ensaladas"
// @Param min query int false "Preço mínimo (CLP)"
// @Param max query int false "Preço máximo (CLP)"
// @Param page query int false "Página (padrão 1)"
// @Param limit query int false "Itens por página (padrão 12, máximo 100)"
// @Success 200 {object} domain.ProductPage
// @Failure 400 {object} domain.ErrorResponse
// @Router /productos [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// Get
// @Summary Busca um produto disponível pelo ID
// @Tags productos
// @Produce json
// @Param id path string true "ID do produto"
// @Success 200 {object} domain.Product
// @Failure 404 {object} domain.ErrorResponse
// @Router /productos/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"), false)
	respond.Handle(w, r, h.Logger, p, err, http.StatusOK)
}

// AdminList
// @Summary Lista o catálogo completo, incluindo indisponíveis
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param q query string false "Texto no nome"
// @Param categoria query string false "Categoria"
// @Param page query int false "Página"
// @Param limit query int false "Itens por página"
// @Success 200 {object} domain.ProductPage
// @Failure 403 {object} domain.ErrorResponse
// @Router /admin/productos [get]
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

// Create
// @Summary Cria um produto
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body domain.ProductInput true "Dados do produto"
// @Success 201 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Router /admin/productos [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	p, err := h.Service.Create(r.Context(), in)
	respond.Handle(w, r, h.Logger, p, err, http.StatusCreated)
}

// Update
// @Summary Atualiza um produto
// @Description Campo available omitido mantém o valor atual.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do produto"
// @Param product body domain.ProductInput true "Dados do produto"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /admin/productos/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	p, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), in)
	respond.Handle(w, r, h.Logger, p, err, http.StatusOK)
}

// Delete
// @Summary Remove um produto
// @Description Remove também o produto dos carrinhos. Pedidos existentes mantêm a cópia.
// @Tags admin
// @Security BearerAuth
// @Param id path string true "ID do produto"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Router /admin/productos/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), chi.URLParam(r, "id"))
	respond.Handle(w, r, h.Logger, nil, err, http.StatusNoContent)
}
