package payment

import (
	"context"
	"net/http"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
	"brasero/internal/pkg/middleware"
	"brasero/internal/pkg/respond"
	"brasero/internal/service/paymentservice"
)

type PaymentService interface {
	Initiate(ctx context.Context, userID, orderID string) (domain.PaymentStart, error)
	Callback(ctx context.Context, p paymentservice.CallbackParams) string
	Simulate(ctx context.Context, userID string, req domain.SimulationRequest) (domain.SimulationResult, error)
}

// InitiateRequest é o payload de POST /api/pagos/iniciar.
type InitiateRequest struct {
	OrderID string `json:"order_id"`
}

type Handler struct {
	Service PaymentService
	Logger  logger.Logger
}

func NewHandler(svc PaymentService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// Initiate
// @Summary Inicia o pagamento de um pedido no Webpay Plus
// @Description Devolve a URL do formulário do Webpay e o token a enviar nele.
// @Tags pagos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body InitiateRequest true "Pedido a pagar"
// @Success 200 {object} domain.PaymentStart
// @Failure 400 {object} domain.ErrorResponse "Pedido já processado"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Router /pagos/iniciar [post]
func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.Logger, apperror.NewUnauthorizedError("autorização necessária."))
		return
	}

	var req InitiateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	start, err := h.Service.Initiate(r.Context(), user.UserID, req.OrderID)
	respond.Handle(w, r, h.Logger, start, err, http.StatusOK)
}

// Callback
// @Summary Retorno do navegador vindo do Webpay
// @Description Sempre responde 303 para a página de confirmação ou de erro do frontend.
// @Tags pagos
// @Param token_ws query string false "Token da transação concluída"
// @Param TBK_TOKEN query string false "Token da transação anulada"
// @Param TBK_ORDEN_COMPRA query string false "Ordem de compra da transação anulada"
// @Success 303
// @Router /pagos/confirmar-webpay [get]
// @Router /pagos/confirmar-webpay [post]
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	// O Webpay envia os campos no corpo (POST form) ou na query (GET).
	if err := r.ParseForm(); err != nil {
		h.Logger.Warn("Formulário de retorno do Webpay ilegível.", map[string]interface{}{"error": err.Error()})
	}

	target := h.Service.Callback(r.Context(), paymentservice.CallbackParams{
		TokenWS:     r.FormValue("token_ws"),
		TBKToken:    r.FormValue("TBK_TOKEN"),
		TBKBuyOrder: r.FormValue("TBK_ORDEN_COMPRA"),
	})
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Simulate
// @Summary Simula o resultado do pagamento (fora de produção)
// @Tags pagos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body domain.SimulationRequest true "Pedido e resultado (exito para aprovar)"
// @Success 200 {object} domain.SimulationResult
// @Failure 400 {object} domain.ErrorResponse "Pagamento rejeitado ou pedido já processado"
// @Failure 403 {object} domain.ErrorResponse "Simulação desativada"
// @Router /pagos/simular [post]
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.Logger, apperror.NewUnauthorizedError("autorização necessária."))
		return
	}

	var req domain.SimulationRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.Logger, err)
		return
	}

	res, err := h.Service.Simulate(r.Context(), user.UserID, req)
	respond.Handle(w, r, h.Logger, res, err, http.StatusOK)
}
