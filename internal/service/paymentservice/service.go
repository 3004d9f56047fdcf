// Package paymentservice conduz o pagamento de um pedido pelo Webpay Plus:
// início da transação, retorno do navegador (callback) e o modo simulado
// usado fora de produção. Toda chamada deixa uma entrada no histórico de
// tentativas do pedido.
package paymentservice

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/events"
	"brasero/internal/pkg/logger"
)

// Gateway é o provedor de pagamento. webpay.Client o implementa.
type Gateway interface {
	Create(ctx context.Context, buyOrder, sessionID string, amount int64, returnURL string) (domain.GatewayTransaction, error)
	Commit(ctx context.Context, token string) (domain.CommitResult, error)
}

type OrderRepository interface {
	FindByID(ctx context.Context, id string) (domain.Order, error)
	FindByToken(ctx context.Context, token string) (domain.Order, error)
	FindByBuyOrder(ctx context.Context, buyOrder string) (domain.Order, error)
	SetPaymentRef(ctx context.Context, id, buyOrder, token string, attempt domain.PaymentAttempt) error
	MarkPaid(ctx context.Context, id string, result *domain.TransactionResult, attempt domain.PaymentAttempt) (domain.Order, error)
	AppendAttempt(ctx context.Context, orderID string, attempt domain.PaymentAttempt) error
}

type Config struct {
	// ReturnURL é para onde o Webpay devolve o navegador (nosso callback).
	ReturnURL string
	// FrontendURL é a base das páginas de confirmação e de erro.
	FrontendURL       string
	SimulationEnabled bool
}

// Códigos de erro enviados ao frontend na página de falha.
const (
	CodeMissingToken   = "missing_token"
	CodeAborted        = "aborted"
	CodeOrderNotFound  = "order_not_found"
	CodeCommitFailed   = "commit_failed"
	CodeRejected       = "rejected"
	CodeDuplicate      = "duplicate"
	CodeAmountMismatch = "amount_mismatch"
	CodeInternal       = "internal"
)

// CallbackParams são os parâmetros que o Webpay envia no retorno. Pagamento
// concluído traz token_ws; pagamento anulado pelo usuário traz TBK_TOKEN e
// TBK_ORDEN_COMPRA.
type CallbackParams struct {
	TokenWS     string
	TBKToken    string
	TBKBuyOrder string
}

type Service struct {
	orders    OrderRepository
	gateway   Gateway
	publisher events.Publisher
	cfg       Config
	logger    logger.Logger
}

func NewService(orders OrderRepository, gateway Gateway, publisher events.Publisher, cfg Config, log logger.Logger) *Service {
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &Service{orders: orders, gateway: gateway, publisher: publisher, cfg: cfg, logger: log}
}

// NewBuyOrder gera a ordem de compra: "BR" + 24 caracteres hexadecimais.
func NewBuyOrder() string {
	return "BR" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

func (s *Service) appendAttempt(ctx context.Context, orderID string, a domain.PaymentAttempt) {
	if err := s.orders.AppendAttempt(ctx, orderID, a); err != nil {
		s.logger.Error("Falha ao registrar tentativa de pagamento.", err)
	}
}

func (s *Service) findOwned(ctx context.Context, userID, orderID string) (domain.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.UserID != userID {
		return domain.Order{}, apperror.NewNotFoundError("pedido não encontrado.")
	}
	return o, nil
}

func alreadyProcessed(o domain.Order) error {
	return apperror.NewBusinessRuleError("este pedido já foi processado (estado atual: " + string(o.Status) + ").")
}

// Initiate cria a transação no gateway para um pedido pendente do usuário.
func (s *Service) Initiate(ctx context.Context, userID, orderID string) (domain.PaymentStart, error) {
	if orderID == "" {
		return domain.PaymentStart{}, apperror.NewValidationError("o campo 'order_id' é obrigatório.")
	}
	o, err := s.findOwned(ctx, userID, orderID)
	if err != nil {
		return domain.PaymentStart{}, err
	}
	if o.Status != domain.StatusPendingPayment {
		s.appendAttempt(ctx, o.ID, domain.DuplicateAttempt(o.BuyOrder, o.TransactionToken, o.Status))
		return domain.PaymentStart{}, alreadyProcessed(o)
	}

	buyOrder := NewBuyOrder()
	tx, err := s.gateway.Create(ctx, buyOrder, userID, o.Total, s.cfg.ReturnURL)
	if err != nil {
		s.logger.Error("Falha ao criar transação no Webpay.", err)
		s.appendAttempt(ctx, o.ID, domain.ErrorAttempt(buyOrder, "", err))
		return domain.PaymentStart{}, apperror.NewInternalError("falha ao criar transação no gateway", err)
	}

	if err := s.orders.SetPaymentRef(ctx, o.ID, buyOrder, tx.Token, domain.InitiatedAttempt(buyOrder, tx.Token)); err != nil {
		return domain.PaymentStart{}, err
	}

	s.logger.Info("Pagamento iniciado.", map[string]interface{}{
		"order_id":  o.ID,
		"buy_order": buyOrder,
		"amount":    o.Total,
	})
	return domain.PaymentStart{URL: tx.URL, Token: tx.Token}, nil
}

func (s *Service) successURL(orderID string) string {
	return s.cfg.FrontendURL + "/confirmacion.html?orderId=" + url.QueryEscape(orderID)
}

func (s *Service) errorURL(code, orderID string) string {
	q := url.Values{}
	q.Set("error", code)
	if orderID != "" {
		q.Set("orderId", orderID)
	}
	return s.cfg.FrontendURL + "/pago-error.html?" + q.Encode()
}

// Callback trata o retorno do Webpay e devolve a URL do frontend para onde
// o navegador deve ser redirecionado. Nunca falha: todo desfecho vira um
// código de erro na URL.
func (s *Service) Callback(ctx context.Context, p CallbackParams) string {
	if p.TokenWS == "" {
		if p.TBKToken == "" && p.TBKBuyOrder == "" {
			s.logger.Warn("Retorno do Webpay sem token.", nil)
			return s.errorURL(CodeMissingToken, "")
		}
		return s.aborted(ctx, p)
	}

	o, err := s.orders.FindByToken(ctx, p.TokenWS)
	if err != nil {
		if apperror.IsNotFound(err) {
			s.logger.Warn("Retorno do Webpay com token desconhecido.", map[string]interface{}{"token": p.TokenWS})
			return s.errorURL(CodeOrderNotFound, "")
		}
		return s.errorURL(CodeInternal, "")
	}

	commit, err := s.gateway.Commit(ctx, p.TokenWS)
	if err != nil {
		s.logger.Error("Falha no commit da transação Webpay.", err)
		s.appendAttempt(ctx, o.ID, domain.ErrorAttempt(o.BuyOrder, p.TokenWS, err))
		return s.errorURL(CodeCommitFailed, o.ID)
	}

	if !commit.Authorized() {
		s.logger.Info("Pagamento rejeitado pelo emissor.", map[string]interface{}{
			"order_id":      o.ID,
			"response_code": commit.ResponseCode,
			"status":        commit.Status,
		})
		s.appendAttempt(ctx, o.ID, domain.RejectedAttempt(o.BuyOrder, p.TokenWS, "transação não autorizada: "+commit.Status))
		return s.errorURL(CodeRejected, o.ID)
	}

	if o.Status != domain.StatusPendingPayment {
		s.appendAttempt(ctx, o.ID, domain.DuplicateAttempt(o.BuyOrder, p.TokenWS, o.Status))
		return s.errorURL(CodeDuplicate, o.ID)
	}

	if commit.Amount != o.Total {
		s.logger.Warn("Valor autorizado difere do total do pedido.", map[string]interface{}{
			"order_id": o.ID,
			"reported": commit.Amount,
			"expected": o.Total,
		})
		s.appendAttempt(ctx, o.ID, domain.AmountMismatchAttempt(o.BuyOrder, p.TokenWS, commit.Amount, o.Total))
		return s.errorURL(CodeAmountMismatch, o.ID)
	}

	code := s.markPaid(ctx, o, commit.Result(), domain.AuthorizedAttempt(o.BuyOrder, p.TokenWS))
	if code != "" {
		return s.errorURL(code, o.ID)
	}
	return s.successURL(o.ID)
}

// aborted registra a desistência do usuário no formulário do Webpay.
func (s *Service) aborted(ctx context.Context, p CallbackParams) string {
	s.logger.Info("Pagamento anulado pelo usuário no Webpay.", map[string]interface{}{"buy_order": p.TBKBuyOrder})
	if p.TBKBuyOrder == "" {
		return s.errorURL(CodeAborted, "")
	}
	o, err := s.orders.FindByBuyOrder(ctx, p.TBKBuyOrder)
	if err != nil {
		return s.errorURL(CodeAborted, "")
	}
	s.appendAttempt(ctx, o.ID, domain.RejectedAttempt(p.TBKBuyOrder, p.TBKToken, "pagamento anulado pelo usuário"))
	return s.errorURL(CodeAborted, o.ID)
}

// markPaid grava a transição para Pagado. Devolve o código de erro do
// frontend, ou "" em caso de sucesso.
func (s *Service) markPaid(ctx context.Context, o domain.Order, result *domain.TransactionResult, attempt domain.PaymentAttempt) string {
	paid, err := s.orders.MarkPaid(ctx, o.ID, result, attempt)
	if err != nil {
		if apperror.IsConflict(err) {
			s.appendAttempt(ctx, o.ID, domain.DuplicateAttempt(attempt.BuyOrder, attempt.Token, domain.StatusPaid))
			return CodeDuplicate
		}
		s.logger.Error("Falha ao registrar pagamento aprovado.", err)
		s.appendAttempt(ctx, o.ID, domain.ErrorAttempt(attempt.BuyOrder, attempt.Token, err))
		return CodeInternal
	}

	s.logger.Info("Pagamento aprovado.", map[string]interface{}{
		"order_id":  paid.ID,
		"amount":    result.Amount,
		"simulated": result.Simulated,
	})
	if err := s.publisher.Publish(ctx, domain.NewOrderEvent(domain.EventOrderPaid, paid)); err != nil {
		s.logger.Error("Falha ao publicar evento de pedido.", err)
	}
	return ""
}

// Simulate aprova ou rejeita o pagamento sem passar pelo gateway.
func (s *Service) Simulate(ctx context.Context, userID string, req domain.SimulationRequest) (domain.SimulationResult, error) {
	if !s.cfg.SimulationEnabled {
		return domain.SimulationResult{}, apperror.NewForbiddenError("pagamentos simulados estão desativados.")
	}
	if req.OrderID == "" || req.Result == "" {
		return domain.SimulationResult{}, apperror.NewValidationError("os campos 'order_id' e 'result' são obrigatórios.")
	}

	o, err := s.findOwned(ctx, userID, req.OrderID)
	if err != nil {
		return domain.SimulationResult{}, err
	}
	if o.Status != domain.StatusPendingPayment {
		s.appendAttempt(ctx, o.ID, domain.DuplicateAttempt(o.BuyOrder, o.TransactionToken, o.Status))
		return domain.SimulationResult{}, alreadyProcessed(o)
	}
	if req.Result != domain.SimulationSuccess {
		s.appendAttempt(ctx, o.ID, domain.RejectedAttempt(o.BuyOrder, o.TransactionToken, "pagamento simulado rejeitado"))
		return domain.SimulationResult{}, apperror.NewBusinessRuleError("pagamento simulado rejeitado.")
	}

	result := &domain.TransactionResult{
		AuthorizationCode: "SIMULADO",
		TransactionDate:   time.Now().UTC(),
		PaymentTypeCode:   "VD",
		Amount:            o.Total,
		Simulated:         true,
	}
	switch s.markPaid(ctx, o, result, domain.AuthorizedAttempt(o.BuyOrder, o.TransactionToken)) {
	case "":
		return domain.SimulationResult{Success: true, Message: "Pagamento simulado aprovado.", Status: domain.StatusPaid}, nil
	case CodeDuplicate:
		return domain.SimulationResult{}, apperror.NewConflictError("o pedido foi alterado por outra requisição.")
	default:
		return domain.SimulationResult{}, apperror.NewInternalError("falha ao registrar pagamento simulado", nil)
	}
}
