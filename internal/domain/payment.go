package domain

import (
	"fmt"
	"time"
)

// AttemptOutcome é o resultado de uma tentativa de pagamento.
// O conjunto é fechado: toda chamada relacionada a pagamento produz exatamente um destes.
type AttemptOutcome string

const (
	AttemptInitiated      AttemptOutcome = "initiated"
	AttemptAuthorized     AttemptOutcome = "authorized"
	AttemptRejected       AttemptOutcome = "rejected"
	AttemptDuplicate      AttemptOutcome = "duplicate"
	AttemptAmountMismatch AttemptOutcome = "amount_mismatch"
	AttemptError          AttemptOutcome = "error"
)

// Valid indica se o resultado pertence ao conjunto.
func (o AttemptOutcome) Valid() bool {
	switch o {
	case AttemptInitiated, AttemptAuthorized, AttemptRejected,
		AttemptDuplicate, AttemptAmountMismatch, AttemptError:
		return true
	}
	return false
}

// PaymentAttempt é uma entrada imutável do histórico de pagamento do pedido.
type PaymentAttempt struct {
	Timestamp    time.Time      `json:"timestamp"`
	Outcome      AttemptOutcome `json:"outcome"`
	BuyOrder     string         `json:"buy_order,omitempty"`
	Token        string         `json:"token,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

func newAttempt(outcome AttemptOutcome, buyOrder, token, msg string) PaymentAttempt {
	return PaymentAttempt{
		Timestamp:    time.Now().UTC(),
		Outcome:      outcome,
		BuyOrder:     buyOrder,
		Token:        token,
		ErrorMessage: msg,
	}
}

func InitiatedAttempt(buyOrder, token string) PaymentAttempt {
	return newAttempt(AttemptInitiated, buyOrder, token, "")
}

func AuthorizedAttempt(buyOrder, token string) PaymentAttempt {
	return newAttempt(AttemptAuthorized, buyOrder, token, "")
}

func RejectedAttempt(buyOrder, token, reason string) PaymentAttempt {
	return newAttempt(AttemptRejected, buyOrder, token, reason)
}

func DuplicateAttempt(buyOrder, token string, current OrderStatus) PaymentAttempt {
	return newAttempt(AttemptDuplicate, buyOrder, token, fmt.Sprintf("pedido já está no estado '%s'", current))
}

func AmountMismatchAttempt(buyOrder, token string, reported, expected int64) PaymentAttempt {
	return newAttempt(AttemptAmountMismatch, buyOrder, token, fmt.Sprintf("valor informado %d difere do total %d", reported, expected))
}

func ErrorAttempt(buyOrder, token string, err error) PaymentAttempt {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return newAttempt(AttemptError, buyOrder, token, msg)
}

// TransactionResult guarda os dados da transação autorizada.
type TransactionResult struct {
	AuthorizationCode  string    `json:"authorization_code"`
	TransactionDate    time.Time `json:"transaction_date"`
	CardNumber         string    `json:"card_number"` // últimos 4 dígitos
	PaymentTypeCode    string    `json:"payment_type_code"`
	InstallmentsNumber int       `json:"installments_number"`
	InstallmentsAmount int64     `json:"installments_amount,omitempty"`
	Balance            int64     `json:"balance,omitempty"`
	Amount             int64     `json:"amount"`
	Simulated          bool      `json:"simulated,omitempty"`
}

// GatewayTransaction é a transação criada no gateway (token + URL do formulário).
type GatewayTransaction struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// CommitResult é a resposta do gateway ao confirmar a transação.
type CommitResult struct {
	VCI                string
	Amount             int64
	Status             string
	BuyOrder           string
	SessionID          string
	CardNumber         string
	AccountingDate     string
	TransactionDate    time.Time
	AuthorizationCode  string
	PaymentTypeCode    string
	ResponseCode       int
	InstallmentsAmount int64
	InstallmentsNumber int
	Balance            int64
}

// Authorized indica aprovação pelo emissor.
func (c CommitResult) Authorized() bool {
	return c.ResponseCode == 0 && c.Status == "AUTHORIZED"
}

// Result converte a resposta do gateway no registro guardado no pedido.
func (c CommitResult) Result() *TransactionResult {
	return &TransactionResult{
		AuthorizationCode:  c.AuthorizationCode,
		TransactionDate:    c.TransactionDate,
		CardNumber:         c.CardNumber,
		PaymentTypeCode:    c.PaymentTypeCode,
		InstallmentsNumber: c.InstallmentsNumber,
		InstallmentsAmount: c.InstallmentsAmount,
		Balance:            c.Balance,
		Amount:             c.Amount,
	}
}

// PaymentStart é a resposta de POST /api/pagos/iniciar.
type PaymentStart struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// SimulationRequest é o payload de POST /api/pagos/simular.
type SimulationRequest struct {
	OrderID string `json:"order_id"`
	Result  string `json:"result" example:"exito"`
}

// SimulationSuccess é o valor de Result que aprova o pagamento simulado.
const SimulationSuccess = "exito"

// OrderEventType identifica os eventos de pedido publicados na fila.
type OrderEventType string

const (
	EventOrderCreated       OrderEventType = "order.created"
	EventOrderPaid          OrderEventType = "order.paid"
	EventOrderStatusChanged OrderEventType = "order.status_changed"
)

// OrderEvent é a mensagem publicada na mensageria.
type OrderEvent struct {
	Type       OrderEventType `json:"type"`
	OrderID    string         `json:"order_id"`
	UserID     string         `json:"user_id"`
	Status     OrderStatus    `json:"status"`
	Total      int64          `json:"total"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewOrderEvent monta o evento a partir do estado atual do pedido.
func NewOrderEvent(t OrderEventType, o Order) OrderEvent {
	return OrderEvent{
		Type:       t,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Total:      o.Total,
		OccurredAt: time.Now().UTC(),
	}
}

// SimulationResult é a resposta de um pagamento simulado aprovado.
type SimulationResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Status  OrderStatus `json:"status"`
}
