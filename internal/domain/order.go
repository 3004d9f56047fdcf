package domain

import (
	"fmt"
	"strings"
	"time"

	apperror "brasero/internal/errors"
)

// OrderStatus é o estado do pedido. Os valores são os exibidos ao cliente.
type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "Pendiente de pago"
	StatusPaid           OrderStatus = "Pagado"
	StatusInPreparation  OrderStatus = "En preparación"
	StatusDispatched     OrderStatus = "Despachado"
	StatusDelivered      OrderStatus = "Entregado"
	StatusCancelled      OrderStatus = "Anulado"
)

// workflow é a sequência linear de estados; Anulado fica fora dela.
var workflow = []OrderStatus{
	StatusPendingPayment,
	StatusPaid,
	StatusInPreparation,
	StatusDispatched,
	StatusDelivered,
}

func (s OrderStatus) position() int {
	for i, st := range workflow {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid indica se o estado existe.
func (s OrderStatus) Valid() bool {
	return s == StatusCancelled || s.position() >= 0
}

// IsTerminal indica os estados que não aceitam mais transições.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo aplica as regras da máquina de estados:
// estados finais não mudam, só Pendiente de pago pode ser anulado
// e o fluxo só avança (o admin pode pular etapas, nunca voltar).
func (s OrderStatus) CanTransitionTo(next OrderStatus) error {
	if !next.Valid() {
		return apperror.NewValidationError(fmt.Sprintf("o estado '%s' não é válido.", next))
	}
	if s.IsTerminal() {
		return apperror.NewBusinessRuleError(fmt.Sprintf("o pedido está em estado final (%s) e não pode ser alterado.", s))
	}
	if next == StatusCancelled {
		if s != StatusPendingPayment {
			return apperror.NewBusinessRuleError("só pedidos pendentes de pagamento podem ser anulados.")
		}
		return nil
	}
	if next == s {
		return apperror.NewBusinessRuleError(fmt.Sprintf("o pedido já está no estado '%s'.", s))
	}
	if next.position() < s.position() {
		return apperror.NewBusinessRuleError(fmt.Sprintf("não é permitido voltar de '%s' para '%s'.", s, next))
	}
	return nil
}

// OrderItem é a cópia do produto no momento da confirmação.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// NewOrderItem congela nome e preço atuais do produto.
func NewOrderItem(p Product, quantity int) OrderItem {
	return OrderItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  quantity,
		Subtotal:  p.Price * int64(quantity),
	}
}

// TotalTolerance é a diferença máxima aceita entre total e soma dos subtotais.
const TotalTolerance = 1

// Order é o pedido confirmado.
type Order struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id"`
	Items             []OrderItem        `json:"items"`
	Total             int64              `json:"total"`
	Status            OrderStatus        `json:"status"`
	Customer          Profile            `json:"customer"`
	BuyOrder          string             `json:"buy_order,omitempty"`
	TransactionToken  string             `json:"transaction_token,omitempty"`
	TransactionResult *TransactionResult `json:"transaction_result,omitempty"`
	PaymentAttempts   []PaymentAttempt   `json:"payment_attempts,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// ItemsTotal soma os subtotais dos itens.
func (o Order) ItemsTotal() int64 {
	var sum int64
	for _, item := range o.Items {
		sum += item.Subtotal
	}
	return sum
}

// VerifyTotal garante que o total bate com a soma dos itens antes de persistir.
func (o Order) VerifyTotal() error {
	diff := o.Total - o.ItemsTotal()
	if diff < 0 {
		diff = -diff
	}
	if diff > TotalTolerance {
		return apperror.NewInternalError(fmt.Sprintf("total do pedido (%d) difere da soma dos itens (%d)", o.Total, o.ItemsTotal()), nil)
	}
	return nil
}

// Number é o número exibido ao cliente (BR-XXXXXX).
func (o Order) Number() string {
	id := strings.ReplaceAll(o.ID, "-", "")
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return "BR-" + strings.ToUpper(id)
}

// OrderConfirmation é a visão do pedido para a página de confirmação.
type OrderConfirmation struct {
	ID       string      `json:"id"`
	Number   string      `json:"number"`
	Date     time.Time   `json:"date"`
	Status   OrderStatus `json:"status"`
	Customer Profile     `json:"customer"`
	Total    int64       `json:"total"`
	Items    []OrderItem `json:"items"`
}

// Confirmation monta a visão de confirmação.
func (o Order) Confirmation() OrderConfirmation {
	return OrderConfirmation{
		ID:       o.ID,
		Number:   o.Number(),
		Date:     o.CreatedAt,
		Status:   o.Status,
		Customer: o.Customer,
		Total:    o.Total,
		Items:    o.Items,
	}
}

// OrderCreated é a resposta de POST /api/pedidos/confirmar.
type OrderCreated struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Total       int64  `json:"total"`
}

// StatusChange é o payload de PUT /api/admin/pedidos/{id}/estado.
type StatusChange struct {
	Status OrderStatus `json:"status" example:"En preparación"`
}

// OrderFilter filtra a listagem administrativa.
type OrderFilter struct {
	Status OrderStatus
}
