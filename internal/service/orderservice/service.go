// Package orderservice confirma pedidos a partir do carrinho e aplica a
// máquina de estados nas mudanças feitas pelo admin.
package orderservice

import (
	"context"

	"github.com/google/uuid"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/events"
	"brasero/internal/pkg/logger"
)

type OrderRepository interface {
	CreateAndClearCart(ctx context.Context, order domain.Order, cartID string) (domain.Order, error)
	FindByID(ctx context.Context, id string) (domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (domain.Order, error)
	Attempts(ctx context.Context, orderID string) ([]domain.PaymentAttempt, error)
}

type CartReader interface {
	GetOrCreate(ctx context.Context, userID string) (domain.Cart, error)
	Lines(ctx context.Context, cartID string) ([]domain.CartLine, error)
}

type Service struct {
	orders    OrderRepository
	carts     CartReader
	publisher events.Publisher
	logger    logger.Logger
}

func NewService(orders OrderRepository, carts CartReader, publisher events.Publisher, log logger.Logger) *Service {
	return &Service{orders: orders, carts: carts, publisher: publisher, logger: log}
}

func (s *Service) publish(ctx context.Context, t domain.OrderEventType, o domain.Order) {
	if err := s.publisher.Publish(ctx, domain.NewOrderEvent(t, o)); err != nil {
		s.logger.Error("Falha ao publicar evento de pedido.", err)
	}
}

// Confirm transforma o carrinho em pedido, congelando nome e preço de cada
// produto. Qualquer produto indisponível aborta a operação sem gravar nada.
func (s *Service) Confirm(ctx context.Context, userID string, customer domain.Profile) (domain.OrderCreated, error) {
	customer = customer.Normalize()
	if err := customer.Validate(); err != nil {
		return domain.OrderCreated{}, err
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.OrderCreated{}, err
	}
	lines, err := s.carts.Lines(ctx, cart.ID)
	if err != nil {
		return domain.OrderCreated{}, err
	}
	if len(lines) == 0 {
		return domain.OrderCreated{}, apperror.NewNotFoundError("o carrinho está vazio.")
	}

	order := domain.Order{
		ID:       uuid.NewString(),
		UserID:   userID,
		Status:   domain.StatusPendingPayment,
		Customer: customer,
		Items:    make([]domain.OrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		if !line.Available {
			return domain.OrderCreated{}, apperror.NewBusinessRuleError("o produto '" + line.Name + "' não está mais disponível.")
		}
		item := domain.NewOrderItem(domain.Product{ID: line.ProductID, Name: line.Name, Price: line.UnitPrice}, line.Quantity)
		order.Items = append(order.Items, item)
		order.Total += item.Subtotal
	}
	if err := order.VerifyTotal(); err != nil {
		return domain.OrderCreated{}, err
	}

	created, err := s.orders.CreateAndClearCart(ctx, order, cart.ID)
	if err != nil {
		return domain.OrderCreated{}, err
	}

	s.logger.Info("Pedido criado.", map[string]interface{}{
		"order_id": created.ID,
		"user_id":  userID,
		"total":    created.Total,
	})
	s.publish(ctx, domain.EventOrderCreated, created)

	return domain.OrderCreated{OrderID: created.ID, OrderNumber: created.Number(), Total: created.Total}, nil
}

// findOwned devolve o pedido somente se pertencer ao usuário; caso contrário 404.
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

// GetConfirmation monta a página de confirmação do pedido do usuário.
func (s *Service) GetConfirmation(ctx context.Context, userID, orderID string) (domain.OrderConfirmation, error) {
	o, err := s.findOwned(ctx, userID, orderID)
	if err != nil {
		return domain.OrderConfirmation{}, err
	}
	return o.Confirmation(), nil
}

// ListMine devolve os pedidos do usuário, mais recentes primeiro.
func (s *Service) ListMine(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAll é a listagem administrativa.
func (s *Service) ListAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.NewValidationError("o parâmetro 'estado' não é um estado válido.")
	}
	return s.orders.List(ctx, filter)
}

// Get devolve o pedido com o histórico de pagamento (visão admin).
func (s *Service) Get(ctx context.Context, orderID string) (domain.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	o.PaymentAttempts, err = s.orders.Attempts(ctx, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// ChangeStatus aplica uma transição pedida pelo admin. A gravação é
// condicional ao estado lido; se outra requisição chegou antes, 409.
func (s *Service) ChangeStatus(ctx context.Context, orderID string, next domain.OrderStatus) (domain.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if err := o.Status.CanTransitionTo(next); err != nil {
		return domain.Order{}, err
	}

	updated, err := s.orders.UpdateStatus(ctx, o.ID, o.Status, next)
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("Estado do pedido alterado.", map[string]interface{}{
		"order_id": o.ID,
		"from":     o.Status,
		"to":       next,
	})
	s.publish(ctx, domain.EventOrderStatusChanged, updated)
	return updated, nil
}
