// Package cartservice mantém o carrinho do usuário. Os totais são sempre
// calculados com o preço vigente do catálogo; só o pedido congela preços.
package cartservice

import (
	"context"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
)

type CartRepository interface {
	GetOrCreate(ctx context.Context, userID string) (domain.Cart, error)
	Lines(ctx context.Context, cartID string) ([]domain.CartLine, error)
	SetItem(ctx context.Context, cartID, productID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID string) error
	Clear(ctx context.Context, cartID string) error
}

// ProductFinder é usado para conferir existência e disponibilidade antes de adicionar.
type ProductFinder interface {
	FindByID(ctx context.Context, id string) (domain.Product, error)
}

type Service struct {
	carts    CartRepository
	products ProductFinder
	logger   logger.Logger
}

func NewService(carts CartRepository, products ProductFinder, log logger.Logger) *Service {
	return &Service{carts: carts, products: products, logger: log}
}

func (s *Service) view(ctx context.Context, cart domain.Cart) (domain.CartView, error) {
	lines, err := s.carts.Lines(ctx, cart.ID)
	if err != nil {
		return domain.CartView{}, err
	}
	return domain.NewCartView(cart.ID, lines), nil
}

// Get devolve o carrinho com preços atuais.
func (s *Service) Get(ctx context.Context, userID string) (domain.CartView, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.CartView{}, err
	}
	return s.view(ctx, cart)
}

// Summary devolve só a quantidade total de itens.
func (s *Service) Summary(ctx context.Context, userID string) (domain.CartSummary, error) {
	v, err := s.Get(ctx, userID)
	if err != nil {
		return domain.CartSummary{}, err
	}
	return domain.CartSummary{TotalItems: v.TotalItems}, nil
}

// SetItem define a quantidade de um produto no carrinho.
func (s *Service) SetItem(ctx context.Context, userID string, in domain.CartItemInput) (domain.CartView, error) {
	if in.ProductID == "" {
		return domain.CartView{}, apperror.NewValidationError("o campo 'product_id' é obrigatório.")
	}
	if err := domain.ValidateCartQuantity(in.Quantity); err != nil {
		return domain.CartView{}, err
	}

	product, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return domain.CartView{}, err
	}
	if !product.Available {
		return domain.CartView{}, apperror.NewBusinessRuleError("o produto '" + product.Name + "' não está disponível.")
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.CartView{}, err
	}
	if err := s.carts.SetItem(ctx, cart.ID, product.ID, in.Quantity); err != nil {
		return domain.CartView{}, err
	}

	s.logger.Debug("Item do carrinho atualizado.", map[string]interface{}{
		"user_id":    userID,
		"product_id": product.ID,
		"quantity":   in.Quantity,
	})
	return s.view(ctx, cart)
}

// RemoveItem tira um produto do carrinho.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (domain.CartView, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.CartView{}, err
	}
	if err := s.carts.RemoveItem(ctx, cart.ID, productID); err != nil {
		return domain.CartView{}, err
	}
	return s.view(ctx, cart)
}

// Clear esvazia o carrinho.
func (s *Service) Clear(ctx context.Context, userID string) (domain.CartView, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.CartView{}, err
	}
	if err := s.carts.Clear(ctx, cart.ID); err != nil {
		return domain.CartView{}, err
	}
	return domain.NewCartView(cart.ID, nil), nil
}
