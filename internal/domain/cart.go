package domain

import (
	"fmt"
	"time"

	apperror "brasero/internal/errors"
)

// Limites de quantidade por produto no carrinho.
const (
	MinCartQuantity = 1
	MaxCartQuantity = 10
)

// Cart é o carrinho do usuário (um por usuário, criado sob demanda).
type Cart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartLine é um item do carrinho unido ao preço atual do catálogo.
type CartLine struct {
	ProductID string   `json:"product_id"`
	Name      string   `json:"name"`
	ImageURL  string   `json:"image_url"`
	Category  Category `json:"category"`
	UnitPrice int64    `json:"unit_price"`
	Quantity  int      `json:"quantity"`
	Available bool     `json:"available"`
	Subtotal  int64    `json:"subtotal"`
}

// CartView é o carrinho com totais derivados dos preços vigentes.
type CartView struct {
	ID         string     `json:"id"`
	Items      []CartLine `json:"items"`
	Total      int64      `json:"total"`
	TotalItems int        `json:"total_items"`
}

// CartSummary é a resposta resumida usada no contador do cabeçalho.
type CartSummary struct {
	TotalItems int `json:"total_items"`
}

// CartItemInput é o payload de POST /api/carrito/items.
type CartItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity" example:"2"`
}

// NewCartView calcula subtotais e totais a partir das linhas.
func NewCartView(cartID string, lines []CartLine) CartView {
	view := CartView{ID: cartID, Items: make([]CartLine, 0, len(lines))}
	for _, line := range lines {
		line.Subtotal = line.UnitPrice * int64(line.Quantity)
		view.Total += line.Subtotal
		view.TotalItems += line.Quantity
		view.Items = append(view.Items, line)
	}
	return view
}

// ValidateCartQuantity aplica o limite [1,10].
func ValidateCartQuantity(quantity int) error {
	if quantity < MinCartQuantity || quantity > MaxCartQuantity {
		return apperror.NewBusinessRuleError(fmt.Sprintf("a quantidade deve estar entre %d e %d.", MinCartQuantity, MaxCartQuantity))
	}
	return nil
}
