package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperror "brasero/internal/errors"
)

// Category é a categoria fixa do cardápio.
type Category string

const (
	CategoryChicken Category = "Pollos"
	CategoryCombos  Category = "Combos"
	CategorySides   Category = "Acompañamientos"
	CategoryDrinks  Category = "Bebidas"
	CategorySalads  Category = "Ensaladas"
)

// Categories lista as categorias na ordem em que aparecem no cardápio.
var Categories = []Category{CategoryChicken, CategoryCombos, CategorySides, CategoryDrinks, CategorySalads}

// Valid indica se a categoria pertence ao enum.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product representa um item do cardápio. Preços em pesos chilenos (sem centavos).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Category    Category  `json:"category"`
	ImageURL    string    `json:"image_url"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductInput é o payload de criação e edição usado pelo admin.
type ProductInput struct {
	Name        string   `json:"name" example:"Pollo entero"`
	Description string   `json:"description" example:"Pollo a las brasas con papas"`
	Price       int64    `json:"price" example:"12990"`
	Category    Category `json:"category" example:"Pollos"`
	ImageURL    string   `json:"image_url"`
	Available   *bool    `json:"available,omitempty"`
}

// Validate devolve o erro do primeiro campo inválido.
func (in ProductInput) Validate() error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperror.NewValidationError("o campo 'name' é obrigatório.")
	}
	if utf8.RuneCountInString(name) < 3 {
		return apperror.NewValidationError("o campo 'name' deve ter pelo menos 3 caracteres.")
	}
	if in.Price < 1 {
		return apperror.NewValidationError("o campo 'price' deve ser maior que zero.")
	}
	if !in.Category.Valid() {
		return apperror.NewValidationError("o campo 'category' deve ser uma categoria válida.")
	}
	return nil
}

// Apply copia o payload para o produto, preservando a disponibilidade se ela não foi informada.
func (in ProductInput) Apply(p Product) Product {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price
	p.Category = in.Category
	p.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.Available != nil {
		p.Available = *in.Available
	}
	return p
}

// Limites de paginação do catálogo.
const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100
	MaxPage          = 10000
)

// ProductFilter define os parâmetros de busca e paginação do catálogo.
// Preços zero significam "sem limite".
type ProductFilter struct {
	Query              string
	Category           Category
	MinPrice           int64
	MaxPrice           int64
	Page               int
	Limit              int
	IncludeUnavailable bool
}

// Normalize aplica os valores padrão de paginação.
func (f ProductFilter) Normalize() ProductFilter {
	f.Query = strings.TrimSpace(f.Query)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	return f
}

// Offset é o deslocamento SQL correspondente à página.
func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Validate rejeita filtros contraditórios.
func (f ProductFilter) Validate() error {
	if f.Category != "" && !f.Category.Valid() {
		return apperror.NewValidationError("o parâmetro 'categoria' deve ser uma categoria válida.")
	}
	if f.MinPrice < 0 || f.MaxPrice < 0 {
		return apperror.NewValidationError("os parâmetros 'min' e 'max' não podem ser negativos.")
	}
	if f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return apperror.NewValidationError("o parâmetro 'min' não pode ser maior que 'max'.")
	}
	if f.Page > MaxPage {
		return apperror.NewValidationError(fmt.Sprintf("o parâmetro 'page' não pode passar de %d.", MaxPage))
	}
	return nil
}

// ProductPage é uma página do catálogo.
type ProductPage struct {
	Items      []Product `json:"items"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
}

// NewProductPage calcula o total de páginas.
func NewProductPage(items []Product, total int, f ProductFilter) ProductPage {
	if items == nil {
		items = []Product{}
	}
	pages := 0
	if f.Limit > 0 {
		pages = (total + f.Limit - 1) / f.Limit
	}
	return ProductPage{Items: items, Page: f.Page, Limit: f.Limit, Total: total, TotalPages: pages}
}
