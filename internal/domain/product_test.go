package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
)

func TestProductInput_Validate(t *testing.T) {
	valid := domain.ProductInput{Name: "Pollo entero", Price: 12990, Category: domain.CategoryChicken}
	assert.NoError(t, valid.Validate())

	short := valid
	short.Name = "Po"
	assert.Contains(t, short.Validate().Error(), "'name'")

	free := valid
	free.Price = 0
	assert.Contains(t, free.Validate().Error(), "'price'")

	unknown := valid
	unknown.Category = "Postres"
	assert.Contains(t, unknown.Validate().Error(), "'category'")
}

func TestProductInput_Apply_KeepsAvailabilityWhenOmitted(t *testing.T) {
	existing := domain.Product{ID: "p1", Available: false}
	in := domain.ProductInput{Name: " Bebida ", Price: 1500, Category: domain.CategoryDrinks}

	updated := in.Apply(existing)

	assert.Equal(t, "p1", updated.ID)
	assert.Equal(t, "Bebida", updated.Name)
	assert.False(t, updated.Available)

	yes := true
	in.Available = &yes
	assert.True(t, in.Apply(existing).Available)
}

func TestProductFilter_NormalizeAndPage(t *testing.T) {
	f := domain.ProductFilter{Page: 0, Limit: 500}.Normalize()

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, domain.MaxPageLimit, f.Limit)
	assert.Equal(t, 0, f.Offset())

	f = domain.ProductFilter{Page: 3, Limit: 5}.Normalize()
	assert.Equal(t, 10, f.Offset())

	page := domain.NewProductPage(nil, 11, f)
	assert.Equal(t, 3, page.TotalPages)
	assert.NotNil(t, page.Items)

	assert.Equal(t, 0, domain.NewProductPage(nil, 0, f).TotalPages)
}

func TestProductFilter_Validate(t *testing.T) {
	assert.NoError(t, domain.ProductFilter{Category: domain.CategoryCombos, MinPrice: 1000, MaxPrice: 5000}.Validate())
	assert.IsType(t, &apperror.ValidationError{}, domain.ProductFilter{Category: "Postres"}.Validate())
	assert.Error(t, domain.ProductFilter{MinPrice: 5000, MaxPrice: 1000}.Validate())
	assert.Error(t, domain.ProductFilter{MinPrice: -1}.Validate())
	assert.NoError(t, domain.ProductFilter{Page: domain.MaxPage}.Validate())
	assert.IsType(t, &apperror.ValidationError{}, domain.ProductFilter{Page: domain.MaxPage + 1}.Validate())
}

func TestNewCartView_UsesLivePrices(t *testing.T) {
	view := domain.NewCartView("c1", []domain.CartLine{
		{ProductID: "a", UnitPrice: 1500, Quantity: 2},
		{ProductID: "b", UnitPrice: 990, Quantity: 1},
	})

	assert.Equal(t, int64(3000), view.Items[0].Subtotal)
	assert.Equal(t, int64(3990), view.Total)
	assert.Equal(t, 3, view.TotalItems)
}

func TestValidateCartQuantity(t *testing.T) {
	assert.NoError(t, domain.ValidateCartQuantity(1))
	assert.NoError(t, domain.ValidateCartQuantity(10))
	assert.IsType(t, &apperror.BusinessRuleError{}, domain.ValidateCartQuantity(0))
	assert.Error(t, domain.ValidateCartQuantity(11))
}
