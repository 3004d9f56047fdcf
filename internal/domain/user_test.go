package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
)

func TestNormalizeAndValidateEmail(t *testing.T) {
	email := domain.NormalizeEmail("  User@Test.CL ")

	assert.Equal(t, "user@test.cl", email)
	assert.NoError(t, domain.ValidateEmail(email))
	assert.Error(t, domain.ValidateEmail("user@test"))
	assert.Error(t, domain.ValidateEmail(""))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, domain.ValidatePassword("Passw0rd!"))

	for _, weak := range []string{"Pa0!", "password1", "PASSWORD1", "Password"} {
		err := domain.ValidatePassword(weak)
		assert.Error(t, err, weak)
		assert.IsType(t, &apperror.ValidationError{}, err)
	}
}

func TestProfile_Validate_FirstFailingField(t *testing.T) {
	valid := domain.Profile{Name: "Juan Pérez", Phone: "912345678", Address: "Av. Siempre Viva 742", Commune: "Providencia"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		edit  func(p *domain.Profile)
		field string
	}{
		{"nome curto", func(p *domain.Profile) { p.Name = "J" }, "name"},
		{"telefone com letras", func(p *domain.Profile) { p.Phone = "9123abc78" }, "phone"},
		{"telefone curto", func(p *domain.Profile) { p.Phone = "12345" }, "phone"},
		{"endereço curto", func(p *domain.Profile) { p.Address = "Av" }, "address"},
		{"comuna longa", func(p *domain.Profile) { p.Commune = strings.Repeat("x", 101) }, "commune"},
		{"vários inválidos", func(p *domain.Profile) { p.Name = ""; p.Phone = "" }, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.edit(&p)
			err := p.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "'"+tt.field+"'")
		})
	}
}

func TestUser_ProfileComplete(t *testing.T) {
	u := domain.User{Name: "Juan", Phone: "912345678", Address: "Calle 1", Commune: "Ñuñoa"}
	assert.True(t, u.ProfileComplete())

	u.Commune = ""
	assert.False(t, u.ProfileComplete())
}
