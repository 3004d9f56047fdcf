package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	apperror "brasero/internal/errors"
)

// User representa a entidade do usuário (cliente ou administrador).
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"` // Oculta o hash da senha no JSON de resposta
	Role          UserRole  `json:"role"`
	Active        bool      `json:"active"`
	EmailVerified bool      `json:"email_verified"`
	Name          string    `json:"name,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	Commune       string    `json:"commune,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProfileComplete indica se o usuário já preencheu os dados de entrega.
func (u User) ProfileComplete() bool {
	return u.Name != "" && u.Phone != "" && u.Address != "" && u.Commune != ""
}

// Profile devolve os dados de entrega do usuário.
func (u User) Profile() Profile {
	return Profile{Name: u.Name, Phone: u.Phone, Address: u.Address, Commune: u.Commune}
}

// UserRole é o papel do usuário no sistema.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// Valid indica se a role é conhecida.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// UserRegistration representa o payload de entrada para o registro.
type UserRegistration struct {
	Email    string `json:"email" example:"user@test.cl"`
	Password string `json:"password" example:"Passw0rd!"`
}

// Profile são os dados de contato e entrega. O mesmo formato é usado como
// dados do cliente no pedido.
type Profile struct {
	Name    string `json:"name" example:"Juan Pérez"`
	Phone   string `json:"phone" example:"912345678"`
	Address string `json:"address" example:"Av. Siempre Viva 742"`
	Commune string `json:"commune" example:"Providencia"`
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{9,11}$`)
)

// MinPasswordLength é o tamanho mínimo de senha aceito.
const MinPasswordLength = 8

// NormalizeEmail remove espaços e converte para minúsculas.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail verifica o formato do e-mail (já normalizado).
func ValidateEmail(email string) error {
	if email == "" {
		return apperror.NewValidationError("o campo 'email' é obrigatório.")
	}
	if !emailPattern.MatchString(email) {
		return apperror.NewValidationError("o campo 'email' não tem um formato válido.")
	}
	return nil
}

// ValidatePassword aplica a política de senha: 8 caracteres, com minúscula, maiúscula e número.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperror.NewValidationError(fmt.Sprintf("o campo 'password' deve ter pelo menos %d caracteres.", MinPasswordLength))
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return apperror.NewValidationError("o campo 'password' deve conter letras minúsculas, maiúsculas e números.")
	}
	return nil
}

// Normalize remove espaços nas bordas de todos os campos.
func (p Profile) Normalize() Profile {
	return Profile{
		Name:    strings.TrimSpace(p.Name),
		Phone:   strings.TrimSpace(p.Phone),
		Address: strings.TrimSpace(p.Address),
		Commune: strings.TrimSpace(p.Commune),
	}
}

// Validate devolve o erro do primeiro campo inválido.
func (p Profile) Validate() error {
	if err := lengthBetween("name", p.Name, 2, 100); err != nil {
		return err
	}
	if !phonePattern.MatchString(p.Phone) {
		return apperror.NewValidationError("o campo 'phone' deve ter entre 9 e 11 dígitos.")
	}
	if err := lengthBetween("address", p.Address, 5, 200); err != nil {
		return err
	}
	if err := lengthBetween("commune", p.Commune, 1, 100); err != nil {
		return err
	}
	return nil
}

func lengthBetween(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n == 0 {
		return apperror.NewValidationError(fmt.Sprintf("o campo '%s' é obrigatório.", field))
	}
	if n < min || n > max {
		return apperror.NewValidationError(fmt.Sprintf("o campo '%s' deve ter entre %d e %d caracteres.", field, min, max))
	}
	return nil
}

// ActiveChange é o payload de PUT /api/admin/usuarios/{id}/activo.
type ActiveChange struct {
	Active *bool `json:"active" example:"false"`
}
