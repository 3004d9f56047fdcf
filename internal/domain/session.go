package domain

import "time"

// RefreshToken é a credencial de longa duração, revogável no servidor,
// usada apenas para emitir novos access tokens.
type RefreshToken struct {
	ID        string    `json:"id"`
	Token     string    `json:"-"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	UserAgent string    `json:"user_agent,omitempty"`
	IP        string    `json:"ip,omitempty"`
}

// IsActive indica se o token ainda pode ser usado.
func (t RefreshToken) IsActive(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

// ClientMeta identifica o dispositivo que abriu a sessão.
type ClientMeta struct {
	UserAgent string
	IP        string
}

// LoginResult é a resposta de um login bem-sucedido.
type LoginResult struct {
	AccessToken     string   `json:"access_token"`
	RefreshToken    string   `json:"refresh_token"`
	Role            UserRole `json:"role"`
	ProfileComplete bool     `json:"profile_complete"`
}

// UserContext é o resultado da verificação de sessão feita em cada requisição autenticada.
type UserContext struct {
	UserID string
	Email  string
	Role   UserRole
}

// SessionStatus é a resposta de GET /api/auth/status.
type SessionStatus struct {
	Authenticated   bool     `json:"authenticated"`
	UserID          string   `json:"user_id"`
	Email           string   `json:"email"`
	Role            UserRole `json:"role"`
	ProfileComplete bool     `json:"profile_complete"`
}

// RecoveryCodeLength é o número de dígitos do código de recuperação.
const RecoveryCodeLength = 6

// RecoveryCode é o código numérico de uso único enviado por e-mail.
type RecoveryCode struct {
	ID        string
	UserID    string
	Code      string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// IsUsable indica se o código ainda não foi consumido nem expirou.
func (c RecoveryCode) IsUsable(now time.Time) bool {
	return !c.Used && now.Before(c.ExpiresAt)
}
