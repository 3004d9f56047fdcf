package middleware

import (
	"context"
	"net/http"
	"strings"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
	"brasero/internal/pkg/respond"
	"brasero/internal/pkg/token"
)

// ContextKey é o tipo das chaves de contexto deste pacote.
type ContextKey int

const (
	UserClaimsKey ContextKey = iota
)

// TokenValidator valida a assinatura e a expiração do access token.
type TokenValidator interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// SessionValidator confirma, a cada requisição, que a sessão por trás de um
// access token válido continua viva (usuário existe, está ativo e possui
// ao menos um refresh token ativo). A estratégia de consulta fica a cargo
// da implementação.
type SessionValidator interface {
	Check(ctx context.Context, claims *token.CustomClaims) (domain.UserContext, error)
}

// NewAuthMiddleware valida o Bearer token, consulta o SessionValidator e
// anexa o domain.UserContext ao contexto da requisição.
func NewAuthMiddleware(tokens TokenValidator, sessions SessionValidator, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Extrair o Token do Header Authorization: Bearer <token>
			authHeader := r.Header.Get("Authorization")
			if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
				respond.Error(w, r, log, apperror.NewUnauthorizedError("token de autorização ausente ou malformado."))
				return
			}

			// 2. Validar assinatura e expiração
			claims, err := tokens.ValidateToken(strings.TrimSpace(authHeader[7:]))
			if err != nil {
				respond.Error(w, r, log, apperror.NewUnauthorizedError("token inválido ou expirado."))
				return
			}

			// 3. Verificar se a sessão continua viva
			user, err := sessions.Check(r.Context(), claims)
			if err != nil {
				respond.Error(w, r, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser anexa o usuário autenticado ao contexto.
func WithUser(ctx context.Context, user domain.UserContext) context.Context {
	return context.WithValue(ctx, UserClaimsKey, user)
}

// GetUserClaimsFromContext extrai o usuário autenticado no handler.
func GetUserClaimsFromContext(ctx context.Context) (domain.UserContext, bool) {
	user, ok := ctx.Value(UserClaimsKey).(domain.UserContext)
	return user, ok
}

// PermissionMiddleware restringe a rota às roles informadas (403 caso contrário).
func PermissionMiddleware(log logger.Logger, requiredRoles ...domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUserClaimsFromContext(r.Context())
			if !ok {
				respond.Error(w, r, log, apperror.NewUnauthorizedError("autorização necessária."))
				return
			}

			for _, role := range requiredRoles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn("Acesso negado por role.", map[string]interface{}{
				"user_id": user.UserID,
				"role":    user.Role,
				"path":    r.URL.Path,
			})
			respond.Error(w, r, log, apperror.NewForbiddenError("você não tem a permissão necessária."))
		})
	}
}

// ClientMeta extrai user-agent e IP da requisição (o IP já passou por chi RealIP).
func ClientMeta(r *http.Request) domain.ClientMeta {
	ua := r.UserAgent()
	if len(ua) > 255 {
		ua = ua[:255]
	}
	return domain.ClientMeta{UserAgent: ua, IP: clientIP(r)}
}
