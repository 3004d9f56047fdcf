// Package authservice emite e revoga sessões: registro, login, refresh,
// logout e a verificação de sessão feita a cada requisição autenticada.
package authservice

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
	"brasero/internal/pkg/token"
)

// UserRepository é o subconjunto do userrepo usado aqui.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	UpdateProfile(ctx context.Context, id string, p domain.Profile) (domain.User, error)
}

// SessionRepository é o contrato de persistência dos refresh tokens.
type SessionRepository interface {
	CreateWithCap(ctx context.Context, t domain.RefreshToken, maxActive int) (domain.RefreshToken, error)
	FindByToken(ctx context.Context, value string) (domain.RefreshToken, error)
	Revoke(ctx context.Context, value string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)
	HasActive(ctx context.Context, userID string) (bool, error)
}

// TokenService é o contrato da camada de token (internal/pkg/token)
type TokenService interface {
	GenerateToken(userID string, userRole string) (string, error)
}

// Config agrupa os parâmetros de sessão vindos do config.Config.
type Config struct {
	RefreshTokenExpiry time.Duration
	MaxSessionsPerUser int
	BcryptCost         int
}

// Service implementa o emissor de sessões e o middleware.SessionValidator.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	tokens   TokenService
	cfg      Config
	logger   logger.Logger

	now             func() time.Time
	newRefreshToken func() (string, error)
	dummyHash       []byte
}

// NewService cria o serviço. Custos de bcrypt fora do intervalo aceito usam o padrão.
func NewService(users UserRepository, sessions SessionRepository, tokens TokenService, cfg Config, log logger.Logger) *Service {
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.MaxSessionsPerUser < 1 {
		cfg.MaxSessionsPerUser = 10
	}
	if cfg.RefreshTokenExpiry <= 0 {
		cfg.RefreshTokenExpiry = 7 * 24 * time.Hour
	}

	// Hash usado quando o e-mail não existe, para que o tempo de resposta
	// do login não revele quais contas existem.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("brasero-dummy-password"), cfg.BcryptCost)

	return &Service{
		users:           users,
		sessions:        sessions,
		tokens:          tokens,
		cfg:             cfg,
		logger:          log,
		now:             time.Now,
		newRefreshToken: token.NewRefreshToken,
		dummyHash:       dummy,
	}
}

func invalidCredentials() error {
	return apperror.NewUnauthorizedError("credenciais inválidas.")
}

// Register cria um cliente (role user, ativo).
func (s *Service) Register(ctx context.Context, reg domain.UserRegistration) (domain.User, error) {
	email := domain.NormalizeEmail(reg.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return domain.User{}, err
	}
	if err := domain.ValidatePassword(reg.Password); err != nil {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cfg.BcryptCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("falha ao gerar hash da senha.", err)
	}

	user, err := s.users.Save(ctx, domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Active:       true,
	})
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Usuário registrado.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// Login verifica as credenciais e abre uma nova sessão respeitando o limite por usuário.
func (s *Service) Login(ctx context.Context, email, password string, meta domain.ClientMeta) (domain.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.LoginResult{}, apperror.NewValidationError("email e senha são obrigatórios.")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return domain.LoginResult{}, invalidCredentials()
		}
		return domain.LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("Senha incorreta no login.", map[string]interface{}{"user_id": user.ID})
		return domain.LoginResult{}, invalidCredentials()
	}
	if !user.Active {
		return domain.LoginResult{}, apperror.NewAccountDisabledError("a conta está desativada.")
	}

	access, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return domain.LoginResult{}, apperror.NewInternalError("falha ao gerar token de autenticação.", err)
	}

	value, err := s.newRefreshToken()
	if err != nil {
		return domain.LoginResult{}, apperror.NewInternalError("falha ao gerar refresh token.", err)
	}

	now := s.now().UTC()
	_, err = s.sessions.CreateWithCap(ctx, domain.RefreshToken{
		Token:     value,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.RefreshTokenExpiry),
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
	}, s.cfg.MaxSessionsPerUser)
	if err != nil {
		return domain.LoginResult{}, err
	}

	s.logger.Info("Login realizado.", map[string]interface{}{"user_id": user.ID, "ip": meta.IP})
	return domain.LoginResult{
		AccessToken:     access,
		RefreshToken:    value,
		Role:            user.Role,
		ProfileComplete: user.ProfileComplete(),
	}, nil
}

// Refresh emite um novo access token. O refresh token não é rotacionado.
func (s *Service) Refresh(ctx context.Context, value string) (string, error) {
	if value == "" {
		return "", apperror.NewValidationError("o campo 'refresh_token' é obrigatório.")
	}

	rt, err := s.sessions.FindByToken(ctx, value)
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", apperror.NewInvalidSessionError("refresh token inválido.")
		}
		return "", err
	}
	if !rt.IsActive(s.now()) {
		return "", apperror.NewInvalidSessionError("refresh token revogado ou expirado.")
	}

	user, err := s.users.FindByID(ctx, rt.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", apperror.NewInvalidSessionError("usuário da sessão não existe mais.")
		}
		return "", err
	}
	if !user.Active {
		if _, err := s.sessions.Revoke(ctx, value); err != nil {
			s.logger.Error("Falha ao revogar token de conta desativada.", err)
		}
		return "", apperror.NewInvalidSessionError("a conta está desativada.")
	}

	access, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return "", apperror.NewInternalError("falha ao gerar token de autenticação.", err)
	}
	return access, nil
}

// Logout revoga um refresh token. Token desconhecido conta como já deslogado.
func (s *Service) Logout(ctx context.Context, value string) error {
	if value == "" {
		return apperror.NewValidationError("o campo 'refresh_token' é obrigatório.")
	}
	revoked, err := s.sessions.Revoke(ctx, value)
	if err != nil {
		return err
	}
	s.logger.Debug("Logout.", map[string]interface{}{"revoked": revoked})
	return nil
}

// LogoutAll revoga todas as sessões ativas do usuário.
func (s *Service) LogoutAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.sessions.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Todas as sessões revogadas.", map[string]interface{}{"user_id": userID, "revoked": n})
	return n, nil
}

// Check confirma que o usuário do access token existe, está ativo e tem ao
// menos uma sessão viva. A role vem da claim do token: uma mudança de role
// vale a partir do próximo access token.
func (s *Service) Check(ctx context.Context, claims *token.CustomClaims) (domain.UserContext, error) {
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return domain.UserContext{}, apperror.NewUnauthorizedError("Usuário não encontrado")
		}
		return domain.UserContext{}, err
	}
	if !user.Active {
		return domain.UserContext{}, apperror.NewUnauthorizedError("Conta desativada")
	}

	alive, err := s.sessions.HasActive(ctx, user.ID)
	if err != nil {
		return domain.UserContext{}, err
	}
	if !alive {
		return domain.UserContext{}, apperror.NewInvalidSessionError("nenhuma sessão ativa.")
	}

	return domain.UserContext{UserID: user.ID, Email: user.Email, Role: domain.UserRole(claims.Role)}, nil
}

// Status descreve a sessão do usuário autenticado.
func (s *Service) Status(ctx context.Context, userID string) (domain.SessionStatus, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.SessionStatus{}, err
	}
	return domain.SessionStatus{
		Authenticated:   true,
		UserID:          user.ID,
		Email:           user.Email,
		Role:            user.Role,
		ProfileComplete: user.ProfileComplete(),
	}, nil
}

// GetProfile devolve o usuário autenticado.
func (s *Service) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile valida e grava os dados de entrega.
func (s *Service) UpdateProfile(ctx context.Context, userID string, p domain.Profile) (domain.User, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return domain.User{}, err
	}
	return s.users.UpdateProfile(ctx, userID, p)
}
