// Package adminservice reúne as operações administrativas sobre contas:
// criação de administradores e ativação/desativação de usuários.
// Produtos e pedidos do painel usam productservice e orderservice.
package adminservice

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
)

type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	SetActive(ctx context.Context, id string, active bool) (domain.User, error)
}

type Service struct {
	users      UserRepository
	bcryptCost int
	logger     logger.Logger
}

func NewService(users UserRepository, bcryptCost int, log logger.Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{users: users, bcryptCost: bcryptCost, logger: log}
}

// CreateAdmin cria uma conta com role admin, com a mesma política de senha do registro.
func (s *Service) CreateAdmin(ctx context.Context, reg domain.UserRegistration) (domain.User, error) {
	email := domain.NormalizeEmail(reg.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return domain.User{}, err
	}
	if err := domain.ValidatePassword(reg.Password); err != nil {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("falha ao gerar hash da senha.", err)
	}

	user, err := s.users.Save(ctx, domain.User{
		Email:         email,
		PasswordHash:  string(hash),
		Role:          domain.RoleAdmin,
		Active:        true,
		EmailVerified: true,
	})
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Administrador criado.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// SetActive ativa ou desativa uma conta. Desativar encerra todas as sessões.
func (s *Service) SetActive(ctx context.Context, actorID, userID string, change domain.ActiveChange) (domain.User, error) {
	if change.Active == nil {
		return domain.User{}, apperror.NewValidationError("o campo 'active' é obrigatório.")
	}
	if userID == actorID && !*change.Active {
		return domain.User{}, apperror.NewBusinessRuleError("um administrador não pode desativar a própria conta.")
	}
	return s.users.SetActive(ctx, userID, *change.Active)
}
