// Package recoveryservice implementa a recuperação de senha por código de
// seis dígitos enviado por e-mail. Toda falha vista pelo cliente usa a mesma
// mensagem genérica, para não revelar quais e-mails têm conta.
package recoveryservice

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
)

// Mensagens expostas ao cliente.
const (
	RequestAcceptedMessage = "Se o e-mail estiver cadastrado, você receberá um código de recuperação."
	invalidCodeMessage     = "código inválido ou expirado."
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

type CodeRepository interface {
	Issue(ctx context.Context, code domain.RecoveryCode) (domain.RecoveryCode, error)
	FindActive(ctx context.Context, userID string) (domain.RecoveryCode, error)
	Consume(ctx context.Context, codeID, userID, passwordHash string) (int64, error)
}

// Mailer entrega o código ao usuário.
type Mailer interface {
	SendRecoveryCode(ctx context.Context, to, code string, ttl time.Duration) error
}

type Service struct {
	users      UserRepository
	codes      CodeRepository
	mailer     Mailer
	codeTTL    time.Duration
	bcryptCost int
	logger     logger.Logger

	now     func() time.Time
	newCode func() (string, error)
}

func NewService(users UserRepository, codes CodeRepository, mailer Mailer, codeTTL time.Duration, bcryptCost int, log logger.Logger) *Service {
	if codeTTL <= 0 {
		codeTTL = 15 * time.Minute
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		codes:      codes,
		mailer:     mailer,
		codeTTL:    codeTTL,
		bcryptCost: bcryptCost,
		logger:     log,
		now:        time.Now,
		newCode:    GenerateCode,
	}
}

// GenerateCode sorteia um código numérico de RecoveryCodeLength dígitos.
func GenerateCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < domain.RecoveryCodeLength; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", domain.RecoveryCodeLength, n), nil
}

// Request gera e envia um novo código. A resposta é sempre a mesma,
// exista ou não a conta, e mesmo que o envio do e-mail falhe.
func (s *Service) Request(ctx context.Context, email string) domain.MessageResponse {
	accepted := domain.MessageResponse{Message: RequestAcceptedMessage}
	email = domain.NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !apperror.IsNotFound(err) {
			s.logger.Error("Falha ao buscar usuário para recuperação.", err)
		}
		return accepted
	}
	if !user.Active {
		s.logger.Debug("Recuperação pedida para conta desativada.", map[string]interface{}{"user_id": user.ID})
		return accepted
	}

	value, err := s.newCode()
	if err != nil {
		s.logger.Error("Falha ao gerar código de recuperação.", err)
		return accepted
	}

	now := s.now().UTC()
	if _, err := s.codes.Issue(ctx, domain.RecoveryCode{
		UserID:    user.ID,
		Code:      value,
		CreatedAt: now,
		ExpiresAt: now.Add(s.codeTTL),
	}); err != nil {
		s.logger.Error("Falha ao gravar código de recuperação.", err)
		return accepted
	}

	if err := s.mailer.SendRecoveryCode(ctx, user.Email, value, s.codeTTL); err != nil {
		s.logger.Error("Falha ao enviar e-mail de recuperação.", err)
		return accepted
	}

	s.logger.Info("Código de recuperação enviado.", map[string]interface{}{"user_id": user.ID})
	return accepted
}

// lookup devolve o usuário e o código vivo que casa com value.
func (s *Service) lookup(ctx context.Context, email, value string) (domain.User, domain.RecoveryCode, error) {
	invalid := apperror.NewValidationError(invalidCodeMessage)

	if len(value) != domain.RecoveryCodeLength {
		return domain.User{}, domain.RecoveryCode{}, invalid
	}

	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if !apperror.IsNotFound(err) {
			s.logger.Error("Falha ao buscar usuário na validação do código.", err)
		}
		return domain.User{}, domain.RecoveryCode{}, invalid
	}
	if !user.Active {
		return domain.User{}, domain.RecoveryCode{}, invalid
	}

	code, err := s.codes.FindActive(ctx, user.ID)
	if err != nil {
		if !apperror.IsNotFound(err) {
			s.logger.Error("Falha ao buscar código de recuperação.", err)
		}
		return domain.User{}, domain.RecoveryCode{}, invalid
	}

	if subtle.ConstantTimeCompare([]byte(code.Code), []byte(value)) != 1 || !code.IsUsable(s.now()) {
		return domain.User{}, domain.RecoveryCode{}, invalid
	}
	return user, code, nil
}

// Validate confere o código sem consumi-lo.
func (s *Service) Validate(ctx context.Context, email, code string) error {
	_, _, err := s.lookup(ctx, email, code)
	return err
}

// Reset troca a senha, consome o código e revoga todas as sessões do usuário.
func (s *Service) Reset(ctx context.Context, email, code, newPassword string) error {
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, rc, err := s.lookup(ctx, email, code)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return apperror.NewInternalError("falha ao gerar hash da senha.", err)
	}

	revoked, err := s.codes.Consume(ctx, rc.ID, user.ID, string(hash))
	if err != nil {
		var internal *apperror.InternalError
		if errors.As(err, &internal) {
			return err
		}
		return apperror.NewValidationError(invalidCodeMessage)
	}

	s.logger.Info("Senha redefinida por código de recuperação.", map[string]interface{}{
		"user_id":          user.ID,
		"revoked_sessions": revoked,
	})
	return nil
}
