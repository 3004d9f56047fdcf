// Package recoveryrepo guarda os códigos de recuperação de senha. O índice
// único parcial em recovery_codes(user_id) WHERE used = FALSE garante no
// máximo um código vivo por usuário.
package recoveryrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/database"
	"brasero/internal/pkg/logger"
)

// ErrCodeNotUsable indica que o código foi consumido ou expirou entre a leitura e o consumo.
var ErrCodeNotUsable = errors.New("recovery code já usado ou expirado")

type RecoveryRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

func NewRecoveryRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *RecoveryRepository {
	return &RecoveryRepository{DB: db, DBTimeout: dbTimeout, logger: logger}
}

// Issue invalida os códigos anteriores e grava o novo na mesma transação.
func (r *RecoveryRepository) Issue(ctx context.Context, code domain.RecoveryCode) (domain.RecoveryCode, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	code.ID = uuid.NewString()
	code.Used = false
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}

	err := database.WithTx(ctxTimeout, r.DB, func(tx *sql.Tx) error {
		var locked string
		if err := tx.QueryRowContext(ctxTimeout,
			`SELECT id FROM users WHERE id = $1 FOR UPDATE`, code.UserID).Scan(&locked); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctxTimeout,
			`UPDATE recovery_codes SET used = TRUE WHERE user_id = $1 AND used = FALSE`, code.UserID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctxTimeout,
			`INSERT INTO recovery_codes (id, user_id, code, expires_at, used, created_at)
			 VALUES ($1,$2,$3,$4,FALSE,$5)`,
			code.ID, code.UserID, code.Code, code.ExpiresAt, code.CreatedAt)
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RecoveryCode{}, apperror.NewNotFoundError("usuário não encontrado.")
		}
		if database.IsUniqueViolation(err, "recovery_codes_one_live_per_user") {
			return domain.RecoveryCode{}, apperror.NewConflictError("já existe um código de recuperação ativo.")
		}
		r.logger.Error("Falha ao gravar código de recuperação.", err)
		return domain.RecoveryCode{}, apperror.NewDBError("failed to issue recovery code", err)
	}
	return code, nil
}

// FindActive devolve o único código não consumido do usuário (pode estar expirado).
func (r *RecoveryRepository) FindActive(ctx context.Context, userID string) (domain.RecoveryCode, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var c domain.RecoveryCode
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT id, user_id, code, expires_at, used, created_at
		 FROM recovery_codes WHERE user_id = $1 AND used = FALSE`, userID).Scan(
		&c.ID, &c.UserID, &c.Code, &c.ExpiresAt, &c.Used, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RecoveryCode{}, apperror.NewNotFoundError("nenhum código de recuperação ativo.")
		}
		r.logger.Error("Falha ao buscar código de recuperação.", err)
		return domain.RecoveryCode{}, apperror.NewDBError("failed to find recovery code", err)
	}
	return c, nil
}

// Consume marca o código como usado, troca o hash da senha e revoga todas as
// sessões do usuário. O UPDATE condicional impede o consumo duplo.
func (r *RecoveryRepository) Consume(ctx context.Context, codeID, userID, passwordHash string) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var revoked int64
	err := database.WithTx(ctxTimeout, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctxTimeout,
			`UPDATE recovery_codes SET used = TRUE
			 WHERE id = $1 AND user_id = $2 AND used = FALSE AND expires_at > NOW()`, codeID, userID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrCodeNotUsable
		}

		if _, err := tx.ExecContext(ctxTimeout,
			`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, userID, passwordHash); err != nil {
			return err
		}

		res, err = tx.ExecContext(ctxTimeout,
			`UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE`, userID)
		if err != nil {
			return err
		}
		revoked, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCodeNotUsable) {
			return 0, apperror.NewBusinessRuleError("código de recuperação inválido ou expirado.")
		}
		r.logger.Error("Falha ao consumir código de recuperação.", err)
		return 0, apperror.NewDBError("failed to consume recovery code", err)
	}
	return revoked, nil
}

// Purge apaga códigos usados ou expirados antes de olderThan.
func (r *RecoveryRepository) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctxTimeout,
		`DELETE FROM recovery_codes WHERE expires_at < $1 OR (used = TRUE AND created_at < $1)`, olderThan)
	if err != nil {
		return 0, apperror.NewDBError("failed to purge recovery codes", err)
	}
	return res.RowsAffected()
}
