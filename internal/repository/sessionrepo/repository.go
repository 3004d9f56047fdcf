// Package sessionrepo guarda os refresh tokens. O limite de sessões por
// usuário é aplicado numa única transação que trava a linha do usuário.
package sessionrepo

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

const tokenColumns = `id, token, user_id, created_at, expires_at, revoked, user_agent, ip`

// SessionRepository persiste refresh tokens no PostgreSQL.
type SessionRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

func NewSessionRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *SessionRepository {
	return &SessionRepository{DB: db, DBTimeout: dbTimeout, logger: logger}
}

// CreateWithCap insere o token garantindo que o usuário termine com no máximo
// maxActive tokens ativos. Os mais antigos além do limite são revogados antes
// do INSERT, com a linha do usuário travada (logins concorrentes serializam).
func (r *SessionRepository) CreateWithCap(ctx context.Context, t domain.RefreshToken, maxActive int) (domain.RefreshToken, error) {
	if maxActive < 1 {
		maxActive = 1
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	t.ID = uuid.NewString()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	var evicted int64
	err := database.WithTx(ctxTimeout, r.DB, func(tx *sql.Tx) error {
		var locked string
		if err := tx.QueryRowContext(ctxTimeout,
			`SELECT id FROM users WHERE id = $1 FOR UPDATE`, t.UserID).Scan(&locked); err != nil {
			return err
		}

		const evictSQL = `UPDATE refresh_tokens SET revoked = TRUE
			WHERE id IN (
				SELECT id FROM refresh_tokens
				WHERE user_id = $1 AND revoked = FALSE AND expires_at > NOW()
				ORDER BY created_at DESC, id DESC
				OFFSET $2
			)`
		res, err := tx.ExecContext(ctxTimeout, evictSQL, t.UserID, maxActive-1)
		if err != nil {
			return err
		}
		evicted, _ = res.RowsAffected()

		_, err = tx.ExecContext(ctxTimeout,
			`INSERT INTO refresh_tokens (`+tokenColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			t.ID, t.Token, t.UserID, t.CreatedAt, t.ExpiresAt, false, t.UserAgent, t.IP)
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RefreshToken{}, apperror.NewNotFoundError("usuário não encontrado.")
		}
		if database.IsUniqueViolation(err, "refresh_tokens_token_key") {
			return domain.RefreshToken{}, apperror.NewConflictError("refresh token duplicado.")
		}
		r.logger.Error("Falha ao criar refresh token.", err)
		return domain.RefreshToken{}, apperror.NewDBError("failed to create refresh token", err)
	}

	if evicted > 0 {
		r.logger.Info("Sessões mais antigas revogadas pelo limite por usuário.", map[string]interface{}{
			"user_id": t.UserID,
			"evicted": evicted,
		})
	}
	return t, nil
}

// FindByToken busca pelo valor exato, inclusive tokens revogados ou expirados.
func (r *SessionRepository) FindByToken(ctx context.Context, value string) (domain.RefreshToken, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var t domain.RefreshToken
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT `+tokenColumns+` FROM refresh_tokens WHERE token = $1`, value).Scan(
		&t.ID, &t.Token, &t.UserID, &t.CreatedAt, &t.ExpiresAt, &t.Revoked, &t.UserAgent, &t.IP,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RefreshToken{}, apperror.NewNotFoundError("refresh token não encontrado.")
		}
		r.logger.Error("Falha ao buscar refresh token.", err)
		return domain.RefreshToken{}, apperror.NewDBError("failed to find refresh token", err)
	}
	return t, nil
}

// Revoke revoga um token pelo valor. Devolve false se nada foi alterado.
func (r *SessionRepository) Revoke(ctx context.Context, value string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1 AND revoked = FALSE`, value)
	if err != nil {
		r.logger.Error("Falha ao revogar refresh token.", err)
		return false, apperror.NewDBError("failed to revoke refresh token", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RevokeAllForUser revoga todos os tokens ativos do usuário e devolve quantos foram revogados.
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE refresh_tokens SET revoked = TRUE
		 WHERE user_id = $1 AND revoked = FALSE AND expires_at > NOW()`, userID)
	if err != nil {
		r.logger.Error("Falha ao revogar sessões do usuário.", err)
		return 0, apperror.NewDBError("failed to revoke user sessions", err)
	}
	return res.RowsAffected()
}

// CountActive conta os tokens não revogados e não expirados do usuário.
func (r *SessionRepository) CountActive(ctx context.Context, userID string) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var n int
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT COUNT(*) FROM refresh_tokens
		 WHERE user_id = $1 AND revoked = FALSE AND expires_at > NOW()`, userID).Scan(&n)
	if err != nil {
		r.logger.Error("Falha ao contar sessões ativas.", err)
		return 0, apperror.NewDBError("failed to count active sessions", err)
	}
	return n, nil
}

// HasActive indica se o usuário tem ao menos uma sessão viva.
func (r *SessionRepository) HasActive(ctx context.Context, userID string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var exists bool
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			WHERE user_id = $1 AND revoked = FALSE AND expires_at > NOW()
		)`, userID).Scan(&exists)
	if err != nil {
		r.logger.Error("Falha ao verificar sessão ativa.", err)
		return false, apperror.NewDBError("failed to check active session", err)
	}
	return exists, nil
}

// Purge apaga tokens expirados ou revogados antes de olderThan.
func (r *SessionRepository) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctxTimeout,
		`DELETE FROM refresh_tokens WHERE expires_at < $1 OR (revoked = TRUE AND created_at < $1)`, olderThan)
	if err != nil {
		return 0, apperror.NewDBError("failed to purge refresh tokens", err)
	}
	return res.RowsAffected()
}
