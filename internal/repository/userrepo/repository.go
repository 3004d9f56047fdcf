package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/database"
	"brasero/internal/pkg/logger"
)

const userColumns = `id, email, password_hash, role, active, email_verified, name, phone, address, commune, created_at, updated_at`

// UserRepository persiste usuários no PostgreSQL.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Active,
		&u.EmailVerified,
		&u.Name,
		&u.Phone,
		&u.Address,
		&u.Commune,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// Save insere um novo usuário. E-mail duplicado vira ConflictError.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	const insertSQL = `INSERT INTO users (` + userColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	_, err := r.DB.ExecContext(ctxTimeout, insertSQL,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Active,
		user.EmailVerified,
		user.Name,
		user.Phone,
		user.Address,
		user.Commune,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err, "users_email_key") {
			return domain.User{}, apperror.NewConflictError(fmt.Sprintf("o email '%s' já está em uso.", user.Email))
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to insert user", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID, "role": user.Role})
	return user, nil
}

// FindByEmail busca um usuário pelo e-mail já normalizado.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	row := r.DB.QueryRowContext(ctxTimeout, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError("usuário não encontrado.")
		}
		r.logger.Error("Falha ao buscar usuário por email no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by email", err)
	}
	return user, nil
}

// FindByID busca um usuário pelo ID. IDs malformados são tratados como inexistentes.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, apperror.NewNotFoundError("usuário não encontrado.")
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	row := r.DB.QueryRowContext(ctxTimeout, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError("usuário não encontrado.")
		}
		r.logger.Error("Falha ao buscar usuário por ID no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by id", err)
	}
	return user, nil
}

// UpdateProfile grava os dados de contato e devolve o usuário atualizado.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, p domain.Profile) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, apperror.NewNotFoundError("usuário não encontrado.")
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const updateSQL = `UPDATE users
		SET name = $2, phone = $3, address = $4, commune = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout, updateSQL, id, p.Name, p.Phone, p.Address, p.Commune))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError("usuário não encontrado.")
		}
		r.logger.Error("Falha ao atualizar perfil no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to update profile", err)
	}
	return user, nil
}

// SetActive ativa ou desativa a conta. Desativar revoga, na mesma transação,
// todos os refresh tokens do usuário.
func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, apperror.NewNotFoundError("usuário não encontrado.")
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var user domain.User
	err := database.WithTx(ctxTimeout, r.DB, func(tx *sql.Tx) error {
		var err error
		user, err = scanUser(tx.QueryRowContext(ctxTimeout,
			`UPDATE users SET active = $2, updated_at = NOW() WHERE id = $1 RETURNING `+userColumns, id, active))
		if err != nil {
			return err
		}
		if active {
			return nil
		}
		_, err = tx.ExecContext(ctxTimeout,
			`UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE`, id)
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError("usuário não encontrado.")
		}
		r.logger.Error("Falha ao alterar status da conta no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to set user active flag", err)
	}

	r.logger.Info("Status da conta alterado.", map[string]interface{}{"user_id": id, "active": active})
	return user, nil
}
