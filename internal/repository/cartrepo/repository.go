package cartrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
)

// CartRepository guarda os carrinhos. Preços nunca são gravados no carrinho:
// as linhas são sempre lidas com JOIN no catálogo.
type CartRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

func NewCartRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *CartRepository {
	return &CartRepository{DB: db, DBTimeout: dbTimeout, logger: logger}
}

// GetOrCreate devolve o carrinho do usuário, criando-o na primeira chamada.
func (r *CartRepository) GetOrCreate(ctx context.Context, userID string) (domain.Cart, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// O DO UPDATE sem efeito faz o RETURNING devolver a linha existente.
	const upsertSQL = `INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, created_at, updated_at`

	var c domain.Cart
	err := r.DB.QueryRowContext(ctxTimeout, upsertSQL, uuid.NewString(), userID).Scan(
		&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao obter carrinho.", err)
		return domain.Cart{}, apperror.NewDBError("failed to get or create cart", err)
	}
	return c, nil
}

// Lines devolve os itens unidos ao preço vigente, na ordem em que foram adicionados.
func (r *CartRepository) Lines(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout,
		`SELECT p.id, p.name, p.image_url, p.category, p.price, ci.quantity, p.available
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 WHERE ci.cart_id = $1
		 ORDER BY ci.added_at, p.id`, cartID)
	if err != nil {
		r.logger.Error("Falha ao listar itens do carrinho.", err)
		return nil, apperror.NewDBError("failed to list cart lines", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ProductID, &l.Name, &l.ImageURL, &l.Category, &l.UnitPrice, &l.Quantity, &l.Available); err != nil {
			return nil, apperror.NewDBError("failed to scan cart line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate cart lines", err)
	}
	return lines, nil
}

// SetItem define a quantidade do produto no carrinho (upsert).
func (r *CartRepository) SetItem(ctx context.Context, cartID, productID string, quantity int) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout,
		`INSERT INTO cart_items (cart_id, product_id, quantity, added_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
		cartID, productID, quantity)
	if err != nil {
		r.logger.Error("Falha ao gravar item do carrinho.", err)
		return apperror.NewDBError("failed to set cart item", err)
	}
	r.touch(ctxTimeout, cartID)
	return nil
}

// RemoveItem tira o produto do carrinho; NotFound se ele não estava lá.
func (r *CartRepository) RemoveItem(ctx context.Context, cartID, productID string) error {
	if _, err := uuid.Parse(productID); err != nil {
		return apperror.NewNotFoundError("produto não está no carrinho.")
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctxTimeout,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		r.logger.Error("Falha ao remover item do carrinho.", err)
		return apperror.NewDBError("failed to remove cart item", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFoundError("produto não está no carrinho.")
	}
	r.touch(ctxTimeout, cartID)
	return nil
}

// Clear esvazia o carrinho.
func (r *CartRepository) Clear(ctx context.Context, cartID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if _, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		r.logger.Error("Falha ao esvaziar carrinho.", err)
		return apperror.NewDBError("failed to clear cart", err)
	}
	r.touch(ctxTimeout, cartID)
	return nil
}

func (r *CartRepository) touch(ctx context.Context, cartID string) {
	if _, err := r.DB.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		r.logger.Warn("Falha ao atualizar updated_at do carrinho.", map[string]interface{}{"cart_id": cartID, "error": err.Error()})
	}
}
