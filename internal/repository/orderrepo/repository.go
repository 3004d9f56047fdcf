// Package orderrepo persiste pedidos e o histórico de tentativas de pagamento.
// Toda mudança de estado é um UPDATE condicional ao estado lido pelo serviço:
// se outra requisição mudou o pedido antes, nada é alterado e o chamador
// recebe ConflictError. payment_attempts só recebe INSERT.
package orderrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/database"
	"brasero/internal/pkg/logger"
)

const orderColumns = `id, user_id, items, total, status, customer, buy_order, transaction_token, transaction_result, created_at, updated_at`

type OrderRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

func NewOrderRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *OrderRepository {
	return &OrderRepository{DB: db, DBTimeout: dbTimeout, logger: logger}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o                 domain.Order
		items, customer   []byte
		buyOrder, txToken sql.NullString
		txResult          []byte
	)
	err := row.Scan(&o.ID, &o.UserID, &items, &o.Total, &o.Status, &customer,
		&buyOrder, &txToken, &txResult, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return domain.Order{}, fmt.Errorf("decode items: %w", err)
	}
	if err := json.Unmarshal(customer, &o.Customer); err != nil {
		return domain.Order{}, fmt.Errorf("decode customer: %w", err)
	}
	o.BuyOrder = buyOrder.String
	o.TransactionToken = txToken.String
	if len(txResult) > 0 {
		o.TransactionResult = &domain.TransactionResult{}
		if err := json.Unmarshal(txResult, o.TransactionResult); err != nil {
			return domain.Order{}, fmt.Errorf("decode transaction_result: %w", err)
		}
	}
	return o, nil
}

func orderNotFound() error {
	return apperror.NewNotFoundError("pedido não encontrado.")
}

// CreateAndClearCart grava o pedido e esvazia o carrinho na mesma transação.
func (r *OrderRepository) CreateAndClearCart(ctx context.Context, o domain.Order, cartID string) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt

	items, err := json.Marshal(o.Items)
	if err != nil {
		return domain.Order{}, apperror.NewInternalError("falha ao serializar itens do pedido", err)
	}
	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return domain.Order{}, apperror.NewInternalError("falha ao serializar dados do cliente", err)
	}

	err = database.WithTx(ctxTimeout, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctxTimeout,
			`INSERT INTO orders (id, user_id, items, total, status, customer, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			o.ID, o.UserID, items, o.Total, o.Status, customer, o.CreatedAt, o.UpdatedAt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctxTimeout, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
		return err
	})
	if err != nil {
		r.logger.Error("Falha ao criar pedido.", err)
		return domain.Order{}, apperror.NewDBError("failed to create order", err)
	}
	return o, nil
}

func (r *OrderRepository) findOne(ctx context.Context, where string, arg interface{}) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	o, err := scanOrder(r.DB.QueryRowContext(ctxTimeout, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, orderNotFound()
	}
	if err != nil {
		r.logger.Error("Falha ao buscar pedido.", err)
		return domain.Order{}, apperror.NewDBError("failed to find order", err)
	}
	return o, nil
}

// FindByID busca o pedido; IDs malformados são tratados como inexistentes.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Order{}, orderNotFound()
	}
	return r.findOne(ctx, `id = $1`, id)
}

// FindByToken busca o pedido pelo token de transação do gateway.
func (r *OrderRepository) FindByToken(ctx context.Context, token string) (domain.Order, error) {
	return r.findOne(ctx, `transaction_token = $1`, token)
}

// FindByBuyOrder busca o pedido pela ordem de compra enviada ao gateway.
func (r *OrderRepository) FindByBuyOrder(ctx context.Context, buyOrder string) (domain.Order, error) {
	return r.findOne(ctx, `buy_order = $1`, buyOrder)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar pedidos.", err)
		return nil, apperror.NewDBError("failed to list orders", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, apperror.NewDBError("failed to scan order", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate orders", err)
	}
	return orders, nil
}

// ListByUser devolve os pedidos do usuário, mais recentes primeiro.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// List devolve todos os pedidos, opcionalmente filtrados por estado.
func (r *OrderRepository) List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	if f.Status != "" {
		return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC`, f.Status)
	}
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

// UpdateStatus troca o estado somente se o pedido ainda estiver em from.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Order{}, orderNotFound()
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	o, err := scanOrder(r.DB.QueryRowContext(ctxTimeout,
		`UPDATE orders SET status = $3, updated_at = NOW()
		 WHERE id = $1 AND status = $2
		 RETURNING `+orderColumns, id, from, to))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, apperror.NewConflictError("o pedido foi alterado por outra requisição.")
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar estado do pedido.", err)
		return domain.Order{}, apperror.NewDBError("failed to update order status", err)
	}
	return o, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertAttempt(ctx context.Context, q execer, orderID string, a domain.PaymentAttempt) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO payment_attempts (order_id, created_at, outcome, buy_order, token, error_message)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		orderID, a.Timestamp, a.Outcome, a.BuyOrder, a.Token, a.ErrorMessage)
	return err
}

// SetPaymentRef guarda ordem de compra e token do gateway e registra a
// tentativa initiated. Só vale para pedidos pendentes de pagamento.
func (r *OrderRepository) SetPaymentRef(ctx context.Context, id, buyOrder, token string, attempt domain.PaymentAttempt) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	err := database.WithTx(ctxTimeout, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctxTimeout,
			`UPDATE orders SET buy_order = $2, transaction_token = $3, updated_at = NOW()
			 WHERE id = $1 AND status = $4`,
			id, buyOrder, token, domain.StatusPendingPayment)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return sql.ErrNoRows
		}
		return insertAttempt(ctxTimeout, tx, id, attempt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NewConflictError("o pedido não está mais pendente de pagamento.")
		}
		if database.IsUniqueViolation(err, "orders_buy_order_key") {
			return apperror.NewConflictError("ordem de compra duplicada.")
		}
		r.logger.Error("Falha ao gravar referência de pagamento.", err)
		return apperror.NewDBError("failed to set payment reference", err)
	}
	return nil
}

// MarkPaid move o pedido de Pendiente de pago para Pagado, guarda o resultado
// da transação e registra a tentativa authorized, tudo numa transação.
func (r *OrderRepository) MarkPaid(ctx context.Context, id string, result *domain.TransactionResult, attempt domain.PaymentAttempt) (domain.Order, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	payload, err := json.Marshal(result)
	if err != nil {
		return domain.Order{}, apperror.NewInternalError("falha ao serializar resultado da transação", err)
	}

	var o domain.Order
	err = database.WithTx(ctxTimeout, r.DB, func(tx *sql.Tx) error {
		var err error
		o, err = scanOrder(tx.QueryRowContext(ctxTimeout,
			`UPDATE orders SET status = $3, transaction_result = $4, updated_at = NOW()
			 WHERE id = $1 AND status = $2
			 RETURNING `+orderColumns,
			id, domain.StatusPendingPayment, domain.StatusPaid, payload))
		if err != nil {
			return err
		}
		return insertAttempt(ctxTimeout, tx, id, attempt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, apperror.NewConflictError("o pedido não está mais pendente de pagamento.")
	}
	if err != nil {
		r.logger.Error("Falha ao marcar pedido como pago.", err)
		return domain.Order{}, apperror.NewDBError("failed to mark order paid", err)
	}
	return o, nil
}

// AppendAttempt acrescenta uma entrada ao histórico de pagamento.
func (r *OrderRepository) AppendAttempt(ctx context.Context, orderID string, attempt domain.PaymentAttempt) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if err := insertAttempt(ctxTimeout, r.DB, orderID, attempt); err != nil {
		r.logger.Error("Falha ao registrar tentativa de pagamento.", err)
		return apperror.NewDBError("failed to append payment attempt", err)
	}
	return nil
}

// Attempts devolve o histórico de pagamento em ordem de inserção.
func (r *OrderRepository) Attempts(ctx context.Context, orderID string) ([]domain.PaymentAttempt, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout,
		`SELECT created_at, outcome, buy_order, token, error_message
		 FROM payment_attempts WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		r.logger.Error("Falha ao listar tentativas de pagamento.", err)
		return nil, apperror.NewDBError("failed to list payment attempts", err)
	}
	defer rows.Close()

	attempts := []domain.PaymentAttempt{}
	for rows.Next() {
		var a domain.PaymentAttempt
		if err := rows.Scan(&a.Timestamp, &a.Outcome, &a.BuyOrder, &a.Token, &a.ErrorMessage); err != nil {
			return nil, apperror.NewDBError("failed to scan payment attempt", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate payment attempts", err)
	}
	return attempts, nil
}
