package orderrepo_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
	"brasero/internal/repository/orderrepo"
	"brasero/internal/testutil"
)

func insertUser(t *testing.T, db *sql.DB) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, 'x')`, id, id+"@test.cl")
	require.NoError(t, err)
	return id
}

// insertCart cria um carrinho com um item e devolve o id do carrinho.
func insertCart(t *testing.T, db *sql.DB, userID string) string {
	t.Helper()
	productID := uuid.NewString()
	_, err := db.Exec(`INSERT INTO products (id, name, price, category) VALUES ($1, 'Pollo entero', 12990, 'Pollos')`, productID)
	require.NoError(t, err)
	cartID := uuid.NewString()
	_, err = db.Exec(`INSERT INTO carts (id, user_id) VALUES ($1, $2)`, cartID, userID)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, 2)`, cartID, productID)
	require.NoError(t, err)
	return cartID
}

func newRepo(db *sql.DB) *orderrepo.OrderRepository {
	return orderrepo.NewOrderRepository(db, 10*time.Second, logger.NewLogger("error"))
}

func newOrder(userID string) domain.Order {
	return domain.Order{
		UserID: userID,
		Items: []domain.OrderItem{
			{ProductID: uuid.NewString(), Name: "Pollo entero", UnitPrice: 12990, Quantity: 2, Subtotal: 25980},
		},
		Total:  25980,
		Status: domain.StatusPendingPayment,
		Customer: domain.Profile{
			Name:    "Ana Pérez",
			Phone:   "+56912345678",
			Address: "Av. Providencia 1234",
			Commune: "Providencia",
		},
	}
}

// pendingOrder cria um pedido pendente com referência de pagamento gravada.
func pendingOrder(t *testing.T, db *sql.DB, repo *orderrepo.OrderRepository) domain.Order {
	t.Helper()
	userID := insertUser(t, db)
	o, err := repo.CreateAndClearCart(context.Background(), newOrder(userID), uuid.NewString())
	require.NoError(t, err)

	buyOrder := "BO-" + o.ID[:8]
	token := "tok-" + o.ID
	err = repo.SetPaymentRef(context.Background(), o.ID, buyOrder, token, domain.InitiatedAttempt(buyOrder, token))
	require.NoError(t, err)
	o.BuyOrder, o.TransactionToken = buyOrder, token
	return o
}

func TestCreateAndClearCart_Success(t *testing.T) {
	db := testutil.NewPostgres(t)
	repo := newRepo(db)
	userID := insertUser(t, db)
	cartID := insertCart(t, db, userID)

	created, err := repo.CreateAndClearCart(context.Background(), newOrder(userID), cartID)
	require.NoError(t, err)

	var left int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`, cartID).Scan(&left))
	assert.Equal(t, 0, left)

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingPayment, found.Status)
	assert.Equal(t, int64(25980), found.Total)
	assert.Equal(t, newOrder(userID).Customer, found.Customer)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Pollo entero", found.Items[0].Name)
	assert.Equal(t, 2, found.Items[0].Quantity)
	assert.Nil(t, found.TransactionResult)
}

func TestFindByID_Fail_MalformedID(t *testing.T) {
	db := testutil.NewPostgres(t)
	repo := newRepo(db)

	_, err := repo.FindByID(context.Background(), "nao-e-uuid")
	assert.True(t, apperror.IsNotFound(err))
}

func TestMarkPaid_Success(t *testing.T) {
	db := testutil.NewPostgres(t)
	repo := newRepo(db)
	o := pendingOrder(t, db, repo)

	result := &domain.TransactionResult{
		AuthorizationCode: "1213",
		TransactionDate:   time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC),
		CardNumber:        "6623",
		PaymentTypeCode:   "VD",
		Amount:            o.Total,
	}
	paid, err := repo.MarkPaid(context.Background(), o.ID, result,
		domain.AuthorizedAttempt(o.BuyOrder, o.TransactionToken))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
	require.NotNil(t, paid.TransactionResult)
	assert.Equal(t, "1213", paid.TransactionResult.AuthorizationCode)
	assert.True(t, result.TransactionDate.Equal(paid.TransactionResult.TransactionDate))

	byToken, err := repo.FindByToken(context.Background(), o.TransactionToken)
	require.NoError(t, err)
	assert.Equal(t, o.ID, byToken.ID)
	assert.Equal(t, domain.StatusPaid, byToken.Status)

	attempts, err := repo.Attempts(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, domain.AttemptInitiated, attempts[0].Outcome)
	assert.Equal(t, domain.AttemptAuthorized, attempts[1].Outcome)
}

func TestMarkPaid_Fail_SecondCallConflicts(t *testing.T) {
	db := testutil.NewPostgres(t)
	repo := newRepo(db)
	o := pendingOrder(t, db, repo)

	result := &domain.TransactionResult{AuthorizationCode: "1213", Amount: o.Total}
	_, err := repo.MarkPaid(context.Background(), o.ID, result, domain.AuthorizedAttempt(o.BuyOrder, o.TransactionToken))
	require.NoError(t, err)

	_, err = repo.MarkPaid(context.Background(), o.ID, result, domain.AuthorizedAttempt(o.BuyOrder, o.TransactionToken))
	assert.True(t, apperror.IsConflict(err))

	attempts, err := repo.Attempts(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 2, "a segunda confirmação não pode gravar outra tentativa authorized")
}

func TestSetPaymentRef_Fail_DuplicateBuyOrder(t *testing.T) {
	db := testutil.NewPostgres(t)
	repo := newRepo(db)
	first := pendingOrder(t, db, repo)

	userID := insertUser(t, db)
	second, err := repo.CreateAndClearCart(context.Background(), newOrder(userID), uuid.NewString())
	require.NoError(t, err)

	err = repo.SetPaymentRef(context.Background(), second.ID, first.BuyOrder, "outro-token",
		domain.InitiatedAttempt(first.BuyOrder, "outro-token"))
	assert.True(t, apperror.IsConflict(err))

	found, err := repo.FindByBuyOrder(context.Background(), first.BuyOrder)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestUpdateStatus_Fail_StaleFromConflicts(t *testing.T) {
	db := testutil.NewPostgres(t)
	repo := newRepo(db)
	o := pendingOrder(t, db, repo)

	_, err := repo.UpdateStatus(context.Background(), o.ID, domain.StatusPendingPayment, domain.StatusCancelled)
	require.NoError(t, err)

	_, err = repo.UpdateStatus(context.Background(), o.ID, domain.StatusPendingPayment, domain.StatusPaid)
	assert.True(t, apperror.IsConflict(err))

	found, err := repo.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, found.Status)
}

func TestAppendAttempt_Success_HistoryIsInsertOnly(t *testing.T) {
	db := testutil.NewPostgres(t)
	repo := newRepo(db)
	o := pendingOrder(t, db, repo)

	err := repo.AppendAttempt(context.Background(), o.ID,
		domain.RejectedAttempt(o.BuyOrder, o.TransactionToken, "rechazada por el emisor"))
	require.NoError(t, err)

	attempts, err := repo.Attempts(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, domain.AttemptRejected, attempts[1].Outcome)
	assert.Equal(t, "rechazada por el emisor", attempts[1].ErrorMessage)

	_, err = db.Exec(`UPDATE payment_attempts SET outcome = 'error' WHERE order_id = $1`, o.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "somente inserção")
}
